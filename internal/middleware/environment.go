package middleware

import (
	"net/http"
	"strings"

	"dog-registration/internal/domain/tracking"
)

// PageURLHeader lo envía el cliente con la URL de la página donde ocurre la interacción.
const PageURLHeader = "X-Page-URL"

// Environment adjunta al ctx el entorno del cliente (página + user agent)
// para que los eventos de tracking se enriquezcan con url/userAgent.
// Sin X-Page-URL se usa el Referer. Sin ninguno, los valores quedan "".
func Environment() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			env := tracking.StaticEnvironment{
				URL:   pageURL(r),
				Agent: strings.TrimSpace(r.UserAgent()),
			}
			ctx := tracking.WithEnvironment(r.Context(), env)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func pageURL(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(PageURLHeader)); v != "" {
		return v
	}
	return strings.TrimSpace(r.Referer())
}
