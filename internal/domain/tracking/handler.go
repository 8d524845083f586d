package tracking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/tracking", func(tr chi.Router) {
		tr.Get("/session", getSessionHandler(svc))
		tr.Get("/events", listEventsHandler(svc))
	})
}

// sessionResponse devuelve el session id del proceso.
type sessionResponse struct {
	SessionID string `json:"session_id"`
}

// eventResponse representa un evento registrado.
type eventResponse struct {
	Event      EventType      `json:"event"`
	Properties map[string]any `json:"properties"`
	Timestamp  time.Time      `json:"timestamp"`
	SessionID  string         `json:"session_id"`
}

// getSessionHandler godoc
// @Summary Session id de tracking
// @Description Devuelve el identificador de sesión estable del proceso.
// @Tags tracking
// @Produce json
// @Success 200 {object} sessionResponse
// @Router /tracking/session [get]
func getSessionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, sessionResponse{SessionID: svc.SessionID()})
	}
}

// listEventsHandler godoc
// @Summary Listar eventos registrados
// @Description Devuelve una copia de los eventos en orden de registro. Permite filtrar por tipos y fecha mínima.
// @Tags tracking
// @Produce json
// @Param types query string false "Lista CSV de tipos (ej: form_start,form_abandon)"
// @Param since query string false "Timestamp mínimo (RFC3339)"
// @Param limit query int false "Conserva solo los N eventos más recientes (1-1000)"
// @Success 200 {array} eventResponse
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Router /tracking/events [get]
func listEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items := svc.List(r.Context(), filter)

		out := make([]eventResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEventResponse(e))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	var filter ListFilter

	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			return ListFilter{}, errors.New("limit must be between 1 and 1000")
		}
		filter.Limit = n
	}

	// types=form_start,form_abandon
	if v := strings.TrimSpace(r.URL.Query().Get("types")); v != "" {
		parts := strings.Split(v, ",")
		out := make([]EventType, 0, len(parts))
		for _, p := range parts {
			t := EventType(strings.TrimSpace(p))
			if t == "" {
				continue
			}
			out = append(out, t)
		}
		if len(out) > 0 {
			filter.Types = out
		}
	}

	if v := strings.TrimSpace(r.URL.Query().Get("since")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("since must be RFC3339")
		}
		filter.Since = &t
	}

	return filter, nil
}

func toEventResponse(e Event) eventResponse {
	props := map[string]any(e.Properties)
	if props == nil {
		props = map[string]any{}
	}
	return eventResponse{
		Event:      e.Type,
		Properties: props,
		Timestamp:  e.Timestamp,
		SessionID:  e.SessionID,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
