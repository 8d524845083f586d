package registration

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/registrations", func(rr chi.Router) {
		rr.Post("/", openRegistrationHandler(svc))
		rr.Get("/{registrationID}", getRegistrationHandler(svc))

		// Interacciones de campo (input / focus)
		rr.Put("/{registrationID}/fields/{field}", changeFieldHandler(svc))
		rr.Post("/{registrationID}/fields/{field}/focus", focusFieldHandler(svc))

		rr.Post("/{registrationID}/submit", submitRegistrationHandler(svc))
		rr.Post("/{registrationID}/reset", resetRegistrationHandler(svc))

		// Desmontar el formulario (abandono si no se envió)
		rr.Delete("/{registrationID}", closeRegistrationHandler(svc))
	})
}

// changeFieldRequest es el cuerpo para actualizar el valor de un campo.
type changeFieldRequest struct {
	Value string `json:"value"`
}

// registrationResponse representa el estado actual del formulario.
type registrationResponse struct {
	ID                   string            `json:"id"`
	State                State             `json:"state" enums:"editing,submitted"`
	Values               map[string]string `json:"values"`
	CompletedFields      []Field           `json:"completed_fields"`
	CompletionPercentage int               `json:"completion_percentage"`
}

type violationResponse struct {
	Field   Field  `json:"field"`
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

// validationErrorResponse se devuelve en un submit inválido.
type validationErrorResponse struct {
	Error        string               `json:"error"`
	Violations   []violationResponse  `json:"violations"`
	Registration registrationResponse `json:"registration"`
}

// openRegistrationHandler godoc
// @Summary Abrir formulario de registro
// @Description Crea un formulario nuevo (estado editing) y registra el page_view de la página de registro.
// @Tags registrations
// @Produce json
// @Param X-Page-URL header string false "URL de la página del cliente (fallback: Referer)"
// @Success 201 {object} registrationResponse
// @Failure 500 {string} string "internal error"
// @Router /registrations [post]
func openRegistrationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.Open(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, toRegistrationResponse(sess.ID, sess.Wizard.Snapshot()))
	}
}

// getRegistrationHandler godoc
// @Summary Obtener formulario
// @Tags registrations
// @Produce json
// @Param registrationID path string true "ID del formulario"
// @Success 200 {object} registrationResponse
// @Failure 404 {string} string "registration not found"
// @Router /registrations/{registrationID} [get]
func getRegistrationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "registrationID")
		snap, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRegistrationResponse(id, snap))
	}
}

// changeFieldHandler godoc
// @Summary Actualizar campo
// @Description Actualiza el valor de un campo. El primer valor no vacío marca el campo como completo y registra form_field_complete.
// @Tags registrations
// @Accept json
// @Produce json
// @Param registrationID path string true "ID del formulario"
// @Param field path string true "Campo" Enums(owner_name,owner_address,dog_name,dog_breed,dog_age)
// @Param payload body changeFieldRequest true "Nuevo valor"
// @Success 200 {object} registrationResponse
// @Failure 400 {string} string "invalid json / unknown field"
// @Failure 404 {string} string "registration not found"
// @Failure 409 {string} string "registration already submitted"
// @Router /registrations/{registrationID}/fields/{field} [put]
func changeFieldHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "registrationID")
		field, err := ParseField(chi.URLParam(r, "field"))
		if err != nil {
			writeError(w, err)
			return
		}

		var req changeFieldRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		snap, err := svc.Change(r.Context(), id, field, req.Value)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRegistrationResponse(id, snap))
	}
}

// focusFieldHandler godoc
// @Summary Foco en campo
// @Tags registrations
// @Produce json
// @Param registrationID path string true "ID del formulario"
// @Param field path string true "Campo" Enums(owner_name,owner_address,dog_name,dog_breed,dog_age)
// @Success 200 {object} registrationResponse
// @Failure 400 {string} string "unknown field"
// @Failure 404 {string} string "registration not found"
// @Failure 409 {string} string "registration already submitted"
// @Router /registrations/{registrationID}/fields/{field}/focus [post]
func focusFieldHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "registrationID")
		field, err := ParseField(chi.URLParam(r, "field"))
		if err != nil {
			writeError(w, err)
			return
		}

		snap, err := svc.Focus(r.Context(), id, field)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRegistrationResponse(id, snap))
	}
}

// submitRegistrationHandler godoc
// @Summary Enviar registro
// @Description Valida el formulario. Si es válido pasa a submitted; si no, devuelve 422 con las reglas incumplidas y el formulario sigue en editing.
// @Tags registrations
// @Produce json
// @Param registrationID path string true "ID del formulario"
// @Success 200 {object} registrationResponse
// @Failure 404 {string} string "registration not found"
// @Failure 409 {string} string "registration already submitted"
// @Failure 422 {object} validationErrorResponse
// @Router /registrations/{registrationID}/submit [post]
func submitRegistrationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "registrationID")
		snap, err := svc.Submit(r.Context(), id)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				out := validationErrorResponse{
					Error:        ErrValidation.Error(),
					Violations:   make([]violationResponse, 0, len(verr.Violations)),
					Registration: toRegistrationResponse(id, snap),
				}
				for _, v := range verr.Violations {
					out.Violations = append(out.Violations, violationResponse(v))
				}
				writeJSON(w, http.StatusUnprocessableEntity, out)
				return
			}
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRegistrationResponse(id, snap))
	}
}

// resetRegistrationHandler godoc
// @Summary Nuevo registro
// @Description Botón "Submit Another Registration": solo desde submitted. Limpia el formulario y vuelve a editing.
// @Tags registrations
// @Produce json
// @Param registrationID path string true "ID del formulario"
// @Success 200 {object} registrationResponse
// @Failure 404 {string} string "registration not found"
// @Failure 409 {string} string "registration not submitted"
// @Router /registrations/{registrationID}/reset [post]
func resetRegistrationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "registrationID")
		snap, err := svc.Reset(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRegistrationResponse(id, snap))
	}
}

// closeRegistrationHandler godoc
// @Summary Cerrar formulario
// @Description Desmonta el formulario. Si estaba en editing con campos completos, registra form_abandon.
// @Tags registrations
// @Param registrationID path string true "ID del formulario"
// @Success 204
// @Failure 404 {string} string "registration not found"
// @Router /registrations/{registrationID} [delete]
func closeRegistrationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "registrationID")
		if _, err := svc.Close(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, ErrNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, ErrUnknownField), errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotEditing), errors.Is(err, ErrNotSubmitted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrClosed):
		http.Error(w, err.Error(), http.StatusGone)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toRegistrationResponse(id string, s Snapshot) registrationResponse {
	values := make(map[string]string, len(s.Values))
	for k, v := range s.Values {
		values[string(k)] = v
	}
	completed := s.CompletedFields
	if completed == nil {
		completed = []Field{}
	}
	return registrationResponse{
		ID:                   id,
		State:                s.State,
		Values:               values,
		CompletedFields:      completed,
		CompletionPercentage: s.CompletionPercentage,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
