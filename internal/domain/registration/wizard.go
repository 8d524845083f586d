package registration

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"dog-registration/internal/domain/tracking"
)

const (
	ValidationFailedMessage = "Form validation failed"
	SubmitErrorContext      = "dog_registration_submit"
	ResetButtonName         = "submit_another_registration"
)

// Tracker es lo que el wizard necesita del facade de tracking.
type Tracker interface {
	FormInteraction(ctx context.Context, action tracking.FormAction, fieldName string, props tracking.Properties)
	ButtonClick(ctx context.Context, buttonName string, props tracking.Properties)
	Error(ctx context.Context, message, errContext string)
}

// Wizard es el formulario de registro de un cliente.
//
// Estados: editing -> submitted (Submit válido) -> editing (Reset).
// Close termina la sesión de edición; si quedaron campos completos sin
// enviar, registra form_abandon una única vez.
type Wizard struct {
	mu sync.Mutex

	tracker Tracker
	now     func() time.Time

	state     State
	form      FormData
	completed map[Field]struct{}
	started   bool
	startedAt time.Time
	closed    bool
}

func NewWizard(tracker Tracker) *Wizard {
	w := &Wizard{
		tracker: tracker,
		now:     time.Now,
	}
	w.clear()
	return w
}

func (w *Wizard) clear() {
	w.state = StateEditing
	w.form = NewFormData()
	w.completed = make(map[Field]struct{}, len(Fields))
	w.started = false
	w.startedAt = time.Time{}
}

// Change actualiza un campo. El primer valor no vacío de un campo lo marca
// como completo (aunque después se borre).
func (w *Wizard) Change(ctx context.Context, field Field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkEditable(field); err != nil {
		return err
	}

	w.form[field] = value
	if value == "" {
		return nil
	}

	w.ensureStarted(ctx)

	if _, done := w.completed[field]; done {
		return nil
	}
	w.completed[field] = struct{}{}

	w.tracker.FormInteraction(ctx, tracking.FormActionFieldComplete, string(field), tracking.Properties{
		"value_length":          utf8.RuneCountInString(value),
		"completion_percentage": w.completionPercentage(),
	})
	return nil
}

// Focus registra el foco en un campo. El foco puede llegar antes que cualquier
// tecla, así que también dispara form_start.
func (w *Wizard) Focus(ctx context.Context, field Field) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkEditable(field); err != nil {
		return err
	}

	w.ensureStarted(ctx)
	w.tracker.FormInteraction(ctx, tracking.FormActionFieldFocus, string(field), nil)
	return nil
}

// Submit valida y, si todo está bien, pasa a submitted. No hay backend:
// el único efecto es el cambio de estado y los eventos.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.state != StateEditing {
		return ErrNotEditing
	}

	w.tracker.FormInteraction(ctx, tracking.FormActionSubmitAttempt, "", tracking.Properties{
		"completion_percentage": w.completionPercentage(),
		"completed_fields":      w.completedNames(),
	})

	if err := Validate(w.form); err != nil {
		w.tracker.Error(ctx, ValidationFailedMessage, SubmitErrorContext)
		return err
	}

	age, _ := strconv.Atoi(strings.TrimSpace(w.form[FieldDogAge]))

	var elapsed time.Duration
	if !w.startedAt.IsZero() {
		elapsed = w.now().Sub(w.startedAt)
	}

	w.tracker.FormInteraction(ctx, tracking.FormActionSubmitSuccess, "", tracking.Properties{
		"owner_name_length":   utf8.RuneCountInString(strings.TrimSpace(w.form[FieldOwnerName])),
		"dog_breed":           strings.TrimSpace(w.form[FieldDogBreed]),
		"dog_age":             age,
		"time_to_complete_ms": elapsed.Milliseconds(),
	})

	w.state = StateSubmitted
	return nil
}

// Reset ("Submit Another Registration") vuelve al estado inicial.
func (w *Wizard) Reset(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.state != StateSubmitted {
		return ErrNotSubmitted
	}

	w.tracker.ButtonClick(ctx, ResetButtonName, nil)
	w.clear()
	return nil
}

// Close cierra el wizard. Solo la primera llamada tiene efecto; devuelve true
// si se registró abandono.
func (w *Wizard) Close(ctx context.Context) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return false
	}
	w.closed = true

	if w.state != StateEditing || len(w.completed) == 0 {
		return false
	}

	w.tracker.FormInteraction(ctx, tracking.FormActionAbandon, "", tracking.Properties{
		"completed_fields":      w.completedNames(),
		"completion_percentage": w.completionPercentage(),
	})
	return true
}

func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Snapshot{
		State:                w.state,
		Values:               w.form.Clone(),
		CompletedFields:      w.completedFields(),
		CompletionPercentage: w.completionPercentage(),
		Started:              w.started,
	}
}

func (w *Wizard) CompletionPercentage() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.completionPercentage()
}

func (w *Wizard) checkEditable(field Field) error {
	if w.closed {
		return ErrClosed
	}
	if !field.Valid() {
		return ErrUnknownField
	}
	if w.state != StateEditing {
		return ErrNotEditing
	}
	return nil
}

func (w *Wizard) ensureStarted(ctx context.Context) {
	if w.started {
		return
	}
	w.started = true
	w.startedAt = w.now()
	w.tracker.FormInteraction(ctx, tracking.FormActionStart, "", nil)
}

func (w *Wizard) completionPercentage() int {
	return CompletionPercentage(len(w.completed))
}

// completedFields en el orden del formulario.
func (w *Wizard) completedFields() []Field {
	out := make([]Field, 0, len(w.completed))
	for _, f := range Fields {
		if _, ok := w.completed[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

func (w *Wizard) completedNames() []string {
	fs := w.completedFields()
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}

// CompletionPercentage = round(100 * completed / total).
func CompletionPercentage(completed int) int {
	if completed <= 0 {
		return 0
	}
	if completed > len(Fields) {
		completed = len(Fields)
	}
	return int(math.Round(100 * float64(completed) / float64(len(Fields))))
}
