package tracking

import (
	"context"
	"sync"
)

// FormAction es la acción semántica del formulario que traduce el facade.
type FormAction string

const (
	FormActionStart           FormAction = "start"
	FormActionFieldFocus      FormAction = "field_focus"
	FormActionFieldComplete   FormAction = "field_complete"
	FormActionValidationError FormAction = "validation_error"
	FormActionSubmitAttempt   FormAction = "submit_attempt"
	FormActionSubmitSuccess   FormAction = "submit_success"
	FormActionAbandon         FormAction = "abandon"
)

var formActionEvents = map[FormAction]EventType{
	FormActionStart:           EventFormStart,
	FormActionFieldFocus:      EventFormFieldFocus,
	FormActionFieldComplete:   EventFormFieldComplete,
	FormActionValidationError: EventFormValidationError,
	FormActionSubmitAttempt:   EventFormSubmitAttempt,
	FormActionSubmitSuccess:   EventFormSubmitSuccess,
	FormActionAbandon:         EventFormAbandon,
}

// EventTypeFor devuelve el tipo de evento de una acción.
// Acciones fuera de la tabla se mapean a "form_<action>" (Track no valida tipos).
func (a FormAction) EventTypeFor() EventType {
	if t, ok := formActionEvents[a]; ok {
		return t
	}
	return EventType("form_" + string(a))
}

// Tracker es la capa de conveniencia sobre Service: acciones de UI -> eventos.
type Tracker struct {
	svc *Service
}

func NewTracker(svc *Service) *Tracker {
	return &Tracker{svc: svc}
}

func (t *Tracker) Track(ctx context.Context, eventType EventType, props Properties) {
	t.svc.Track(ctx, eventType, props)
}

func (t *Tracker) PageView(ctx context.Context, pageName string, props Properties) {
	t.Track(ctx, EventPageView, merge(Properties{PropPageName: pageName}, props))
}

// FormInteraction siempre incluye field_name; nil cuando la acción no es de un campo.
func (t *Tracker) FormInteraction(ctx context.Context, action FormAction, fieldName string, props Properties) {
	var field any
	if fieldName != "" {
		field = fieldName
	}
	t.Track(ctx, action.EventTypeFor(), merge(Properties{PropFieldName: field}, props))
}

func (t *Tracker) ButtonClick(ctx context.Context, buttonName string, props Properties) {
	t.Track(ctx, EventButtonClick, merge(Properties{PropButtonName: buttonName}, props))
}

func (t *Tracker) Error(ctx context.Context, message, errContext string) {
	var c any
	if errContext != "" {
		c = errContext
	}
	t.Track(ctx, EventErrorOccurred, Properties{
		PropErrorMessage: message,
		PropErrorContext: c,
	})
}

func (t *Tracker) SessionID() string {
	return t.svc.SessionID()
}

func (t *Tracker) Events(ctx context.Context) []Event {
	return t.svc.Events(ctx)
}

// merge: las props del caller pisan las del facade.
func merge(base, extra Properties) Properties {
	out := make(Properties, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Página principal del registro.
const HomePageName = "dog_registration_home"

func HomePageProperties() Properties {
	return Properties{
		"page_type": "form_page",
		"form_name": "dog_registration",
	}
}

// PageTracking dispara un page_view una sola vez, cuando la página se activa.
// Llamadas posteriores a Activate no vuelven a registrar.
type PageTracking struct {
	tracker *Tracker
	name    string
	props   Properties
	once    sync.Once
}

func NewPageTracking(t *Tracker, pageName string, props Properties) *PageTracking {
	return &PageTracking{
		tracker: t,
		name:    pageName,
		props:   props.Clone(),
	}
}

func (p *PageTracking) Activate(ctx context.Context) {
	p.once.Do(func() {
		p.tracker.PageView(ctx, p.name, p.props)
	})
}
