package tracking

// EventType identifica el tipo de interacción registrada.
// Track acepta cualquier valor; estas constantes son el vocabulario conocido.
type EventType string

const (
	EventPageView            EventType = "page_view"
	EventFormStart           EventType = "form_start"
	EventFormFieldFocus      EventType = "form_field_focus"
	EventFormFieldComplete   EventType = "form_field_complete"
	EventFormValidationError EventType = "form_validation_error"
	EventFormSubmitAttempt   EventType = "form_submit_attempt"
	EventFormSubmitSuccess   EventType = "form_submit_success"
	EventFormAbandon         EventType = "form_abandon"
	EventButtonClick         EventType = "button_click"
	EventErrorOccurred       EventType = "error_occurred"
)

// EventTypes lista el vocabulario conocido (orden estable).
var EventTypes = []EventType{
	EventPageView,
	EventFormStart,
	EventFormFieldFocus,
	EventFormFieldComplete,
	EventFormValidationError,
	EventFormSubmitAttempt,
	EventFormSubmitSuccess,
	EventFormAbandon,
	EventButtonClick,
	EventErrorOccurred,
}

func (t EventType) Known() bool {
	for _, k := range EventTypes {
		if t == k {
			return true
		}
	}
	return false
}

// Keys de propiedades que agrega el servicio o el facade.
const (
	PropURL       = "url"
	PropUserAgent = "userAgent"

	PropPageName     = "page_name"
	PropFieldName    = "field_name"
	PropButtonName   = "button_name"
	PropErrorMessage = "error_message"
	PropErrorContext = "error_context"
)
