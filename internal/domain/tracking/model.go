package tracking

import "time"

// Properties es la bolsa de propiedades de un evento.
// Valores esperados: string, int, float64, bool, []string o nil
// (key presente pero sin valor, p.ej. field_name en acciones sin campo).
type Properties map[string]any

// Event es inmutable una vez registrado. Solo lo construye Service.Track.
type Event struct {
	Type       EventType  `json:"event"`
	Properties Properties `json:"properties,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
	SessionID  string     `json:"sessionId"`
}

// Clone devuelve una copia profunda (maps y slices incluidos).
func (e Event) Clone() Event {
	e.Properties = e.Properties.Clone()
	return e
}

func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case []string:
		if x == nil {
			return x
		}
		cp := make([]string, len(x))
		copy(cp, x)
		return cp
	case []any:
		cp := make([]any, len(x))
		for i := range x {
			cp[i] = cloneValue(x[i])
		}
		return cp
	case map[string]any:
		return Properties(x).Clone()
	case Properties:
		return x.Clone()
	default:
		return v
	}
}

func cloneEvents(in []Event) []Event {
	out := make([]Event, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
