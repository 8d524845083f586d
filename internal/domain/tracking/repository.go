package tracking

import (
	"context"
	"time"
)

// Log es el almacenamiento append-only de eventos.
// List devuelve copias en orden de inserción.
type Log interface {
	Append(ctx context.Context, e Event) error
	List(ctx context.Context, filter ListFilter) ([]Event, error)
	Len(ctx context.Context) (int, error)
}

type ListFilter struct {
	Types []EventType
	Since *time.Time
	// Limit > 0 conserva los N eventos más recientes (sin alterar el orden).
	Limit int
}

func (f ListFilter) Match(e Event) bool {
	if len(f.Types) > 0 {
		ok := false
		for _, t := range f.Types {
			if e.Type == t {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.Since != nil && e.Timestamp.Before(*f.Since) {
		return false
	}
	return true
}
