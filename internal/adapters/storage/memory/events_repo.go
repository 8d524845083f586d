package memory

import (
	"context"
	"sync"

	"dog-registration/internal/domain/tracking"
)

// eventLog es el log append-only de tracking. Sin límite de tamaño ni
// expiración: crece mientras viva el proceso.
type eventLog struct {
	mu    sync.RWMutex
	items []tracking.Event
}

func NewEventLog() tracking.Log {
	return &eventLog{
		items: make([]tracking.Event, 0, 64),
	}
}

func (l *eventLog) Append(ctx context.Context, e tracking.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = append(l.items, e.Clone())
	return nil
}

func (l *eventLog) List(ctx context.Context, filter tracking.ListFilter) ([]tracking.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]tracking.Event, 0, len(l.items))
	for _, e := range l.items {
		if !filter.Match(e) {
			continue
		}
		out = append(out, e.Clone())
	}

	// Limit conserva los más recientes, en orden de inserción.
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[len(out)-filter.Limit:]
	}

	return out, nil
}

func (l *eventLog) Len(ctx context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items), nil
}
