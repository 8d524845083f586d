package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"dog-registration/internal/domain/registration"
)

type sessionRepo struct {
	mu   sync.RWMutex
	byID map[string]registration.Session
}

func NewSessionRepo() registration.SessionStore {
	return &sessionRepo{
		byID: make(map[string]registration.Session),
	}
}

func (r *sessionRepo) Create(ctx context.Context, s registration.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(s.ID) == "" {
		return errors.New("registration id required")
	}
	if s.Wizard == nil {
		return errors.New("registration wizard required")
	}
	if _, exists := r.byID[s.ID]; exists {
		return errors.New("registration already exists")
	}
	r.byID[s.ID] = s
	return nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (registration.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return registration.Session{}, registration.ErrNotFound
	}
	return s, nil
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return registration.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *sessionRepo) List(ctx context.Context) ([]registration.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]registration.Session, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}

	// Orden estable por opened_at asc
	sort.Slice(out, func(i, j int) bool {
		return out[i].OpenedAt.Before(out[j].OpenedAt)
	})

	return out, nil
}
