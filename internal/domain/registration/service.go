package registration

import (
	"context"
	"errors"
	"strings"
	"time"

	"dog-registration/internal/domain/tracking"
	"dog-registration/internal/platform/logger"
	"dog-registration/internal/platform/telemetry"

	"github.com/google/uuid"
)

// Service aloja los formularios abiertos. Cada Open equivale a montar la
// página de registro: nuevo wizard + page_view de esa página.
type Service struct {
	store   SessionStore
	tracker *tracking.Tracker
	logger  logger.Logger
	metrics *telemetry.Metrics
	now     func() time.Time
}

type ServiceOptions struct {
	Logger  logger.Logger
	Metrics *telemetry.Metrics
}

func NewService(store SessionStore, tracker *tracking.Tracker, opts ServiceOptions) *Service {
	lg := opts.Logger
	if lg == nil {
		lg = logger.NewNop()
	}
	return &Service{
		store:   store,
		tracker: tracker,
		logger:  lg.With(map[string]any{"module": "registration"}),
		metrics: opts.Metrics,
		now:     time.Now,
	}
}

func (s *Service) Open(ctx context.Context) (Session, error) {
	sess := Session{
		ID:       uuid.NewString(),
		OpenedAt: s.now(),
		Wizard:   NewWizard(s.tracker),
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return Session{}, err
	}
	s.metrics.SessionOpened()

	tracking.NewPageTracking(s.tracker, tracking.HomePageName, tracking.HomePageProperties()).Activate(ctx)

	s.logger.Debug("registration opened", map[string]any{"registration_id": sess.ID})
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id string) (Snapshot, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	return sess.Wizard.Snapshot(), nil
}

func (s *Service) Change(ctx context.Context, id string, field Field, value string) (Snapshot, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	if err := sess.Wizard.Change(ctx, field, value); err != nil {
		return Snapshot{}, err
	}
	return sess.Wizard.Snapshot(), nil
}

func (s *Service) Focus(ctx context.Context, id string, field Field) (Snapshot, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	if err := sess.Wizard.Focus(ctx, field); err != nil {
		return Snapshot{}, err
	}
	return sess.Wizard.Snapshot(), nil
}

// Submit devuelve el snapshot también cuando falla la validación
// (junto con el *ValidationError) para que el cliente pueda re-renderizar.
func (s *Service) Submit(ctx context.Context, id string) (Snapshot, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	err = sess.Wizard.Submit(ctx)
	snap := sess.Wizard.Snapshot()
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.logger.Info("registration submit rejected", map[string]any{
				"registration_id": id,
				"violations":      len(verr.Violations),
			})
			return snap, err
		}
		return Snapshot{}, err
	}
	s.logger.Info("registration submitted", map[string]any{"registration_id": id})
	return snap, nil
}

func (s *Service) Reset(ctx context.Context, id string) (Snapshot, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	if err := sess.Wizard.Reset(ctx); err != nil {
		return Snapshot{}, err
	}
	return sess.Wizard.Snapshot(), nil
}

// Close desmonta el formulario (abandono si corresponde) y lo elimina.
func (s *Service) Close(ctx context.Context, id string) (bool, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return false, err
	}
	abandoned := sess.Wizard.Close(ctx)
	if err := s.store.Delete(ctx, sess.ID); err != nil {
		return abandoned, err
	}
	s.metrics.SessionClosed()

	s.logger.Debug("registration closed", map[string]any{
		"registration_id": sess.ID,
		"abandoned":       abandoned,
	})
	return abandoned, nil
}

// CloseAll cierra todo lo abierto (shutdown del proceso).
func (s *Service) CloseAll(ctx context.Context) int {
	items, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("registration list failed", map[string]any{"error": err})
		return 0
	}

	n := 0
	for _, sess := range items {
		if _, err := s.Close(ctx, sess.ID); err != nil {
			s.logger.Warn("registration close failed", map[string]any{
				"registration_id": sess.ID,
				"error":           err,
			})
			continue
		}
		n++
	}
	return n
}

func (s *Service) get(ctx context.Context, id string) (Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Session{}, ErrInvalidInput
	}
	sess, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}
