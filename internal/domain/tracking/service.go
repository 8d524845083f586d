package tracking

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"dog-registration/internal/platform/logger"
	"dog-registration/internal/platform/telemetry"

	"github.com/google/uuid"
)

const sessionSuffixLen = 9

// Dispatcher recibe cada evento ya registrado para enviarlo fuera del proceso.
// Enqueue no debe bloquear ni fallar hacia el caller.
type Dispatcher interface {
	Enqueue(e Event) bool
}

type Options struct {
	Logger     logger.Logger
	Metrics    *telemetry.Metrics
	Dispatcher Dispatcher

	// Environment por defecto cuando el ctx no trae uno.
	Environment Environment
}

// Service es el log de interacciones del proceso. Se construye una vez en main
// y se pasa por referencia; el session id no cambia durante su vida.
type Service struct {
	mu sync.Mutex

	log        Log
	sessionID  string
	env        Environment
	logger     logger.Logger
	metrics    *telemetry.Metrics
	dispatcher Dispatcher

	now func() time.Time
}

func NewService(log Log, opts Options) *Service {
	lg := opts.Logger
	if lg == nil {
		lg = logger.NewNop()
	}
	env := opts.Environment
	if env == nil {
		env = StaticEnvironment{}
	}

	s := &Service{
		log:        log,
		env:        env,
		logger:     lg.With(map[string]any{"module": "tracking"}),
		metrics:    opts.Metrics,
		dispatcher: opts.Dispatcher,
		now:        time.Now,
	}
	s.sessionID = newSessionID(s.now())
	return s
}

// newSessionID arma "session_<unix-millis>_<9 chars base36>".
func newSessionID(now time.Time) string {
	u := uuid.New()
	suffix := strconv.FormatUint(binary.BigEndian.Uint64(u[8:]), 36)
	if len(suffix) < sessionSuffixLen {
		suffix = strings.Repeat("0", sessionSuffixLen-len(suffix)) + suffix
	}
	suffix = suffix[len(suffix)-sessionSuffixLen:]
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), suffix)
}

// Track registra un evento. Nunca falla hacia el caller: los errores del log
// quedan en el logger.
func (s *Service) Track(ctx context.Context, eventType EventType, props Properties) {
	env := s.environment(ctx)

	merged := make(Properties, len(props)+2)
	for k, v := range props {
		merged[k] = cloneValue(v)
	}
	merged[PropURL] = env.PageURL()
	merged[PropUserAgent] = env.UserAgent()

	// Sello + append + enqueue bajo el mismo lock: el orden del log es el orden
	// de los timestamps y el del dispatcher.
	s.mu.Lock()
	e := Event{
		Type:       eventType,
		Properties: merged,
		Timestamp:  s.now(),
		SessionID:  s.sessionID,
	}
	err := s.log.Append(ctx, e)
	if err == nil && s.dispatcher != nil {
		s.dispatcher.Enqueue(e.Clone())
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("tracking append failed", map[string]any{
			"event": string(eventType),
			"error": err,
		})
		return
	}

	s.metrics.ObserveTracked(string(eventType))
	s.logger.Debug("[Tracking]", map[string]any{
		"event":      string(e.Type),
		"session_id": e.SessionID,
		"properties": map[string]any(e.Properties),
		"timestamp":  e.Timestamp,
	})
}

// Events devuelve una copia de todos los eventos en orden de registro.
func (s *Service) Events(ctx context.Context) []Event {
	return s.List(ctx, ListFilter{})
}

func (s *Service) List(ctx context.Context, filter ListFilter) []Event {
	items, err := s.log.List(ctx, filter)
	if err != nil {
		s.logger.Error("tracking list failed", map[string]any{"error": err})
		return []Event{}
	}
	return cloneEvents(items)
}

func (s *Service) SessionID() string {
	return s.sessionID
}

func (s *Service) environment(ctx context.Context) Environment {
	if env, ok := EnvironmentFrom(ctx); ok {
		return env
	}
	return s.env
}
