package tracking

import (
	"context"
	"sync"
	"time"

	"dog-registration/internal/platform/logger"
	"dog-registration/internal/platform/telemetry"
)

const (
	defaultQueueSize   = 256
	defaultSendTimeout = 5 * time.Second
)

// Sink entrega un evento a un servicio externo de analytics.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// SinkFunc permite usar una función como Sink.
type SinkFunc func(ctx context.Context, e Event) error

func (f SinkFunc) Send(ctx context.Context, e Event) error { return f(ctx, e) }

type DispatcherOptions struct {
	QueueSize   int
	SendTimeout time.Duration
	Logger      logger.Logger
	Metrics     *telemetry.Metrics
}

// AsyncDispatcher envía eventos al Sink en una goroutine propia.
// Fire-and-forget: cada evento se intenta una vez; si la cola está llena se
// descarta. Los fallos solo quedan en logs y métricas.
type AsyncDispatcher struct {
	sink    Sink
	queue   chan Event
	timeout time.Duration
	logger  logger.Logger
	metrics *telemetry.Metrics

	mu     sync.RWMutex
	closed bool

	baseCtx   context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	done      chan struct{}
}

func NewAsyncDispatcher(sink Sink, opts DispatcherOptions) *AsyncDispatcher {
	size := opts.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	timeout := opts.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	lg := opts.Logger
	if lg == nil {
		lg = logger.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &AsyncDispatcher{
		sink:    sink,
		queue:   make(chan Event, size),
		timeout: timeout,
		logger:  lg.With(map[string]any{"module": "tracking.dispatcher"}),
		metrics: opts.Metrics,
		baseCtx: ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go d.run()
	return d
}

// Enqueue no bloquea. Devuelve false si el evento se descartó.
func (d *AsyncDispatcher) Enqueue(e Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.metrics.ObserveDispatch(telemetry.DispatchDropped)
		return false
	}

	select {
	case d.queue <- e:
		return true
	default:
		d.metrics.ObserveDispatch(telemetry.DispatchDropped)
		d.logger.Warn("analytics queue full, dropping event", map[string]any{
			"event":      string(e.Type),
			"session_id": e.SessionID,
		})
		return false
	}
}

// Close deja de aceptar eventos y espera a que se vacíe la cola.
// Si ctx vence antes, cancela el envío en curso y devuelve ctx.Err().
func (d *AsyncDispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})

	select {
	case <-d.done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-d.done
		return ctx.Err()
	}
}

func (d *AsyncDispatcher) run() {
	defer close(d.done)

	for e := range d.queue {
		if d.baseCtx.Err() != nil {
			d.metrics.ObserveDispatch(telemetry.DispatchDropped)
			continue
		}
		d.deliver(e)
	}
}

func (d *AsyncDispatcher) deliver(e Event) {
	ctx, cancel := context.WithTimeout(d.baseCtx, d.timeout)
	defer cancel()

	// Un sink con panic no puede tumbar la goroutine.
	defer func() {
		if r := recover(); r != nil {
			d.metrics.ObserveDispatch(telemetry.DispatchFailed)
			d.logger.Error("analytics sink panicked", map[string]any{
				"event": string(e.Type),
				"panic": r,
			})
		}
	}()

	if err := d.sink.Send(ctx, e); err != nil {
		d.metrics.ObserveDispatch(telemetry.DispatchFailed)
		d.logger.Warn("analytics dispatch failed", map[string]any{
			"event":      string(e.Type),
			"session_id": e.SessionID,
			"error":      err,
		})
		return
	}

	d.metrics.ObserveDispatch(telemetry.DispatchDelivered)
}
