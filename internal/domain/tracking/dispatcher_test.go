package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dog-registration/internal/platform/logger"
	"dog-registration/internal/platform/telemetry"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type collectingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *collectingSink) Send(ctx context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *collectingSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func TestAsyncDispatcher_DeliversInOrderAndDrainsOnClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	sink := &collectingSink{}
	m := telemetry.New()
	d := NewAsyncDispatcher(sink, DispatcherOptions{QueueSize: 16, Metrics: m})

	for _, typ := range []EventType{EventPageView, EventFormStart, EventFormAbandon} {
		require.True(t, d.Enqueue(Event{Type: typ}))
	}

	require.NoError(t, d.Close(context.Background()))

	got := sink.snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, EventPageView, got[0].Type)
	assert.Equal(t, EventFormStart, got[1].Type)
	assert.Equal(t, EventFormAbandon, got[2].Type)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.EventsDispatch.WithLabelValues(telemetry.DispatchDelivered)))
}

func TestAsyncDispatcher_SinkFailureIsLoggedNotRaised(t *testing.T) {
	defer goleak.VerifyNone(t)

	core, logs := observer.New(zapcore.DebugLevel)
	m := telemetry.New()
	d := NewAsyncDispatcher(SinkFunc(func(ctx context.Context, e Event) error {
		return errors.New("upstream 503")
	}), DispatcherOptions{Logger: logger.NewFromZap(zap.New(core)), Metrics: m})

	assert.True(t, d.Enqueue(Event{Type: EventFormStart, SessionID: "session_1_abc"}))
	require.NoError(t, d.Close(context.Background()))

	failed := logs.FilterMessage("analytics dispatch failed")
	require.Equal(t, 1, failed.Len())
	assert.Equal(t, "form_start", failed.All()[0].ContextMap()["event"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsDispatch.WithLabelValues(telemetry.DispatchFailed)))
}

func TestAsyncDispatcher_SinkPanicIsContained(t *testing.T) {
	defer goleak.VerifyNone(t)

	calls := 0
	d := NewAsyncDispatcher(SinkFunc(func(ctx context.Context, e Event) error {
		calls++
		if calls == 1 {
			panic("bad sink")
		}
		return nil
	}), DispatcherOptions{})

	d.Enqueue(Event{Type: EventFormStart})
	d.Enqueue(Event{Type: EventFormAbandon})
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, 2, calls, "worker keeps running after a panic")
}

func TestAsyncDispatcher_FullQueueDropsWithoutBlocking(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	m := telemetry.New()
	d := NewAsyncDispatcher(SinkFunc(func(ctx context.Context, e Event) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	}), DispatcherOptions{QueueSize: 1, Metrics: m})

	require.True(t, d.Enqueue(Event{Type: EventPageView}))
	<-started // el worker está ocupado con el primero

	require.True(t, d.Enqueue(Event{Type: EventFormStart}))

	done := make(chan bool, 1)
	go func() { done <- d.Enqueue(Event{Type: EventFormAbandon}) }()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(release)
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsDispatch.WithLabelValues(telemetry.DispatchDropped)))
}

func TestAsyncDispatcher_EnqueueAfterCloseIsRejected(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewAsyncDispatcher(&collectingSink{}, DispatcherOptions{})
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()), "Close is idempotent")

	assert.False(t, d.Enqueue(Event{Type: EventFormStart}))
}

func TestAsyncDispatcher_CloseDeadlineCancelsInFlightSend(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewAsyncDispatcher(SinkFunc(func(ctx context.Context, e Event) error {
		<-ctx.Done()
		return ctx.Err()
	}), DispatcherOptions{SendTimeout: time.Minute})

	d.Enqueue(Event{Type: EventFormStart})
	d.Enqueue(Event{Type: EventFormAbandon})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := d.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestService_WithAsyncDispatcher_TrackNeverBlocks(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	d := NewAsyncDispatcher(SinkFunc(func(ctx context.Context, e Event) error {
		<-release
		return nil
	}), DispatcherOptions{QueueSize: 1})
	svc := NewService(&testLog{}, Options{Dispatcher: d})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			svc.Track(context.Background(), EventButtonClick, nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Track blocked on a slow sink")
	}

	assert.Len(t, svc.Events(context.Background()), 20)

	close(release)
	require.NoError(t, d.Close(context.Background()))
}
