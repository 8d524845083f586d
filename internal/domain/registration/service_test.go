package registration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dog-registration/internal/domain/tracking"
	"dog-registration/internal/platform/telemetry"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test store (in-memory)
// -------------------------

type testStore struct {
	mu   sync.Mutex
	byID map[string]Session
}

func newTestStore() *testStore {
	return &testStore{byID: map[string]Session{}}
}

func (s *testStore) Create(ctx context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[sess.ID]; ok {
		return errors.New("store: already exists")
	}
	s.byID[sess.ID] = sess
	return nil
}

func (s *testStore) GetByID(ctx context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *testStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *testStore) List(ctx context.Context) ([]Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, 0, len(s.byID))
	for _, sess := range s.byID {
		out = append(out, sess)
	}
	return out, nil
}

func newTestRegistrationService(t *testing.T) (*Service, *tracking.Tracker, *telemetry.Metrics) {
	t.Helper()
	tr := newTestTracker(t)
	m := telemetry.New()
	return NewService(newTestStore(), tr, ServiceOptions{Metrics: m}), tr, m
}

// -------------------------
// Tests
// -------------------------

func TestService_OpenFiresPageViewOncePerOpen(t *testing.T) {
	svc, tr, m := newTestRegistrationService(t)
	ctx := context.Background()

	sess, err := svc.Open(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)

	events := tr.Events(ctx)
	require.Len(t, events, 1)
	assert.Equal(t, tracking.EventPageView, events[0].Type)
	assert.Equal(t, tracking.HomePageName, events[0].Properties[tracking.PropPageName])
	assert.Equal(t, "form_page", events[0].Properties["page_type"])

	// Interacciones sobre el mismo formulario no repiten el page_view.
	_, err = svc.Focus(ctx, sess.ID, FieldOwnerName)
	require.NoError(t, err)
	assert.Equal(t, 1, countType(tr.Events(ctx), tracking.EventPageView))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FormSessions))
}

func TestService_FullFlow(t *testing.T) {
	svc, tr, m := newTestRegistrationService(t)
	ctx := context.Background()

	sess, err := svc.Open(ctx)
	require.NoError(t, err)

	for f, v := range validForm() {
		_, err := svc.Change(ctx, sess.ID, f, v)
		require.NoError(t, err)
	}

	snap, err := svc.Submit(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSubmitted, snap.State)

	snap, err = svc.Reset(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StateEditing, snap.State)

	abandoned, err := svc.Close(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, abandoned)

	_, err = svc.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 0, countType(tr.Events(ctx), tracking.EventFormAbandon))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FormSessions))
}

func TestService_SubmitInvalidReturnsSnapshotAndError(t *testing.T) {
	svc, _, _ := newTestRegistrationService(t)
	ctx := context.Background()

	sess, err := svc.Open(ctx)
	require.NoError(t, err)
	_, err = svc.Change(ctx, sess.ID, FieldOwnerName, "A")
	require.NoError(t, err)

	snap, err := svc.Submit(ctx, sess.ID)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, StateEditing, snap.State)
	assert.Equal(t, "A", snap.Values[FieldOwnerName])
}

func TestService_UnknownRegistration(t *testing.T) {
	svc, _, _ := newTestRegistrationService(t)
	ctx := context.Background()

	_, err := svc.Change(ctx, "nope", FieldDogName, "x")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Close(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_CloseAllAbandonsOpenForms(t *testing.T) {
	svc, tr, _ := newTestRegistrationService(t)
	ctx := context.Background()

	touched, err := svc.Open(ctx)
	require.NoError(t, err)
	_, err = svc.Change(ctx, touched.ID, FieldDogName, "Milo")
	require.NoError(t, err)

	_, err = svc.Open(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, svc.CloseAll(ctx))

	events := tr.Events(ctx)
	require.Equal(t, 1, countType(events, tracking.EventFormAbandon))
	abandon := events[len(events)-1]
	assert.Equal(t, []string{"dog_name"}, abandon.Properties["completed_fields"])
	assert.Equal(t, 20, abandon.Properties["completion_percentage"])
}
