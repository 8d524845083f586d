package memory

import (
	"context"
	"testing"
	"time"

	"dog-registration/internal/domain/registration"
	"dog-registration/internal/domain/tracking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLog_AppendListOrderAndCopies(t *testing.T) {
	ctx := context.Background()
	log := NewEventLog()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	in := tracking.Event{
		Type:       tracking.EventFormAbandon,
		Properties: tracking.Properties{"completed_fields": []string{"dog_name"}},
		Timestamp:  base,
	}
	require.NoError(t, log.Append(ctx, in))
	require.NoError(t, log.Append(ctx, tracking.Event{Type: tracking.EventPageView, Timestamp: base.Add(time.Second)}))
	require.NoError(t, log.Append(ctx, tracking.Event{Type: tracking.EventFormStart, Timestamp: base.Add(2 * time.Second)}))

	// Mutar el evento original no afecta lo guardado.
	in.Properties["completed_fields"].([]string)[0] = "x"

	all, err := log.List(ctx, tracking.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, tracking.EventFormAbandon, all[0].Type)
	assert.Equal(t, []string{"dog_name"}, all[0].Properties["completed_fields"])

	all[0].Properties["completed_fields"].([]string)[0] = "y"
	again, err := log.List(ctx, tracking.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"dog_name"}, again[0].Properties["completed_fields"])

	n, err := log.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestEventLog_Filter(t *testing.T) {
	ctx := context.Background()
	log := NewEventLog()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	types := []tracking.EventType{tracking.EventPageView, tracking.EventFormStart, tracking.EventFormFieldFocus, tracking.EventFormStart}
	for i, typ := range types {
		require.NoError(t, log.Append(ctx, tracking.Event{Type: typ, Timestamp: base.Add(time.Duration(i) * time.Minute)}))
	}

	starts, err := log.List(ctx, tracking.ListFilter{Types: []tracking.EventType{tracking.EventFormStart}})
	require.NoError(t, err)
	assert.Len(t, starts, 2)

	since := base.Add(2 * time.Minute)
	recent, err := log.List(ctx, tracking.ListFilter{Since: &since})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, tracking.EventFormFieldFocus, recent[0].Type)

	last, err := log.List(ctx, tracking.ListFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, base.Add(3*time.Minute), last[0].Timestamp)
}

func TestSessionRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepo()

	w := registration.NewWizard(nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, registration.Session{ID: "b", OpenedAt: base.Add(time.Minute), Wizard: w}))
	require.NoError(t, repo.Create(ctx, registration.Session{ID: "a", OpenedAt: base, Wizard: w}))
	assert.Error(t, repo.Create(ctx, registration.Session{ID: "a", Wizard: w}))
	assert.Error(t, repo.Create(ctx, registration.Session{ID: " ", Wizard: w}))
	assert.Error(t, repo.Create(ctx, registration.Session{ID: "c"}))

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, w, got.Wizard)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)

	require.NoError(t, repo.Delete(ctx, "a"))
	_, err = repo.GetByID(ctx, "a")
	assert.ErrorIs(t, err, registration.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "a"), registration.ErrNotFound)
}
