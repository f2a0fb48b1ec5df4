package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/code-merge/accompany/domains/onboarding/be/forms"
)

func TestStoreCreateAndGet(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)
	id := store.Create()

	state, ok := store.Get(id)
	require.True(t, ok)
	require.Equal(t, State{}, state)
}

func TestStoreGetUnknownSession(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)

	_, ok := store.Get(uuid.New())
	require.False(t, ok)
}

func TestStoreUpdateReturnsSnapshot(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)
	id := store.Create()

	got := store.Update(id, func(s *State) {
		s.LicenceAccepted = true
		s.DBType = DBTypeCustom
	})
	require.True(t, got.LicenceAccepted)
	require.Equal(t, DBTypeCustom, got.DBType)

	state, ok := store.Get(id)
	require.True(t, ok)
	require.Equal(t, got, state)
}

func TestStoreUpdateRecreatesMissingSession(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)
	id := uuid.New()

	got := store.Update(id, func(s *State) { s.LicenceAccepted = true })
	require.True(t, got.LicenceAccepted)

	state, ok := store.Get(id)
	require.True(t, ok)
	require.True(t, state.LicenceAccepted)
}

func TestStoreExpiresEntries(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)
	current := time.Now()
	store.now = func() time.Time { return current }

	id := store.Create()
	store.Update(id, func(s *State) { s.LicenceAccepted = true })

	current = current.Add(2 * time.Hour)

	_, ok := store.Get(id)
	require.False(t, ok)

	// A later update starts over from an empty state.
	got := store.Update(id, func(s *State) {})
	require.False(t, got.LicenceAccepted)
}

func TestStoreSnapshotsAreIsolated(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)
	id := store.Create()
	store.Update(id, func(s *State) {
		s.StandardErrors = forms.Errors{forms.FieldDBName: "nope"}
		s.SystemForm.Modules = []string{"CRM"}
	})

	first, ok := store.Get(id)
	require.True(t, ok)
	first.StandardErrors[forms.FieldDBName] = "changed"
	first.SystemForm.Modules[0] = "HR"

	second, ok := store.Get(id)
	require.True(t, ok)
	require.Equal(t, "nope", second.StandardErrors[forms.FieldDBName])
	require.Equal(t, []string{"CRM"}, second.SystemForm.Modules)
}

func TestStoreTouchExtendsLifetime(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)
	current := time.Now()
	store.now = func() time.Time { return current }

	id := store.Create()

	current = current.Add(40 * time.Minute)
	_, ok := store.Get(id)
	require.True(t, ok)

	// 90 minutes after creation but only 50 after the last touch.
	current = current.Add(50 * time.Minute)
	_, ok = store.Get(id)
	require.True(t, ok)
}
