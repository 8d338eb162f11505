package favorites

import (
	"context"
	"testing"
	"time"

	"fridge2food/internal/infrastructure/config"
	"fridge2food/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(storage Storage) *Manager {
	return NewManager(storage, config.FavoritesConfig{
		Backend:    config.BackendMemory,
		KeyPrefix:  "fridge2food-favorites",
		SessionTTL: time.Minute,
		ToastLimit: 1,
	})
}

func TestManager_OpenReusesSession(t *testing.T) {
	m := newTestManager(NewMemoryStorage())
	defer m.Shutdown()

	a, err := m.Open(context.Background(), "s1")
	require.NoError(t, err)
	b, err := m.Open(context.Background(), "s1")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, "fridge2food-favorites:s1", a.Store.Key())
	assert.Equal(t, 1, m.Len())

	_, err = m.Open(context.Background(), "  ")
	assert.Error(t, err)
}

func TestManager_LoadsPersistedFavorites(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(context.Background(), "fridge2food-favorites:s1",
		`[{"id":"r1","title":"Soup","ingredients":[{"name":"leek","quantity":"200 g"}],"steps":["Simmer."]}]`))

	m := newTestManager(storage)
	defer m.Shutdown()

	sess, err := m.Open(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, sess.Store.IsFavorite("r1"))

	other, err := m.Open(context.Background(), "s2")
	require.NoError(t, err)
	assert.Zero(t, other.Store.Count())
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m := newTestManager(NewMemoryStorage())
	defer m.Shutdown()

	a, _ := m.Open(context.Background(), "a")
	b, _ := m.Open(context.Background(), "b")

	a.Store.Toggle(context.Background(), testRecipe("r1", "Pasta"))

	assert.True(t, a.Store.IsFavorite("r1"))
	assert.False(t, b.Store.IsFavorite("r1"))
	assert.Equal(t, 1, a.Toasts.Pending())
	assert.Zero(t, b.Toasts.Pending())
}

func TestManager_SweepAndClose(t *testing.T) {
	storage := NewMemoryStorage()
	m := newTestManager(storage)
	defer m.Shutdown()

	sess, _ := m.Open(context.Background(), "s1")
	sess.Store.Toggle(context.Background(), testRecipe("r1", "Rice"))
	_, _ = m.Open(context.Background(), "s2")

	assert.Zero(t, m.Sweep(time.Now()))
	assert.Equal(t, 2, m.Sweep(time.Now().Add(2*time.Minute)))
	assert.Zero(t, m.Len())

	// 釋放後重新開啟仍可讀回持久化資料
	again, err := m.Open(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotSame(t, sess, again)
	assert.True(t, again.Store.IsFavorite("r1"))

	m.Close("s1")
	assert.Zero(t, m.Len())
}

func TestToaster_KeepsLatest(t *testing.T) {
	toaster := NewToaster("s1", 1)
	toaster.Notify(common.Notice{Title: "first"})
	toaster.Notify(common.Notice{Title: "second"})

	notices := toaster.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, "second", notices[0].Title)
	assert.Equal(t, common.NoticeDefault, notices[0].Variant)

	assert.Empty(t, toaster.Drain())
	assert.NotNil(t, toaster.Drain())
}

func TestToaster_PersistFailureVisibleWithLimitOne(t *testing.T) {
	storage := newSpyStorage()
	storage.failSet = true
	m := newTestManager(storage)
	defer m.Shutdown()

	sess, err := m.Open(context.Background(), "s1")
	require.NoError(t, err)
	sess.Store.Toggle(context.Background(), testRecipe("r1", "Stew"))

	notices := sess.Toasts.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, common.NoticeDestructive, notices[0].Variant)
	assert.True(t, sess.Store.IsFavorite("r1"))
}
