package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"fridge2food/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyStorage 記錄寫入次數，可模擬讀寫失敗
type spyStorage struct {
	*MemoryStorage
	mu       sync.Mutex
	sets     int
	failSet  bool
	failGet  bool
	lastSave string
}

func newSpyStorage() *spyStorage {
	return &spyStorage{MemoryStorage: NewMemoryStorage()}
}

func (s *spyStorage) Get(ctx context.Context, key string) (string, error) {
	if s.failGet {
		return "", errors.New("disk unavailable")
	}
	return s.MemoryStorage.Get(ctx, key)
}

func (s *spyStorage) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.sets++
	s.mu.Unlock()
	if s.failSet {
		return errors.New("quota exceeded")
	}
	s.lastSave = value
	return s.MemoryStorage.Set(ctx, key, value)
}

func (s *spyStorage) setCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

// recorder 記錄收到的提示
type recorder struct {
	mu      sync.Mutex
	notices []common.Notice
}

func (r *recorder) Notify(n common.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) all() []common.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]common.Notice(nil), r.notices...)
}

func testRecipe(id, title string) common.Recipe {
	return common.NewRecipe(id, common.GeneratedRecipe{
		Title:       title,
		Ingredients: []common.Ingredient{{Name: "egg", Quantity: "100 g"}},
		Steps:       []string{"Boil the egg."},
	})
}

func TestStore_AddNotifies(t *testing.T) {
	storage := newSpyStorage()
	rec := &recorder{}
	s := NewStore("fridge2food-favorites:s1", storage, rec)
	s.Load(context.Background())

	s.Add(context.Background(), testRecipe("r1", "Boiled Egg"))

	assert.True(t, s.IsFavorite("r1"))
	assert.Equal(t, 1, storage.setCount())
	require.Len(t, rec.all(), 1)
	assert.Equal(t, common.Notice{
		Variant:     common.NoticeDefault,
		Title:       "Added to Favorites!",
		Description: `"Boiled Egg" has been saved.`,
	}, rec.all()[0])
}

func TestStore_ToggleTwiceRestoresMembership(t *testing.T) {
	storage := newSpyStorage()
	rec := &recorder{}
	s := NewStore("k", storage, rec)
	s.Load(context.Background())
	r := testRecipe("r1", "Omelette")

	assert.True(t, s.Toggle(context.Background(), r))
	assert.True(t, s.IsFavorite("r1"))
	assert.False(t, s.Toggle(context.Background(), r))
	assert.False(t, s.IsFavorite("r1"))

	assert.Empty(t, s.List())
	assert.Equal(t, "[]", storage.lastSave)

	notices := rec.all()
	require.Len(t, notices, 2)
	assert.Equal(t, "Removed from Favorites", notices[1].Title)
	assert.Equal(t, `"Omelette" has been removed.`, notices[1].Description)
}

func TestStore_RemoveUnknownDoesNothing(t *testing.T) {
	storage := newSpyStorage()
	rec := &recorder{}
	s := NewStore("k", storage, rec)
	s.Load(context.Background())
	s.Add(context.Background(), testRecipe("r1", "Soup"))

	before := storage.setCount()
	s.Remove(context.Background(), "missing")

	assert.Equal(t, before, storage.setCount())
	assert.Len(t, rec.all(), 1)
	assert.Equal(t, 1, s.Count())
}

func TestStore_PersistedRecordRoundTrips(t *testing.T) {
	storage := NewMemoryStorage()
	s := NewStore("k", storage, nil)
	s.Load(context.Background())
	s.Add(context.Background(), testRecipe("a", "First"))
	s.Add(context.Background(), testRecipe("b", "Second"))

	reopened := NewStore("k", storage, nil)
	reopened.Load(context.Background())

	assert.Equal(t, s.List(), reopened.List())
	assert.Equal(t, "First", reopened.List()[0].Title)
}

func TestStore_LoadFailsSoft(t *testing.T) {
	t.Run("missing record", func(t *testing.T) {
		s := NewStore("k", NewMemoryStorage(), nil)
		s.Load(context.Background())
		assert.NotNil(t, s.List())
		assert.Zero(t, s.Count())
	})

	t.Run("corrupt record", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Set(context.Background(), "k", "{not json"))
		s := NewStore("k", storage, nil)
		s.Load(context.Background())
		assert.Zero(t, s.Count())
	})

	t.Run("wrong shape", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Set(context.Background(), "k", `{"id": "x"}`))
		s := NewStore("k", storage, nil)
		s.Load(context.Background())
		assert.Zero(t, s.Count())
	})

	t.Run("read error", func(t *testing.T) {
		storage := newSpyStorage()
		storage.failGet = true
		s := NewStore("k", storage, nil)
		s.Load(context.Background())
		assert.Zero(t, s.Count())
	})
}

func TestStore_PersistFailureKeepsChange(t *testing.T) {
	storage := newSpyStorage()
	storage.failSet = true
	rec := &recorder{}
	s := NewStore("k", storage, rec)
	s.Load(context.Background())

	s.Add(context.Background(), testRecipe("r1", "Curry"))

	assert.True(t, s.IsFavorite("r1"))
	notices := rec.all()
	require.Len(t, notices, 2)
	assert.Equal(t, common.Notice{
		Variant:     common.NoticeDestructive,
		Title:       "Error",
		Description: "Could not save your favorites.",
	}, notices[1])
}

func TestStore_DuplicatesAllowed(t *testing.T) {
	s := NewStore("k", NewMemoryStorage(), nil)
	s.Load(context.Background())
	r := testRecipe("r1", "Dal")

	s.Add(context.Background(), r)
	s.Add(context.Background(), r)
	assert.Equal(t, 2, s.Count())

	s.Remove(context.Background(), "r1")
	assert.Zero(t, s.Count())
}

func TestStore_ConcurrentToggles(t *testing.T) {
	storage := newSpyStorage()
	s := NewStore("k", storage, nil)
	s.Load(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Toggle(context.Background(), testRecipe(fmt.Sprintf("r%d", i), "Dish"))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Count())
	assert.Equal(t, 50, storage.setCount())

	reopened := NewStore("k", storage, nil)
	reopened.Load(context.Background())
	assert.Equal(t, 50, reopened.Count())
}
