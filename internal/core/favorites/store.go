package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fridge2food/internal/pkg/common"

	"go.uber.org/zap"
)

// 提示訊息
const (
	titleAdded       = "Added to Favorites!"
	titleRemoved     = "Removed from Favorites"
	titleSaveFailed  = "Error"
	messageSaveError = "Could not save your favorites."
)

// Store 單一工作階段的收藏清單
// --------------------------------------------------
// 每次變更後整份寫回儲存；寫入失敗時保留記憶體中的變更並發出錯誤提示
type Store struct {
	mu       sync.Mutex
	key      string
	storage  Storage
	notifier Notifier
	items    []common.Recipe
	loaded   bool
}

// NewStore 創建收藏清單，key 為持久化紀錄的鍵
func NewStore(key string, storage Storage, notifier Notifier) *Store {
	if notifier == nil {
		notifier = NotifierFunc(func(common.Notice) {})
	}
	return &Store{
		key:      key,
		storage:  storage,
		notifier: notifier,
		items:    []common.Recipe{},
	}
}

// Key 持久化紀錄的鍵
func (s *Store) Key() string {
	return s.key
}

// Load 從儲存讀取收藏，讀取或解析失敗時從空清單開始
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)
}

// ensureLoaded 尚未讀取時才讀取
func (s *Store) ensureLoaded(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.load(ctx)
	}
}

func (s *Store) load(ctx context.Context) {
	s.loaded = true
	s.items = []common.Recipe{}

	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			common.LogError("Failed to read favorites", zap.String("key", s.key), zap.Error(err))
		}
		return
	}

	var items []common.Recipe
	if err := common.ParseJSON(raw, &items); err != nil {
		common.LogError("Failed to parse favorites", zap.String("key", s.key), zap.Error(err))
		return
	}
	if items != nil {
		s.items = items
	}
}

// Add 加入收藏，不檢查重複
func (s *Store) Add(ctx context.Context, recipe common.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(ctx, recipe)
}

func (s *Store) add(ctx context.Context, recipe common.Recipe) {
	s.items = append(s.items, recipe)
	err := s.persist(ctx)
	s.notifier.Notify(common.Notice{
		Variant:     common.NoticeDefault,
		Title:       titleAdded,
		Description: fmt.Sprintf("\"%s\" has been saved.", recipe.Title),
	})
	s.notifyFailure(err)
}

// Remove 依 id 移除收藏，id 不存在時不做任何事
func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(ctx, id)
}

func (s *Store) remove(ctx context.Context, id string) {
	var removed *common.Recipe
	kept := make([]common.Recipe, 0, len(s.items))
	for i := range s.items {
		if s.items[i].ID == id {
			if removed == nil {
				r := s.items[i]
				removed = &r
			}
			continue
		}
		kept = append(kept, s.items[i])
	}
	if removed == nil {
		return
	}

	s.items = kept
	err := s.persist(ctx)
	s.notifier.Notify(common.Notice{
		Variant:     common.NoticeDefault,
		Title:       titleRemoved,
		Description: fmt.Sprintf("\"%s\" has been removed.", removed.Title),
	})
	s.notifyFailure(err)
}

// IsFavorite 是否已收藏
func (s *Store) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contains(id)
}

func (s *Store) contains(id string) bool {
	for _, r := range s.items {
		if r.ID == id {
			return true
		}
	}
	return false
}

// Toggle 已收藏則移除，否則加入，回傳變更後是否收藏
func (s *Store) Toggle(ctx context.Context, recipe common.Recipe) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contains(recipe.ID) {
		s.remove(ctx, recipe.ID)
		return false
	}
	s.add(ctx, recipe)
	return true
}

// List 收藏清單副本，保持加入順序
func (s *Store) List() []common.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]common.Recipe, len(s.items))
	copy(out, s.items)
	return out
}

// Count 收藏數量
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// persist 整份寫回儲存，呼叫者需持有鎖
func (s *Store) persist(ctx context.Context) error {
	data, err := common.ToJSON(s.items)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		return err
	}
	return nil
}

func (s *Store) notifyFailure(err error) {
	if err == nil {
		return
	}
	common.LogError("Failed to save favorites",
		zap.String("key", s.key),
		zap.Error(common.ErrPersistenceFailed.Wrap(err)),
	)
	s.notifier.Notify(common.Notice{
		Variant:     common.NoticeDestructive,
		Title:       titleSaveFailed,
		Description: messageSaveError,
	})
}
