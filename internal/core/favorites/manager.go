package favorites

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"fridge2food/internal/infrastructure/config"
	"fridge2food/internal/pkg/common"

	"go.uber.org/zap"
)

// Session 一個工作階段的收藏清單與提示佇列
type Session struct {
	ID     string
	Store  *Store
	Toasts *Toaster

	lastUsed time.Time
}

// Manager 工作階段管理器
// --------------------------------------------------
// 第一次使用時建立並讀取收藏清單，閒置超過 session_ttl 的工作階段會被釋放
type Manager struct {
	storage Storage
	config  config.FavoritesConfig

	mu       sync.Mutex
	sessions map[string]*Session

	done chan struct{}
	once sync.Once
}

// NewManager 創建工作階段管理器，session_ttl 大於 0 時啟動清理協程
func NewManager(storage Storage, cfg config.FavoritesConfig) *Manager {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "fridge2food-favorites"
	}
	m := &Manager{
		storage:  storage,
		config:   cfg,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}

	if cfg.SessionTTL > 0 {
		go m.startCleanup()
	}

	common.LogInfo("Favorites manager initialized",
		zap.String("backend", cfg.Backend),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Int("toast_limit", cfg.ToastLimit),
	)
	return m
}

// RecordKey 工作階段對應的持久化鍵
func (m *Manager) RecordKey(sessionID string) string {
	return m.config.KeyPrefix + ":" + sessionID
}

// Open 取得工作階段，第一次使用時讀取收藏
func (m *Manager) Open(ctx context.Context, sessionID string) (*Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}

	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		toaster := NewToaster(sessionID, m.config.ToastLimit)
		sess = &Session{
			ID:     sessionID,
			Store:  NewStore(m.RecordKey(sessionID), m.storage, toaster),
			Toasts: toaster,
		}
		m.sessions[sessionID] = sess
	}
	sess.lastUsed = time.Now()
	m.mu.Unlock()

	sess.Store.ensureLoaded(ctx)
	return sess, nil
}

// Close 釋放工作階段，持久化資料不受影響
func (m *Manager) Close(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// Len 目前的工作階段數量
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// GetStats 工作階段統計
func (m *Manager) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"backend":  m.config.Backend,
		"sessions": m.Len(),
	}
}

// Ping 檢查儲存後端
func (m *Manager) Ping(ctx context.Context) error {
	return m.storage.Ping(ctx)
}

// Sweep 釋放在 now 之前閒置超過 session_ttl 的工作階段
func (m *Manager) Sweep(now time.Time) int {
	if m.config.SessionTTL <= 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for id, sess := range m.sessions {
		if now.Sub(sess.lastUsed) > m.config.SessionTTL {
			delete(m.sessions, id)
			count++
		}
	}
	if count > 0 {
		common.LogDebug("Released idle favorites sessions",
			zap.Int("count", count),
			zap.Int("remaining", len(m.sessions)),
		)
	}
	return count
}

// startCleanup 定期釋放閒置的工作階段
func (m *Manager) startCleanup() {
	interval := m.config.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			m.Sweep(now)
		case <-m.done:
			return
		}
	}
}

// Shutdown 停止清理協程並關閉儲存
func (m *Manager) Shutdown() error {
	m.once.Do(func() { close(m.done) })

	m.mu.Lock()
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	return m.storage.Close()
}
