package favorites

import (
	"sync"

	"fridge2food/internal/pkg/common"
)

// Notifier 接收使用者可見的提示訊息
type Notifier interface {
	Notify(n common.Notice)
}

// NotifierFunc 將函式轉為 Notifier
type NotifierFunc func(n common.Notice)

// Notify 實作 Notifier
func (f NotifierFunc) Notify(n common.Notice) {
	f(n)
}

// Toaster 單一工作階段的提示佇列，只保留最新的 limit 則
type Toaster struct {
	mu        sync.Mutex
	sessionID string
	limit     int
	pending   []common.Notice
}

// NewToaster 創建提示佇列，limit 小於 1 時視為 1
func NewToaster(sessionID string, limit int) *Toaster {
	if limit < 1 {
		limit = 1
	}
	return &Toaster{sessionID: sessionID, limit: limit}
}

// Notify 加入提示，超過上限時捨棄最舊的
func (t *Toaster) Notify(n common.Notice) {
	if n.Variant == "" {
		n.Variant = common.NoticeDefault
	}
	common.LogNotice(t.sessionID, n)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, n)
	if over := len(t.pending) - t.limit; over > 0 {
		t.pending = append([]common.Notice(nil), t.pending[over:]...)
	}
}

// Drain 取出並清空所有待顯示提示
func (t *Toaster) Drain() []common.Notice {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.pending
	t.pending = nil
	if out == nil {
		out = []common.Notice{}
	}
	return out
}

// Pending 待顯示數量
func (t *Toaster) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
