package handlers

import (
	"sync"

	"table-planner/internal/planner/models"
)

// noticeBuffer собирает уведомления одного запроса.
type noticeBuffer struct {
	mu      sync.Mutex
	notices []models.Notice
}

func (b *noticeBuffer) Notify(n models.Notice) {
	b.mu.Lock()
	b.notices = append(b.notices, n)
	b.mu.Unlock()
}

func (b *noticeBuffer) List() []models.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.notices == nil {
		return []models.Notice{}
	}
	return append([]models.Notice(nil), b.notices...)
}
