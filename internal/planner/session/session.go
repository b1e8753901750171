package session

import (
	"sync"
	"sync/atomic"
	"time"

	"table-planner/internal/planner/models"
	"table-planner/internal/planner/scene"

	"github.com/google/uuid"
)

// ============================================================
// Editor Session
// ============================================================

// noticeLimit: сколько последних уведомлений хранит сессия.
const noticeLimit = 20

// Session: открытый редактор: сцена, очередь уведомлений и флаг сохранения.
type Session struct {
	ID    string
	Scene *scene.Scene

	mu       sync.Mutex
	notices  []models.Notice
	lastSeen time.Time

	saving atomic.Bool
	closed atomic.Bool
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:       id,
		Scene:    scene.New(),
		lastSeen: now,
	}
}

// Notify складывает уведомление; после Close уведомления отбрасываются.
func (s *Session) Notify(n models.Notice) {
	if s.closed.Load() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.notices = append(s.notices, n)
	if len(s.notices) > noticeLimit {
		s.notices = s.notices[len(s.notices)-noticeLimit:]
	}
}

// Drain забирает накопленные уведомления.
func (s *Session) Drain() []models.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.notices
	s.notices = nil
	if out == nil {
		out = []models.Notice{}
	}
	return out
}

// BeginSave захватывает право на сохранение. false: сохранение уже идёт.
func (s *Session) BeginSave() bool {
	return s.saving.CompareAndSwap(false, true)
}

func (s *Session) EndSave() {
	s.saving.Store(false)
}

func (s *Session) Saving() bool {
	return s.saving.Load()
}

func (s *Session) Closed() bool {
	return s.closed.Load()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// ============================================================
// Session Manager
// ============================================================

type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Open создаёт новую сессию с пустой сценой.
func (m *Manager) Open() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := newSession(uuid.NewString(), m.now())
	m.sessions[s.ID] = s
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()

	if ok {
		s.touch(m.now())
	}
	return s, ok
}

// Close убирает сессию. Идущее сохранение завершится, но его уведомления будут отброшены.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.closed.Store(true)
	}
	return ok
}

// Sweep закрывает сессии, простаивающие дольше maxIdle, кроме сохраняющихся.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	var stale []string
	for id, s := range m.sessions {
		if !s.Saving() && s.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()

	for _, id := range stale {
		m.Close(id)
	}
	return len(stale)
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
