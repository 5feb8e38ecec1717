package chat

import (
	"sync"
	"time"

	"github.com/codeWithUali/laradoc/internal/config"
)

// Session limits of a Manager
const (
	DefaultMaxSessions = 256
	DefaultSessionTTL  = time.Hour
)

// Manager keeps sessions by id for clients that send several messages.
// Sessions idle for longer than the TTL are dropped, and the least recently
// used one is dropped when the limit is reached.
type Manager struct {
	chatter Chatter
	source  DocumentationSource
	cfg     config.ChatbotConfig

	maxSessions int
	ttl         time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*managedSession
}

type managedSession struct {
	session  *Session
	lastUsed time.Time
}

// NewManager creates an empty session registry
func NewManager(chatter Chatter, source DocumentationSource, cfg config.ChatbotConfig) *Manager {
	return &Manager{
		chatter:     chatter,
		source:      source,
		cfg:         cfg,
		maxSessions: DefaultMaxSessions,
		ttl:         DefaultSessionTTL,
		now:         time.Now,
		sessions:    make(map[string]*managedSession),
	}
}

// Session returns the registered session with id. For an empty or unknown
// id a new session is returned that is only kept once passed to Save.
func (m *Manager) Session(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expire()
	if ms, ok := m.sessions[id]; ok {
		ms.lastUsed = m.now()
		return ms.session
	}
	return NewSession(m.chatter, m.source, m.cfg)
}

// Save registers s so later calls can continue it
func (m *Manager) Save(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expire()
	if ms, ok := m.sessions[s.ID]; ok {
		ms.lastUsed = m.now()
		return
	}

	if len(m.sessions) >= m.maxSessions {
		m.evictOldest()
	}
	m.sessions[s.ID] = &managedSession{session: s, lastUsed: m.now()}
}

// Delete forgets a session
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of open sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// expire drops idle sessions. m.mu must be held.
func (m *Manager) expire() {
	if m.ttl <= 0 {
		return
	}
	cutoff := m.now().Add(-m.ttl)
	for id, ms := range m.sessions {
		if ms.lastUsed.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}

// evictOldest drops the least recently used session. m.mu must be held.
func (m *Manager) evictOldest() {
	var (
		oldest string
		at     time.Time
	)
	for id, ms := range m.sessions {
		if oldest == "" || ms.lastUsed.Before(at) {
			oldest, at = id, ms.lastUsed
		}
	}
	delete(m.sessions, oldest)
}
