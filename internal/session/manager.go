package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xelaris/storefront/internal/domain/checkout"
	"github.com/xelaris/storefront/internal/domain/product"
)

// Manager owns every live session. Sessions are keyed by an opaque UUID the
// client carries in a header; idle sessions are evicted after a TTL.
type Manager struct {
	source  product.Source
	gateway checkout.Gateway
	ttl     time.Duration

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	sess     *Session
	lastSeen time.Time
}

// NewManager creates a session manager. Sessions idle longer than ttl are
// removed by the cleanup loop.
func NewManager(source product.Source, gateway checkout.Gateway, ttl time.Duration) *Manager {
	return &Manager{
		source:   source,
		gateway:  gateway,
		ttl:      ttl,
		sessions: make(map[string]*entry),
	}
}

// GetOrCreate returns the session for id, creating a fresh one when id is
// empty or unknown. The returned created flag tells the transport layer to
// hand the new id back to the client.
func (m *Manager) GetOrCreate(id string) (sess *Session, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if e, ok := m.sessions[id]; ok {
			e.lastSeen = time.Now()
			return e.sess, false
		}
	}

	newID := uuid.New().String()
	s := newSession(newID, m.source, m.gateway)
	m.sessions[newID] = &entry{sess: s, lastSeen: time.Now()}
	return s, true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// cleanup drops sessions idle past the TTL.
func (m *Manager) cleanup(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, e := range m.sessions {
		if now.Sub(e.lastSeen) >= m.ttl {
			delete(m.sessions, id)
		}
	}
}

// StartCleanup launches a background goroutine that evicts idle sessions at
// half-TTL intervals. It stops when ctx is cancelled.
func (m *Manager) StartCleanup(ctx context.Context) {
	interval := m.ttl / 2
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				m.cleanup(now)
			}
		}
	}()
}
