package traceability

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Session is the per-tab state: where the visitor is, the scan in flight and
// the admin working copy.
type Session struct {
	ID        string
	Navigator *Navigator
	Scanner   *ScanSimulator
	Editor    *Editor
	CreatedAt time.Time
}

// Close stops the pending scan timer.
func (s *Session) Close() {
	if s == nil || s.Scanner == nil {
		return
	}
	s.Scanner.Close()
}

// SessionFactory builds a session for an id the store has not seen yet.
type SessionFactory func(id string) *Session

// SessionStore keeps sessions keyed by id.
type SessionStore interface {
	Session(ctx context.Context, id string, create SessionFactory) (*Session, error)
	Delete(ctx context.Context, id string) error
	IDs(ctx context.Context) ([]string, error)
}

// Session store limits applied when none are configured.
const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 10000
)

// SessionStoreOption customizes an InMemorySessionStore.
type SessionStoreOption func(*InMemorySessionStore)

// WithSessionTTL evicts sessions idle for longer than ttl. Zero keeps the default.
func WithSessionTTL(ttl time.Duration) SessionStoreOption {
	return func(s *InMemorySessionStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxSessions caps the number of live sessions; the least recently used
// session is evicted to make room. Zero keeps the default.
func WithMaxSessions(max int) SessionStoreOption {
	return func(s *InMemorySessionStore) {
		if max > 0 {
			s.max = max
		}
	}
}

// InMemorySessionStore provides a concurrency-safe default store. Idle sessions
// expire after the TTL and the store never holds more than max sessions.
type InMemorySessionStore struct {
	mu   sync.Mutex
	data map[string]*storedSession
	ttl  time.Duration
	max  int
	now  func() time.Time
}

type storedSession struct {
	session  *Session
	lastSeen time.Time
}

// NewInMemorySessionStore creates an empty session store.
func NewInMemorySessionStore(opts ...SessionStoreOption) *InMemorySessionStore {
	store := &InMemorySessionStore{
		data: make(map[string]*storedSession),
		ttl:  DefaultSessionTTL,
		max:  DefaultMaxSessions,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Session returns the stored session, creating it with create when missing.
// Every lookup refreshes the session's idle clock.
func (s *InMemorySessionStore) Session(_ context.Context, id string, create SessionFactory) (*Session, error) {
	if id == "" {
		return nil, errMissingSession
	}
	s.mu.Lock()
	now := s.now()
	if entry, ok := s.data[id]; ok && now.Sub(entry.lastSeen) <= s.ttl {
		entry.lastSeen = now
		s.mu.Unlock()
		return entry.session, nil
	}
	if create == nil {
		s.mu.Unlock()
		return nil, errMissingSession
	}
	evicted := s.evictLocked(now)
	session := create(id)
	s.data[id] = &storedSession{session: session, lastSeen: now}
	s.mu.Unlock()
	closeSessions(evicted)
	return session, nil
}

// Sweep drops expired sessions and reports how many were removed.
func (s *InMemorySessionStore) Sweep(context.Context) int {
	s.mu.Lock()
	now := s.now()
	var evicted []*Session
	for id, entry := range s.data {
		if now.Sub(entry.lastSeen) > s.ttl {
			evicted = append(evicted, entry.session)
			delete(s.data, id)
		}
	}
	s.mu.Unlock()
	closeSessions(evicted)
	return len(evicted)
}

// Len reports the number of stored sessions, expired ones included until the
// next sweep.
func (s *InMemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// evictLocked makes room for one new session: expired entries go first, then
// the least recently used ones while the store is full.
func (s *InMemorySessionStore) evictLocked(now time.Time) []*Session {
	var evicted []*Session
	for id, entry := range s.data {
		if now.Sub(entry.lastSeen) > s.ttl {
			evicted = append(evicted, entry.session)
			delete(s.data, id)
		}
	}
	for len(s.data) >= s.max {
		oldestID := ""
		var oldest time.Time
		for id, entry := range s.data {
			if oldestID == "" || entry.lastSeen.Before(oldest) {
				oldestID, oldest = id, entry.lastSeen
			}
		}
		evicted = append(evicted, s.data[oldestID].session)
		delete(s.data, oldestID)
	}
	return evicted
}

// Delete closes and forgets a session. Unknown ids are ignored.
func (s *InMemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	entry, ok := s.data[id]
	delete(s.data, id)
	s.mu.Unlock()
	if ok {
		entry.session.Close()
	}
	return nil
}

// IDs lists the stored session ids in sorted order.
func (s *InMemorySessionStore) IDs(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close stops every session timer.
func (s *InMemorySessionStore) Close() {
	s.mu.Lock()
	entries := s.data
	s.data = make(map[string]*storedSession)
	s.mu.Unlock()
	for _, entry := range entries {
		entry.session.Close()
	}
}

func closeSessions(sessions []*Session) {
	for _, session := range sessions {
		session.Close()
	}
}
