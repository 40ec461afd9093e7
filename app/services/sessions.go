package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PageFactory builds a fresh, unloaded page.
type PageFactory func() (*Page, error)

type session struct {
	page     *Page
	lastSeen time.Time
}

// SessionStore keeps one Page per browser session. When full, the least
// recently used session is dropped.
type SessionStore struct {
	newPage PageFactory
	max     int
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionStore creates a store holding at most max pages
func NewSessionStore(max int, newPage PageFactory, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if max < 1 {
		max = 1
	}
	return &SessionStore{
		newPage:  newPage,
		max:      max,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Get returns the page for id. Unknown or empty ids get a new session
// whose page has already received its load event; created reports that
// case and the returned id must be handed back to the client.
func (s *SessionStore) Get(ctx context.Context, id string) (page *Page, sid string, created bool, err error) {
	if page := s.lookup(id); page != nil {
		return page, id, false, nil
	}

	page, err = s.newPage()
	if err != nil {
		return nil, "", false, err
	}
	page.Load(ctx)

	sid = uuid.NewString()
	s.mu.Lock()
	s.sessions[sid] = &session{page: page, lastSeen: s.now()}
	s.evictLocked()
	s.mu.Unlock()

	s.logger.Debug("session created", zap.String("session", sid))
	return page, sid, true, nil
}

// Lookup returns the page for an existing session, or nil.
func (s *SessionStore) Lookup(id string) *Page {
	return s.lookup(id)
}

func (s *SessionStore) lookup(id string) *Page {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	sess.lastSeen = s.now()
	return sess.page
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) evictLocked() {
	for len(s.sessions) > s.max {
		var oldestID string
		var oldest time.Time
		for id, sess := range s.sessions {
			if oldestID == "" || sess.lastSeen.Before(oldest) {
				oldestID, oldest = id, sess.lastSeen
			}
		}
		delete(s.sessions, oldestID)
		s.logger.Debug("session evicted", zap.String("session", oldestID))
	}
}
