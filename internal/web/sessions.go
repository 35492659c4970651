package web

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/philipparndt/gobox/internal/pipeline"
)

type session struct {
	result  *pipeline.Result
	expires time.Time
}

// sessionStore keeps pipeline results until they are downloaded or expire
type sessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*session
	now      func() time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:      ttl,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

func (s *sessionStore) put(result *pipeline.Result) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.sessions[id] = &session{result: result, expires: s.now().Add(s.ttl)}
	return id
}

func (s *sessionStore) get(id string) (*pipeline.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.now().After(sess.expires) {
		return nil, false
	}
	return sess.result, true
}

// take removes the session; the caller owns the result afterwards
func (s *sessionStore) take(id string) (*pipeline.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	delete(s.sessions, id)

	if s.now().After(sess.expires) {
		go sess.result.Release()
		return nil, false
	}
	return sess.result, true
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sweep releases every expired session and returns how many were removed
func (s *sessionStore) sweep() int {
	s.mu.Lock()
	now := s.now()
	var expired []*pipeline.Result
	for id, sess := range s.sessions {
		if now.After(sess.expires) {
			expired = append(expired, sess.result)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, result := range expired {
		if err := result.Release(); err != nil {
			log.Printf("[web] %v", err)
		}
	}
	return len(expired)
}

// releaseAll drops every session regardless of age
func (s *sessionStore) releaseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.result.Release()
	}
}

// janitor sweeps until ctx is done
func (s *sessionStore) janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				log.Printf("[web] released %d expired sessions", n)
			}
		}
	}
}
