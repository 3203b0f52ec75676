package session

import (
	"context"
	"sync"
	"time"

	domain "p2p-lending/internal/domain/session"
)

type entry struct {
	sess      domain.Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process; used when redis is not configured.
type MemoryStore struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]entry
	now func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, m: map[string]entry{}, now: time.Now}
}

func (s *MemoryStore) Save(ctx context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	cp.User = sess.User.Clone()
	s.m[sess.Token] = entry{sess: cp, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if s.ttl > 0 && s.now().After(e.expiresAt) {
		delete(s.m, token)
		return nil, domain.ErrNotFound
	}
	cp := e.sess
	cp.User = e.sess.User.Clone()
	return &cp, nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, token)
	return nil
}
