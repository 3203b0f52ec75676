package session

import (
	"context"
	"errors"
	"time"

	"p2p-lending/internal/domain/user"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrUnauthenticated = errors.New("not authenticated")
)

// Session records which user is signed in on one client, plus the
// client's UI preference.
type Session struct {
	Token         string     `json:"token"`
	User          *user.User `json:"user"`
	Authenticated bool       `json:"authenticated"`
	DarkMode      bool       `json:"dark_mode"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Actor returns the signed-in user or ErrUnauthenticated.
func (s *Session) Actor() (*user.User, error) {
	if s == nil || !s.Authenticated || s.User == nil {
		return nil, ErrUnauthenticated
	}
	return s.User, nil
}

type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
