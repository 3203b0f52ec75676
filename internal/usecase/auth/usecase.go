package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"p2p-lending/internal/domain/session"
	"p2p-lending/internal/domain/user"
	"p2p-lending/pkg/id"

	"github.com/sirupsen/logrus"
)

type Usecase struct {
	users    user.Repository
	sessions session.Store
	log      *logrus.Logger
	now      func() time.Time
}

func NewUsecase(users user.Repository, sessions session.Store, log *logrus.Logger) *Usecase {
	return &Usecase{users: users, sessions: sessions, log: log, now: time.Now}
}

// Login signs in the earliest user registered with the email and role.
// The password is not checked.
func (u *Usecase) Login(ctx context.Context, in LoginInput) (*SessionDTO, error) {
	role := user.Role(in.Role)
	if !role.Valid() {
		return nil, user.ErrInvalidRole
	}
	email := strings.TrimSpace(in.Email)

	found, err := u.users.GetByEmailAndRole(ctx, email, role)
	if errors.Is(err, user.ErrNotFound) {
		u.log.WithFields(logrus.Fields{"email": email, "role": role}).Warn("auth: login rejected")
		return nil, user.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	s, err := u.open(ctx, found)
	if err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{"user_id": found.ID, "role": role}).Info("auth: logged in")
	return ToSessionDTO(s), nil
}

// Register appends a new user with the role's defaults and signs it in.
func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*SessionDTO, error) {
	nu, err := user.New(id.NewID32(), strings.TrimSpace(in.Name), strings.TrimSpace(in.Email), user.Role(in.Role))
	if err != nil {
		return nil, err
	}
	nu.CreatedAt = u.now().UTC()
	if err := u.users.Create(ctx, nu); err != nil {
		return nil, err
	}

	s, err := u.open(ctx, nu)
	if err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{"user_id": nu.ID, "role": nu.Role}).Info("auth: registered")
	return ToSessionDTO(s), nil
}

// Logout ends the session. Unknown tokens are ignored.
func (u *Usecase) Logout(ctx context.Context, token string) error {
	return u.sessions.Delete(ctx, token)
}

func (u *Usecase) Resolve(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, session.ErrNotFound
	}
	return u.sessions.Get(ctx, token)
}

func (u *Usecase) ToggleDarkMode(ctx context.Context, token string) (*SessionDTO, error) {
	s, err := u.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	s.DarkMode = !s.DarkMode
	if err := u.sessions.Save(ctx, s); err != nil {
		return nil, err
	}
	return ToSessionDTO(s), nil
}

func (u *Usecase) open(ctx context.Context, usr *user.User) (*session.Session, error) {
	s := &session.Session{
		Token:         id.NewToken(),
		User:          usr,
		Authenticated: true,
		CreatedAt:     u.now().UTC(),
	}
	if err := u.sessions.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}
