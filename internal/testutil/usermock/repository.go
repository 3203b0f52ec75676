package usermock

import (
	"context"

	domain "p2p-lending/internal/domain/user"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn            func(ctx context.Context, u *domain.User) error
	GetByIDFn           func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailAndRoleFn func(ctx context.Context, email string, role domain.Role) (*domain.User, error)
}

func (m *Repo) Create(ctx context.Context, u *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByEmailAndRole(ctx context.Context, email string, role domain.Role) (*domain.User, error) {
	if m.GetByEmailAndRoleFn != nil {
		return m.GetByEmailAndRoleFn(ctx, email, role)
	}
	return nil, context.Canceled
}
