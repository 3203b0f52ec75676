package memory

import (
	"context"
	"errors"

	userDomain "p2p-lending/internal/domain/user"
)

var ErrDuplicateID = errors.New("memory: duplicate id")

type UserRepository struct{ g guard }

func NewUserRepository(s *Store) *UserRepository { return &UserRepository{g: guard{s: s}} }

func (r *UserRepository) Create(ctx context.Context, u *userDomain.User) error {
	defer r.g.write()()
	for _, cur := range r.g.s.users {
		if cur.ID == u.ID {
			return ErrDuplicateID
		}
	}
	r.g.s.users = append(r.g.s.users, u.Clone())
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*userDomain.User, error) {
	defer r.g.read()()
	for _, u := range r.g.s.users {
		if u.ID == id {
			return u.Clone(), nil
		}
	}
	return nil, userDomain.ErrNotFound
}

func (r *UserRepository) GetByEmailAndRole(ctx context.Context, email string, role userDomain.Role) (*userDomain.User, error) {
	defer r.g.read()()
	for _, u := range r.g.s.users {
		if u.Email == email && u.Role == role {
			return u.Clone(), nil
		}
	}
	return nil, userDomain.ErrNotFound
}
