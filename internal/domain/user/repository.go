package user

import "context"

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)

	// Earliest registered user matching both email and role.
	GetByEmailAndRole(ctx context.Context, email string, role Role) (*User, error)
}
