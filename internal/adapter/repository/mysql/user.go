package mysql

import (
	"context"
	"errors"

	userDomain "p2p-lending/internal/domain/user"

	"gorm.io/gorm"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *userDomain.User) error {
	return r.db.WithContext(ctx).Create(toUserRow(u)).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*userDomain.User, error) {
	var out userRow
	res := r.db.WithContext(ctx).Where("user_id = ?", id).First(&out)
	if res.Error != nil {
		return nil, userErr(res.Error)
	}
	return out.toDomain(), nil
}

// First() orders by primary key, i.e. registration order.
func (r *UserRepository) GetByEmailAndRole(ctx context.Context, email string, role userDomain.Role) (*userDomain.User, error) {
	var out userRow
	res := r.db.WithContext(ctx).
		Where("email = ? AND role = ?", email, string(role)).
		First(&out)
	if res.Error != nil {
		return nil, userErr(res.Error)
	}
	return out.toDomain(), nil
}

func userErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return userDomain.ErrNotFound
	}
	return err
}
