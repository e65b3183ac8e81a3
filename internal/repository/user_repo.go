package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wellnoosh/engagement/internal/db"
)

// UserRepository reads and updates user accounts. Only the subscription tier
// is writable from this service.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

func (r *UserRepository) Get(ctx context.Context, id string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateTier flips the subscription tier. An upgrade to premium takes effect
// immediately: the quota gate short-circuits on the next check.
func (r *UserRepository) UpdateTier(ctx context.Context, id, tier string) error {
	res := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Update("tier", tier)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
