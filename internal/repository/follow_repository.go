package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/purpleforest/purpleforest/internal/model"
)

type FollowRepository interface {
	Create(ctx context.Context, followerID, followeeID int64) error
	Delete(ctx context.Context, followerID, followeeID int64) error
	// ListFollowed returns usernames the user follows; ListFollowers the
	// inverse direction. Neither guarantees an ordering.
	ListFollowed(ctx context.Context, followerID int64) ([]string, error)
	ListFollowers(ctx context.Context, followeeID int64) ([]string, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

// Create is idempotent: a duplicate edge hits the pair index and is
// swallowed, so concurrent identical follows both succeed.
func (r *followRepository) Create(ctx context.Context, followerID, followeeID int64) error {
	f := &model.Follow{ID: uuid.New().String(), FollowerID: followerID, FolloweeID: followeeID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f).Error
}

// Delete of a non-existent edge is a no-op.
func (r *followRepository) Delete(ctx context.Context, followerID, followeeID int64) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{}).Error
}

func (r *followRepository) ListFollowed(ctx context.Context, followerID int64) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Select("users.username").
		Joins("JOIN users ON users.id = follows.followee_id").
		Where("follows.follower_id = ?", followerID).
		Scan(&names).Error
	return names, err
}

func (r *followRepository) ListFollowers(ctx context.Context, followeeID int64) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Select("users.username").
		Joins("JOIN users ON users.id = follows.follower_id").
		Where("follows.followee_id = ?", followeeID).
		Scan(&names).Error
	return names, err
}
