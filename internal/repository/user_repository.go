package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/purpleforest/purpleforest/internal/model"
)

// ErrDuplicateUsername reports a registration race or replay on an
// already-taken username. The unique index is the source of truth; the
// insert and the uniqueness check are one atomic unit.
var ErrDuplicateUsername = errors.New("user already exists")

type UserRepository interface {
	Create(ctx context.Context, username string, salt, hash []byte) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// SuggestedFollows returns up to limit usernames the given user does
	// not follow yet, excluding the user itself, in random order.
	SuggestedFollows(ctx context.Context, userID int64, limit int) ([]string, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, username string, salt, hash []byte) (*model.User, error) {
	u := &model.User{Username: username, PasswordSalt: salt, PasswordHash: hash}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	return u, nil
}

// GetByUsername returns (nil, nil) when no such user exists; absence is an
// ordinary result, not an error.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) SuggestedFollows(ctx context.Context, userID int64, limit int) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("username").
		Where("id <> ?", userID).
		Where("id NOT IN (?)", r.db.Model(&model.Follow{}).Select("followee_id").Where("follower_id = ?", userID)).
		Order("RANDOM()").
		Limit(limit).
		Scan(&names).Error
	return names, err
}
