package service

import (
	"context"

	"github.com/purpleforest/purpleforest/internal/repository"
)

// RelationshipService owns the follow graph. Both mutations are
// idempotent, and nothing stops a user from following themselves.
type RelationshipService interface {
	Follow(ctx context.Context, followerID, followeeID int64) error
	Unfollow(ctx context.Context, followerID, followeeID int64) error
	ListFollowed(ctx context.Context, userID int64) ([]string, error)
	ListFollowers(ctx context.Context, userID int64) ([]string, error)
}

type relationshipService struct {
	follows repository.FollowRepository
	cache   *FollowerCache // nil when redis is not configured
}

func NewRelationshipService(follows repository.FollowRepository, cache *FollowerCache) RelationshipService {
	return &relationshipService{follows: follows, cache: cache}
}

func (s *relationshipService) Follow(ctx context.Context, followerID, followeeID int64) error {
	if err := s.follows.Create(ctx, followerID, followeeID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, followerID)
	}
	return nil
}

func (s *relationshipService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	if err := s.follows.Delete(ctx, followerID, followeeID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, followerID)
	}
	return nil
}

func (s *relationshipService) ListFollowed(ctx context.Context, userID int64) ([]string, error) {
	return s.follows.ListFollowed(ctx, userID)
}

func (s *relationshipService) ListFollowers(ctx context.Context, userID int64) ([]string, error) {
	return s.follows.ListFollowers(ctx, userID)
}
