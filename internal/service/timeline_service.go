package service

import (
	"context"
	"sort"
	"sync"

	"github.com/purpleforest/purpleforest/internal/model"
	"github.com/purpleforest/purpleforest/internal/repository"
)

// homeFanoutLimit caps the blooms fetched per followed user (and for the
// viewer) when assembling the home timeline. A source that posted more
// than this since the viewer's last read gets its older blooms starved
// out of the merged window; that bound is part of the contract, not a
// defect to optimize away.
const homeFanoutLimit = 50

// TimelineService assembles feeds by fan-out-on-read: no precomputed
// per-viewer state, every read queries the sources and merges.
type TimelineService interface {
	Home(ctx context.Context, viewer *model.User) ([]repository.BloomView, error)
	Profile(ctx context.Context, username string) ([]repository.BloomView, error)
	Hashtag(ctx context.Context, tag string) ([]repository.BloomView, error)
}

type timelineService struct {
	blooms  repository.BloomRepository
	follows repository.FollowRepository
	cache   *FollowerCache // nil when redis is not configured
}

func NewTimelineService(blooms repository.BloomRepository, follows repository.FollowRepository, cache *FollowerCache) TimelineService {
	return &timelineService{blooms: blooms, follows: follows, cache: cache}
}

func (s *timelineService) Home(ctx context.Context, viewer *model.User) ([]repository.BloomView, error) {
	followed, err := s.followedUsernames(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}

	// One source per followed user plus the viewer, deduplicated so a
	// self-follow edge does not fetch the viewer's blooms twice.
	seen := map[string]struct{}{viewer.Username: {}}
	sources := []string{viewer.Username}
	for _, name := range followed {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		sources = append(sources, name)
	}

	// The per-source reads are independent; run them in parallel and
	// merge once all complete.
	var (
		wg      sync.WaitGroup
		perUser = make([][]repository.BloomView, len(sources))
		errs    = make([]error, len(sources))
	)
	for i, name := range sources {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			perUser[i], errs[i] = s.blooms.ListByUser(ctx, name, nil, homeFanoutLimit)
		}(i, name)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var merged []repository.BloomView
	for _, views := range perUser {
		merged = append(merged, views...)
	}
	sortNewestFirst(merged)
	return merged, nil
}

// Profile returns all of one user's blooms newest-first, with no
// per-source cap.
func (s *timelineService) Profile(ctx context.Context, username string) ([]repository.BloomView, error) {
	return s.blooms.ListByUser(ctx, username, nil, 0)
}

func (s *timelineService) Hashtag(ctx context.Context, tag string) ([]repository.BloomView, error) {
	return s.blooms.ListByHashtag(ctx, tag, 0)
}

func (s *timelineService) followedUsernames(ctx context.Context, viewerID int64) ([]string, error) {
	if s.cache != nil {
		if names, ok := s.cache.GetFollowed(ctx, viewerID); ok {
			return names, nil
		}
	}
	names, err := s.follows.ListFollowed(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetFollowed(ctx, viewerID, names)
	}
	return names, nil
}

// sortNewestFirst orders by id descending. Ids encode the send instant, so
// this is also newest-first by timestamp; same-microsecond ties fall back
// to the sender name to keep the merge deterministic regardless of fetch
// completion order.
func sortNewestFirst(views []repository.BloomView) {
	sort.Slice(views, func(i, j int) bool {
		if views[i].ID != views[j].ID {
			return views[i].ID > views[j].ID
		}
		return views[i].Sender < views[j].Sender
	})
}
