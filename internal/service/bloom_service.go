package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/purpleforest/purpleforest/internal/model"
	"github.com/purpleforest/purpleforest/internal/repository"
)

var ErrContentTooLong = errors.New("content exceeds 280 characters")

// BloomService persists posts and derives the hashtag index from their
// content at write time.
type BloomService interface {
	// Create validates length before any persistence, then writes the
	// bloom and its hashtag rows atomically. originalSender marks a
	// rebloom of another user's content.
	Create(ctx context.Context, sender *model.User, content string, originalSender *string) (*repository.BloomView, error)
	Get(ctx context.Context, id int64) (*repository.BloomView, error)
	ListByUser(ctx context.Context, username string, before *int64, limit int) ([]repository.BloomView, error)
	ListByHashtag(ctx context.Context, tag string, limit int) ([]repository.BloomView, error)
}

type bloomService struct {
	blooms repository.BloomRepository
}

func NewBloomService(blooms repository.BloomRepository) BloomService {
	return &bloomService{blooms: blooms}
}

func (s *bloomService) Create(ctx context.Context, sender *model.User, content string, originalSender *string) (*repository.BloomView, error) {
	if utf8.RuneCountInString(content) > model.MaxContentPoints {
		return nil, ErrContentTooLong
	}

	bloom := &model.Bloom{
		SenderID:       sender.ID,
		Content:        content,
		SendTimestamp:  time.Now().UTC(),
		OriginalSender: originalSender,
	}
	if err := s.blooms.Create(ctx, bloom, ExtractHashtags(content)); err != nil {
		return nil, err
	}
	return &repository.BloomView{
		ID:             bloom.ID,
		Sender:         sender.Username,
		Content:        bloom.Content,
		SendTimestamp:  bloom.SendTimestamp,
		OriginalSender: bloom.OriginalSender,
		RebloomCount:   bloom.RebloomCount,
	}, nil
}

func (s *bloomService) Get(ctx context.Context, id int64) (*repository.BloomView, error) {
	return s.blooms.Get(ctx, id)
}

func (s *bloomService) ListByUser(ctx context.Context, username string, before *int64, limit int) ([]repository.BloomView, error) {
	return s.blooms.ListByUser(ctx, username, before, limit)
}

func (s *bloomService) ListByHashtag(ctx context.Context, tag string, limit int) ([]repository.BloomView, error) {
	return s.blooms.ListByHashtag(ctx, tag, limit)
}

// ExtractHashtags returns the hashtags in content: every
// whitespace-delimited token starting with '#', hash stripped, otherwise
// verbatim. No case folding, no punctuation trimming.
func ExtractHashtags(content string) []string {
	var tags []string
	for _, word := range strings.Fields(content) {
		if strings.HasPrefix(word, "#") {
			tags = append(tags, word[1:])
		}
	}
	return tags
}
