package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/purpleforest/purpleforest/internal/model"
)

// BloomView is the read shape of a bloom: the join of a bloom row with its
// sender's username. Internal user ids, salts and hashes never cross this
// boundary.
type BloomView struct {
	ID             int64     `json:"id"`
	Sender         string    `json:"sender"`
	Content        string    `json:"content"`
	SendTimestamp  time.Time `json:"sent_timestamp"`
	OriginalSender *string   `json:"original_sender,omitempty"`
	RebloomCount   int64     `json:"rebloom_count"`
}

// maxIDRetries bounds the disambiguation loop for same-microsecond blooms.
const maxIDRetries = 16

const bloomViewSelect = "blooms.id, users.username AS sender, blooms.content, blooms.send_timestamp, blooms.original_sender, blooms.rebloom_count"

type BloomRepository interface {
	// Create persists the bloom row and its derived hashtag rows as one
	// atomic unit and fills in bloom.ID.
	Create(ctx context.Context, bloom *model.Bloom, hashtags []string) error
	Get(ctx context.Context, id int64) (*BloomView, error)
	// ListByUser returns the user's blooms newest-first. A non-nil before
	// is an exclusive upper bound on the id cursor; limit <= 0 means
	// unbounded.
	ListByUser(ctx context.Context, username string, before *int64, limit int) ([]BloomView, error)
	ListByHashtag(ctx context.Context, tag string, limit int) ([]BloomView, error)
}

type bloomRepository struct {
	db *gorm.DB
}

func NewBloomRepository(db *gorm.DB) BloomRepository { return &bloomRepository{db: db} }

func (r *bloomRepository) Create(ctx context.Context, bloom *model.Bloom, hashtags []string) error {
	// The id encodes the send instant at microsecond resolution. Two
	// blooms in the same microsecond collide on the primary key; retry
	// with the next id rather than failing the request.
	id := bloom.SendTimestamp.UnixMicro()
	for attempt := 0; attempt < maxIDRetries; attempt++ {
		bloom.ID = id + int64(attempt)
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(bloom).Error; err != nil {
				return err
			}
			for _, tag := range hashtags {
				row := &model.Hashtag{Hashtag: tag, BloomID: bloom.ID}
				if err := tx.Create(row).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		return err
	}
	return fmt.Errorf("allocate bloom id: %d consecutive collisions at %d", maxIDRetries, id)
}

// Get returns (nil, nil) when the bloom does not exist.
func (r *bloomRepository) Get(ctx context.Context, id int64) (*BloomView, error) {
	var v BloomView
	err := r.db.WithContext(ctx).
		Model(&model.Bloom{}).
		Select(bloomViewSelect).
		Joins("JOIN users ON users.id = blooms.sender_id").
		Where("blooms.id = ?", id).
		Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *bloomRepository) ListByUser(ctx context.Context, username string, before *int64, limit int) ([]BloomView, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Bloom{}).
		Select(bloomViewSelect).
		Joins("JOIN users ON users.id = blooms.sender_id").
		Where("users.username = ?", username)
	if before != nil {
		q = q.Where("blooms.id < ?", *before)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var views []BloomView
	err := q.Order("blooms.id DESC").Scan(&views).Error
	return views, err
}

func (r *bloomRepository) ListByHashtag(ctx context.Context, tag string, limit int) ([]BloomView, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Bloom{}).
		Select(bloomViewSelect).
		Joins("JOIN hashtags ON hashtags.bloom_id = blooms.id").
		Joins("JOIN users ON users.id = blooms.sender_id").
		Where("hashtags.hashtag = ?", tag)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var views []BloomView
	err := q.Order("blooms.id DESC").Scan(&views).Error
	return views, err
}
