package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purpleforest/purpleforest/internal/model"
	"github.com/purpleforest/purpleforest/internal/repository"
)

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"two tags", "hello #rust and #go", []string{"rust", "go"}},
		{"no tags", "no tags here", nil},
		{"tag only", "#solo", []string{"solo"}},
		{"case and punctuation preserved", "shipping #Go1.23 today", []string{"Go1.23"}},
		{"mid-word hash ignored", "c# is not c#sharp wait #yes", []string{"yes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractHashtags(tt.content))
		})
	}
}

func TestCreateRejectsOverlongContent(t *testing.T) {
	db := setupTestDB(t)
	users := repository.NewUserRepository(db)
	blooms := NewBloomService(repository.NewBloomRepository(db))
	ctx := context.Background()

	sender, err := users.Create(ctx, "poster", []byte("s"), []byte("h"))
	require.NoError(t, err)

	_, err = blooms.Create(ctx, sender, strings.Repeat("a", 281)+" #tag", nil)
	assert.ErrorIs(t, err, ErrContentTooLong)

	var bloomCount, tagCount int64
	require.NoError(t, db.Model(&model.Bloom{}).Count(&bloomCount).Error)
	require.NoError(t, db.Model(&model.Hashtag{}).Count(&tagCount).Error)
	assert.Zero(t, bloomCount, "rejection leaves no bloom row")
	assert.Zero(t, tagCount, "rejection leaves no hashtag row")
}

func TestCreateBoundaryLengths(t *testing.T) {
	db := setupTestDB(t)
	users := repository.NewUserRepository(db)
	blooms := NewBloomService(repository.NewBloomRepository(db))
	ctx := context.Background()

	sender, err := users.Create(ctx, "poster", []byte("s"), []byte("h"))
	require.NoError(t, err)

	_, err = blooms.Create(ctx, sender, strings.Repeat("a", 280), nil)
	assert.NoError(t, err, "280 code points is allowed")

	_, err = blooms.Create(ctx, sender, strings.Repeat("a", 281), nil)
	assert.ErrorIs(t, err, ErrContentTooLong)

	// the limit counts code points, not bytes
	_, err = blooms.Create(ctx, sender, strings.Repeat("é", 280), nil)
	assert.NoError(t, err)
}

func TestCreateRebloomKeepsCountAtZero(t *testing.T) {
	db := setupTestDB(t)
	users := repository.NewUserRepository(db)
	blooms := NewBloomService(repository.NewBloomRepository(db))
	ctx := context.Background()

	origin, err := users.Create(ctx, "origin", []byte("s"), []byte("h"))
	require.NoError(t, err)
	reblogger, err := users.Create(ctx, "reblogger", []byte("s"), []byte("h"))
	require.NoError(t, err)

	original, err := blooms.Create(ctx, origin, "original thought", nil)
	require.NoError(t, err)

	originName := origin.Username
	rebloom, err := blooms.Create(ctx, reblogger, "original thought", &originName)
	require.NoError(t, err)
	require.NotNil(t, rebloom.OriginalSender)
	assert.Equal(t, "origin", *rebloom.OriginalSender)
	assert.EqualValues(t, 0, rebloom.RebloomCount)

	// the original bloom's counter is never propagated to
	refetched, err := blooms.Get(ctx, original.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, refetched.RebloomCount)
}

func TestCreateStoresHashtagRows(t *testing.T) {
	db := setupTestDB(t)
	users := repository.NewUserRepository(db)
	svc := NewBloomService(repository.NewBloomRepository(db))
	ctx := context.Background()

	sender, err := users.Create(ctx, "poster", []byte("s"), []byte("h"))
	require.NoError(t, err)

	view, err := svc.Create(ctx, sender, "hello #rust and #go", nil)
	require.NoError(t, err)

	var tags []model.Hashtag
	require.NoError(t, db.Order("hashtag").Find(&tags).Error)
	require.Len(t, tags, 2)
	assert.Equal(t, "go", tags[0].Hashtag)
	assert.Equal(t, "rust", tags[1].Hashtag)
	assert.Equal(t, view.ID, tags[0].BloomID)
	assert.Equal(t, view.ID, tags[1].BloomID)
}
