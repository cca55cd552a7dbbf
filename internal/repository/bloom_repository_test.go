package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purpleforest/purpleforest/internal/model"
)

func seedBloom(t *testing.T, repo BloomRepository, sender *model.User, content string, at time.Time, tags ...string) *model.Bloom {
	t.Helper()
	bloom := &model.Bloom{SenderID: sender.ID, Content: content, SendTimestamp: at}
	require.NoError(t, repo.Create(context.Background(), bloom, tags))
	return bloom
}

func TestBloomCreateWritesHashtagRows(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	blooms := NewBloomRepository(db)
	u := seedUser(t, users, "poster")

	seedBloom(t, blooms, u, "hello #rust and #go", time.Now().UTC(), "rust", "go")

	var tags []model.Hashtag
	require.NoError(t, db.Find(&tags).Error)
	require.Len(t, tags, 2)
	assert.Equal(t, "rust", tags[0].Hashtag)
	assert.Equal(t, "go", tags[1].Hashtag)
	for _, tag := range tags {
		var count int64
		require.NoError(t, db.Model(&model.Bloom{}).Where("id = ?", tag.BloomID).Count(&count).Error)
		assert.EqualValues(t, 1, count, "every hashtag row references an existing bloom")
	}
}

func TestBloomIDEncodesMicrosecondTimestamp(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	blooms := NewBloomRepository(db)
	u := seedUser(t, users, "poster")

	at := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)
	bloom := seedBloom(t, blooms, u, "pi day", at)
	assert.Equal(t, at.UnixMicro(), bloom.ID)
}

func TestBloomIDCollisionRetries(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	blooms := NewBloomRepository(db)
	u := seedUser(t, users, "poster")

	at := time.Date(2026, 1, 2, 3, 4, 5, 6000, time.UTC)
	first := seedBloom(t, blooms, u, "first", at)
	second := seedBloom(t, blooms, u, "same microsecond", at)

	assert.Equal(t, at.UnixMicro(), first.ID)
	assert.Equal(t, first.ID+1, second.ID, "collision resolves to the next id instead of failing")
}

func TestBloomGetAbsent(t *testing.T) {
	db := setupTestDB(t)
	blooms := NewBloomRepository(db)

	view, err := blooms.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestBloomGetJoinsSenderUsername(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	blooms := NewBloomRepository(db)
	u := seedUser(t, users, "poster")

	origin := "elsewhere"
	bloom := &model.Bloom{SenderID: u.ID, Content: "echo", SendTimestamp: time.Now().UTC(), OriginalSender: &origin}
	require.NoError(t, blooms.Create(context.Background(), bloom, nil))

	view, err := blooms.Get(context.Background(), bloom.ID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "poster", view.Sender)
	assert.Equal(t, "echo", view.Content)
	require.NotNil(t, view.OriginalSender)
	assert.Equal(t, "elsewhere", *view.OriginalSender)
	assert.EqualValues(t, 0, view.RebloomCount)
}

func TestBloomPaginationNoOverlapNoGap(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	blooms := NewBloomRepository(db)
	u := seedUser(t, users, "poster")
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ids := make([]int64, 0, 10)
	for i := 0; i < 10; i++ {
		b := seedBloom(t, blooms, u, "bloom", base.Add(time.Duration(i)*time.Millisecond))
		ids = append(ids, b.ID)
	}

	firstPage, err := blooms.ListByUser(ctx, "poster", nil, 5)
	require.NoError(t, err)
	require.Len(t, firstPage, 5)
	assert.Equal(t, ids[9], firstPage[0].ID, "newest first")

	cursor := firstPage[len(firstPage)-1].ID
	secondPage, err := blooms.ListByUser(ctx, "poster", &cursor, 5)
	require.NoError(t, err)
	require.Len(t, secondPage, 5)

	seen := map[int64]struct{}{}
	for _, v := range append(firstPage, secondPage...) {
		_, dup := seen[v.ID]
		assert.False(t, dup, "pages must not overlap")
		seen[v.ID] = struct{}{}
	}
	for _, id := range ids {
		_, ok := seen[id]
		assert.True(t, ok, "union of pages covers every bloom")
	}
}

func TestBloomListByHashtagAcrossSenders(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	blooms := NewBloomRepository(db)
	a := seedUser(t, users, "a")
	b := seedUser(t, users, "b")
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	seedBloom(t, blooms, a, "#go one", base, "go")
	seedBloom(t, blooms, b, "#go two", base.Add(time.Millisecond), "go")
	seedBloom(t, blooms, a, "#rust three", base.Add(2*time.Millisecond), "rust")

	views, err := blooms.ListByHashtag(ctx, "go", 0)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "b", views[0].Sender, "newest first across senders")
	assert.Equal(t, "a", views[1].Sender)

	limited, err := blooms.ListByHashtag(ctx, "go", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
