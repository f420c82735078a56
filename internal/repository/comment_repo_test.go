package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/engage-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Tag{}, &models.Comment{}, &models.Reply{}, &models.Like{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, externalID string) models.User {
	t.Helper()
	user := models.User{ExternalID: externalID, Name: "Ann Example", Email: externalID + "@example.com"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestCommentRepositoryCreateReusesTagsByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	user := seedUser(t, db, "ext-1")

	ctx := context.Background()

	first := models.Comment{Content: "First post", UserID: user.ID}
	require.NoError(t, repo.Create(ctx, &first, []string{"go", "backend"}))

	second := models.Comment{Content: "Second post", UserID: user.ID}
	require.NoError(t, repo.Create(ctx, &second, []string{"go", "career"}))

	var tagCount int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tagCount).Error)
	require.Equal(t, int64(3), tagCount, "shared tag names must not create duplicate rows")

	loaded, err := repo.GetWithGraph(ctx, second.ID)
	require.NoError(t, err)
	names := make([]string, 0, len(loaded.Tags))
	for _, tag := range loaded.Tags {
		names = append(names, tag.Name)
	}
	require.ElementsMatch(t, []string{"go", "career"}, names)
}

func TestCommentRepositoryListNewestFirstWithGraph(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	user := seedUser(t, db, "ext-2")

	ctx := context.Background()

	older := models.Comment{Content: "older", UserID: user.ID, CreatedAt: time.Now().Add(-2 * time.Hour)}
	require.NoError(t, db.Create(&older).Error)
	newer := models.Comment{Content: "newer", UserID: user.ID, CreatedAt: time.Now().Add(-1 * time.Hour)}
	require.NoError(t, db.Create(&newer).Error)

	reply := models.Reply{CommentID: older.ID, UserID: user.ID, Content: "a reply"}
	require.NoError(t, repo.CreateReply(ctx, &reply))
	like := models.Like{UserID: user.ID, ReplyID: &reply.ID}
	require.NoError(t, db.Create(&like).Error)

	comments, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.Equal(t, "newer", comments[0].Content)
	require.Equal(t, "older", comments[1].Content)

	require.Len(t, comments[1].Replies, 1)
	require.Equal(t, "a reply", comments[1].Replies[0].Content)
	require.Equal(t, user.ID, comments[1].Replies[0].User.ID)
	require.Len(t, comments[1].Replies[0].Likes, 1)
}

func TestCommentRepositoryListFiltersByTagIntersection(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	user := seedUser(t, db, "ext-3")

	ctx := context.Background()

	tagged := models.Comment{Content: "about go", UserID: user.ID}
	require.NoError(t, repo.Create(ctx, &tagged, []string{"go", "web"}))
	other := models.Comment{Content: "about rust", UserID: user.ID}
	require.NoError(t, repo.Create(ctx, &other, []string{"rust"}))
	untagged := models.Comment{Content: "no tags", UserID: user.ID}
	require.NoError(t, repo.Create(ctx, &untagged, nil))

	comments, err := repo.List(ctx, []string{"go", "career"})
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Equal(t, "about go", comments[0].Content)

	comments, err = repo.List(ctx, []string{"go", "rust"})
	require.NoError(t, err)
	require.Len(t, comments, 2)
}

func TestCommentRepositoryGetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)

	_, err := repo.Get(context.Background(), 999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetReply(context.Background(), 999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
