package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/engage-api/internal/dto"
	"github.com/noah-isme/engage-api/internal/models"
	"github.com/noah-isme/engage-api/internal/repository"
)

func setupUserService(t *testing.T) (UserService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	svc := NewUserService(repository.NewUserRepository(db), validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	return svc, db
}

func TestUserServiceSyncIsIdempotent(t *testing.T) {
	svc, db := setupUserService(t)

	ctx := context.Background()

	first, err := svc.Sync(ctx, dto.UserSyncRequest{UserID: "u1", Email: "a@b.com", Name: "Ann"})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.Equal(t, "u1", first.ExternalID)

	second, err := svc.Sync(ctx, dto.UserSyncRequest{UserID: "u1", Email: "a@b.com", Name: "Annie"})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Annie", second.Name)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestUserServiceSyncValidation(t *testing.T) {
	svc, _ := setupUserService(t)

	ctx := context.Background()

	_, err := svc.Sync(ctx, dto.UserSyncRequest{UserID: "u1", Name: "Ann"})
	require.Error(t, err, "missing email must be rejected")

	_, err = svc.Sync(ctx, dto.UserSyncRequest{Email: "a@b.com", Name: "Ann"})
	require.Error(t, err, "missing external id must be rejected")

	_, err = svc.Sync(ctx, dto.UserSyncRequest{UserID: "u1", Email: "not-an-email", Name: "Ann"})
	require.Error(t, err)
}

func TestUserServiceSyncStoresMetadata(t *testing.T) {
	svc, db := setupUserService(t)

	_, err := svc.Sync(context.Background(), dto.UserSyncRequest{
		UserID:   "u2",
		Email:    "b@c.com",
		Name:     "Bob",
		Metadata: map[string]string{"provider": "clerk"},
	})
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.Where("external_id = ?", "u2").First(&stored).Error)
	require.Equal(t, "clerk", stored.Metadata["provider"])
}
