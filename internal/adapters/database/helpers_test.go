package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"postfeed/internal/core/post"
	"postfeed/internal/core/user"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "feed.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *user.User {
	t.Helper()
	u := &user.User{
		ID:       uuid.Must(uuid.NewV4()),
		Email:    name + "@example.com",
		Name:     name,
		Password: "hash",
	}
	_, err := NewUserRepositoryDatabase(db).Create(context.Background(), u)
	require.NoError(t, err)
	return u
}

func newPost(creator *user.User, title string, at time.Time) *post.Post {
	return &post.Post{
		ID:        uuid.Must(uuid.NewV4()),
		Title:     title,
		Content:   "content of " + title,
		ImageURL:  "images/" + title + ".png",
		CreatorID: creator.ID,
		CreatedAt: at,
		UpdatedAt: at,
	}
}
