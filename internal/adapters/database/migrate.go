package database

import (
	"postfeed/internal/core/assetcleanup"
	"postfeed/internal/core/post"
	"postfeed/internal/core/user"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the tables the feed needs.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&user.UserPost{},
		&post.Post{},
		&assetcleanup.AssetCleanup{},
	)
}
