package post

import (
	"errors"
	"time"

	"postfeed/internal/core/user"

	"github.com/gofrs/uuid"
)

// Failure classes of the feed. The HTTP layer maps them to 422, 404, 403 and 500.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrNotFound         = errors.New("post not found")
	ErrForbidden        = errors.New("not authorized")
	ErrStorage          = errors.New("storage error")
)

type Post struct {
	ID        uuid.UUID `gorm:"primary_key;type:char(36)"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Content   string    `gorm:"type:text;not null"`
	ImageURL  string    `gorm:"type:varchar(512);not null"`
	CreatorID uuid.UUID `gorm:"type:char(36);not null;index"`
	Creator   user.User `gorm:"foreignKey:CreatorID"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// OwnedBy reports whether userID is the creator of the post.
func (p *Post) OwnedBy(userID string) bool {
	return p.CreatorID != uuid.Nil && p.CreatorID.String() == userID
}
