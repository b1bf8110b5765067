package user

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrAlreadyExists      = errors.New("email address already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

type User struct {
	ID         uuid.UUID  `gorm:"primary_key;type:char(36)"`
	Email      string     `gorm:"type:varchar(255);unique;not null"`
	Name       string     `gorm:"type:varchar(255);not null"`
	Password   string     `gorm:"not null"`
	OwnedPosts []UserPost `gorm:"foreignKey:UserID"` // ids of the posts this user created
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime"`
}

// UserPost links a user to a post it owns. It is written in the same
// transaction as the post itself.
type UserPost struct {
	UserID    uuid.UUID `gorm:"primaryKey;type:char(36)"`
	PostID    uuid.UUID `gorm:"primaryKey;type:char(36);index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (UserPost) TableName() string { return "user_posts" }
