package user

import (
	"context"

	"postfeed/internal/core/user"
)

// UserRepository is the persistence port for users.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) (*user.User, error)
	FindByID(ctx context.Context, id string) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	OwnedPostIDs(ctx context.Context, userID string) ([]string, error)
}

// DTOs for the use cases.
type LoginResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	ExpiresAt int64  `json:"expiresAt"`
}

type UserDTO struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
