package userapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"postfeed/internal/config"
	userEntity "postfeed/internal/core/user"
	userPort "postfeed/internal/ports/user"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = time.Hour

// MinPasswordLength is the shortest password signup accepts.
const MinPasswordLength = 5

// UserService issues identities and tokens for the feed.
type UserService struct {
	UserRepository userPort.UserRepository
	jwtKey         []byte
	now            func() time.Time
}

func NewUserService(repo userPort.UserRepository, jwtKey []byte) *UserService {
	return &UserService{
		UserRepository: repo,
		jwtKey:         jwtKey,
		now:            time.Now,
	}
}

// LoginUser checks the password and issues a signed token whose subject is the user id.
func (s *UserService) LoginUser(ctx context.Context, email string, password string) (*userPort.LoginResponse, error) {
	user, err := s.UserRepository.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, userEntity.ErrNotFound) {
			config.Logger.Error("❌ Error finding user", zap.Error(err))
			return nil, err
		}
		return nil, userEntity.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		config.Logger.Debug("invalid password", zap.String("userID", user.ID.String()))
		return nil, userEntity.ErrInvalidCredentials
	}

	expiresAt := s.now().Add(TokenTTL)
	token, err := s.generateJWT(user, expiresAt)
	if err != nil {
		config.Logger.Error("❌ Error generating JWT", zap.Error(err))
		return nil, fmt.Errorf("could not generate token: %w", err)
	}

	return &userPort.LoginResponse{
		Token:     token,
		UserID:    user.ID.String(),
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

func (s *UserService) generateJWT(user *userEntity.User, expiresAt time.Time) (string, error) {
	claims := &jwt.StandardClaims{
		Subject:   user.ID.String(),
		Issuer:    "postfeed",
		IssuedAt:  s.now().Unix(),
		ExpiresAt: expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtKey)
}

// RegisterUser creates a user with a bcrypt-hashed password.
func (s *UserService) RegisterUser(ctx context.Context, email, name, password string) (*userPort.UserDTO, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: please enter a valid email", userEntity.ErrInvalidInput)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", userEntity.ErrInvalidInput)
	}
	if len(strings.TrimSpace(password)) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", userEntity.ErrInvalidInput, MinPasswordLength)
	}

	existing, err := s.UserRepository.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, userEntity.ErrAlreadyExists
	}
	if err != nil && !errors.Is(err, userEntity.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := s.UserRepository.Create(ctx, &userEntity.User{
		ID:       uuid.Must(uuid.NewV4()),
		Email:    email,
		Name:     name,
		Password: string(hashedPassword),
	})
	if err != nil {
		return nil, err
	}
	config.Logger.Info("✅ User registered", zap.String("userID", u.ID.String()))

	return &userPort.UserDTO{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
