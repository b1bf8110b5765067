package userapp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	userEntity "postfeed/internal/core/user"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*userEntity.User
	err   error
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*userEntity.User{}} }

func (r *memUsers) Create(_ context.Context, u *userEntity.User) (*userEntity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID.String()] = u
	return u, nil
}

func (r *memUsers) FindByID(_ context.Context, id string) (*userEntity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, userEntity.ErrNotFound
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*userEntity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, userEntity.ErrNotFound
}

func (r *memUsers) OwnedPostIDs(context.Context, string) ([]string, error) { return nil, nil }

var secret = []byte("test-secret")

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newMemUsers(), secret)

	u, err := svc.RegisterUser(ctx, " Alice@Example.com ", "Alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "Alice", u.Name)
	assert.NotEmpty(t, u.ID)

	stored, err := svc.UserRepository.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", stored.Password, "password is hashed")

	res, err := svc.LoginUser(ctx, "alice@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.UserID)

	claims := &jwt.StandardClaims{}
	tok, err := jwt.ParseWithClaims(res.Token, claims, func(*jwt.Token) (interface{}, error) { return secret, nil })
	require.NoError(t, err)
	assert.True(t, tok.Valid)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, res.ExpiresAt, claims.ExpiresAt)
}

func TestRegisterUser_Rejects(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newMemUsers(), secret)

	_, err := svc.RegisterUser(ctx, "alice@example.com", "Alice", "hunter2")
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, "ALICE@example.com", "Other", "hunter2")
	assert.ErrorIs(t, err, userEntity.ErrAlreadyExists)

	_, err = svc.RegisterUser(ctx, "not-an-email", "Bob", "hunter2")
	assert.ErrorIs(t, err, userEntity.ErrInvalidInput)

	_, err = svc.RegisterUser(ctx, "bob@example.com", " ", "hunter2")
	assert.ErrorIs(t, err, userEntity.ErrInvalidInput)

	_, err = svc.RegisterUser(ctx, "bob@example.com", "Bob", "abcd")
	assert.ErrorIs(t, err, userEntity.ErrInvalidInput)
}

func TestLoginUser_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newMemUsers(), secret)
	_, err := svc.RegisterUser(ctx, "alice@example.com", "Alice", "hunter2")
	require.NoError(t, err)

	_, err = svc.LoginUser(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, userEntity.ErrInvalidCredentials)

	_, err = svc.LoginUser(ctx, "nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, userEntity.ErrInvalidCredentials)
}

func TestLoginUser_StorageError(t *testing.T) {
	repo := newMemUsers()
	repo.err = errors.New("db down")
	svc := NewUserService(repo, secret)

	_, err := svc.LoginUser(context.Background(), "alice@example.com", "hunter2")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, userEntity.ErrInvalidCredentials)
}

func TestLoginUser_TokenExpiry(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newMemUsers(), secret)
	_, err := svc.RegisterUser(ctx, "alice@example.com", "Alice", "hunter2")
	require.NoError(t, err)

	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	res, err := svc.LoginUser(ctx, "alice@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, issued.Add(TokenTTL).Unix(), res.ExpiresAt)

	_, err = jwt.ParseWithClaims(res.Token, &jwt.StandardClaims{}, func(*jwt.Token) (interface{}, error) { return secret, nil })
	assert.Error(t, err, "token issued in 2024 is long expired")
}
