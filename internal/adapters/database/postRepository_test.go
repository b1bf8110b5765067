package database

import (
	"context"
	"testing"
	"time"

	"postfeed/internal/core/post"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_CreateLinksOwner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostRepositoryDatabase(db)
	users := NewUserRepositoryDatabase(db)
	u := seedUser(t, db, "alice")

	p := newPost(u, "first", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.FindByID(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, u.ID, got.CreatorID)
	assert.Equal(t, "alice", got.Creator.Name, "creator is preloaded")

	owned, err := users.OwnedPostIDs(ctx, u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID.String()}, owned)
}

func TestPostRepository_CreateIsAtomic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostRepositoryDatabase(db)
	u := seedUser(t, db, "alice")

	p := newPost(u, "first", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, p))

	// same id again: the post insert fails, so no second owner link appears either
	dup := newPost(u, "dup", time.Now().UTC())
	dup.ID = p.ID
	assert.Error(t, repo.Create(ctx, dup))

	owned, err := NewUserRepositoryDatabase(db).OwnedPostIDs(ctx, u.ID.String())
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

func TestPostRepository_FindByIDMissing(t *testing.T) {
	repo := NewPostRepositoryDatabase(newTestDB(t))
	_, err := repo.FindByID(context.Background(), uuid.Must(uuid.NewV4()).String())
	assert.ErrorIs(t, err, post.ErrNotFound)
}

func TestPostRepository_FindPageNewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostRepositoryDatabase(db)
	u := seedUser(t, db, "alice")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"t1", "t2", "t3", "t4", "t5"} {
		require.NoError(t, repo.Create(ctx, newPost(u, title, base.Add(time.Duration(i)*time.Minute))))
	}

	titles := func(offset, limit int) []string {
		posts, err := repo.FindPage(ctx, offset, limit)
		require.NoError(t, err)
		out := []string{}
		for _, p := range posts {
			out = append(out, p.Title)
			assert.Equal(t, "alice", p.Creator.Name)
		}
		return out
	}

	assert.Equal(t, []string{"t5", "t4"}, titles(0, 2))
	assert.Equal(t, []string{"t3", "t2"}, titles(2, 2))
	assert.Equal(t, []string{"t1"}, titles(4, 2))
	assert.Empty(t, titles(18, 2))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestPostRepository_UpdateKeepsCreator(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostRepositoryDatabase(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	p := newPost(alice, "old", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, p))

	p.Title = "new"
	p.Content = "new content"
	p.ImageURL = "images/new.png"
	p.CreatorID = bob.ID
	p.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.FindByID(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "new content", got.Content)
	assert.Equal(t, "images/new.png", got.ImageURL)
	assert.Equal(t, alice.ID, got.CreatorID)
}

func TestPostRepository_UpdateMissing(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "alice")
	err := NewPostRepositoryDatabase(db).Update(context.Background(), newPost(u, "ghost", time.Now()))
	assert.ErrorIs(t, err, post.ErrNotFound)
}

func TestPostRepository_DeleteUnlinksOwner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostRepositoryDatabase(db)
	users := NewUserRepositoryDatabase(db)
	u := seedUser(t, db, "alice")

	keep := newPost(u, "keep", time.Now().UTC())
	gone := newPost(u, "gone", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, keep))
	require.NoError(t, repo.Create(ctx, gone))

	require.NoError(t, repo.Delete(ctx, gone.ID.String()))

	_, err := repo.FindByID(ctx, gone.ID.String())
	assert.ErrorIs(t, err, post.ErrNotFound)

	owned, err := users.OwnedPostIDs(ctx, u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID.String()}, owned)

	assert.ErrorIs(t, repo.Delete(ctx, gone.ID.String()), post.ErrNotFound)
}
