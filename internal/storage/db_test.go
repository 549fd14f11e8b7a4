package storage

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/scribe/internal/storage/db"
)

func TestDB(t *testing.T) {
	t.Parallel()

	store, err := NewDB(t.Context(), filepath.Join(t.TempDir(), "db.sqlite"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	const userName = "test"
	owner, err := store.CreateUser(t.Context(), userName, []byte("hash"))
	require.NoError(t, err)
	require.NotZero(t, owner.ID)

	t.Run("CreatePost", func(t *testing.T) {
		t.Parallel()

		post, err := store.CreatePost(t.Context(), db.Post{
			Title:   t.Name(),
			Content: "content",
			UserID:  owner.ID,
		})
		require.NoError(t, err)
		assert.NotZero(t, post.ID)

		actual, err := store.GetPost(t.Context(), post.ID)
		require.NoError(t, err)
		assert.Equal(t, post, actual)
	})

	t.Run("CreatePostUnknownOwner", func(t *testing.T) {
		t.Parallel()

		_, err := store.CreatePost(t.Context(), db.Post{
			Title:   t.Name(),
			Content: "content",
			UserID:  owner.ID + 1000,
		})
		require.Error(t, err)
	})

	t.Run("GetPost", func(t *testing.T) {
		t.Parallel()

		_, err := store.GetPost(t.Context(), -1)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpdatePost", func(t *testing.T) {
		t.Parallel()

		post, err := store.CreatePost(t.Context(), db.Post{
			Title:   t.Name(),
			Content: "before",
			UserID:  owner.ID,
		})
		require.NoError(t, err)

		post.Content = "after"
		updated, err := store.UpdatePost(t.Context(), post)
		require.NoError(t, err)
		assert.Equal(t, post, updated)

		actual, err := store.GetPost(t.Context(), post.ID)
		require.NoError(t, err)
		assert.Equal(t, "after", actual.Content)

		_, err = store.UpdatePost(t.Context(), db.Post{ID: -1})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("DeletePost", func(t *testing.T) {
		t.Parallel()

		post, err := store.CreatePost(t.Context(), db.Post{
			Title:   t.Name(),
			Content: "content",
			UserID:  owner.ID,
		})
		require.NoError(t, err)

		err = store.DeletePost(t.Context(), post.ID)
		require.NoError(t, err)
		_, err = store.GetPost(t.Context(), post.ID)
		require.ErrorIs(t, err, ErrNotFound)

		err = store.DeletePost(t.Context(), post.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})

	// These operations are tested together since they observe the full set of
	// users in the system.
	t.Run("Users", func(t *testing.T) {
		t.Parallel()

		res, err := store.ListUsers(t.Context(), "", 100)
		require.NoError(t, err)
		assert.Len(t, res, 1)
		assert.Equal(t, userName, res[0].Name)

		res, err = store.ListUsers(t.Context(), userName, 100)
		require.NoError(t, err)
		assert.Empty(t, res)

		actual, err := store.GetUserByName(t.Context(), userName)
		require.NoError(t, err)
		assert.Equal(t, owner, actual)

		_, err = store.GetUserByName(t.Context(), "TEST")
		require.ErrorIs(t, err, ErrNotFound)

		_, err = store.CreateUser(t.Context(), userName, []byte("other"))
		require.ErrorIs(t, err, ErrAlreadyExists)
	})
}

func TestDB_ListPosts(t *testing.T) {
	t.Parallel()

	store, err := NewDB(t.Context(), db.MemoryDSN, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	posts, err := store.ListPosts(t.Context())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	owner, err := store.CreateUser(t.Context(), "owner", []byte("hash"))
	require.NoError(t, err)

	var created []db.Post
	for _, title := range []string{"first", "second", "third"} {
		post, err := store.CreatePost(t.Context(), db.Post{
			Title:   title,
			Content: title,
			UserID:  owner.ID,
		})
		require.NoError(t, err)
		created = append(created, post)
	}

	posts, err = store.ListPosts(t.Context())
	require.NoError(t, err)
	assert.Equal(t, created, posts)
}

func TestDB_CreateUserConcurrent(t *testing.T) {
	t.Parallel()

	store, err := NewDB(t.Context(), filepath.Join(t.TempDir(), "db.sqlite"), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	const attempts = 20
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for range attempts {
		wg.Go(func() {
			_, err := store.CreateUser(t.Context(), "alice", []byte("hash"))
			errs <- err
		})
	}
	wg.Wait()
	close(errs)

	created, conflicts := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrAlreadyExists):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)

	users, err := store.ListUsers(t.Context(), "", 100)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
