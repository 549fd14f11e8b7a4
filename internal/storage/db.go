package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/stolasapp/scribe/internal/storage/db"
)

// DB is a [Store] backed by a SQLite database.
type DB struct {
	db      *sql.DB
	queries *db.Queries
}

// NewDB opens (and migrates) the database at dsn.
func NewDB(ctx context.Context, dsn string, logger *slog.Logger) (*DB, error) {
	handle, err := db.Open(ctx, logger, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{
		db:      handle,
		queries: db.New(handle),
	}, nil
}

// Close satisfies the [Store] interface.
func (d *DB) Close() error {
	return d.db.Close()
}

// ListUsers satisfies the [Users] interface.
func (d *DB) ListUsers(ctx context.Context, afterName string, limit int32) ([]db.User, error) {
	return d.queries.GetUsers(ctx, db.GetUsersParams{
		AfterName: afterName,
		Limit:     int64(limit),
	})
}

// GetUserByName satisfies the [Users] interface.
func (d *DB) GetUserByName(ctx context.Context, name string) (db.User, error) {
	user, err := d.queries.GetUserByName(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrNotFound
	}
	return user, err
}

// CreateUser satisfies the [Users] interface.
func (d *DB) CreateUser(ctx context.Context, name string, passwordHash []byte) (db.User, error) {
	user, err := d.queries.CreateUser(ctx, db.CreateUserParams{
		Name:         name,
		PasswordHash: passwordHash,
	})
	// on conflict do nothing returns no row
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrAlreadyExists
	}
	return user, err
}

// ListPosts satisfies the [Posts] interface.
func (d *DB) ListPosts(ctx context.Context) ([]db.Post, error) {
	posts, err := d.queries.GetPosts(ctx)
	if posts == nil && err == nil {
		posts = []db.Post{}
	}
	return posts, err
}

// GetPost satisfies the [Posts] interface.
func (d *DB) GetPost(ctx context.Context, postID int64) (db.Post, error) {
	post, err := d.queries.GetPost(ctx, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return post, ErrNotFound
	}
	return post, err
}

// CreatePost satisfies the [Posts] interface.
func (d *DB) CreatePost(ctx context.Context, post db.Post) (db.Post, error) {
	return d.queries.CreatePost(ctx, db.CreatePostParams{
		Title:   post.Title,
		Content: post.Content,
		UserID:  post.UserID,
	})
}

// UpdatePost satisfies the [Posts] interface.
func (d *DB) UpdatePost(ctx context.Context, post db.Post) (db.Post, error) {
	updated, err := d.queries.UpdatePost(ctx, db.UpdatePostParams{
		Title:   post.Title,
		Content: post.Content,
		ID:      post.ID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return updated, ErrNotFound
	}
	return updated, err
}

// DeletePost satisfies the [Posts] interface.
func (d *DB) DeletePost(ctx context.Context, postID int64) error {
	switch n, err := d.queries.DeletePost(ctx, postID); {
	case err != nil:
		return err
	case n == 0:
		return ErrNotFound
	default:
		return nil
	}
}

var _ Store = (*DB)(nil)
