// Package storage provides the state management for users and posts.
package storage

import (
	"context"

	"github.com/stolasapp/scribe/internal/storage/db"
)

const (
	// ErrNotFound is returned when a post or user cannot be found.
	ErrNotFound Error = "not found"
	// ErrAlreadyExists is returned if a unique user already exists.
	ErrAlreadyExists Error = "already exists"
)

// Error is an error type returned by the storage implementation.
type Error string

// Error satisfies [error].
func (e Error) Error() string { return string(e) }

// Users are the methods on a storage implementation that are responsible for
// accessing and creating users.
type Users interface {
	// ListUsers returns the users ordered by name, starting after the given
	// name (if provided) up to the given limit of records.
	ListUsers(ctx context.Context, afterName string, limit int32) ([]db.User, error)
	// GetUserByName returns a single user with the specified name. Names are
	// matched exactly. An [ErrNotFound] is returned if the name does not exist.
	GetUserByName(ctx context.Context, name string) (db.User, error)
	// CreateUser inserts the user, returning it with its assigned ID. An
	// [ErrAlreadyExists] error is returned if the username is already in use;
	// the check and the insert are a single statement.
	CreateUser(ctx context.Context, name string, passwordHash []byte) (db.User, error)
}

// Posts are the methods on a storage implementation that are responsible for
// accessing and modifying posts.
type Posts interface {
	// ListPosts returns every post in creation order.
	ListPosts(ctx context.Context) ([]db.Post, error)
	// GetPost returns the post with the given ID. An [ErrNotFound] is returned
	// if it does not exist.
	GetPost(ctx context.Context, postID int64) (db.Post, error)
	// CreatePost inserts the post, returning it with its assigned ID.
	CreatePost(ctx context.Context, post db.Post) (db.Post, error)
	// UpdatePost overwrites the title and content of an existing post. This is
	// a full PUT-style update, so callers should GetPost first. An
	// [ErrNotFound] is returned if the post no longer exists.
	UpdatePost(ctx context.Context, post db.Post) (db.Post, error)
	// DeletePost permanently removes a post. An [ErrNotFound] is returned if
	// the post does not exist.
	DeletePost(ctx context.Context, postID int64) error
}

// Store is the combination interface for [Users] and [Posts].
type Store interface {
	Users
	Posts
	// Close releases any resources held by the store. An error is returned if
	// the store cannot be cleanly closed.
	Close() error
}
