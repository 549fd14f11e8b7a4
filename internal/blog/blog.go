// Package blog implements the user and post operations behind the HTTP API.
//
// Every error returned from a [Service] method is a [*connect.Error]. Its code
// classifies the failure and its message is safe to show to clients; internal
// failures carry [connect.CodeInternal] and wrap the underlying cause.
package blog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"
	"github.com/google/cel-go/cel"

	"github.com/stolasapp/scribe/internal/content"
	"github.com/stolasapp/scribe/internal/sec"
	"github.com/stolasapp/scribe/internal/storage"
	"github.com/stolasapp/scribe/internal/storage/db"
)

// Service implements the blog operations over a post store and a credential
// store.
type Service struct {
	posts     storage.Posts
	creds     *sec.Credentials
	logger    *slog.Logger
	validator *validator.Validate
	filterEnv *cel.Env
}

// New creates a Service.
func New(posts storage.Posts, creds *sec.Credentials, logger *slog.Logger) (*Service, error) {
	env, err := newFilterEnv()
	if err != nil {
		return nil, err
	}
	return &Service{
		posts:     posts,
		creds:     creds,
		logger:    logger,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		filterEnv: env,
	}, nil
}

// Credentials is a username and password pair.
type Credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// PostInput describes a new post.
type PostInput struct {
	Title   string `validate:"required"`
	Content string `validate:"required"`
	// Format of Content; see [content.ParseFormat].
	Format string
}

// PostPatch describes a partial update of a post. Nil fields are left
// untouched; present fields are applied even when empty.
type PostPatch struct {
	Title   *string
	Content *string
	// Format of Content; see [content.ParseFormat].
	Format string
}

// Signup registers a new user.
func (s *Service) Signup(ctx context.Context, creds Credentials) (db.User, error) {
	if err := s.validator.StructCtx(ctx, creds); err != nil {
		return db.User{}, publicError(connect.CodeInvalidArgument, MsgMissingCredentials)
	}
	user, err := s.creds.Register(ctx, creds.Username, creds.Password)
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		return db.User{}, publicError(connect.CodeAlreadyExists, MsgUserExists)
	case err != nil:
		return db.User{}, internalError(err)
	}
	s.logger.InfoContext(ctx, "user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Name),
	)
	return user, nil
}

// Login checks a username and password pair, returning the matching user.
func (s *Service) Login(ctx context.Context, creds Credentials) (db.User, error) {
	user, err := s.creds.Verify(ctx, creds.Username, creds.Password)
	switch {
	case errors.Is(err, sec.ErrInvalidCredentials):
		return db.User{}, publicError(connect.CodeUnauthenticated, MsgUnauthorized)
	case err != nil:
		return db.User{}, internalError(err)
	}
	return user, nil
}

// CreatePost stores a new post owned by owner.
func (s *Service) CreatePost(ctx context.Context, owner db.User, input PostInput) (db.Post, error) {
	if err := s.validator.StructCtx(ctx, input); err != nil {
		return db.Post{}, publicError(connect.CodeInvalidArgument, MsgMissingPost)
	}
	body, err := importContent(input.Format, input.Content)
	if err != nil {
		return db.Post{}, err
	}
	if body == "" {
		return db.Post{}, publicError(connect.CodeInvalidArgument, MsgMissingPost)
	}
	post, err := s.posts.CreatePost(ctx, db.Post{
		Title:   input.Title,
		Content: body,
		UserID:  owner.ID,
	})
	if err != nil {
		return db.Post{}, internalError(err)
	}
	return post, nil
}

// ListPosts returns every post in creation order, keeping only those matching
// filter if it is not empty. The filter is a CEL expression over the post
// bound to this, for example:
//
//	this.user_id == 1 && this.title.contains("Go")
func (s *Service) ListPosts(ctx context.Context, filter string) ([]db.Post, error) {
	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	return applyFilter(ctx, s.filterEnv, strings.TrimSpace(filter), posts)
}

// GetPost returns a single post.
func (s *Service) GetPost(ctx context.Context, postID int64) (db.Post, error) {
	post, err := s.posts.GetPost(ctx, postID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return db.Post{}, PostNotFound()
	case err != nil:
		return db.Post{}, internalError(err)
	}
	return post, nil
}

// RenderPost returns the content of a post as sanitized HTML.
func (s *Service) RenderPost(ctx context.Context, postID int64) ([]byte, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	out, err := content.Render(post.Content)
	if err != nil {
		return nil, internalError(err)
	}
	return out, nil
}

// UpdatePost applies patch to a post owned by requester.
func (s *Service) UpdatePost(ctx context.Context, requester db.User, postID int64, patch PostPatch) (db.Post, error) {
	post, err := s.OwnedPost(ctx, postID, requester)
	if err != nil {
		return db.Post{}, err
	}
	if patch.Title != nil {
		post.Title = *patch.Title
	}
	if patch.Content != nil {
		if post.Content, err = importContent(patch.Format, *patch.Content); err != nil {
			return db.Post{}, err
		}
	}
	post, err = s.posts.UpdatePost(ctx, post)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return db.Post{}, PostNotFound()
	case err != nil:
		return db.Post{}, internalError(err)
	}
	return post, nil
}

// DeletePost removes a post owned by requester.
func (s *Service) DeletePost(ctx context.Context, requester db.User, postID int64) error {
	if _, err := s.OwnedPost(ctx, postID, requester); err != nil {
		return err
	}
	err := s.posts.DeletePost(ctx, postID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return PostNotFound()
	case err != nil:
		return internalError(err)
	}
	s.logger.InfoContext(ctx, "post deleted",
		slog.Int64("post_id", postID),
		slog.Int64("user_id", requester.ID),
	)
	return nil
}

// OwnedPost loads a post that requester may modify. A missing post is
// reported before a foreign one. UpdatePost and DeletePost check ownership
// themselves; callers use OwnedPost to fail early.
func (s *Service) OwnedPost(ctx context.Context, postID int64, requester db.User) (db.Post, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return db.Post{}, err
	}
	if post.UserID != requester.ID {
		return db.Post{}, publicError(connect.CodePermissionDenied, MsgUnauthorized)
	}
	return post, nil
}

func importContent(format, body string) (string, error) {
	parsed, err := content.ParseFormat(format)
	if err != nil {
		return "", connect.NewError(connect.CodeInvalidArgument, err)
	}
	out, err := content.Import(parsed, body)
	if err != nil {
		return "", connect.NewError(connect.CodeInvalidArgument, err)
	}
	return out, nil
}
