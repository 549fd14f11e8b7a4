// Package seed fills a running server with fake users and posts through the
// API client.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/stolasapp/scribe/internal/client"
)

// Seed returns the seed from the SCRIBE_SEED environment variable, or a
// random one if unset or invalid.
func Seed() uint64 {
	if env := os.Getenv("SCRIBE_SEED"); env != "" {
		if seed, err := strconv.ParseUint(env, 10, 64); err == nil {
			return seed
		}
	}
	return rand.Uint64() //nolint:gosec // intentionally weak random for test data
}

// User is a generated account.
type User struct {
	Name     string
	Password string
}

// Post is a generated post, owned by Corpus.Users[Author].
type Post struct {
	Author  int
	Title   string
	Content string
	Format  string
}

// Corpus is the generated data set. The same seed always yields the same
// corpus.
type Corpus struct {
	Users []User
	Posts []Post
}

// Generate creates a corpus of users and posts. Posts are spread randomly
// across the users.
func Generate(seed uint64, users, posts int) Corpus {
	faker := gofakeit.New(seed)
	corpus := Corpus{
		Users: make([]User, users),
		Posts: make([]Post, 0, posts),
	}
	for i := range users {
		corpus.Users[i] = User{
			// suffix keeps names unique even if the faker repeats itself
			Name:     faker.Username() + strconv.Itoa(i),
			Password: faker.Password(true, true, true, false, false, passwordLength),
		}
	}
	if users == 0 {
		return corpus
	}
	for range posts {
		content, format := generateContent(faker)
		corpus.Posts = append(corpus.Posts, Post{
			Author:  faker.IntN(users),
			Title:   generateTitle(faker),
			Content: content,
			Format:  format,
		})
	}
	return corpus
}

// Result reports what [Populate] created.
type Result struct {
	Users   int
	PostIDs []int64
}

// Populate signs up every user in corpus and creates their posts on the
// server behind api.
func Populate(ctx context.Context, logger *slog.Logger, api *client.Client, corpus Corpus) (Result, error) {
	var res Result
	authors := make([]*client.Client, len(corpus.Users))
	for i, user := range corpus.Users {
		if err := api.Signup(ctx, user.Name, user.Password); err != nil {
			return res, fmt.Errorf("failed to sign up %s: %w", user.Name, err)
		}
		authors[i] = api.As(user.Name, user.Password)
		res.Users++
		logger.DebugContext(ctx, "user created", slog.String("name", user.Name))
	}
	for _, post := range corpus.Posts {
		id, err := authors[post.Author].CreatePost(ctx, client.NewPost{
			Title:   post.Title,
			Content: post.Content,
			Format:  post.Format,
		})
		if err != nil {
			return res, fmt.Errorf("failed to create post %q: %w", post.Title, err)
		}
		res.PostIDs = append(res.PostIDs, id)
		logger.DebugContext(ctx, "post created",
			slog.Int64("id", id),
			slog.String("author", corpus.Users[post.Author].Name),
		)
	}
	return res, nil
}
