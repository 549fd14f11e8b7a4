package sec

import (
	"context"
	"errors"

	"github.com/stolasapp/scribe/internal/storage"
	"github.com/stolasapp/scribe/internal/storage/db"
)

// ErrInvalidCredentials is returned by [Credentials.Verify] when the user does
// not exist or the password does not match. The two cases are not
// distinguished.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Credentials registers and verifies users against a [storage.Users] store.
type Credentials struct {
	users  storage.Users
	pepper []byte
	cost   int
	decoy  []byte
}

// NewCredentials creates a Credentials for users. The secret is mixed into
// every password before hashing; cost is the bcrypt work factor.
func NewCredentials(users storage.Users, secret string, cost int) (*Credentials, error) {
	pepper := []byte(secret)
	// compared against when the user does not exist, so a miss costs the same
	// as a wrong password
	decoy, err := HashPassword(pepper, "decoy", cost)
	if err != nil {
		return nil, err
	}
	return &Credentials{
		users:  users,
		pepper: pepper,
		cost:   cost,
		decoy:  decoy,
	}, nil
}

// Register stores a new user with the hashed password. A
// [storage.ErrAlreadyExists] error is returned if the name is taken.
func (c *Credentials) Register(ctx context.Context, name, password string) (db.User, error) {
	hash, err := HashPassword(c.pepper, password, c.cost)
	if err != nil {
		return db.User{}, err
	}
	return c.users.CreateUser(ctx, name, hash)
}

// Verify returns the user matching name if password is correct. An
// [ErrInvalidCredentials] is returned otherwise; any other error comes from
// the store.
func (c *Credentials) Verify(ctx context.Context, name, password string) (db.User, error) {
	user, err := c.users.GetUserByName(ctx, name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		_ = ComparePassword(c.pepper, password, c.decoy)
		return db.User{}, ErrInvalidCredentials
	case err != nil:
		return db.User{}, err
	}
	if err = ComparePassword(c.pepper, password, user.PasswordHash); err != nil {
		return db.User{}, ErrInvalidCredentials
	}
	return user, nil
}
