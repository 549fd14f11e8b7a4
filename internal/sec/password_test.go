package sec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	pepper := []byte("pepper")

	t.Run("string password", func(t *testing.T) {
		t.Parallel()
		hash, err := HashPassword(pepper, "mypassword", bcrypt.MinCost)
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.NotContains(t, string(hash), "mypassword")
	})

	t.Run("byte slice password", func(t *testing.T) {
		t.Parallel()
		hash, err := HashPassword(pepper, []byte("mypassword"), bcrypt.MinCost)
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
	})

	t.Run("salted per record", func(t *testing.T) {
		t.Parallel()
		first, err := HashPassword(pepper, "mypassword", bcrypt.MinCost)
		require.NoError(t, err)
		second, err := HashPassword(pepper, "mypassword", bcrypt.MinCost)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("long password", func(t *testing.T) {
		t.Parallel()
		hash, err := HashPassword(pepper, strings.Repeat("x", 200), bcrypt.MinCost)
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
	})

	t.Run("invalid cost uses default", func(t *testing.T) {
		t.Parallel()
		hash, err := HashPassword(pepper, "mypassword", 0)
		require.NoError(t, err)
		cost, err := bcrypt.Cost(hash)
		require.NoError(t, err)
		assert.Equal(t, bcrypt.DefaultCost, cost)
	})
}

func TestComparePassword(t *testing.T) {
	t.Parallel()

	pepper := []byte("pepper")
	password := "correctpassword"
	hash, err := HashPassword(pepper, password, bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("correct password string", func(t *testing.T) {
		t.Parallel()
		err := ComparePassword(pepper, password, hash)
		assert.NoError(t, err)
	})

	t.Run("correct password bytes", func(t *testing.T) {
		t.Parallel()
		err := ComparePassword(pepper, []byte(password), hash)
		assert.NoError(t, err)
	})

	t.Run("incorrect password", func(t *testing.T) {
		t.Parallel()
		err := ComparePassword(pepper, "wrongpassword", hash)
		assert.Error(t, err)
	})

	t.Run("different pepper", func(t *testing.T) {
		t.Parallel()
		err := ComparePassword([]byte("other"), password, hash)
		assert.Error(t, err)
	})
}
