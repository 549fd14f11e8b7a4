package sec

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// ComparePassword returns an error if the provided password, mixed with
// pepper, does not resolve to the given hash.
func ComparePassword[T ~string | ~[]byte](pepper []byte, password T, hash []byte) error {
	return bcrypt.CompareHashAndPassword(hash, peppered(pepper, []byte(password)))
}

// HashPassword generates the bcrypt hash of the password mixed with pepper. A
// cost outside of bcrypt's accepted range falls back to [bcrypt.DefaultCost].
func HashPassword[T ~string | ~[]byte](pepper []byte, password T, cost int) ([]byte, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword(peppered(pepper, []byte(password)), cost)
}

// peppered returns the hex HMAC-SHA256 of password keyed by pepper. The output
// is always 64 bytes, under bcrypt's 72 byte input limit.
func peppered(pepper, password []byte) []byte {
	mac := hmac.New(sha256.New, pepper)
	mac.Write(password)
	sum := mac.Sum(nil)
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum)
	return out
}
