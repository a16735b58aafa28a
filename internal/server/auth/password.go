// Package auth implements password hashing and the signed session token
// carried in the login cookie.
package auth

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a salted bcrypt hash of plain. Costs outside the
// bcrypt range fall back to bcrypt.DefaultCost. Passwords of any length are
// accepted.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword(prehash(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether candidate matches hash. A nil or malformed
// hash never matches.
func CheckPassword(hash *string, candidate string) bool {
	if hash == nil || *hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*hash), prehash(candidate)) == nil
}

// prehash maps a password of any byte length to 44 bytes, below bcrypt's
// 72 byte input limit.
func prehash(plain string) []byte {
	sum := sha256.Sum256([]byte(plain))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
