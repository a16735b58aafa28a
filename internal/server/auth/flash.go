package auth

import (
	"time"

	"github.com/dmitrijs2005/tegenaria/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const flashAudience = "flash"

// FlashClaims carries a one-shot message shown on the next rendered page.
type FlashClaims struct {
	jwt.RegisteredClaims
	Message string `json:"msg"`
	Level   string `json:"lvl"`
}

// NewFlashToken signs message and level for ttl. Flash tokens carry their
// own audience, so they are never accepted as session tokens and vice versa.
func NewFlashToken(message, level string, secretKey []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, FlashClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{flashAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Message: message,
		Level:   level,
	})
	return token.SignedString(secretKey)
}

// ParseFlashToken returns the message and level of a valid flash token.
// Anything else yields common.ErrInvalidToken.
func ParseFlashToken(tokenString string, secretKey []byte) (string, string, error) {
	claims := &FlashClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(flashAudience),
	)
	if err != nil || !token.Valid || claims.Message == "" {
		return "", "", common.ErrInvalidToken
	}

	return claims.Message, claims.Level, nil
}
