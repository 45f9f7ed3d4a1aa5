package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType distinguishes short-lived access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

func (t TokenType) IsValid() bool {
	return t == TokenTypeAccess || t == TokenTypeRefresh
}

// TokenPayload captures the data available when minting a JWT.
type TokenPayload struct {
	UserID  uint
	IsAdmin bool
	Fresh   bool
	Type    TokenType
	JTI     string
}

// Claims represents the typed JWT issued to clients.
type Claims struct {
	UserID  uint      `json:"user_id"`
	IsAdmin bool      `json:"is_admin"`
	Fresh   bool      `json:"fresh"`
	Type    TokenType `json:"type"`
	jwt.RegisteredClaims
}

// Remaining returns how long the token stays valid after now; zero once expired.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c == nil || c.ExpiresAt == nil {
		return 0
	}
	left := c.ExpiresAt.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

func subjectFor(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}
