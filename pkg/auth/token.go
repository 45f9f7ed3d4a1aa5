package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// MintToken issues a signed JWT for the provided payload. The TTL follows the token type.
func MintToken(cfg config.JWTConfig, now time.Time, payload TokenPayload) (string, *Claims, error) {
	if cfg.Secret == "" {
		return "", nil, fmt.Errorf("jwt secret is required")
	}
	if cfg.Issuer == "" {
		return "", nil, fmt.Errorf("jwt issuer is required")
	}
	if !payload.Type.IsValid() {
		return "", nil, fmt.Errorf("invalid token type %q", payload.Type)
	}
	if payload.UserID == 0 {
		return "", nil, fmt.Errorf("user id is required")
	}

	ttl := cfg.AccessTokenTTL()
	if payload.Type == TokenTypeRefresh {
		ttl = cfg.RefreshTokenTTL()
		// refresh tokens are never fresh
		payload.Fresh = false
	}
	if ttl <= 0 {
		return "", nil, fmt.Errorf("%s token ttl must be positive", payload.Type)
	}

	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}

	claims := &Claims{
		UserID:  payload.UserID,
		IsAdmin: payload.IsAdmin,
		Fresh:   payload.Fresh,
		Type:    payload.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   subjectFor(payload.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("signing jwt: %w", err)
	}
	return signed, claims, nil
}

// ParseToken verifies the signature and registered claims of a JWT and returns typed claims.
// Expired tokens surface jwt.ErrTokenExpired in the error chain.
func ParseToken(cfg config.JWTConfig, tokenString string) (*Claims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !claims.Type.IsValid() || claims.ID == "" || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing catalog claims", jwt.ErrTokenInvalidClaims)
	}

	return claims, nil
}
