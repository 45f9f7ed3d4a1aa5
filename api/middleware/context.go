package middleware

import (
	"context"
	"strconv"

	pkgAuth "github.com/angelmondragon/catalog-backend/pkg/auth"
)

type contextKey string

const ctxClaims contextKey = "claims"

// WithClaims stores validated token claims on the context.
func WithClaims(ctx context.Context, claims *pkgAuth.Claims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClaims, claims)
}

// ClaimsFromContext returns the caller's claims, or nil for anonymous requests.
func ClaimsFromContext(ctx context.Context) *pkgAuth.Claims {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClaims).(*pkgAuth.Claims); ok {
		return v
	}
	return nil
}

func UserIDFromContext(ctx context.Context) string {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return ""
	}
	return strconv.FormatUint(uint64(claims.UserID), 10)
}
