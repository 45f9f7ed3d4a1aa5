package middleware

import (
	"context"
	"net/http"
	"strings"

	pkgAuth "github.com/angelmondragon/catalog-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

// TokenValidator checks a raw bearer token.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*pkgAuth.Claims, error)
}

// Authenticate resolves a bearer token into claims on the request context.
// Requests without a usable token continue anonymously; a refused token is
// recorded on the context so operations that need a caller can report why.
// Whether anonymous access is allowed is decided per operation by the
// authorization gate.
func Authenticate(validator TokenValidator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" || validator == nil {
				next.ServeHTTP(w, r)
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				reject(w, r, next, logg, pkgerrors.New(pkgerrors.CodeTokenInvalid, "Signature verification failed."))
				return
			}

			claims, err := validator.Validate(r.Context(), token)
			if err != nil {
				reject(w, r, next, logg, err)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			if logg != nil {
				ctx = logg.WithActor(ctx, claims.UserID, claims.IsAdmin)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, next http.Handler, logg *logger.Logger, err error) {
	ctx := pkgAuth.WithRejection(r.Context(), err)
	if logg != nil {
		logg.Debug(logg.WithField(ctx, "reason", err.Error()), "bearer token refused")
	}
	next.ServeHTTP(w, r.WithContext(ctx))
}
