package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/catalog-backend/internal/authz"
	"github.com/angelmondragon/catalog-backend/internal/mutation"
	"github.com/angelmondragon/catalog-backend/internal/users"
	pkgAuth "github.com/angelmondragon/catalog-backend/pkg/auth"
	"github.com/angelmondragon/catalog-backend/pkg/auth/revocation"
	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/security"
	"github.com/angelmondragon/catalog-backend/pkg/tasks"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const (
	invalidCredentialsMessage = "Invalid credentials."
	duplicateUserMessage      = "A user with that username or email already exists."
	revocationFailedMessage   = "token revocation store unavailable"
	tokenRevokedMessage       = "The token has been revoked."
)

// Service issues, refreshes, revokes and validates tokens and registers accounts.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
	Login(ctx context.Context, req LoginRequest) (*TokenPair, error)
	Refresh(ctx context.Context, claims *pkgAuth.Claims) (*AccessToken, error)
	Logout(ctx context.Context, claims *pkgAuth.Claims) error
	Validate(ctx context.Context, token string) (*pkgAuth.Claims, error)
}

type userRepository interface {
	Create(tx *gorm.DB, dto users.CreateUserDTO) (*models.User, error)
	FindByUsername(tx *gorm.DB, username string) (*models.User, error)
	Taken(tx *gorm.DB, username, email string) (bool, error)
	Count(tx *gorm.DB) (int64, error)
	LockRegistrations(tx *gorm.DB) error
	UpdateLastLogin(tx *gorm.DB, id uint, at time.Time) error
}

type runner interface {
	Run(ctx context.Context, u mutation.Unit) error
}

type enqueuer interface {
	Enqueue(ctx context.Context, name string, args ...any) error
}

// ServiceParams bundles the dependencies required to build the identity service.
type ServiceParams struct {
	Users       userRepository
	Runner      runner
	Gate        mutation.Authorizer
	Hasher      security.Hasher
	Revocations revocation.Store
	Queue       enqueuer
	JWTConfig   config.JWTConfig
	Now         func() time.Time
}

type service struct {
	users       userRepository
	runner      runner
	gate        mutation.Authorizer
	hasher      security.Hasher
	revocations revocation.Store
	queue       enqueuer
	jwtCfg      config.JWTConfig
	now         func() time.Time
}

// NewService constructs the identity service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Runner == nil {
		return nil, fmt.Errorf("mutation runner is required")
	}
	if params.Gate == nil {
		return nil, fmt.Errorf("authorizer is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if params.Revocations == nil {
		return nil, fmt.Errorf("revocation store is required")
	}
	if params.Queue == nil {
		return nil, fmt.Errorf("task queue is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:       params.Users,
		runner:      params.Runner,
		gate:        params.Gate,
		hasher:      params.Hasher,
		revocations: params.Revocations,
		queue:       params.Queue,
		jwtCfg:      params.JWTConfig,
		now:         now,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var created *models.User
	err := s.runner.Run(ctx, mutation.Unit{
		Op:       authz.OpRegister,
		Conflict: duplicateUserMessage,
		Persist: func(tx *gorm.DB) error {
			if username == "" || email == "" || req.Password == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "username, email and password are required")
			}
			if err := s.users.LockRegistrations(tx); err != nil {
				return err
			}
			taken, err := s.users.Taken(tx, username, email)
			if err != nil {
				return err
			}
			if taken {
				return pkgerrors.New(pkgerrors.CodeConflict, duplicateUserMessage)
			}
			count, err := s.users.Count(tx)
			if err != nil {
				return err
			}

			hash, err := s.hasher.Hash(req.Password)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
			}

			created, err = s.users.Create(tx, users.CreateUserDTO{
				Username:     username,
				Email:        email,
				PasswordHash: hash,
				// the first account administers the catalog
				IsAdmin: count == 0,
			})
			return err
		},
		After: func(ctx context.Context) error {
			return s.queue.Enqueue(ctx, tasks.SendUserRegistrationEmail, email, username)
		},
	})
	if err != nil {
		return nil, err
	}
	return users.FromModel(created), nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	now := s.now().UTC()
	var user *models.User
	err := s.runner.Run(ctx, mutation.Unit{
		Op: authz.OpLogin,
		Persist: func(tx *gorm.DB) error {
			found, err := s.users.FindByUsername(tx, strings.TrimSpace(req.Username))
			if err != nil {
				return err
			}
			if found == nil {
				return pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
			}
			ok, err := s.hasher.Verify(req.Password, found.PasswordHash)
			if err != nil && !errors.Is(err, security.ErrInvalidHash) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
			}
			if err := s.users.UpdateLastLogin(tx, found.ID, now); err != nil {
				return err
			}
			found.LastLoginAt = &now
			user = found
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	access, _, err := pkgAuth.MintToken(s.jwtCfg, now, pkgAuth.TokenPayload{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
		Fresh:   true,
		Type:    pkgAuth.TokenTypeAccess,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	refresh, _, err := pkgAuth.MintToken(s.jwtCfg, now, pkgAuth.TokenPayload{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
		Type:    pkgAuth.TokenTypeRefresh,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint refresh token")
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh consumes a refresh token: its jti is revoked and a non-fresh access token is issued.
func (s *service) Refresh(ctx context.Context, claims *pkgAuth.Claims) (*AccessToken, error) {
	if err := s.gate.Authorize(claims, authz.OpRefresh); err != nil {
		return nil, authz.Explain(ctx, err)
	}
	now := s.now().UTC()
	// the revoke doubles as the single-use claim on the refresh token
	if err := s.revoke(ctx, claims, now); err != nil {
		return nil, err
	}

	access, _, err := pkgAuth.MintToken(s.jwtCfg, now, pkgAuth.TokenPayload{
		UserID:  claims.UserID,
		IsAdmin: claims.IsAdmin,
		Fresh:   false,
		Type:    pkgAuth.TokenTypeAccess,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &AccessToken{AccessToken: access}, nil
}

func (s *service) Logout(ctx context.Context, claims *pkgAuth.Claims) error {
	if err := s.gate.Authorize(claims, authz.OpLogout); err != nil {
		return authz.Explain(ctx, err)
	}
	return s.revoke(ctx, claims, s.now().UTC())
}

// Validate checks signature, then expiry, then revocation.
func (s *service) Validate(ctx context.Context, token string) (*pkgAuth.Claims, error) {
	claims, err := pkgAuth.ParseToken(s.jwtCfg, token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeTokenExpired, err, "The token has expired.")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeTokenInvalid, err, "Signature verification failed.")
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, revocationFailedMessage)
	}
	if revoked {
		return nil, pkgerrors.New(pkgerrors.CodeTokenRevoked, tokenRevokedMessage)
	}
	return claims, nil
}

func (s *service) revoke(ctx context.Context, claims *pkgAuth.Claims, now time.Time) error {
	added, err := s.revocations.Revoke(ctx, claims.ID, claims.Remaining(now))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, revocationFailedMessage)
	}
	if !added {
		return pkgerrors.New(pkgerrors.CodeTokenRevoked, tokenRevokedMessage)
	}
	return nil
}
