package users

import (
	"context"
	"fmt"

	"github.com/angelmondragon/catalog-backend/internal/authz"
	"github.com/angelmondragon/catalog-backend/internal/mutation"
	"github.com/angelmondragon/catalog-backend/pkg/auth"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"gorm.io/gorm"
)

type userRepository interface {
	FindOr404(tx *gorm.DB, id uint) (*models.User, error)
	Delete(tx *gorm.DB, user *models.User) error
}

type runner interface {
	Run(ctx context.Context, u mutation.Unit) error
	Read(ctx context.Context, op authz.Op, claims *auth.Claims, fn func(q *gorm.DB) error) error
}

// Service exposes account lookups and removal.
type Service interface {
	Get(ctx context.Context, claims *auth.Claims, id uint) (*UserDTO, error)
	Delete(ctx context.Context, claims *auth.Claims, id uint) error
}

type service struct {
	repo   userRepository
	runner runner
}

func NewService(repo userRepository, runner runner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("mutation runner required")
	}
	return &service{repo: repo, runner: runner}, nil
}

func (s *service) Get(ctx context.Context, claims *auth.Claims, id uint) (*UserDTO, error) {
	var dto *UserDTO
	err := s.runner.Read(ctx, authz.OpUserGet, claims, func(q *gorm.DB) error {
		user, err := s.repo.FindOr404(q, id)
		if err != nil {
			return err
		}
		dto = FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (s *service) Delete(ctx context.Context, claims *auth.Claims, id uint) error {
	return s.runner.Run(ctx, mutation.Unit{
		Op:     authz.OpUserDel,
		Claims: claims,
		Persist: func(tx *gorm.DB) error {
			user, err := s.repo.FindOr404(tx, id)
			if err != nil {
				return err
			}
			return s.repo.Delete(tx, user)
		},
	})
}
