package stores

import (
	"context"
	"fmt"

	"github.com/angelmondragon/catalog-backend/internal/authz"
	"github.com/angelmondragon/catalog-backend/internal/catalog"
	"github.com/angelmondragon/catalog-backend/internal/mutation"
	"github.com/angelmondragon/catalog-backend/pkg/auth"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
	"gorm.io/gorm"
)

const duplicateNameMessage = "A store with that name already exists."

type storeRepository interface {
	Create(tx *gorm.DB, name string) (*models.Store, error)
	FindByID(tx *gorm.DB, id uint) (*models.Store, error)
	List(tx *gorm.DB, afterID uint, limit int) ([]models.Store, error)
	TagsFor(tx *gorm.DB, storeIDs ...uint) (map[uint][]models.Tag, error)
	DeleteCascade(tx *gorm.DB, store *models.Store) error
}

type runner interface {
	Run(ctx context.Context, u mutation.Unit) error
	Read(ctx context.Context, op authz.Op, claims *auth.Claims, fn func(q *gorm.DB) error) error
}

// Service exposes store operations.
type Service interface {
	Create(ctx context.Context, claims *auth.Claims, name string) (*StoreDTO, error)
	Get(ctx context.Context, claims *auth.Claims, id uint) (*StoreDTO, error)
	List(ctx context.Context, claims *auth.Claims, params pagination.Params) (*ListStoresResult, error)
	Delete(ctx context.Context, claims *auth.Claims, id uint) error
}

type service struct {
	repo   storeRepository
	runner runner
}

// NewService builds a store service.
func NewService(repo storeRepository, runner runner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("mutation runner required")
	}
	return &service{repo: repo, runner: runner}, nil
}

func (s *service) Create(ctx context.Context, claims *auth.Claims, name string) (*StoreDTO, error) {
	var created *models.Store
	err := s.runner.Run(ctx, mutation.Unit{
		Op:       authz.OpStoreCreate,
		Claims:   claims,
		Conflict: duplicateNameMessage,
		Persist: func(tx *gorm.DB) error {
			clean, err := catalog.NormalizeName("name", name)
			if err != nil {
				return err
			}
			created, err = s.repo.Create(tx, clean)
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	dto := FromModel(*created, nil)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, claims *auth.Claims, id uint) (*StoreDTO, error) {
	var dto StoreDTO
	err := s.runner.Read(ctx, authz.OpStoreGet, claims, func(q *gorm.DB) error {
		store, err := s.repo.FindByID(q, id)
		if err != nil {
			return err
		}
		tags, err := s.repo.TagsFor(q, store.ID)
		if err != nil {
			return err
		}
		dto = FromModel(*store, tags[store.ID])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *service) List(ctx context.Context, claims *auth.Claims, params pagination.Params) (*ListStoresResult, error) {
	result := &ListStoresResult{Stores: []StoreDTO{}}
	err := s.runner.Read(ctx, authz.OpStoreList, claims, func(q *gorm.DB) error {
		afterID, err := catalog.AfterID(params.Cursor)
		if err != nil {
			return err
		}
		rows, err := s.repo.List(q, afterID, pagination.LimitWithBuffer(params.Limit))
		if err != nil {
			return err
		}
		page, next := pagination.Page(rows, params.Limit, func(m models.Store) uint { return m.ID })

		ids := make([]uint, 0, len(page))
		for _, store := range page {
			ids = append(ids, store.ID)
		}
		tags, err := s.repo.TagsFor(q, ids...)
		if err != nil {
			return err
		}
		for _, store := range page {
			result.Stores = append(result.Stores, FromModel(store, tags[store.ID]))
		}
		result.NextCursor = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Delete(ctx context.Context, claims *auth.Claims, id uint) error {
	return s.runner.Run(ctx, mutation.Unit{
		Op:     authz.OpStoreDelete,
		Claims: claims,
		Persist: func(tx *gorm.DB) error {
			store, err := s.repo.FindByID(tx, id)
			if err != nil {
				return err
			}
			return s.repo.DeleteCascade(tx, store)
		},
	})
}
