package items

import (
	"context"
	"fmt"

	"github.com/angelmondragon/catalog-backend/internal/authz"
	"github.com/angelmondragon/catalog-backend/internal/catalog"
	"github.com/angelmondragon/catalog-backend/internal/mutation"
	"github.com/angelmondragon/catalog-backend/pkg/auth"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type itemRepository interface {
	Create(tx *gorm.DB, item *models.Item) error
	Find(tx *gorm.DB, id uint) (*models.Item, error)
	FindOr404(tx *gorm.DB, id uint) (*models.Item, error)
	List(tx *gorm.DB, afterID uint, limit int, storeID *uint) ([]models.Item, error)
	Save(tx *gorm.DB, item *models.Item) error
	Delete(tx *gorm.DB, item *models.Item) error
	Stores(tx *gorm.DB, ids ...uint) (map[uint]models.Store, error)
	StoreExists(tx *gorm.DB, id uint) (bool, error)
}

type runner interface {
	Run(ctx context.Context, u mutation.Unit) error
	Read(ctx context.Context, op authz.Op, claims *auth.Claims, fn func(q *gorm.DB) error) error
}

// Service exposes item operations.
type Service interface {
	Create(ctx context.Context, claims *auth.Claims, req CreateItemRequest) (*ItemDTO, error)
	Get(ctx context.Context, claims *auth.Claims, id uint) (*ItemDTO, error)
	List(ctx context.Context, claims *auth.Claims, params ListParams) (*ListItemsResult, error)
	Upsert(ctx context.Context, claims *auth.Claims, id uint, req UpsertItemRequest) (*UpsertResult, error)
	Delete(ctx context.Context, claims *auth.Claims, id uint) error
}

type service struct {
	repo   itemRepository
	runner runner
}

// NewService builds an item service.
func NewService(repo itemRepository, runner runner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("mutation runner required")
	}
	return &service{repo: repo, runner: runner}, nil
}

func (s *service) Create(ctx context.Context, claims *auth.Claims, req CreateItemRequest) (*ItemDTO, error) {
	var dto ItemDTO
	err := s.runner.Run(ctx, mutation.Unit{
		Op:     authz.OpItemCreate,
		Claims: claims,
		Persist: func(tx *gorm.DB) error {
			item, err := s.newItem(tx, 0, req.Name, req.Price, req.Description, req.StoreID)
			if err != nil {
				return err
			}
			dto, err = s.load(tx, item.ID)
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *service) Get(ctx context.Context, claims *auth.Claims, id uint) (*ItemDTO, error) {
	var dto ItemDTO
	err := s.runner.Read(ctx, authz.OpItemGet, claims, func(q *gorm.DB) error {
		var err error
		dto, err = s.load(q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *service) List(ctx context.Context, claims *auth.Claims, params ListParams) (*ListItemsResult, error) {
	result := &ListItemsResult{Items: []ItemDTO{}}
	err := s.runner.Read(ctx, authz.OpItemList, claims, func(q *gorm.DB) error {
		afterID, err := catalog.AfterID(params.Cursor)
		if err != nil {
			return err
		}
		rows, err := s.repo.List(q, afterID, pagination.LimitWithBuffer(params.Limit), params.StoreID)
		if err != nil {
			return err
		}
		page, next := pagination.Page(rows, params.Limit, func(m models.Item) uint { return m.ID })

		storeIDs := make([]uint, 0, len(page))
		for _, item := range page {
			storeIDs = append(storeIDs, item.StoreID)
		}
		stores, err := s.repo.Stores(q, storeIDs...)
		if err != nil {
			return err
		}
		for _, item := range page {
			var store *models.Store
			if found, ok := stores[item.StoreID]; ok {
				store = &found
			}
			result.Items = append(result.Items, FromModel(item, store))
		}
		result.NextCursor = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Upsert updates the item when it exists and otherwise creates it under the requested id.
func (s *service) Upsert(ctx context.Context, claims *auth.Claims, id uint, req UpsertItemRequest) (*UpsertResult, error) {
	result := &UpsertResult{}
	err := s.runner.Run(ctx, mutation.Unit{
		Op:     authz.OpItemUpsert,
		Claims: claims,
		Persist: func(tx *gorm.DB) error {
			if id == 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "item id must be positive")
			}
			existing, err := s.repo.Find(tx, id)
			if err != nil {
				return err
			}

			if existing != nil {
				name, err := catalog.NormalizeName("name", req.Name)
				if err != nil {
					return err
				}
				price, err := catalog.RequirePrice(req.Price)
				if err != nil {
					return err
				}
				existing.Name = name
				existing.Price = price
				if req.Description != nil {
					existing.Description = req.Description
				}
				if err := s.repo.Save(tx, existing); err != nil {
					return err
				}
				result.Outcome = UpsertUpdated
			} else {
				if req.StoreID == nil || *req.StoreID == 0 {
					return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
						WithDetails(map[string]string{"store_id": "is required when creating an item"})
				}
				if _, err := s.newItem(tx, id, req.Name, req.Price, req.Description, *req.StoreID); err != nil {
					return err
				}
				result.Outcome = UpsertCreated
			}

			result.Item, err = s.load(tx, id)
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Delete(ctx context.Context, claims *auth.Claims, id uint) error {
	return s.runner.Run(ctx, mutation.Unit{
		Op:     authz.OpItemDelete,
		Claims: claims,
		Persist: func(tx *gorm.DB) error {
			item, err := s.repo.FindOr404(tx, id)
			if err != nil {
				return err
			}
			return s.repo.Delete(tx, item)
		},
	})
}

func (s *service) newItem(tx *gorm.DB, id uint, name string, rawPrice *decimal.Decimal, description *string, storeID uint) (*models.Item, error) {
	clean, err := catalog.NormalizeName("name", name)
	if err != nil {
		return nil, err
	}
	price, err := catalog.RequirePrice(rawPrice)
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.StoreExists(tx, storeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Store not found.").
			WithDetails(map[string]any{"store_id": storeID})
	}

	item := &models.Item{
		ID:          id,
		Name:        clean,
		Price:       price,
		Description: description,
		StoreID:     storeID,
	}
	if err := s.repo.Create(tx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) load(q *gorm.DB, id uint) (ItemDTO, error) {
	item, err := s.repo.FindOr404(q, id)
	if err != nil {
		return ItemDTO{}, err
	}
	stores, err := s.repo.Stores(q, item.StoreID)
	if err != nil {
		return ItemDTO{}, err
	}
	var store *models.Store
	if found, ok := stores[item.StoreID]; ok {
		store = &found
	}
	return FromModel(*item, store), nil
}
