package tags

import (
	"context"
	"fmt"

	"github.com/angelmondragon/catalog-backend/internal/authz"
	"github.com/angelmondragon/catalog-backend/internal/catalog"
	"github.com/angelmondragon/catalog-backend/internal/mutation"
	"github.com/angelmondragon/catalog-backend/pkg/auth"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	duplicateNameMessage = "A tag with that name already exists in that store."
	tagInUseMessage      = "Could not delete tag. Make sure tag is not associated with any items, then try again."
	unlinkedMessage      = "Item removed from tag"
)

type tagRepository interface {
	Create(tx *gorm.DB, storeID uint, name string) (*models.Tag, error)
	FindOr404(tx *gorm.DB, id uint) (*models.Tag, error)
	ListByStore(tx *gorm.DB, storeID uint) ([]models.Tag, error)
	FindStoreOr404(tx *gorm.DB, id uint) (*models.Store, error)
	FindStore(tx *gorm.DB, id uint) (*models.Store, error)
	FindItemOr404(tx *gorm.DB, id uint) (*models.Item, error)
	CountLinks(tx *gorm.DB, tagID uint) (int64, error)
	Link(tx *gorm.DB, itemID, tagID uint) error
	Unlink(tx *gorm.DB, itemID, tagID uint) (bool, error)
	Delete(tx *gorm.DB, tag *models.Tag) error
}

type runner interface {
	Run(ctx context.Context, u mutation.Unit) error
	Read(ctx context.Context, op authz.Op, claims *auth.Claims, fn func(q *gorm.DB) error) error
}

// Service exposes tag operations and item-tag linking.
type Service interface {
	Create(ctx context.Context, claims *auth.Claims, storeID uint, name string) (*TagDTO, error)
	ListForStore(ctx context.Context, claims *auth.Claims, storeID uint) ([]TagDTO, error)
	Get(ctx context.Context, claims *auth.Claims, id uint) (*TagDTO, error)
	Delete(ctx context.Context, claims *auth.Claims, id uint) error
	Link(ctx context.Context, claims *auth.Claims, itemID, tagID uint) (*TagDTO, error)
	Unlink(ctx context.Context, claims *auth.Claims, itemID, tagID uint) (*UnlinkResult, error)
}

type service struct {
	repo   tagRepository
	runner runner
}

// NewService builds a tag service.
func NewService(repo tagRepository, runner runner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tag repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("mutation runner required")
	}
	return &service{repo: repo, runner: runner}, nil
}

func (s *service) Create(ctx context.Context, claims *auth.Claims, storeID uint, name string) (*TagDTO, error) {
	var dto TagDTO
	err := s.runner.Run(ctx, mutation.Unit{
		Op:       authz.OpTagCreate,
		Claims:   claims,
		Conflict: duplicateNameMessage,
		Persist: func(tx *gorm.DB) error {
			store, err := s.repo.FindStoreOr404(tx, storeID)
			if err != nil {
				return err
			}
			clean, err := catalog.NormalizeName("name", name)
			if err != nil {
				return err
			}
			tag, err := s.repo.Create(tx, store.ID, clean)
			if err != nil {
				return err
			}
			dto = FromModel(*tag, store)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *service) ListForStore(ctx context.Context, claims *auth.Claims, storeID uint) ([]TagDTO, error) {
	out := []TagDTO{}
	err := s.runner.Read(ctx, authz.OpTagList, claims, func(q *gorm.DB) error {
		store, err := s.repo.FindStoreOr404(q, storeID)
		if err != nil {
			return err
		}
		tags, err := s.repo.ListByStore(q, store.ID)
		if err != nil {
			return err
		}
		for _, tag := range tags {
			out = append(out, FromModel(tag, store))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, claims *auth.Claims, id uint) (*TagDTO, error) {
	var dto TagDTO
	err := s.runner.Read(ctx, authz.OpTagGet, claims, func(q *gorm.DB) error {
		var err error
		dto, err = s.load(q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// Delete removes a tag that no item references.
func (s *service) Delete(ctx context.Context, claims *auth.Claims, id uint) error {
	return s.runner.Run(ctx, mutation.Unit{
		Op:     authz.OpTagDelete,
		Claims: claims,
		Persist: func(tx *gorm.DB) error {
			tag, err := s.repo.FindOr404(tx, id)
			if err != nil {
				return err
			}
			links, err := s.repo.CountLinks(tx, tag.ID)
			if err != nil {
				return err
			}
			if links > 0 {
				return pkgerrors.New(pkgerrors.CodeConflict, tagInUseMessage).
					WithDetails(map[string]any{"tag_id": tag.ID, "items": links})
			}
			return s.repo.Delete(tx, tag)
		},
	})
}

// Link attaches a tag to an item. Items and tags are not required to share a store.
func (s *service) Link(ctx context.Context, claims *auth.Claims, itemID, tagID uint) (*TagDTO, error) {
	var dto TagDTO
	err := s.runner.Run(ctx, mutation.Unit{
		Op:     authz.OpTagLink,
		Claims: claims,
		Persist: func(tx *gorm.DB) error {
			item, err := s.repo.FindItemOr404(tx, itemID)
			if err != nil {
				return err
			}
			tag, err := s.repo.FindOr404(tx, tagID)
			if err != nil {
				return err
			}
			if err := s.repo.Link(tx, item.ID, tag.ID); err != nil {
				return err
			}
			dto, err = s.load(tx, tag.ID)
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *service) Unlink(ctx context.Context, claims *auth.Claims, itemID, tagID uint) (*UnlinkResult, error) {
	var result UnlinkResult
	err := s.runner.Run(ctx, mutation.Unit{
		Op:     authz.OpTagUnlink,
		Claims: claims,
		Persist: func(tx *gorm.DB) error {
			item, err := s.repo.FindItemOr404(tx, itemID)
			if err != nil {
				return err
			}
			tag, err := s.repo.FindOr404(tx, tagID)
			if err != nil {
				return err
			}
			removed, err := s.repo.Unlink(tx, item.ID, tag.ID)
			if err != nil {
				return err
			}
			if !removed {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Item is not linked to that tag.").
					WithDetails(map[string]any{"item_id": item.ID, "tag_id": tag.ID})
			}
			result = UnlinkResult{
				Message: unlinkedMessage,
				Item:    catalog.ItemRefFromModel(*item),
				Tag:     catalog.TagRefFromModel(*tag),
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) load(q *gorm.DB, id uint) (TagDTO, error) {
	tag, err := s.repo.FindOr404(q, id)
	if err != nil {
		return TagDTO{}, err
	}
	store, err := s.repo.FindStore(q, tag.StoreID)
	if err != nil {
		return TagDTO{}, err
	}
	return FromModel(*tag, store), nil
}
