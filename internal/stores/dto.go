package stores

import (
	"github.com/angelmondragon/catalog-backend/internal/catalog"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
)

// CreateStoreRequest is the payload accepted by POST /store.
type CreateStoreRequest struct {
	Name string `json:"name" validate:"required,max=80"`
}

// StoreDTO is a store with its items and tags.
type StoreDTO struct {
	ID    uint              `json:"id"`
	Name  string            `json:"name"`
	Items []catalog.ItemRef `json:"items"`
	Tags  []catalog.TagRef  `json:"tags"`
}

// ListStoresResult is a page of stores.
type ListStoresResult struct {
	Stores     []StoreDTO `json:"stores"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// FromModel maps a store and its tags into the response shape.
func FromModel(store models.Store, tags []models.Tag) StoreDTO {
	return StoreDTO{
		ID:    store.ID,
		Name:  store.Name,
		Items: catalog.ItemRefs(store.Items),
		Tags:  catalog.TagRefs(tags),
	}
}
