package items

import (
	"github.com/angelmondragon/catalog-backend/internal/catalog"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// CreateItemRequest is the payload accepted by POST /item.
type CreateItemRequest struct {
	Name        string           `json:"name" validate:"required,max=80"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0,lt=10000000000"`
	Description *string          `json:"description,omitempty"`
	StoreID     uint             `json:"store_id" validate:"required"`
}

// UpsertItemRequest is the payload accepted by PUT /item/{itemId}. StoreID is only
// consulted when the item does not exist yet.
type UpsertItemRequest struct {
	Name        string           `json:"name" validate:"required,max=80"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0,lt=10000000000"`
	Description *string          `json:"description,omitempty"`
	StoreID     *uint            `json:"store_id,omitempty"`
}

// UpsertOutcome tells which branch an upsert took.
type UpsertOutcome string

const (
	UpsertUpdated UpsertOutcome = "updated"
	UpsertCreated UpsertOutcome = "created"
)

// UpsertResult carries the branch taken and the resulting item.
type UpsertResult struct {
	Outcome UpsertOutcome
	Item    ItemDTO
}

// ListParams selects a page of items.
type ListParams struct {
	Limit   int
	Cursor  string
	StoreID *uint
}

// ItemDTO is an item with its store and tags.
type ItemDTO struct {
	catalog.ItemRef
	Store *catalog.StoreRef `json:"store,omitempty"`
	Tags  []catalog.TagRef  `json:"tags"`
}

// ListItemsResult is a page of items.
type ListItemsResult struct {
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// FromModel maps an item and its (optional) store into the response shape.
func FromModel(item models.Item, store *models.Store) ItemDTO {
	dto := ItemDTO{
		ItemRef: catalog.ItemRefFromModel(item),
		Tags:    catalog.TagRefs(item.Tags),
	}
	if store != nil {
		ref := catalog.StoreRefFromModel(*store)
		dto.Store = &ref
	}
	return dto
}
