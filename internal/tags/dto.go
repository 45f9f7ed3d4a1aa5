package tags

import (
	"github.com/angelmondragon/catalog-backend/internal/catalog"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
)

// CreateTagRequest is the payload accepted by POST /store/{storeId}/tag.
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=80"`
}

// TagDTO is a tag with its items. Store is omitted once the owning store is gone.
type TagDTO struct {
	catalog.TagRef
	Store *catalog.StoreRef `json:"store,omitempty"`
	Items []catalog.ItemRef `json:"items"`
}

// UnlinkResult echoes both sides of a removed association.
type UnlinkResult struct {
	Message string          `json:"message"`
	Item    catalog.ItemRef `json:"item"`
	Tag     catalog.TagRef  `json:"tag"`
}

// FromModel maps a tag and its (optional) store into the response shape.
func FromModel(tag models.Tag, store *models.Store) TagDTO {
	dto := TagDTO{
		TagRef: catalog.TagRefFromModel(tag),
		Items:  catalog.ItemRefs(tag.Items),
	}
	if store != nil {
		ref := catalog.StoreRefFromModel(*store)
		dto.Store = &ref
	}
	return dto
}
