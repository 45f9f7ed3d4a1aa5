package tags

import (
	"github.com/angelmondragon/catalog-backend/internal/repo"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles tag persistence and item links on caller-supplied handles.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// Create persists a tag within a store.
func (r *Repository) Create(tx *gorm.DB, storeID uint, name string) (*models.Tag, error) {
	tag := &models.Tag{StoreID: storeID, Name: name}
	if err := repo.Add(tx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// FindOr404 loads a tag with its items or fails with NotFound.
func (r *Repository) FindOr404(tx *gorm.DB, id uint) (*models.Tag, error) {
	return repo.GetOr404[models.Tag](tx, id, "Tag", withItems)
}

// ListByStore returns every tag of a store with its items.
func (r *Repository) ListByStore(tx *gorm.DB, storeID uint) ([]models.Tag, error) {
	return repo.Query[models.Tag](tx, withItems, func(q *gorm.DB) *gorm.DB {
		return q.Where("store_id = ?", storeID)
	})
}

// FindStoreOr404 loads a store without relations or fails with NotFound.
func (r *Repository) FindStoreOr404(tx *gorm.DB, id uint) (*models.Store, error) {
	return repo.GetOr404[models.Store](tx, id, "Store")
}

// FindStore loads a store without relations, or nil when absent.
func (r *Repository) FindStore(tx *gorm.DB, id uint) (*models.Store, error) {
	return repo.Get[models.Store](tx, id)
}

// FindItemOr404 loads an item without relations or fails with NotFound.
func (r *Repository) FindItemOr404(tx *gorm.DB, id uint) (*models.Item, error) {
	return repo.GetOr404[models.Item](tx, id, "Item")
}

// CountLinks returns how many items reference the tag.
func (r *Repository) CountLinks(tx *gorm.DB, tagID uint) (int64, error) {
	var n int64
	if err := tx.Model(&models.ItemTag{}).Where("tag_id = ?", tagID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Link associates an item with a tag. Linking an existing pair is a no-op.
func (r *Repository) Link(tx *gorm.DB, itemID, tagID uint) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ItemTag{ItemID: itemID, TagID: tagID}).Error
}

// Unlink removes an item-tag association and reports whether one existed.
func (r *Repository) Unlink(tx *gorm.DB, itemID, tagID uint) (bool, error) {
	res := tx.Where("item_id = ? AND tag_id = ?", itemID, tagID).Delete(&models.ItemTag{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the tag row.
func (r *Repository) Delete(tx *gorm.DB, tag *models.Tag) error {
	return repo.Delete(tx, tag)
}

func withItems(q *gorm.DB) *gorm.DB {
	return q.Preload("Items", func(q *gorm.DB) *gorm.DB {
		return q.Order("items.id ASC")
	})
}
