package stores

import (
	"github.com/angelmondragon/catalog-backend/internal/repo"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles store persistence. Every method runs on the handle it is given
// so callers decide the transaction boundary.
type Repository struct{}

// NewRepository returns the store repository.
func NewRepository() *Repository {
	return &Repository{}
}

// Create persists a new store row.
func (r *Repository) Create(tx *gorm.DB, name string) (*models.Store, error) {
	store := &models.Store{Name: name}
	if err := repo.Add(tx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// FindByID loads a store with its items. Missing rows yield a NotFound error.
func (r *Repository) FindByID(tx *gorm.DB, id uint) (*models.Store, error) {
	return repo.GetOr404[models.Store](tx, id, "Store", withItems)
}

// List returns up to limit stores with an id above afterID.
func (r *Repository) List(tx *gorm.DB, afterID uint, limit int) ([]models.Store, error) {
	return repo.Query[models.Store](tx, repo.After(afterID, limit), withItems)
}

// TagsFor returns the tags of the given stores keyed by store id.
func (r *Repository) TagsFor(tx *gorm.DB, storeIDs ...uint) (map[uint][]models.Tag, error) {
	out := make(map[uint][]models.Tag, len(storeIDs))
	if len(storeIDs) == 0 {
		return out, nil
	}
	tags, err := repo.Query[models.Tag](tx, func(q *gorm.DB) *gorm.DB {
		return q.Where("store_id IN ?", storeIDs)
	})
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		out[tag.StoreID] = append(out[tag.StoreID], tag)
	}
	return out, nil
}

// DeleteCascade removes the store together with its items and their tag links.
// Tags that belonged to the store are left in place.
func (r *Repository) DeleteCascade(tx *gorm.DB, store *models.Store) error {
	itemIDs := tx.Model(&models.Item{}).Select("id").Where("store_id = ?", store.ID)
	if err := tx.Where("item_id IN (?)", itemIDs).Delete(&models.ItemTag{}).Error; err != nil {
		return err
	}
	if err := tx.Where("store_id = ?", store.ID).Delete(&models.Item{}).Error; err != nil {
		return err
	}
	return repo.Delete(tx, store)
}

func withItems(q *gorm.DB) *gorm.DB {
	return q.Preload("Items", func(q *gorm.DB) *gorm.DB {
		return q.Order("id ASC")
	})
}
