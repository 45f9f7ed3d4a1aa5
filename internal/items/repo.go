package items

import (
	"github.com/angelmondragon/catalog-backend/internal/repo"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles item persistence on caller-supplied handles.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// Create inserts the item. A non-zero ID is written as given.
func (r *Repository) Create(tx *gorm.DB, item *models.Item) error {
	explicit := item.ID != 0
	if err := repo.Add(tx, item); err != nil {
		return err
	}
	if explicit && tx.Dialector.Name() == "postgres" {
		// explicit ids bypass the sequence; move it past the highest id
		return tx.Exec(`SELECT setval(pg_get_serial_sequence('items', 'id'), GREATEST((SELECT MAX(id) FROM items), 1))`).Error
	}
	return nil
}

// Find loads an item with its tags, or nil when absent.
func (r *Repository) Find(tx *gorm.DB, id uint) (*models.Item, error) {
	return repo.Get[models.Item](tx, id, withTags)
}

// FindOr404 loads an item with its tags or fails with NotFound.
func (r *Repository) FindOr404(tx *gorm.DB, id uint) (*models.Item, error) {
	return repo.GetOr404[models.Item](tx, id, "Item", withTags)
}

// List returns up to limit items above afterID, optionally restricted to one store.
func (r *Repository) List(tx *gorm.DB, afterID uint, limit int, storeID *uint) ([]models.Item, error) {
	scopes := []repo.Scope{repo.After(afterID, limit), withTags}
	if storeID != nil {
		id := *storeID
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB { return q.Where("store_id = ?", id) })
	}
	return repo.Query[models.Item](tx, scopes...)
}

// Save writes the item's mutable columns.
func (r *Repository) Save(tx *gorm.DB, item *models.Item) error {
	return tx.Model(item).Select("name", "price", "description", "updated_at").Updates(item).Error
}

// Delete removes the item and its tag links.
func (r *Repository) Delete(tx *gorm.DB, item *models.Item) error {
	if err := tx.Where("item_id = ?", item.ID).Delete(&models.ItemTag{}).Error; err != nil {
		return err
	}
	return repo.Delete(tx, item)
}

// Stores loads the given stores keyed by id.
func (r *Repository) Stores(tx *gorm.DB, ids ...uint) (map[uint]models.Store, error) {
	out := make(map[uint]models.Store, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := repo.Query[models.Store](tx, func(q *gorm.DB) *gorm.DB {
		return q.Where("id IN ?", ids)
	})
	if err != nil {
		return nil, err
	}
	for _, store := range rows {
		out[store.ID] = store
	}
	return out, nil
}

// StoreExists reports whether the store is present.
func (r *Repository) StoreExists(tx *gorm.DB, id uint) (bool, error) {
	return repo.Exists[models.Store](tx, id)
}

func withTags(q *gorm.DB) *gorm.DB {
	return q.Preload("Tags", func(q *gorm.DB) *gorm.DB {
		return q.Order("tags.id ASC")
	})
}
