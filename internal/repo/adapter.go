package repo

import (
	"errors"
	"fmt"

	"github.com/angelmondragon/catalog-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"gorm.io/gorm"
)

// Scope narrows a Query, e.g. by filtering or preloading.
type Scope = func(*gorm.DB) *gorm.DB

// Get loads the entity with the given primary key. A missing row yields (nil, nil).
func Get[T any](tx *gorm.DB, id uint, scopes ...Scope) (*T, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var entity T
	err := tx.Scopes(scopes...).First(&entity, id).Error
	if db.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// GetOr404 loads the entity or fails with a NotFound error naming the entity.
func GetOr404[T any](tx *gorm.DB, id uint, entity string, scopes ...Scope) (*T, error) {
	found, err := Get[T](tx, id, scopes...)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found.", entity)).
			WithDetails(map[string]any{"id": id})
	}
	return found, nil
}

// Query returns the entities selected by scopes, ordered by id.
func Query[T any](tx *gorm.DB, scopes ...Scope) ([]T, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var rows []T
	if err := tx.Scopes(scopes...).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Exists reports whether a row of T with the given id is present.
func Exists[T any](tx *gorm.DB, id uint) (bool, error) {
	if tx == nil {
		return false, gorm.ErrInvalidTransaction
	}
	var count int64
	if err := tx.Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Add inserts the entity. Constraint violations surface to the caller untouched.
func Add[T any](tx *gorm.DB, entity *T) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if entity == nil {
		return errors.New("entity is required")
	}
	return tx.Create(entity).Error
}

// Delete removes the entity by primary key.
func Delete[T any](tx *gorm.DB, entity *T) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if entity == nil {
		return errors.New("entity is required")
	}
	return tx.Delete(entity).Error
}

// After keyset-paginates by id.
func After(afterID uint, limit int) Scope {
	return func(q *gorm.DB) *gorm.DB {
		if afterID > 0 {
			q = q.Where("id > ?", afterID)
		}
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q
	}
}
