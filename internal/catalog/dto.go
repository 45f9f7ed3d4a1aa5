// Package catalog holds the response shapes shared by the store, item and tag services.
package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

// MaxNameLength bounds store, item and tag names.
const MaxNameLength = 80

// StoreRef is a store without its relations.
type StoreRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ItemRef is an item without its relations.
type ItemRef struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description *string `json:"description,omitempty"`
	StoreID     uint    `json:"store_id"`
}

// TagRef is a tag without its relations.
type TagRef struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	StoreID uint   `json:"store_id"`
}

func StoreRefFromModel(m models.Store) StoreRef {
	return StoreRef{ID: m.ID, Name: m.Name}
}

func ItemRefFromModel(m models.Item) ItemRef {
	return ItemRef{
		ID:          m.ID,
		Name:        m.Name,
		Price:       m.Price.InexactFloat64(),
		Description: m.Description,
		StoreID:     m.StoreID,
	}
}

func TagRefFromModel(m models.Tag) TagRef {
	return TagRef{ID: m.ID, Name: m.Name, StoreID: m.StoreID}
}

func ItemRefs(items []models.Item) []ItemRef {
	out := make([]ItemRef, 0, len(items))
	for _, item := range items {
		out = append(out, ItemRefFromModel(item))
	}
	return out
}

func TagRefs(tags []models.Tag) []TagRef {
	out := make([]TagRef, 0, len(tags))
	for _, tag := range tags {
		out = append(out, TagRefFromModel(tag))
	}
	return out
}

// NormalizeName trims a name and enforces presence and length.
func NormalizeName(field, name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{field: "is required"})
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{field: "must be at most 80 characters"})
	}
	return trimmed, nil
}

// Prices are stored as NUMERIC(12,2).
const PriceScale = 2

// MaxPrice is the exclusive upper bound a NUMERIC(12,2) column can hold.
var MaxPrice = decimal.New(1, 12-PriceScale)

// ValidatePrice rejects prices the price column cannot store exactly: negative,
// at or above MaxPrice, or with more than two decimal places.
func ValidatePrice(price decimal.Decimal) error {
	var problem string
	switch {
	case price.IsNegative():
		problem = "must be greater than or equal to 0"
	case price.GreaterThanOrEqual(MaxPrice):
		problem = "must be less than " + MaxPrice.String()
	case !price.Equal(price.Truncate(PriceScale)):
		problem = "must have at most 2 decimal places"
	default:
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{"price": problem})
}

// RequirePrice rejects missing prices and those ValidatePrice refuses.
func RequirePrice(price *decimal.Decimal) (decimal.Decimal, error) {
	if price == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"price": "is required"})
	}
	if err := ValidatePrice(*price); err != nil {
		return decimal.Zero, err
	}
	return *price, nil
}

// AfterID decodes a list cursor into the id keyset position; empty means the first page.
func AfterID(cursor string) (uint, error) {
	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if parsed == nil {
		return 0, nil
	}
	return parsed.AfterID, nil
}
