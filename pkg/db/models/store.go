package models

import "time"

// Store owns items and tags. Deleting a store removes its items but leaves tags behind,
// so tags reference stores by id only.
type Store struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;size:80;not null;uniqueIndex"`
	Items     []Item    `gorm:"foreignKey:StoreID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
