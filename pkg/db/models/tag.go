package models

import "time"

// Tag is scoped to a store; (store_id, name) is unique.
type Tag struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;size:80;not null;uniqueIndex:idx_tags_store_name"`
	StoreID   uint      `gorm:"column:store_id;not null;uniqueIndex:idx_tags_store_name"`
	Items     []Item    `gorm:"many2many:items_tags;joinForeignKey:TagID;joinReferences:ItemID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
