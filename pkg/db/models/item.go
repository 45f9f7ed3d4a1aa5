package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"column:name;size:80;not null"`
	Description *string         `gorm:"column:description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	StoreID     uint            `gorm:"column:store_id;not null;index"`
	Tags        []Tag           `gorm:"many2many:items_tags;joinForeignKey:ItemID;joinReferences:TagID"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
