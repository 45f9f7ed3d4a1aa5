package models

// ItemTag is the join row linking an item to a tag.
type ItemTag struct {
	ItemID uint `gorm:"column:item_id;primaryKey"`
	TagID  uint `gorm:"column:tag_id;primaryKey"`
}

func (ItemTag) TableName() string {
	return "items_tags"
}
