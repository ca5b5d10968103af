package model

import "time"

// 注文明細。注文確定時点のスナップショットで固定する。
type OrderItem struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID           int64     `gorm:"not null;index" json:"order_id"`
	ProductID         int64     `gorm:"not null;index" json:"product_id"`
	NameSnapshot      string    `gorm:"type:varchar(255);not null" json:"name_snapshot"`
	SKUSnapshot       string    `gorm:"type:varchar(100);not null;column:sku_snapshot" json:"sku_snapshot"`
	SlugSnapshot      string    `gorm:"type:varchar(255);not null" json:"slug_snapshot"`
	ImageSnapshot     string    `gorm:"type:varchar(500)" json:"image_snapshot"`
	UnitPriceSnapshot int64     `gorm:"not null" json:"unit_price_snapshot"`
	WeightSnapshot    int64     `gorm:"not null;default:0" json:"weight_snapshot"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
