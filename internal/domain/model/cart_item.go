package model

import "time"

// カート明細。追加時点の商品情報をスナップショットで保存する。
// 商品側が後から変わっても明細は変わらない。
type CartItem struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID            int64     `gorm:"not null;index" json:"cart_id"`
	ProductID         int64     `gorm:"not null;index" json:"product_id"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	NameSnapshot      string    `gorm:"type:varchar(255);not null" json:"name_snapshot"`
	SKUSnapshot       string    `gorm:"type:varchar(100);not null;column:sku_snapshot" json:"sku_snapshot"`
	SlugSnapshot      string    `gorm:"type:varchar(255);not null" json:"slug_snapshot"`
	ImageSnapshot     string    `gorm:"type:varchar(500)" json:"image_snapshot"`
	UnitPriceSnapshot int64     `gorm:"not null;column:unit_price_snapshot" json:"unit_price_snapshot"`
	WeightSnapshot    int64     `gorm:"not null;default:0" json:"weight_snapshot"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
