package model

import "time"

// 商品画像。保存先はURLのみ（アップロード自体は外部）。
type ProductImage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	URL       string    `gorm:"type:varchar(500);not null" json:"url"`
	AltText   string    `gorm:"type:varchar(255)" json:"alt_text"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	IsPrimary bool      `gorm:"not null;default:false" json:"is_primary"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
