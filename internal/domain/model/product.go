package model

import (
	"time"

	"gorm.io/gorm"
)

// 商品。価格はセンタボ、重量はグラムの整数で持つ。
type Product struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug          string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	SKU           string         `gorm:"type:varchar(100);not null;uniqueIndex;column:sku" json:"sku"`
	Description   string         `gorm:"type:text" json:"description"`
	Price         int64          `gorm:"not null" json:"price"`
	Stock         int64          `gorm:"not null" json:"stock"`
	Weight        int64          `gorm:"not null;default:0" json:"weight"`
	BrandID       int64          `gorm:"index" json:"brand_id"`
	CategoryID    int64          `gorm:"index" json:"category_id"`
	SubcategoryID *int64         `gorm:"index" json:"subcategory_id"`
	IsActive      bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt     time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// 商品の特徴（箇条書き）
type ProductFeature struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	Label     string `gorm:"type:varchar(255);not null" json:"label"`
	Position  int    `gorm:"not null;default:0" json:"position"`
}

// 商品の仕様（名前と値のペア）
type ProductSpec struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	Name      string `gorm:"type:varchar(255);not null" json:"name"`
	Value     string `gorm:"type:varchar(255);not null" json:"value"`
	Position  int    `gorm:"not null;default:0" json:"position"`
}
