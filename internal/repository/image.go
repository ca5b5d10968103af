package repository

import (
	"context"

	"tiendamontana/internal/domain/model"
)

// 商品画像のメタ情報（URL・altテキスト・並び順）の永続化。
type ProductImageRepository interface {
	ListByProductID(ctx context.Context, productID int64) ([]model.ProductImage, error)
	FindByID(ctx context.Context, imageID int64) (model.ProductImage, error)
	Create(ctx context.Context, img model.ProductImage) (model.ProductImage, error)
	Update(ctx context.Context, img model.ProductImage) error
	Delete(ctx context.Context, imageID int64) error

	//プライマリ画像は商品につき1枚
	SetPrimary(ctx context.Context, productID int64, imageID int64) error
}
