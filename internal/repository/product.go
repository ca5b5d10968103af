package repository

import (
	"context"
	"errors"

	"tiendamontana/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 公開一覧の検索条件
type ProductListQuery struct {
	Page          int
	Limit         int
	Q             string
	CategoryID    *int64
	SubcategoryID *int64
	BrandID       *int64
	MinPrice      *int64
	MaxPrice      *int64
	Sort          string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindBySlug(ctx context.Context, slug string) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error

	//特徴・仕様は全入れ替え（更新のたびに置き換える）
	ReplaceFeatures(ctx context.Context, productID int64, features []model.ProductFeature) error
	ReplaceSpecs(ctx context.Context, productID int64, specs []model.ProductSpec) error
	ListFeatures(ctx context.Context, productID int64) ([]model.ProductFeature, error)
	ListSpecs(ctx context.Context, productID int64) ([]model.ProductSpec, error)
}
