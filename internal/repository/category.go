package repository

import (
	"context"

	"tiendamontana/internal/domain/model"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, id int64) error

	ListSubcategories(ctx context.Context, categoryID int64) ([]model.Subcategory, error)
	FindSubcategoryByID(ctx context.Context, id int64) (model.Subcategory, error)
	CreateSubcategory(ctx context.Context, s model.Subcategory) (model.Subcategory, error)
	UpdateSubcategory(ctx context.Context, s model.Subcategory) error
	DeleteSubcategory(ctx context.Context, id int64) error
}
