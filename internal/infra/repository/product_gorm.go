package repository

import (
	"context"
	"errors"

	"tiendamontana/internal/domain/model"
	repo "tiendamontana/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}

	base := r.db.WithContext(ctx).Model(&model.Product{}).Where("is_active = ?", true)

	if q.Q != "" {
		base = base.Where("name ILIKE ?", "%"+q.Q+"%")
	}
	if q.CategoryID != nil {
		base = base.Where("category_id = ?", *q.CategoryID)
	}
	if q.SubcategoryID != nil {
		base = base.Where("subcategory_id = ?", *q.SubcategoryID)
	}
	if q.BrandID != nil {
		base = base.Where("brand_id = ?", *q.BrandID)
	}
	if q.MinPrice != nil {
		base = base.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		base = base.Where("price <= ?", *q.MaxPrice)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	order := "id desc"
	switch q.Sort {
	case "price_asc":
		order = "price asc"
	case "price_desc":
		order = "price desc"
	case "name":
		order = "name asc"
	}

	var items []model.Product
	offset := (q.Page - 1) * q.Limit
	if err := base.Order(order).Limit(q.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return items, total, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) FindBySlug(ctx context.Context, slug string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"name":           p.Name,
			"slug":           p.Slug,
			"sku":            p.SKU,
			"description":    p.Description,
			"price":          p.Price,
			"weight":         p.Weight,
			"brand_id":       p.BrandID,
			"category_id":    p.CategoryID,
			"subcategory_id": p.SubcategoryID,
			"is_active":      p.IsActive,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 特徴は全削除→再作成で置き換える
func (r *ProductGormRepository) ReplaceFeatures(ctx context.Context, productID int64, features []model.ProductFeature) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductFeature{}).Error; err != nil {
			return err
		}
		if len(features) == 0 {
			return nil
		}
		for i := range features {
			features[i].ID = 0
			features[i].ProductID = productID
			features[i].Position = i
		}
		return tx.Create(&features).Error
	})
}

func (r *ProductGormRepository) ReplaceSpecs(ctx context.Context, productID int64, specs []model.ProductSpec) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductSpec{}).Error; err != nil {
			return err
		}
		if len(specs) == 0 {
			return nil
		}
		for i := range specs {
			specs[i].ID = 0
			specs[i].ProductID = productID
			specs[i].Position = i
		}
		return tx.Create(&specs).Error
	})
}

func (r *ProductGormRepository) ListFeatures(ctx context.Context, productID int64) ([]model.ProductFeature, error) {
	var items []model.ProductFeature
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position asc").
		Find(&items).Error
	if err != nil {
		return []model.ProductFeature{}, err
	}
	return items, nil
}

func (r *ProductGormRepository) ListSpecs(ctx context.Context, productID int64) ([]model.ProductSpec, error) {
	var items []model.ProductSpec
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position asc").
		Find(&items).Error
	if err != nil {
		return []model.ProductSpec{}, err
	}
	return items, nil
}
