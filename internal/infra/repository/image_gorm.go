package repository

import (
	"context"
	"errors"

	"tiendamontana/internal/domain/model"
	repo "tiendamontana/internal/repository"

	"gorm.io/gorm"
)

type ProductImageGormRepository struct {
	db *gorm.DB
}

func NewProductImageGormRepository(db *gorm.DB) *ProductImageGormRepository {
	return &ProductImageGormRepository{db: db}
}

func (r *ProductImageGormRepository) ListByProductID(ctx context.Context, productID int64) ([]model.ProductImage, error) {
	var items []model.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position asc, id asc").
		Find(&items).Error
	if err != nil {
		return []model.ProductImage{}, err
	}
	return items, nil
}

func (r *ProductImageGormRepository) FindByID(ctx context.Context, imageID int64) (model.ProductImage, error) {
	var img model.ProductImage
	err := r.db.WithContext(ctx).Where("id = ?", imageID).First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ProductImage{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ProductImage{}, err
	}
	return img, nil
}

func (r *ProductImageGormRepository) Create(ctx context.Context, img model.ProductImage) (model.ProductImage, error) {
	if err := r.db.WithContext(ctx).Create(&img).Error; err != nil {
		return model.ProductImage{}, err
	}
	return img, nil
}

func (r *ProductImageGormRepository) Update(ctx context.Context, img model.ProductImage) error {
	res := r.db.WithContext(ctx).Model(&model.ProductImage{}).
		Where("id = ?", img.ID).
		Updates(map[string]interface{}{
			"alt_text": img.AltText,
			"position": img.Position,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductImageGormRepository) Delete(ctx context.Context, imageID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.ProductImage{}, imageID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 既存のプライマリを外してから指定画像に付け替える
func (r *ProductImageGormRepository) SetPrimary(ctx context.Context, productID int64, imageID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ProductImage{}).
			Where("product_id = ?", productID).
			Update("is_primary", false).Error; err != nil {
			return err
		}

		res := tx.Model(&model.ProductImage{}).
			Where("id = ? AND product_id = ?", imageID, productID).
			Update("is_primary", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}
