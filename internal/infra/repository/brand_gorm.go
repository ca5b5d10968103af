package repository

import (
	"context"
	"errors"

	"tiendamontana/internal/domain/model"
	repo "tiendamontana/internal/repository"

	"gorm.io/gorm"
)

type BrandGormRepository struct {
	db *gorm.DB
}

func NewBrandGormRepository(db *gorm.DB) *BrandGormRepository {
	return &BrandGormRepository{db: db}
}

func (r *BrandGormRepository) List(ctx context.Context) ([]model.Brand, error) {
	var items []model.Brand
	err := r.db.WithContext(ctx).Order("name asc").Find(&items).Error
	if err != nil {
		return []model.Brand{}, err
	}
	return items, nil
}

func (r *BrandGormRepository) FindByID(ctx context.Context, id int64) (model.Brand, error) {
	var b model.Brand
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Brand{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Brand{}, err
	}
	return b, nil
}

func (r *BrandGormRepository) Create(ctx context.Context, b model.Brand) (model.Brand, error) {
	if err := r.db.WithContext(ctx).Create(&b).Error; err != nil {
		return model.Brand{}, err
	}
	return b, nil
}

func (r *BrandGormRepository) Update(ctx context.Context, b model.Brand) error {
	res := r.db.WithContext(ctx).Model(&model.Brand{}).
		Where("id = ?", b.ID).
		Updates(map[string]interface{}{
			"name":     b.Name,
			"slug":     b.Slug,
			"logo_url": b.LogoURL,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *BrandGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Brand{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
