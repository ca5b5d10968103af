package repository

import (
	"context"
	"errors"

	"tiendamontana/internal/domain/model"
	repo "tiendamontana/internal/repository"

	"gorm.io/gorm"
)

type CategoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) List(ctx context.Context) ([]model.Category, error) {
	var items []model.Category
	err := r.db.WithContext(ctx).Order("position asc, id asc").Find(&items).Error
	if err != nil {
		return []model.Category{}, err
	}
	return items, nil
}

func (r *CategoryGormRepository) FindByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

func (r *CategoryGormRepository) Create(ctx context.Context, c model.Category) (model.Category, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Category{}, err
	}
	return c, nil
}

func (r *CategoryGormRepository) Update(ctx context.Context, c model.Category) error {
	res := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"name":     c.Name,
			"slug":     c.Slug,
			"position": c.Position,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// サブカテゴリも一緒に消す
func (r *CategoryGormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&model.Subcategory{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

func (r *CategoryGormRepository) ListSubcategories(ctx context.Context, categoryID int64) ([]model.Subcategory, error) {
	var items []model.Subcategory
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("position asc, id asc").
		Find(&items).Error
	if err != nil {
		return []model.Subcategory{}, err
	}
	return items, nil
}

func (r *CategoryGormRepository) FindSubcategoryByID(ctx context.Context, id int64) (model.Subcategory, error) {
	var s model.Subcategory
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Subcategory{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Subcategory{}, err
	}
	return s, nil
}

func (r *CategoryGormRepository) CreateSubcategory(ctx context.Context, s model.Subcategory) (model.Subcategory, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return model.Subcategory{}, err
	}
	return s, nil
}

func (r *CategoryGormRepository) UpdateSubcategory(ctx context.Context, s model.Subcategory) error {
	res := r.db.WithContext(ctx).Model(&model.Subcategory{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"category_id": s.CategoryID,
			"name":        s.Name,
			"slug":        s.Slug,
			"position":    s.Position,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CategoryGormRepository) DeleteSubcategory(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Subcategory{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
