package repository

import (
	"context"
	"errors"
	"time"

	"tiendamontana/internal/domain/model"
	repo "tiendamontana/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのACTIVEカートを取得し、無ければ作成
func (r *CartGormRepository) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	return r.getOrCreateActive(ctx, "user_id = ?", userID, func(now time.Time) model.Cart {
		return model.Cart{
			UserID:    &userID,
			Status:    model.CartStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
	})
}

// 匿名セッションのACTIVEカートを取得し、無ければ作成
func (r *CartGormRepository) GetOrCreateActiveBySession(ctx context.Context, sessionToken string) (model.Cart, error) {
	return r.getOrCreateActive(ctx, "session_token = ?", sessionToken, func(now time.Time) model.Cart {
		return model.Cart{
			SessionToken: &sessionToken,
			Status:       model.CartStatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	})
}

// トランザクションで探す→無ければ作る。同時作成はリトライ検索で吸収。
func (r *CartGormRepository) getOrCreateActive(ctx context.Context, ownerCond string, ownerArg interface{}, build func(now time.Time) model.Cart) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(ownerCond, ownerArg).
			Where("status = ?", model.CartStatusActive).
			Order("id desc").
			First(&cart).Error

		if findErr == nil {
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		newCart := build(time.Now())
		if err := tx.Create(&newCart).Error; err != nil {
			retryErr := tx.
				Where(ownerCond, ownerArg).
				Where("status = ?", model.CartStatusActive).
				Order("id desc").
				First(&cart).Error
			if retryErr == nil {
				return nil
			}
			return err
		}

		cart = newCart
		return nil
	})

	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

func (r *CartGormRepository) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	return r.findByStatus(ctx, "user_id = ?", userID, model.CartStatusActive)
}

func (r *CartGormRepository) FindActiveBySession(ctx context.Context, sessionToken string) (model.Cart, error) {
	return r.findByStatus(ctx, "session_token = ?", sessionToken, model.CartStatusActive)
}

func (r *CartGormRepository) FindCheckedOutByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	return r.findByStatus(ctx, "user_id = ?", userID, model.CartStatusCheckedOut)
}

func (r *CartGormRepository) findByStatus(ctx context.Context, ownerCond string, ownerArg interface{}, status model.CartStatus) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).
		Where(ownerCond, ownerArg).
		Where("status = ?", status).
		Order("id desc").
		First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

func (r *CartGormRepository) FindByID(ctx context.Context, cartID int64) (model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).Where("id = ?", cartID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

func (r *CartGormRepository) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 指定カートの明細を全削除
func (r *CartGormRepository) Clear(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart model.Cart
		if err := tx.Where("id = ?", cartID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repo.ErrNotFound
			}
			return err
		}

		return tx.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error
	})
}
