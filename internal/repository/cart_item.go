package repository

import (
	"context"

	"tiendamontana/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一商品は数量加算。スナップショットは最初の追加時のまま。
	UpsertLine(ctx context.Context, line model.CartItem) error
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	DeleteByCartID(ctx context.Context, cartID int64) error
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
}
