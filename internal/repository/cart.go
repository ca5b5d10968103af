package repository

import (
	"context"

	"tiendamontana/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	GetOrCreateActiveBySession(ctx context.Context, sessionToken string) (model.Cart, error)
	FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindActiveBySession(ctx context.Context, sessionToken string) (model.Cart, error)

	//注文に変換済み（ロック中）のカートを探す。キャンセル時の返却用。
	FindCheckedOutByUserID(ctx context.Context, userID int64) (model.Cart, error)

	FindByID(ctx context.Context, cartID int64) (model.Cart, error)
	UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error
	Clear(ctx context.Context, cartID int64) error
}
