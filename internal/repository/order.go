package repository

import (
	"context"
	"time"

	"tiendamontana/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	//ユーザーの未払いPENDING注文（同時に1つまで）
	FindPendingUnpaidByUserID(ctx context.Context, userID int64) (model.Order, bool, error)

	//支払い確定。status=PAIDとpaid_at・payment_result_idを同時に入れる。
	MarkPaid(ctx context.Context, orderID int64, paymentResultID string, paidAt time.Time) error
	MarkDelivered(ctx context.Context, orderID int64, deliveredAt time.Time) error

	//期限切れ掃除の対象（未払いPENDINGでcutoffより古いもの）
	ListExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error)

	//物理削除（管理者のみ）
	Delete(ctx context.Context, orderID int64) error

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
