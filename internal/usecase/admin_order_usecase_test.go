package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tiendamontana/internal/domain/model"
	repo "tiendamontana/internal/repository"
	"tiendamontana/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAdminFixture(expiry time.Duration) (*OrderRepoMock, *OrderItemRepoMock, *CartRepoMock, *InventoryRepoMock, *AuditRepoMock, *usecase.AdminOrderUsecase) {
	orderRepo := new(OrderRepoMock)
	orderItemRepo := new(OrderItemRepoMock)
	cartRepo := new(CartRepoMock)
	invRepo := new(InventoryRepoMock)
	auditRepo := new(AuditRepoMock)

	tx := &TxManagerMock{Repos: &TxReposMock{
		orders:     orderRepo,
		orderItems: orderItemRepo,
		carts:      cartRepo,
		cartItems:  new(CartItemRepoMock),
		inventory:  invRepo,
		products:   new(ProductRepoMock),
	}}
	tx.On("WithinTx", mock.Anything).Return(nil)

	uc := usecase.NewAdminOrderUsecase(tx, orderRepo, auditRepo, expiry)
	return orderRepo, orderItemRepo, cartRepo, invRepo, auditRepo, uc
}

// =====================
// UpdateStatus
// =====================

func TestAdminUpdateStatus_CancelPendingRestoresStock(t *testing.T) {
	ctx := context.Background()
	adminID := int64(1)

	orderRepo, orderItemRepo, cartRepo, invRepo, auditRepo, uc := newAdminFixture(30 * time.Minute)

	orderRepo.On("FindByID", mock.Anything, int64(500)).Return(model.Order{
		ID: 500, UserID: 7, Status: model.OrderStatusPending,
	}, nil)
	orderItemRepo.On("ListByOrderID", mock.Anything, int64(500)).Return([]model.OrderItem{
		{OrderID: 500, ProductID: 100, Quantity: 2},
	}, nil)
	invRepo.On("IncreaseStock", mock.Anything, int64(100), int64(2)).Return(nil)
	orderRepo.On("UpdateStatus", mock.Anything, int64(500), model.OrderStatusCanceled).Return(nil)
	cartRepo.On("FindCheckedOutByUserID", mock.Anything, int64(7)).Return(model.Cart{}, repo.ErrNotFound)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(log model.AuditLog) bool {
		return log.ActorUserID == adminID &&
			log.Action == model.AuditActionUpdateOrderStatus &&
			log.ResourceID == 500
	})).Return(nil)

	err := uc.UpdateStatus(ctx, adminID, 500, model.OrderStatusCanceled)
	assert.NoError(t, err)

	invRepo.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestAdminUpdateStatus_CancelPaidRejected(t *testing.T) {
	ctx := context.Background()
	paidAt := time.Now()

	orderRepo, _, _, invRepo, _, uc := newAdminFixture(30 * time.Minute)

	orderRepo.On("FindByID", mock.Anything, int64(500)).Return(model.Order{
		ID: 500, UserID: 7, Status: model.OrderStatusPaid, PaidAt: &paidAt,
	}, nil)

	err := uc.UpdateStatus(ctx, int64(1), 500, model.OrderStatusCanceled)
	assertErrContains(t, err, "el pedido ya fue pagado")

	invRepo.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminUpdateStatus_TerminalStateRejected(t *testing.T) {
	ctx := context.Background()

	orderRepo, _, _, _, _, uc := newAdminFixture(30 * time.Minute)

	orderRepo.On("FindByID", mock.Anything, int64(500)).Return(model.Order{
		ID: 500, Status: model.OrderStatusCanceled,
	}, nil)

	err := uc.UpdateStatus(ctx, int64(1), 500, model.OrderStatusShipped)
	assertErrContains(t, err, "estado final")
}

// 同一ステータスへの変更は何もしない
func TestAdminUpdateStatus_NoopOnSameStatus(t *testing.T) {
	ctx := context.Background()

	orderRepo, _, _, _, auditRepo, uc := newAdminFixture(30 * time.Minute)

	orderRepo.On("FindByID", mock.Anything, int64(500)).Return(model.Order{
		ID: 500, Status: model.OrderStatusShipped,
	}, nil)

	err := uc.UpdateStatus(ctx, int64(1), 500, model.OrderStatusShipped)
	assert.NoError(t, err)

	orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	auditRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminUpdateStatus_PendingToPendingRejected(t *testing.T) {
	uc := newAdminUsecaseOnly()

	err := uc.UpdateStatus(context.Background(), int64(1), 500, model.OrderStatusPending)
	assertErrContains(t, err, "estado inválido")
}

func newAdminUsecaseOnly() *usecase.AdminOrderUsecase {
	_, _, _, _, _, uc := newAdminFixture(30 * time.Minute)
	return uc
}

// 手動で支払い済みにしてもカートは片付く
func TestAdminUpdateStatus_MarkPaidRetiresCart(t *testing.T) {
	ctx := context.Background()
	adminID := int64(1)

	orderRepo, _, cartRepo, _, auditRepo, uc := newAdminFixture(30 * time.Minute)

	orderRepo.On("FindByID", mock.Anything, int64(500)).Return(model.Order{
		ID: 500, UserID: 7, Status: model.OrderStatusPending,
	}, nil)
	orderRepo.On("MarkPaid", mock.Anything, int64(500), "manual:1", mock.Anything).Return(nil)
	cartRepo.On("FindCheckedOutByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 33, Status: model.CartStatusCheckedOut}, nil)
	cartRepo.On("Clear", mock.Anything, int64(33)).Return(nil)
	cartRepo.On("UpdateStatus", mock.Anything, int64(33), model.CartStatusAbandoned).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.UpdateStatus(ctx, adminID, 500, model.OrderStatusPaid)
	assert.NoError(t, err)

	orderRepo.AssertExpectations(t)
	cartRepo.AssertExpectations(t)
}

func TestAdminUpdateStatus_DeliveredSetsTimestamp(t *testing.T) {
	ctx := context.Background()

	orderRepo, _, _, _, auditRepo, uc := newAdminFixture(30 * time.Minute)

	orderRepo.On("FindByID", mock.Anything, int64(500)).Return(model.Order{
		ID: 500, Status: model.OrderStatusShipped,
	}, nil)
	orderRepo.On("MarkDelivered", mock.Anything, int64(500), mock.Anything).Return(nil)
	orderRepo.On("UpdateStatus", mock.Anything, int64(500), model.OrderStatusDelivered).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.UpdateStatus(ctx, int64(1), 500, model.OrderStatusDelivered)
	assert.NoError(t, err)
	orderRepo.AssertExpectations(t)
}

// =====================
// Delete
// =====================

func TestAdminDelete_PendingRestoresStockThenDeletes(t *testing.T) {
	ctx := context.Background()
	adminID := int64(1)

	orderRepo, orderItemRepo, cartRepo, invRepo, auditRepo, uc := newAdminFixture(30 * time.Minute)

	orderRepo.On("FindByID", mock.Anything, int64(500)).Return(model.Order{
		ID: 500, UserID: 7, Status: model.OrderStatusPending,
	}, nil)
	orderItemRepo.On("ListByOrderID", mock.Anything, int64(500)).Return([]model.OrderItem{
		{OrderID: 500, ProductID: 100, Quantity: 3},
	}, nil)
	invRepo.On("IncreaseStock", mock.Anything, int64(100), int64(3)).Return(nil)
	cartRepo.On("FindCheckedOutByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 33}, nil)
	cartRepo.On("UpdateStatus", mock.Anything, int64(33), model.CartStatusActive).Return(nil)
	orderItemRepo.On("DeleteByOrderID", mock.Anything, int64(500)).Return(nil)
	orderRepo.On("Delete", mock.Anything, int64(500)).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(log model.AuditLog) bool {
		return log.Action == model.AuditActionDeleteOrder && log.ResourceID == 500
	})).Return(nil)

	err := uc.Delete(ctx, adminID, 500)
	assert.NoError(t, err)

	invRepo.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestAdminDelete_PaidRejected(t *testing.T) {
	ctx := context.Background()
	paidAt := time.Now()

	orderRepo, _, _, invRepo, _, uc := newAdminFixture(30 * time.Minute)

	orderRepo.On("FindByID", mock.Anything, int64(500)).Return(model.Order{
		ID: 500, Status: model.OrderStatusPaid, PaidAt: &paidAt,
	}, nil)

	err := uc.Delete(ctx, int64(1), 500)
	assertErrContains(t, err, "no se puede eliminar un pedido pagado o enviado")

	invRepo.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
	orderRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// キャンセル済みは在庫を戻さずに消すだけ
func TestAdminDelete_CanceledDeletesWithoutStockRestore(t *testing.T) {
	ctx := context.Background()

	orderRepo, orderItemRepo, _, invRepo, auditRepo, uc := newAdminFixture(30 * time.Minute)

	orderRepo.On("FindByID", mock.Anything, int64(500)).Return(model.Order{
		ID: 500, UserID: 7, Status: model.OrderStatusCanceled,
	}, nil)
	orderItemRepo.On("DeleteByOrderID", mock.Anything, int64(500)).Return(nil)
	orderRepo.On("Delete", mock.Anything, int64(500)).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.Delete(ctx, int64(1), 500)
	assert.NoError(t, err)

	invRepo.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
}

// =====================
// Sweep
// =====================

func TestSweep_CancelsExpiredOrders(t *testing.T) {
	ctx := context.Background()
	old := time.Now().Add(-2 * time.Hour)

	orderRepo, orderItemRepo, cartRepo, invRepo, _, uc := newAdminFixture(30 * time.Minute)

	expired := []model.Order{
		{ID: 500, UserID: 7, Status: model.OrderStatusPending, CreatedAt: old},
		{ID: 501, UserID: 8, Status: model.OrderStatusPending, CreatedAt: old},
	}
	orderRepo.On("ListExpiredPending", mock.Anything, mock.Anything, 100).Return(expired, nil)

	for _, o := range expired {
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		orderItemRepo.On("ListByOrderID", mock.Anything, o.ID).Return([]model.OrderItem{
			{OrderID: o.ID, ProductID: 100, Quantity: 1},
		}, nil)
		orderRepo.On("UpdateStatus", mock.Anything, o.ID, model.OrderStatusCanceled).Return(nil)
		cartRepo.On("FindCheckedOutByUserID", mock.Anything, o.UserID).Return(model.Cart{}, repo.ErrNotFound)
	}
	invRepo.On("IncreaseStock", mock.Anything, int64(100), int64(1)).Return(nil).Times(2)

	result, err := uc.Sweep(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 2, result.Canceled)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 0, result.Failed)

	invRepo.AssertExpectations(t)
}

// 一覧取得後に支払われた注文は再確認で飛ばす
func TestSweep_SkipsPaidSinceListing(t *testing.T) {
	ctx := context.Background()
	old := time.Now().Add(-2 * time.Hour)
	paidAt := time.Now()

	orderRepo, _, _, invRepo, _, uc := newAdminFixture(30 * time.Minute)

	orderRepo.On("ListExpiredPending", mock.Anything, mock.Anything, 100).Return([]model.Order{
		{ID: 500, UserID: 7, Status: model.OrderStatusPending, CreatedAt: old},
	}, nil)
	//txの中で読み直すと支払い済みになっている
	orderRepo.On("FindByID", mock.Anything, int64(500)).Return(model.Order{
		ID: 500, UserID: 7, Status: model.OrderStatusPaid, PaidAt: &paidAt, CreatedAt: old,
	}, nil)

	result, err := uc.Sweep(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Attempted)
	assert.Equal(t, 0, result.Canceled)
	assert.Equal(t, 1, result.Skipped)

	invRepo.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
}

// 1件の失敗で他の注文の掃除は止まらない
func TestSweep_FailureIsolatedPerOrder(t *testing.T) {
	ctx := context.Background()
	old := time.Now().Add(-2 * time.Hour)

	orderRepo, orderItemRepo, cartRepo, invRepo, _, uc := newAdminFixture(30 * time.Minute)

	orderRepo.On("ListExpiredPending", mock.Anything, mock.Anything, 100).Return([]model.Order{
		{ID: 500, UserID: 7, Status: model.OrderStatusPending, CreatedAt: old},
		{ID: 501, UserID: 8, Status: model.OrderStatusPending, CreatedAt: old},
	}, nil)

	//500は在庫戻しで失敗
	orderRepo.On("FindByID", mock.Anything, int64(500)).Return(model.Order{
		ID: 500, UserID: 7, Status: model.OrderStatusPending, CreatedAt: old,
	}, nil)
	orderItemRepo.On("ListByOrderID", mock.Anything, int64(500)).Return([]model.OrderItem{
		{OrderID: 500, ProductID: 100, Quantity: 1},
	}, nil)
	invRepo.On("IncreaseStock", mock.Anything, int64(100), int64(1)).Return(errors.New("boom")).Once()

	//501は成功
	orderRepo.On("FindByID", mock.Anything, int64(501)).Return(model.Order{
		ID: 501, UserID: 8, Status: model.OrderStatusPending, CreatedAt: old,
	}, nil)
	orderItemRepo.On("ListByOrderID", mock.Anything, int64(501)).Return([]model.OrderItem{
		{OrderID: 501, ProductID: 200, Quantity: 2},
	}, nil)
	invRepo.On("IncreaseStock", mock.Anything, int64(200), int64(2)).Return(nil)
	orderRepo.On("UpdateStatus", mock.Anything, int64(501), model.OrderStatusCanceled).Return(nil)
	cartRepo.On("FindCheckedOutByUserID", mock.Anything, int64(8)).Return(model.Cart{}, repo.ErrNotFound)

	result, err := uc.Sweep(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 1, result.Canceled)
	assert.Equal(t, 1, result.Failed)
}

func TestSweep_NothingExpired(t *testing.T) {
	ctx := context.Background()

	orderRepo, _, _, _, _, uc := newAdminFixture(30 * time.Minute)

	orderRepo.On("ListExpiredPending", mock.Anything, mock.Anything, 100).Return([]model.Order{}, nil)

	result, err := uc.Sweep(ctx)
	assert.NoError(t, err)
	assert.Equal(t, usecase.SweepResult{}, result)
}

// =====================
// List
// =====================

func TestAdminList_InvalidStatus(t *testing.T) {
	_, _, _, _, _, uc := newAdminFixture(30 * time.Minute)

	_, err := uc.List(context.Background(), usecase.AdminOrderListInput{Page: 1, Limit: 20, Status: "WRONG"})
	assertErrContains(t, err, "estado inválido")
}

func TestAdminList_Success(t *testing.T) {
	orderRepo, _, _, _, _, uc := newAdminFixture(30 * time.Minute)

	orderRepo.On("ListAdmin", mock.Anything, mock.MatchedBy(func(f repo.AdminOrderListFilter) bool {
		return f.Page == 1 && f.Limit == 20 && f.Status == "PENDING"
	})).Return([]model.Order{{ID: 1, Status: model.OrderStatusPending}}, int64(1), nil)

	out, err := uc.List(context.Background(), usecase.AdminOrderListInput{Page: 1, Limit: 20, Status: "PENDING"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Len(t, out.Items, 1)
}
