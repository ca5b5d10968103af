package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"tiendamontana/internal/domain/model"
	repo "tiendamontana/internal/repository"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	orderRepo repo.OrderRepository // 掃除対象の一覧取得はトランザクション外
	auditRepo repo.AuditLogRepository
	expiry    time.Duration
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	orderRepo repo.OrderRepository,
	auditRepo repo.AuditLogRepository,
	expiry time.Duration,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:        tx,
		orderRepo: orderRepo,
		auditRepo: auditRepo,
		expiry:    expiry,
	}
}

type AdminOrderListInput struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

func (u *AdminOrderUsecase) List(ctx context.Context, in AdminOrderListInput) (OrderListOutput, error) {
	if in.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "página inválida")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "límite inválido")
	}
	if in.Status != "" {
		if !validOrderStatus(model.OrderStatus(in.Status)) {
			return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "estado inválido")
		}
	}

	orders, total, err := u.orderRepo.ListAdmin(ctx, repo.AdminOrderListFilter{
		Page:   in.Page,
		Limit:  in.Limit,
		Status: in.Status,
		UserID: in.UserID,
		From:   in.From,
		To:     in.To,
	})
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	out := OrderListOutput{Items: make([]OrderOutput, 0, len(orders)), Total: total, Page: in.Page, Limit: in.Limit}
	for _, o := range orders {
		out.Items = append(out.Items, toOrderOutput(o, nil))
	}
	return out, nil
}

func (u *AdminOrderUsecase) GetDetail(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "pedido no encontrado")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func validOrderStatus(s model.OrderStatus) bool {
	switch s {
	case model.OrderStatusPending, model.OrderStatusPaid, model.OrderStatusShipped,
		model.OrderStatusDelivered, model.OrderStatusCanceled:
		return true
	}
	return false
}

// 管理者が手で入れられる遷移先。PENDINGへの巻き戻しは不可。
func assignableStatus(s model.OrderStatus) bool {
	switch s {
	case model.OrderStatusPaid, model.OrderStatusShipped,
		model.OrderStatusDelivered, model.OrderStatusCanceled:
		return true
	}
	return false
}

// UpdateStatus は注文ステータスを変更する。遷移ルール：
//   - 同じステータスへは何もしない
//   - CANCELED・DELIVEREDからは動かせない
//   - CANCELEDにできるのは未払いPENDINGだけ（在庫を戻す）
//   - DELIVEREDはdelivered_atも入れる
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, adminID int64, orderID int64, next model.OrderStatus) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "no autorizado")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}
	if !assignableStatus(next) {
		return NewHTTPError(http.StatusBadRequest, "estado inválido")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "pedido no encontrado")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}

		if o.Status == next {
			return nil
		}
		if o.Status == model.OrderStatusCanceled || o.Status == model.OrderStatusDelivered {
			return NewHTTPError(http.StatusConflict, "el pedido está en un estado final")
		}

		switch next {
		case model.OrderStatusCanceled:
			if o.IsPaid() || o.Status != model.OrderStatusPending {
				return NewHTTPError(http.StatusConflict, "el pedido ya fue pagado")
			}
			if err := restoreOrderStock(ctx, r, o.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
			}
			if err := r.Orders().UpdateStatus(ctx, o.ID, next); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
			}
			if err := unlockUserCart(ctx, r, o.UserID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
			}

		case model.OrderStatusPaid:
			if o.IsPaid() {
				return NewHTTPError(http.StatusConflict, "el pedido ya fue pagado")
			}
			if err := r.Orders().MarkPaid(ctx, o.ID, "manual:"+strconv.FormatInt(adminID, 10), timeNow()); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
			}
			if err := retireUserCart(ctx, r, o.UserID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
			}

		case model.OrderStatusDelivered:
			if err := r.Orders().MarkDelivered(ctx, o.ID, timeNow()); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
			}
			if err := r.Orders().UpdateStatus(ctx, o.ID, next); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
			}

		default:
			if err := r.Orders().UpdateStatus(ctx, o.ID, next); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
			}
		}

		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  adminID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   `{"status":"` + string(o.Status) + `"}`,
			AfterJSON:    `{"status":"` + string(next) + `"}`,
			CreatedAt:    timeNow(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		return nil
	})
}

// Delete は注文を明細ごと物理削除する。支払い済み・発送済みは不可。
// PENDINGなら在庫を戻してから消す。
func (u *AdminOrderUsecase) Delete(ctx context.Context, adminID int64, orderID int64) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "no autorizado")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "pedido no encontrado")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}

		if o.IsPaid() || o.Status == model.OrderStatusShipped || o.Status == model.OrderStatusDelivered {
			return NewHTTPError(http.StatusConflict, "no se puede eliminar un pedido pagado o enviado")
		}

		//未払いPENDINGなら在庫は引き当て中。戻してから消す。
		if o.Status == model.OrderStatusPending {
			if err := restoreOrderStock(ctx, r, o.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
			}
			if err := unlockUserCart(ctx, r, o.UserID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
			}
		}

		if err := r.OrderItems().DeleteByOrderID(ctx, o.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		if err := r.Orders().Delete(ctx, o.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}

		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  adminID,
			Action:       model.AuditActionDeleteOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   `{"status":"` + string(o.Status) + `","user_id":` + strconv.FormatInt(o.UserID, 10) + `}`,
			AfterJSON:    `{}`,
			CreatedAt:    timeNow(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		return nil
	})
}

type SweepResult struct {
	Attempted int `json:"attempted"`
	Canceled  int `json:"canceled"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Sweep は期限切れの未払いPENDING注文をキャンセルして在庫を戻す。
// 1件ずつ独立したトランザクションで処理し、途中で支払われたものは飛ばす。
func (u *AdminOrderUsecase) Sweep(ctx context.Context) (SweepResult, error) {
	cutoff := timeNow().Add(-u.expiry)

	candidates, err := u.orderRepo.ListExpiredPending(ctx, cutoff, 100)
	if err != nil {
		return SweepResult{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	result := SweepResult{Attempted: len(candidates)}

	for _, candidate := range candidates {
		err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			//一覧取得から時間が経っている。トランザクション内で再確認。
			o, err := r.Orders().FindByID(ctx, candidate.ID)
			if errors.Is(err, repo.ErrNotFound) {
				result.Skipped++
				return nil
			}
			if err != nil {
				return err
			}
			if o.Status != model.OrderStatusPending || o.IsPaid() || !o.CreatedAt.Before(cutoff) {
				result.Skipped++
				return nil
			}

			if err := restoreOrderStock(ctx, r, o.ID); err != nil {
				return err
			}
			if err := r.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusCanceled); err != nil {
				return err
			}
			if err := unlockUserCart(ctx, r, o.UserID); err != nil {
				return err
			}
			result.Canceled++
			return nil
		})
		if err != nil {
			//1件の失敗で掃除全体は止めない
			result.Failed++
		}
	}

	return result, nil
}
