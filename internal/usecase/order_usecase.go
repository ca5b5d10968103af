package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"tiendamontana/internal/domain/model"
	repo "tiendamontana/internal/repository"
)

type OrderUsecase struct {
	tx      repo.TransactionManager
	pricing Pricing

	// 同一ユーザーの注文確定を直列化する（チェックと減算の間の競合を防ぐ
	// 最後の砦はDB側のstockガード付きUPDATE）
	userLocks sync.Map // userID -> *sync.Mutex
}

func NewOrderUsecase(tx repo.TransactionManager, pricing Pricing) *OrderUsecase {
	return &OrderUsecase{
		tx:      tx,
		pricing: pricing,
	}
}

func (u *OrderUsecase) lockUser(userID int64) func() {
	v, _ := u.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type PlaceOrderInput struct {
	ShippingName       string `json:"shipping_name"`
	ShippingPhone      string `json:"shipping_phone"`
	ShippingAddress    string `json:"shipping_address"`
	ShippingCity       string `json:"shipping_city"`
	ShippingRegion     string `json:"shipping_region"`
	ShippingPostalCode string `json:"shipping_postal_code"`
	PaymentMethod      string `json:"payment_method"`
}

func (in PlaceOrderInput) validate() error {
	if strings.TrimSpace(in.ShippingName) == "" {
		return NewHTTPError(http.StatusBadRequest, "nombre de envío requerido")
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return NewHTTPError(http.StatusBadRequest, "dirección de envío requerida")
	}
	if strings.TrimSpace(in.ShippingCity) == "" {
		return NewHTTPError(http.StatusBadRequest, "ciudad de envío requerida")
	}
	if strings.TrimSpace(in.ShippingPostalCode) == "" {
		return NewHTTPError(http.StatusBadRequest, "código postal requerido")
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return NewHTTPError(http.StatusBadRequest, "método de pago requerido")
	}
	return nil
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Slug      string `json:"slug"`
	Image     string `json:"image"`
	UnitPrice int64  `json:"unit_price"`
	Weight    int64  `json:"weight"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type OrderOutput struct {
	ID     int64             `json:"id"`
	UserID int64             `json:"user_id"`
	Status model.OrderStatus `json:"status"`

	ShippingName       string `json:"shipping_name"`
	ShippingPhone      string `json:"shipping_phone"`
	ShippingAddress    string `json:"shipping_address"`
	ShippingCity       string `json:"shipping_city"`
	ShippingRegion     string `json:"shipping_region"`
	ShippingPostalCode string `json:"shipping_postal_code"`

	PaymentMethod   string  `json:"payment_method"`
	PaymentResultID *string `json:"payment_result_id"`

	ItemsPrice    int64 `json:"items_price"`
	ShippingPrice int64 `json:"shipping_price"`
	TaxPrice      int64 `json:"tax_price"`
	TotalPrice    int64 `json:"total_price"`
	TotalWeight   int64 `json:"total_weight"`

	PaidAt      *string `json:"paid_at"`
	DeliveredAt *string `json:"delivered_at"`
	CreatedAt   string  `json:"created_at"`

	Items []OrderItemOutput `json:"items"`
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	out := OrderOutput{
		ID:                 o.ID,
		UserID:             o.UserID,
		Status:             o.Status,
		ShippingName:       o.ShippingName,
		ShippingPhone:      o.ShippingPhone,
		ShippingAddress:    o.ShippingAddress,
		ShippingCity:       o.ShippingCity,
		ShippingRegion:     o.ShippingRegion,
		ShippingPostalCode: o.ShippingPostalCode,
		PaymentMethod:      o.PaymentMethod,
		PaymentResultID:    o.PaymentResultID,
		ItemsPrice:         o.ItemsPrice,
		ShippingPrice:      o.ShippingPrice,
		TaxPrice:           o.TaxPrice,
		TotalPrice:         o.TotalPrice,
		TotalWeight:        o.TotalWeight,
		CreatedAt:          o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Items:              make([]OrderItemOutput, 0, len(items)),
	}
	if o.PaidAt != nil {
		s := o.PaidAt.Format("2006-01-02T15:04:05Z07:00")
		out.PaidAt = &s
	}
	if o.DeliveredAt != nil {
		s := o.DeliveredAt.Format("2006-01-02T15:04:05Z07:00")
		out.DeliveredAt = &s
	}
	for _, it := range items {
		out.Items = append(out.Items, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.NameSnapshot,
			SKU:       it.SKUSnapshot,
			Slug:      it.SlugSnapshot,
			Image:     it.ImageSnapshot,
			UnitPrice: it.UnitPriceSnapshot,
			Weight:    it.WeightSnapshot,
			Quantity:  it.Quantity,
			Subtotal:  it.UnitPriceSnapshot * it.Quantity,
		})
	}
	return out
}

// PlaceOrder はカートから注文を作る。1トランザクションで
// 在庫減算・注文作成・カートのロックまでやる。
// 未払いPENDINGが既にあればそれを返す（冪等）。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "no autorizado")
	}
	if err := in.validate(); err != nil {
		return OrderOutput{}, err
	}

	unlock := u.lockUser(userID)
	defer unlock()

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//既存の未払いPENDINGがあればそれを返す
		existing, found, err := r.Orders().FindPendingUnpaidByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		if found {
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
			}
			out = toOrderOutput(existing, items)
			return nil
		}

		cart, err := r.Carts().FindActiveByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusBadRequest, "el carrito está vacío")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}

		lines, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		if len(lines) == 0 {
			return NewHTTPError(http.StatusBadRequest, "el carrito está vacío")
		}

		var itemsPrice, totalWeight int64
		orderItems := make([]model.OrderItem, 0, len(lines))

		for _, line := range lines {
			p, err := r.Products().FindByID(ctx, line.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusConflict, "producto no disponible: "+line.NameSnapshot)
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusConflict, "producto no disponible: "+line.NameSnapshot)
			}

			//ガード付きUPDATE。足りなければrollback。
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
			}
			if !ok {
				return NewHTTPError(http.StatusConflict, "stock insuficiente: "+line.NameSnapshot)
			}

			itemsPrice += line.UnitPriceSnapshot * line.Quantity
			totalWeight += line.WeightSnapshot * line.Quantity
			orderItems = append(orderItems, model.OrderItem{
				ProductID:         line.ProductID,
				NameSnapshot:      line.NameSnapshot,
				SKUSnapshot:       line.SKUSnapshot,
				SlugSnapshot:      line.SlugSnapshot,
				ImageSnapshot:     line.ImageSnapshot,
				UnitPriceSnapshot: line.UnitPriceSnapshot,
				WeightSnapshot:    line.WeightSnapshot,
				Quantity:          line.Quantity,
			})
		}

		tax, shipping, total := u.pricing.computeTotals(itemsPrice)

		order := model.Order{
			UserID:             userID,
			Status:             model.OrderStatusPending,
			ShippingName:       strings.TrimSpace(in.ShippingName),
			ShippingPhone:      strings.TrimSpace(in.ShippingPhone),
			ShippingAddress:    strings.TrimSpace(in.ShippingAddress),
			ShippingCity:       strings.TrimSpace(in.ShippingCity),
			ShippingRegion:     strings.TrimSpace(in.ShippingRegion),
			ShippingPostalCode: strings.TrimSpace(in.ShippingPostalCode),
			PaymentMethod:      strings.TrimSpace(in.PaymentMethod),
			ItemsPrice:         itemsPrice,
			ShippingPrice:      shipping,
			TaxPrice:           tax,
			TotalPrice:         total,
			TotalWeight:        totalWeight,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		order.ID = orderID

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}

		//カートは空にせずロックする。キャンセル時にそのまま戻せる。
		if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusCheckedOut); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}

		out = toOrderOutput(order, orderItems)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	return out, nil
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "no autorizado")
	}
	if page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "página inválida")
	}
	if limit < 1 || limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "límite inválido")
	}

	var out OrderListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		out = OrderListOutput{Items: make([]OrderOutput, 0, len(orders)), Total: total, Page: page, Limit: limit}
		for _, o := range orders {
			out.Items = append(out.Items, toOrderOutput(o, nil))
		}
		return nil
	})
	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// findOwnedOrder は本人の注文だけ返す。他人のものは存在しない扱い。
func findOwnedOrder(ctx context.Context, r repo.TxRepos, userID int64, orderID int64) (model.Order, error) {
	o, err := r.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "pedido no encontrado")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	if o.UserID != userID {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "pedido no encontrado")
	}
	return o, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "no autorizado")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOwnedOrder(ctx, r, userID, orderID)
		if err != nil {
			return err
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

// restoreOrderStock は注文明細ぶんの在庫を戻す。キャンセル・削除・掃除で共用。
func restoreOrderStock(ctx context.Context, r repo.TxRepos, orderID int64) error {
	items, err := r.OrderItems().ListByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// unlockUserCart はロック中のカートをACTIVEに戻す。なければ何もしない。
func unlockUserCart(ctx context.Context, r repo.TxRepos, userID int64) error {
	cart, err := r.Carts().FindCheckedOutByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusActive)
}

// retireUserCart は支払い済み注文のカートを片付ける。購入済みの明細を消して
// ABANDONEDにする。次のGetCartで新しいカートが作られる。
func retireUserCart(ctx context.Context, r repo.TxRepos, userID int64) error {
	cart, err := r.Carts().FindCheckedOutByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := r.Carts().Clear(ctx, cart.ID); err != nil {
		return err
	}
	return r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusAbandoned)
}

// CancelOrder は未払い注文をキャンセルする。在庫を戻し、カートのロックを解く。
// 支払い済みはキャンセル不可（一方通行）。
func (u *OrderUsecase) CancelOrder(ctx context.Context, userID int64, orderID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "no autorizado")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}

	unlock := u.lockUser(userID)
	defer unlock()

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOwnedOrder(ctx, r, userID, orderID)
		if err != nil {
			return err
		}
		if o.IsPaid() {
			return NewHTTPError(http.StatusConflict, "el pedido ya fue pagado")
		}
		switch o.Status {
		case model.OrderStatusCanceled:
			return NewHTTPError(http.StatusConflict, "el pedido ya fue cancelado")
		case model.OrderStatusShipped, model.OrderStatusDelivered:
			return NewHTTPError(http.StatusConflict, "el pedido ya fue enviado")
		}

		if err := restoreOrderStock(ctx, r, o.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		if err := r.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusCanceled); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		if err := unlockUserCart(ctx, r, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		return nil
	})
}

type PayOrderInput struct {
	PaymentResultID string `json:"payment_result_id"`
}

// PayOrder は支払い確定を記録する。PENDINGかつ未払いの注文だけが対象。
func (u *OrderUsecase) PayOrder(ctx context.Context, userID int64, orderID int64, in PayOrderInput) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "no autorizado")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}
	if strings.TrimSpace(in.PaymentResultID) == "" {
		return NewHTTPError(http.StatusBadRequest, "resultado de pago requerido")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOwnedOrder(ctx, r, userID, orderID)
		if err != nil {
			return err
		}
		if o.IsPaid() {
			return NewHTTPError(http.StatusConflict, "el pedido ya fue pagado")
		}
		if o.Status != model.OrderStatusPending {
			return NewHTTPError(http.StatusConflict, "el pedido no admite pago")
		}

		err = r.Orders().MarkPaid(ctx, o.ID, strings.TrimSpace(in.PaymentResultID), timeNow())
		if errors.Is(err, repo.ErrNotFound) {
			//競合で他の遷移が先に入った
			return NewHTTPError(http.StatusConflict, "el pedido no admite pago")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		//支払いが済んだらカートは用済み。片付けないと次の買い物ができない。
		if err := retireUserCart(ctx, r, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		return nil
	})
}
