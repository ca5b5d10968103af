package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tiendamontana/internal/domain/model"
	repo "tiendamontana/internal/repository"
)

// テストで固定できるように変数にしておく
var timeNow = time.Now

// 金額ルール。カート・注文の合計計算で共有する。
type Pricing struct {
	TaxRatePercent  int64 // IVA（%）
	FreeShippingMin int64 // この金額以上で送料無料（センタボ）
	ShippingFlat    int64 // 固定送料（センタボ）
}

// 小計から税・送料・合計を出す。合計は読み出し時に毎回計算する（保存しない）。
func (p Pricing) computeTotals(itemsPrice int64) (tax int64, shipping int64, total int64) {
	tax = itemsPrice * p.TaxRatePercent / 100
	if itemsPrice >= p.FreeShippingMin {
		shipping = 0
	} else {
		shipping = p.ShippingFlat
	}
	total = itemsPrice + tax + shipping
	return
}

// カートの持ち主。ログイン済みならUserID、ゲストならSessionToken。
// どちらか一方だけが入る。
type CartIdentity struct {
	UserID       int64
	SessionToken string
}

func (id CartIdentity) valid() bool {
	return (id.UserID > 0) != (id.SessionToken != "")
}

type CartUsecase struct {
	tx           repo.TransactionManager
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	pricing      Pricing
}

func NewCartUsecase(
	tx repo.TransactionManager,
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	pricing Pricing,
) *CartUsecase {
	return &CartUsecase{
		tx:           tx,
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		pricing:      pricing,
	}
}

type CartItemOutput struct {
	ID        int64  `json:"id"`
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

type CartOutput struct {
	CartID        int64            `json:"cart_id"`
	Status        model.CartStatus `json:"status"`
	Items         []CartItemOutput `json:"items"`
	ItemsPrice    int64            `json:"items_price"`
	TaxPrice      int64            `json:"tax_price"`
	ShippingPrice int64            `json:"shipping_price"`
	TotalPrice    int64            `json:"total_price"`
	TotalWeight   int64            `json:"total_weight"`
}

// findCart はアイデンティティに応じたカートを探す。createがtrueならなければ作る。
func (u *CartUsecase) findCart(ctx context.Context, id CartIdentity, create bool) (model.Cart, error) {
	if id.UserID > 0 {
		if create {
			return u.cartRepo.GetOrCreateActiveByUserID(ctx, id.UserID)
		}
		return u.cartRepo.FindActiveByUserID(ctx, id.UserID)
	}
	if create {
		return u.cartRepo.GetOrCreateActiveBySession(ctx, id.SessionToken)
	}
	return u.cartRepo.FindActiveBySession(ctx, id.SessionToken)
}

func (u *CartUsecase) buildOutput(ctx context.Context, cart model.Cart) (CartOutput, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	out := CartOutput{
		CartID: cart.ID,
		Status: cart.Status,
		Items:  make([]CartItemOutput, 0, len(items)),
	}
	for _, it := range items {
		out.Items = append(out.Items, CartItemOutput{
			ID:        it.ID,
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
		out.ItemsPrice += it.UnitPriceSnapshot * it.Quantity
		out.TotalWeight += it.WeightSnapshot * it.Quantity
	}
	out.TaxPrice, out.ShippingPrice, out.TotalPrice = u.pricing.computeTotals(out.ItemsPrice)
	return out, nil
}

// GetCart はカートを返す。ユーザーにロック中（注文変換済み）のカートがあれば
// そちらを返す。なければアクティブカートを取得（なければ作成）。
func (u *CartUsecase) GetCart(ctx context.Context, id CartIdentity) (CartOutput, error) {
	if !id.valid() {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "identidad de carrito inválida")
	}

	if id.UserID > 0 {
		locked, err := u.cartRepo.FindCheckedOutByUserID(ctx, id.UserID)
		if err == nil {
			return u.buildOutput(ctx, locked)
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
	}

	cart, err := u.findCart(ctx, id, true)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	return u.buildOutput(ctx, cart)
}

type AddToCartInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// AddToCart は商品をカートに追加する。既存明細があれば数量を加算。
// ロック中のカートには追加できない。
func (u *CartUsecase) AddToCart(ctx context.Context, id CartIdentity, in AddToCartInput) (CartOutput, error) {
	if !id.valid() {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "identidad de carrito inválida")
	}
	if in.ProductID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}
	if in.Quantity < 1 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "cantidad inválida")
	}

	if id.UserID > 0 {
		_, err := u.cartRepo.FindCheckedOutByUserID(ctx, id.UserID)
		if err == nil {
			return CartOutput{}, NewHTTPError(http.StatusConflict, "el carrito está bloqueado por un pedido pendiente")
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "producto no encontrado")
	}
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	if !p.IsActive {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "producto no encontrado")
	}
	cart, err := u.findCart(ctx, id, true)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	//加算後の数量で在庫を見る。同じ商品を繰り返し足しても超過で止まる。
	requested := in.Quantity
	existing, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	for _, it := range existing {
		if it.ProductID == p.ID {
			requested += it.Quantity
			break
		}
	}
	if requested > p.Stock {
		return CartOutput{}, NewHTTPError(http.StatusConflict, "stock insuficiente")
	}

	err = u.cartItemRepo.UpsertLine(ctx, model.CartItem{
		CartID:            cart.ID,
		ProductID:         p.ID,
		Quantity:          in.Quantity,
		NameSnapshot:      p.Name,
		SKUSnapshot:       p.SKU,
		SlugSnapshot:      p.Slug,
		UnitPriceSnapshot: p.Price,
		WeightSnapshot:    p.Weight,
	})
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	return u.buildOutput(ctx, cart)
}

func (id CartIdentity) ownsCart(cart model.Cart) bool {
	if id.UserID > 0 {
		return cart.UserID != nil && *cart.UserID == id.UserID
	}
	return cart.SessionToken != nil && *cart.SessionToken == id.SessionToken
}

// findOwnedItem は明細→カートの所有チェック。他人のカートの明細は触れない。
// ロック中（CHECKED_OUT）のカートは所有者でも編集不可。
func (u *CartUsecase) findOwnedItem(ctx context.Context, id CartIdentity, cartItemID int64) (model.CartItem, model.Cart, error) {
	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CartItem{}, model.Cart{}, NewHTTPError(http.StatusNotFound, "artículo no encontrado")
	}
	if err != nil {
		return model.CartItem{}, model.Cart{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	cart, err := u.cartRepo.FindByID(ctx, item.CartID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CartItem{}, model.Cart{}, NewHTTPError(http.StatusNotFound, "artículo no encontrado")
	}
	if err != nil {
		return model.CartItem{}, model.Cart{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	if !id.ownsCart(cart) {
		return model.CartItem{}, model.Cart{}, NewHTTPError(http.StatusNotFound, "artículo no encontrado")
	}
	if cart.Status != model.CartStatusActive {
		return model.CartItem{}, model.Cart{}, NewHTTPError(http.StatusConflict, "el carrito está bloqueado por un pedido pendiente")
	}
	return item, cart, nil
}

func (u *CartUsecase) UpdateCartItem(ctx context.Context, id CartIdentity, cartItemID int64, qty int64) (CartOutput, error) {
	if !id.valid() {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "identidad de carrito inválida")
	}
	if qty < 1 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "cantidad inválida")
	}

	_, cart, err := u.findOwnedItem(ctx, id, cartItemID)
	if err != nil {
		return CartOutput{}, err
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, qty); err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	return u.buildOutput(ctx, cart)
}

func (u *CartUsecase) DeleteCartItem(ctx context.Context, id CartIdentity, cartItemID int64) (CartOutput, error) {
	if !id.valid() {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "identidad de carrito inválida")
	}

	_, cart, err := u.findOwnedItem(ctx, id, cartItemID)
	if err != nil {
		return CartOutput{}, err
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	return u.buildOutput(ctx, cart)
}

// MergeSessionCart はログイン時にゲストカートをユーザーカートへ統合する。
// 同一商品は数量を加算し、ゲストカートは放棄扱いにする。
func (u *CartUsecase) MergeSessionCart(ctx context.Context, userID int64, sessionToken string) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "no autorizado")
	}
	if sessionToken == "" {
		return NewHTTPError(http.StatusBadRequest, "token de sesión requerido")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		sessCart, err := r.Carts().FindActiveBySession(ctx, sessionToken)
		if errors.Is(err, repo.ErrNotFound) {
			return nil // 統合するものがない
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}

		items, err := r.CartItems().ListByCartID(ctx, sessCart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}

		if len(items) > 0 {
			userCart, err := r.Carts().GetOrCreateActiveByUserID(ctx, userID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
			}
			for _, it := range items {
				it.ID = 0
				it.CartID = userCart.ID
				if err := r.CartItems().UpsertLine(ctx, it); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
				}
			}
		}

		if err := r.CartItems().DeleteByCartID(ctx, sessCart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		if err := r.Carts().UpdateStatus(ctx, sessCart.ID, model.CartStatusAbandoned); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		return nil
	})
}

// 在庫確認の結果。問題がある明細だけ返す。
type StockIssue struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
	Reason    string `json:"reason"`
}

// CheckStock はカート全明細を現在の商品状態と突き合わせる。
// 問題ありでも成功レスポンス（確認結果が本体）。
func (u *CartUsecase) CheckStock(ctx context.Context, id CartIdentity) ([]StockIssue, error) {
	if !id.valid() {
		return nil, NewHTTPError(http.StatusBadRequest, "identidad de carrito inválida")
	}

	cart, err := u.findCart(ctx, id, false)
	if errors.Is(err, repo.ErrNotFound) {
		return []StockIssue{}, nil
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	issues := []StockIssue{}
	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			issues = append(issues, StockIssue{
				ProductID: it.ProductID,
				Name:      it.NameSnapshot,
				Requested: it.Quantity,
				Available: 0,
				Reason:    "producto_inexistente",
			})
			continue
		}
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		if !p.IsActive {
			issues = append(issues, StockIssue{
				ProductID: it.ProductID,
				Name:      it.NameSnapshot,
				Requested: it.Quantity,
				Available: 0,
				Reason:    "producto_inactivo",
			})
			continue
		}
		if it.Quantity > p.Stock {
			issues = append(issues, StockIssue{
				ProductID: it.ProductID,
				Name:      it.NameSnapshot,
				Requested: it.Quantity,
				Available: p.Stock,
				Reason:    "stock_insuficiente",
			})
		}
	}
	return issues, nil
}
