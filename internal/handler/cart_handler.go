package handler

import (
	"net/http"
	"strconv"

	"tiendamontana/internal/config"
	"tiendamontana/internal/middleware"
	"tiendamontana/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP。ゲストはX-Session-Tokenで、ログイン済みはJWTで持ち主を決める。
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

type MergeCartRequest struct {
	SessionToken string `json:"session_token"`
}

// /cart, /cart/{id} を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/cart")
	g.Use(middleware.OptionalAuthJWT(cfg))

	g.GET("", h.getCart)
	g.POST("", h.addToCart)
	g.PATCH("/:id", h.patchItem)
	g.DELETE("/:id", h.deleteItem)
	g.GET("/stock-check", h.checkStock)

	//統合だけはログイン必須
	m := e.Group("/cart/merge")
	m.Use(middleware.AuthJWT(cfg))
	m.POST("", h.merge)
}

func (h *CartHandler) getCart(c echo.Context) error {
	out, err := h.uc.GetCart(c.Request().Context(), cartIdentity(c))
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	out, err := h.uc.AddToCart(c.Request().Context(), cartIdentity(c), usecase.AddToCartInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, out)
}

func (h *CartHandler) patchItem(c echo.Context) error {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	out, err := h.uc.UpdateCartItem(c.Request().Context(), cartIdentity(c), itemID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	out, err := h.uc.DeleteCartItem(c.Request().Context(), cartIdentity(c), itemID)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, out)
}

// カート全明細の在庫確認。問題があっても200で返す（確認結果が本体）。
func (h *CartHandler) checkStock(c echo.Context) error {
	issues, err := h.uc.CheckStock(c.Request().Context(), cartIdentity(c))
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, map[string]interface{}{
		"ok":     len(issues) == 0,
		"issues": issues,
	})
}

// ログイン直後にゲストカートをユーザーカートへ統合する
func (h *CartHandler) merge(c echo.Context) error {
	userID, ok2 := getUserIDFromContext(c)
	if !ok2 {
		return fail(c, http.StatusUnauthorized, "no autorizado")
	}

	var req MergeCartRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	if err := h.uc.MergeSessionCart(c.Request().Context(), userID, req.SessionToken); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.GetCart(c.Request().Context(), usecase.CartIdentity{UserID: userID})
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, out)
}
