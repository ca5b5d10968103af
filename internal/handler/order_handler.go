package handler

import (
	"net/http"
	"strconv"

	"tiendamontana/internal/config"
	"tiendamontana/internal/middleware"
	"tiendamontana/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /ordersのHTTP。全部ログイン必須。
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

// DI
func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type PlaceOrderRequest struct {
	ShippingName       string `json:"shipping_name"`
	ShippingPhone      string `json:"shipping_phone"`
	ShippingAddress    string `json:"shipping_address"`
	ShippingCity       string `json:"shipping_city"`
	ShippingRegion     string `json:"shipping_region"`
	ShippingPostalCode string `json:"shipping_postal_code"`
	PaymentMethod      string `json:"payment_method"`
}

type PayOrderRequest struct {
	PaymentResultID string `json:"payment_result_id"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("", h.place)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.POST("/:id/cancel", h.cancel)
	g.POST("/:id/pay", h.pay)
}

func (h *OrderHandler) place(c echo.Context) error {
	userID, ok2 := getUserIDFromContext(c)
	if !ok2 {
		return fail(c, http.StatusUnauthorized, "no autorizado")
	}

	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), userID, usecase.PlaceOrderInput{
		ShippingName:       req.ShippingName,
		ShippingPhone:      req.ShippingPhone,
		ShippingAddress:    req.ShippingAddress,
		ShippingCity:       req.ShippingCity,
		ShippingRegion:     req.ShippingRegion,
		ShippingPostalCode: req.ShippingPostalCode,
		PaymentMethod:      req.PaymentMethod,
	})
	if err != nil {
		return writeError(c, err)
	}

	middleware.RecordOrderPlaced()
	return okWithStatus(c, http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok2 := getUserIDFromContext(c)
	if !ok2 {
		return fail(c, http.StatusUnauthorized, "no autorizado")
	}

	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "página inválida")
		}
		page = p
	}
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "límite inválido")
		}
		limit = l
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok2 := getUserIDFromContext(c)
	if !ok2 {
		return fail(c, http.StatusUnauthorized, "no autorizado")
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	out, err := h.uc.GetMyOrderDetail(c.Request().Context(), userID, orderID)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, out)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	userID, ok2 := getUserIDFromContext(c)
	if !ok2 {
		return fail(c, http.StatusUnauthorized, "no autorizado")
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	if err := h.uc.CancelOrder(c.Request().Context(), userID, orderID); err != nil {
		return writeError(c, err)
	}

	middleware.RecordOrderCanceled("user")
	return ok(c, nil)
}

func (h *OrderHandler) pay(c echo.Context) error {
	userID, ok2 := getUserIDFromContext(c)
	if !ok2 {
		return fail(c, http.StatusUnauthorized, "no autorizado")
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	var req PayOrderRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	if err := h.uc.PayOrder(c.Request().Context(), userID, orderID, usecase.PayOrderInput{
		PaymentResultID: req.PaymentResultID,
	}); err != nil {
		return writeError(c, err)
	}

	return ok(c, nil)
}
