package handler

import (
	"net/http"
	"strconv"
	"time"

	"tiendamontana/internal/config"
	"tiendamontana/internal/domain/model"
	"tiendamontana/internal/middleware"
	"tiendamontana/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/ordersのHTTP。ADMINロール必須。
type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.PATCH("/:id/status", h.updateStatus)
	g.DELETE("/:id", h.delete)
	g.POST("/sweep", h.sweep)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
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

	var userID *int64
	if v := c.QueryParam("user_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "usuario inválido")
		}
		userID = &x
	}

	var from, to *time.Time
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "fecha inválida")
		}
		from = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "fecha inválida")
		}
		to = &t
	}

	out, err := h.uc.List(c.Request().Context(), usecase.AdminOrderListInput{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
		UserID: userID,
		From:   from,
		To:     to,
	})
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, out)
}

func (h *AdminOrderHandler) detail(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	out, err := h.uc.GetDetail(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	adminID, ok2 := getUserIDFromContext(c)
	if !ok2 {
		return fail(c, http.StatusUnauthorized, "no autorizado")
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	next := model.OrderStatus(req.Status)
	if err := h.uc.UpdateStatus(c.Request().Context(), adminID, orderID, next); err != nil {
		return writeError(c, err)
	}

	if next == model.OrderStatusCanceled {
		middleware.RecordOrderCanceled("admin")
	}
	return ok(c, nil)
}

func (h *AdminOrderHandler) delete(c echo.Context) error {
	adminID, ok2 := getUserIDFromContext(c)
	if !ok2 {
		return fail(c, http.StatusUnauthorized, "no autorizado")
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	if err := h.uc.Delete(c.Request().Context(), adminID, orderID); err != nil {
		return writeError(c, err)
	}

	return ok(c, nil)
}

// 期限切れの未払い注文を今すぐ掃除する
func (h *AdminOrderHandler) sweep(c echo.Context) error {
	result, err := h.uc.Sweep(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	for i := 0; i < result.Canceled; i++ {
		middleware.RecordOrderCanceled("sweeper")
	}
	return ok(c, result)
}
