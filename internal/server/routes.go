package server

import (
	"net/http"

	"tiendamontana/internal/config"
	"tiendamontana/internal/handler"
	"tiendamontana/internal/middleware"

	"github.com/labstack/echo/v4"
)

// 各ハンドラをまとめてDIする
type Handlers struct {
	Product      *handler.ProductHandler
	Catalog      *handler.CatalogHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminProduct *handler.AdminProductHandler
	AdminCatalog *handler.AdminCatalogHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", middleware.PrometheusHandler())

	h.Product.RegisterRoutes(e)
	h.Catalog.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.AdminOrder.RegisterRoutes(e, cfg)
	h.AdminProduct.RegisterRoutes(e, cfg)
	h.AdminCatalog.RegisterRoutes(e, cfg)
}
