package handler

import (
	"tiendamontana/internal/usecase"

	"github.com/labstack/echo/v4"
)

// カテゴリ・ブランドの公開API
type CatalogHandler struct {
	uc *usecase.CatalogUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/categories", h.listCategories)
	e.GET("/brands", h.listBrands)
}

func (h *CatalogHandler) listCategories(c echo.Context) error {
	out, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

func (h *CatalogHandler) listBrands(c echo.Context) error {
	out, err := h.uc.ListBrands(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}
