package handler

import (
	"net/http"
	"strconv"

	"tiendamontana/internal/config"
	"tiendamontana/internal/middleware"
	"tiendamontana/internal/usecase"

	"github.com/labstack/echo/v4"
)

// カテゴリ・サブカテゴリ・ブランドの管理HTTP。ADMINロール必須。
type AdminCatalogHandler struct {
	uc *usecase.CatalogUsecase
}

func NewAdminCatalogHandler(uc *usecase.CatalogUsecase) *AdminCatalogHandler {
	return &AdminCatalogHandler{uc: uc}
}

func (h *AdminCatalogHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.POST("/categories", h.createCategory)
	g.PUT("/categories/:id", h.updateCategory)
	g.DELETE("/categories/:id", h.deleteCategory)

	g.POST("/subcategories", h.createSubcategory)
	g.PUT("/subcategories/:id", h.updateSubcategory)
	g.DELETE("/subcategories/:id", h.deleteSubcategory)

	g.POST("/brands", h.createBrand)
	g.PUT("/brands/:id", h.updateBrand)
	g.DELETE("/brands/:id", h.deleteBrand)
}

func (h *AdminCatalogHandler) createCategory(c echo.Context) error {
	var req usecase.CategoryInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	out, err := h.uc.CreateCategory(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return okWithStatus(c, http.StatusCreated, out)
}

func (h *AdminCatalogHandler) updateCategory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	var req usecase.CategoryInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	if err := h.uc.UpdateCategory(c.Request().Context(), id, req); err != nil {
		return writeError(c, err)
	}
	return ok(c, nil)
}

func (h *AdminCatalogHandler) deleteCategory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	if err := h.uc.DeleteCategory(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return ok(c, nil)
}

func (h *AdminCatalogHandler) createSubcategory(c echo.Context) error {
	var req usecase.SubcategoryInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	out, err := h.uc.CreateSubcategory(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return okWithStatus(c, http.StatusCreated, out)
}

func (h *AdminCatalogHandler) updateSubcategory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	var req usecase.SubcategoryInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	if err := h.uc.UpdateSubcategory(c.Request().Context(), id, req); err != nil {
		return writeError(c, err)
	}
	return ok(c, nil)
}

func (h *AdminCatalogHandler) deleteSubcategory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	if err := h.uc.DeleteSubcategory(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return ok(c, nil)
}

func (h *AdminCatalogHandler) createBrand(c echo.Context) error {
	var req usecase.BrandInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	out, err := h.uc.CreateBrand(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return okWithStatus(c, http.StatusCreated, out)
}

func (h *AdminCatalogHandler) updateBrand(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	var req usecase.BrandInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	if err := h.uc.UpdateBrand(c.Request().Context(), id, req); err != nil {
		return writeError(c, err)
	}
	return ok(c, nil)
}

func (h *AdminCatalogHandler) deleteBrand(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	if err := h.uc.DeleteBrand(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return ok(c, nil)
}
