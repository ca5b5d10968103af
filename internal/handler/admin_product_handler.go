package handler

import (
	"net/http"
	"strconv"

	"tiendamontana/internal/config"
	"tiendamontana/internal/middleware"
	"tiendamontana/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/products と在庫・画像の管理HTTP。ADMINロール必須。
type AdminProductHandler struct {
	productUC *usecase.ProductUsecase
	imageUC   *usecase.ImageUsecase
}

func NewAdminProductHandler(productUC *usecase.ProductUsecase, imageUC *usecase.ImageUsecase) *AdminProductHandler {
	return &AdminProductHandler{
		productUC: productUC,
		imageUC:   imageUC,
	}
}

type AdminProductRequest struct {
	Name          string              `json:"name"`
	Slug          string              `json:"slug"`
	SKU           string              `json:"sku"`
	Description   string              `json:"description"`
	Price         int64               `json:"price"`
	Stock         int64               `json:"stock"`
	Weight        int64               `json:"weight"`
	BrandID       int64               `json:"brand_id"`
	CategoryID    int64               `json:"category_id"`
	SubcategoryID *int64              `json:"subcategory_id"`
	IsActive      bool                `json:"is_active"`
	Features      []string            `json:"features"`
	Specs         []usecase.SpecInput `json:"specs"`
}

type SetStockRequest struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

type AddImageRequest struct {
	URL       string `json:"url"`
	AltText   string `json:"alt_text"`
	Position  int    `json:"position"`
	IsPrimary bool   `json:"is_primary"`
}

type UpdateImageRequest struct {
	AltText   *string `json:"alt_text"`
	Position  *int    `json:"position"`
	IsPrimary *bool   `json:"is_primary"`
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.POST("/products", h.create)
	g.PUT("/products/:id", h.update)
	g.DELETE("/products/:id", h.delete)
	g.PUT("/inventory/:product_id", h.setStock)

	g.GET("/products/:id/images", h.listImages)
	g.POST("/products/:id/images", h.addImage)
	g.PATCH("/images/:id", h.updateImage)
	g.DELETE("/images/:id", h.deleteImage)
}

func toAdminProductInput(req AdminProductRequest) usecase.AdminProductInput {
	return usecase.AdminProductInput{
		Name:          req.Name,
		Slug:          req.Slug,
		SKU:           req.SKU,
		Description:   req.Description,
		Price:         req.Price,
		Stock:         req.Stock,
		Weight:        req.Weight,
		BrandID:       req.BrandID,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		IsActive:      req.IsActive,
		Features:      req.Features,
		Specs:         req.Specs,
	}
}

func (h *AdminProductHandler) create(c echo.Context) error {
	adminID, ok2 := getUserIDFromContext(c)
	if !ok2 {
		return fail(c, http.StatusUnauthorized, "no autorizado")
	}

	var req AdminProductRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	id, err := h.productUC.AdminCreateProduct(c.Request().Context(), adminID, toAdminProductInput(req))
	if err != nil {
		return writeError(c, err)
	}

	return okWithStatus(c, http.StatusCreated, map[string]int64{"id": id})
}

func (h *AdminProductHandler) update(c echo.Context) error {
	adminID, ok2 := getUserIDFromContext(c)
	if !ok2 {
		return fail(c, http.StatusUnauthorized, "no autorizado")
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	var req AdminProductRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	if err := h.productUC.AdminUpdateProduct(c.Request().Context(), adminID, productID, toAdminProductInput(req)); err != nil {
		return writeError(c, err)
	}

	return ok(c, nil)
}

func (h *AdminProductHandler) delete(c echo.Context) error {
	adminID, ok2 := getUserIDFromContext(c)
	if !ok2 {
		return fail(c, http.StatusUnauthorized, "no autorizado")
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	if err := h.productUC.AdminDeleteProduct(c.Request().Context(), adminID, productID); err != nil {
		return writeError(c, err)
	}

	return ok(c, nil)
}

func (h *AdminProductHandler) setStock(c echo.Context) error {
	adminID, ok2 := getUserIDFromContext(c)
	if !ok2 {
		return fail(c, http.StatusUnauthorized, "no autorizado")
	}

	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	var req SetStockRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	if err := h.productUC.AdminSetStock(c.Request().Context(), adminID, productID, req.Stock, req.Reason); err != nil {
		return writeError(c, err)
	}

	return ok(c, nil)
}

func (h *AdminProductHandler) listImages(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	images, err := h.imageUC.ListImages(c.Request().Context(), productID)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, images)
}

func (h *AdminProductHandler) addImage(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	var req AddImageRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	img, err := h.imageUC.AddImage(c.Request().Context(), productID, usecase.AddImageInput{
		URL:       req.URL,
		AltText:   req.AltText,
		Position:  req.Position,
		IsPrimary: req.IsPrimary,
	})
	if err != nil {
		return writeError(c, err)
	}

	return okWithStatus(c, http.StatusCreated, img)
}

func (h *AdminProductHandler) updateImage(c echo.Context) error {
	imageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	var req UpdateImageRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	if err := h.imageUC.UpdateImage(c.Request().Context(), imageID, usecase.UpdateImageInput{
		AltText:   req.AltText,
		Position:  req.Position,
		IsPrimary: req.IsPrimary,
	}); err != nil {
		return writeError(c, err)
	}

	return ok(c, nil)
}

func (h *AdminProductHandler) deleteImage(c echo.Context) error {
	imageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	if err := h.imageUC.DeleteImage(c.Request().Context(), imageID); err != nil {
		return writeError(c, err)
	}

	return ok(c, nil)
}
