package handler

import (
	"net/http"
	"strconv"

	"tiendamontana/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
	e.GET("/products/slug/:slug", h.detailBySlug)
}

func (h *ProductHandler) list(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "página inválida")
		}
		page = p
	}

	// limit（default 20）
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "límite inválido")
		}
		limit = l
	}

	q := c.QueryParam("q")
	sort := c.QueryParam("sort")

	categoryID, err := optionalInt64Param(c, "category_id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "categoría inválida")
	}
	subcategoryID, err := optionalInt64Param(c, "subcategory_id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "subcategoría inválida")
	}
	brandID, err := optionalInt64Param(c, "brand_id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "marca inválida")
	}
	minPrice, err := optionalInt64Param(c, "min_price")
	if err != nil {
		return fail(c, http.StatusBadRequest, "precio mínimo inválido")
	}
	maxPrice, err := optionalInt64Param(c, "max_price")
	if err != nil {
		return fail(c, http.StatusBadRequest, "precio máximo inválido")
	}

	out, err := h.uc.ListPublicProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:          page,
		Limit:         limit,
		Q:             q,
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		BrandID:       brandID,
		MinPrice:      minPrice,
		MaxPrice:      maxPrice,
		Sort:          sort,
	})
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "identificador inválido")
	}

	p, err := h.uc.GetProductDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, p)
}

func (h *ProductHandler) detailBySlug(c echo.Context) error {
	p, err := h.uc.GetProductBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, p)
}

func optionalInt64Param(c echo.Context, name string) (*int64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	x, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, err
	}
	return &x, nil
}
