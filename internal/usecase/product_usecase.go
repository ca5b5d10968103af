package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"tiendamontana/internal/domain/model"
	"tiendamontana/internal/infra/cache"
	repo "tiendamontana/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

type ProductUsecase struct {
	tx          repo.TransactionManager
	productRepo repo.ProductRepository
	imageRepo   repo.ProductImageRepository
	auditRepo   repo.AuditLogRepository
	cache       *cache.ProductCache // nilなら無効
}

// DI
func NewProductUsecase(
	tx repo.TransactionManager,
	productRepo repo.ProductRepository,
	imageRepo repo.ProductImageRepository,
	auditRepo repo.AuditLogRepository,
	productCache *cache.ProductCache,
) *ProductUsecase {
	return &ProductUsecase{
		tx:          tx,
		productRepo: productRepo,
		imageRepo:   imageRepo,
		auditRepo:   auditRepo,
		cache:       productCache,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page          int
	Limit         int
	Q             string
	CategoryID    *int64
	SubcategoryID *int64
	BrandID       *int64
	MinPrice      *int64
	MaxPrice      *int64
	Sort          string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type SpecOutput struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ImageOutput struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	AltText   string `json:"alt_text"`
	Position  int    `json:"position"`
	IsPrimary bool   `json:"is_primary"`
}

type ProductDetailOutput struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	SKU           string        `json:"sku"`
	Description   string        `json:"description"`
	Price         int64         `json:"price"`
	Stock         int64         `json:"stock"`
	Weight        int64         `json:"weight"`
	BrandID       int64         `json:"brand_id"`
	CategoryID    int64         `json:"category_id"`
	SubcategoryID *int64        `json:"subcategory_id"`
	IsActive      bool          `json:"is_active"`
	Features      []string      `json:"features"`
	Specs         []SpecOutput  `json:"specs"`
	Images        []ImageOutput `json:"images"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "página inválida")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "límite inválido")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "búsqueda inválida")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:          in.Page,
		Limit:         in.Limit,
		Q:             in.Q,
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
		BrandID:       in.BrandID,
		MinPrice:      in.MinPrice,
		MaxPrice:      in.MaxPrice,
		Sort:          in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	return ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// 公開詳細。キャッシュ命中ならDBに行かない。
func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (ProductDetailOutput, error) {
	if productID <= 0 {
		return ProductDetailOutput{}, NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}

	if u.cache != nil {
		if data, ok := u.cache.GetDetail(ctx, productID); ok {
			var out ProductDetailOutput
			if err := json.Unmarshal(data, &out); err == nil {
				return out, nil
			}
		}
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductDetailOutput{}, NewHTTPError(http.StatusNotFound, "producto no encontrado")
	}
	if err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	if !p.IsActive {
		return ProductDetailOutput{}, NewHTTPError(http.StatusNotFound, "producto no encontrado")
	}

	out, err := u.buildDetail(ctx, p)
	if err != nil {
		return ProductDetailOutput{}, err
	}

	if u.cache != nil {
		//キャッシュ失敗は無視してレスポンスを返す
		_ = u.cache.SetDetail(ctx, productID, out)
	}

	return out, nil
}

func (u *ProductUsecase) GetProductBySlug(ctx context.Context, slug string) (ProductDetailOutput, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ProductDetailOutput{}, NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}

	p, err := u.productRepo.FindBySlug(ctx, slug)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductDetailOutput{}, NewHTTPError(http.StatusNotFound, "producto no encontrado")
	}
	if err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	return u.GetProductDetail(ctx, p.ID)
}

func (u *ProductUsecase) buildDetail(ctx context.Context, p model.Product) (ProductDetailOutput, error) {
	features, err := u.productRepo.ListFeatures(ctx, p.ID)
	if err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	specs, err := u.productRepo.ListSpecs(ctx, p.ID)
	if err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	images, err := u.imageRepo.ListByProductID(ctx, p.ID)
	if err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	featureOut := make([]string, 0, len(features))
	for _, f := range features {
		featureOut = append(featureOut, f.Label)
	}
	specOut := make([]SpecOutput, 0, len(specs))
	for _, s := range specs {
		specOut = append(specOut, SpecOutput{Name: s.Name, Value: s.Value})
	}
	imageOut := make([]ImageOutput, 0, len(images))
	for _, img := range images {
		imageOut = append(imageOut, ImageOutput{
			ID:        img.ID,
			URL:       img.URL,
			AltText:   img.AltText,
			Position:  img.Position,
			IsPrimary: img.IsPrimary,
		})
	}

	return ProductDetailOutput{
		ID:            p.ID,
		Name:          p.Name,
		Slug:          p.Slug,
		SKU:           p.SKU,
		Description:   p.Description,
		Price:         p.Price,
		Stock:         p.Stock,
		Weight:        p.Weight,
		BrandID:       p.BrandID,
		CategoryID:    p.CategoryID,
		SubcategoryID: p.SubcategoryID,
		IsActive:      p.IsActive,
		Features:      featureOut,
		Specs:         specOut,
		Images:        imageOut,
	}, nil
}

// =====================
// 管理者側
// =====================

type SpecInput struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type AdminProductInput struct {
	Name          string
	Slug          string
	SKU           string
	Description   string
	Price         int64
	Stock         int64
	Weight        int64
	BrandID       int64
	CategoryID    int64
	SubcategoryID *int64
	IsActive      bool
	Features      []string
	Specs         []SpecInput
}

func (in AdminProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "nombre requerido")
	}
	if strings.TrimSpace(in.Slug) == "" {
		return NewHTTPError(http.StatusBadRequest, "slug requerido")
	}
	if strings.TrimSpace(in.SKU) == "" {
		return NewHTTPError(http.StatusBadRequest, "sku requerido")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "precio inválido")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock inválido")
	}
	if in.Weight < 0 {
		return NewHTTPError(http.StatusBadRequest, "peso inválido")
	}
	return nil
}

func toFeatureRows(features []string) []model.ProductFeature {
	rows := make([]model.ProductFeature, 0, len(features))
	for _, label := range features {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		rows = append(rows, model.ProductFeature{Label: label})
	}
	return rows
}

func toSpecRows(specs []SpecInput) []model.ProductSpec {
	rows := make([]model.ProductSpec, 0, len(specs))
	for _, s := range specs {
		if strings.TrimSpace(s.Name) == "" {
			continue
		}
		rows = append(rows, model.ProductSpec{Name: s.Name, Value: s.Value})
	}
	return rows
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminID int64, in AdminProductInput) (int64, error) {
	if adminID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "no autorizado")
	}
	if err := in.validate(); err != nil {
		return 0, err
	}

	var createdID int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().Create(ctx, model.Product{
			Name:          strings.TrimSpace(in.Name),
			Slug:          strings.TrimSpace(in.Slug),
			SKU:           strings.TrimSpace(in.SKU),
			Description:   in.Description,
			Price:         in.Price,
			Stock:         in.Stock,
			Weight:        in.Weight,
			BrandID:       in.BrandID,
			CategoryID:    in.CategoryID,
			SubcategoryID: in.SubcategoryID,
			IsActive:      in.IsActive,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}

		if err := r.Products().ReplaceFeatures(ctx, p.ID, toFeatureRows(in.Features)); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		if err := r.Products().ReplaceSpecs(ctx, p.ID, toSpecRows(in.Specs)); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}

		createdID = p.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	return createdID, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminID int64, productID int64, in AdminProductInput) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "no autorizado")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}
	if err := in.validate(); err != nil {
		return err
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Products().FindByID(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "producto no encontrado")
			}
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}

		err := r.Products().Update(ctx, model.Product{
			ID:            productID,
			Name:          strings.TrimSpace(in.Name),
			Slug:          strings.TrimSpace(in.Slug),
			SKU:           strings.TrimSpace(in.SKU),
			Description:   in.Description,
			Price:         in.Price,
			Weight:        in.Weight,
			BrandID:       in.BrandID,
			CategoryID:    in.CategoryID,
			SubcategoryID: in.SubcategoryID,
			IsActive:      in.IsActive,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}

		if err := r.Products().ReplaceFeatures(ctx, productID, toFeatureRows(in.Features)); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		if err := r.Products().ReplaceSpecs(ctx, productID, toSpecRows(in.Specs)); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.invalidate(ctx, productID)
	return nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminID int64, productID int64) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "no autorizado")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}

	err := u.productRepo.SoftDelete(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "producto no encontrado")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	u.invalidate(ctx, productID)
	return nil
}

// 在庫の直接設定。調整履歴と監査ログを同じトランザクションで残す。
func (u *ProductUsecase) AdminSetStock(ctx context.Context, adminID int64, productID int64, newStock int64, reason string) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "no autorizado")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}
	if newStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock inválido")
	}
	if strings.TrimSpace(reason) == "" {
		return NewHTTPError(http.StatusBadRequest, "motivo requerido")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "producto no encontrado")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}

		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}

		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			AdminUserID: adminID,
			Delta:       newStock - p.Stock,
			Reason:      strings.TrimSpace(reason),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}

		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  adminID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   `{"stock":` + strconv.FormatInt(p.Stock, 10) + `}`,
			AfterJSON:    `{"stock":` + strconv.FormatInt(newStock, 10) + `}`,
			CreatedAt:    timeNow(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}

		return nil
	})
	if err != nil {
		return err
	}

	u.invalidate(ctx, productID)
	return nil
}

func (u *ProductUsecase) invalidate(ctx context.Context, productID int64) {
	if u.cache != nil {
		_ = u.cache.Invalidate(ctx, productID)
	}
}
