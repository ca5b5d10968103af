package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"tiendamontana/internal/domain/model"
	repo "tiendamontana/internal/repository"
)

// カテゴリ・ブランドの参照と管理。
type CatalogUsecase struct {
	categoryRepo repo.CategoryRepository
	brandRepo    repo.BrandRepository
}

func NewCatalogUsecase(categoryRepo repo.CategoryRepository, brandRepo repo.BrandRepository) *CatalogUsecase {
	return &CatalogUsecase{
		categoryRepo: categoryRepo,
		brandRepo:    brandRepo,
	}
}

type SubcategoryOutput struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Position int    `json:"position"`
}

type CategoryOutput struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	Slug          string              `json:"slug"`
	Position      int                 `json:"position"`
	Subcategories []SubcategoryOutput `json:"subcategories"`
}

// ListCategories はカテゴリをサブカテゴリ込みで返す。
func (u *CatalogUsecase) ListCategories(ctx context.Context) ([]CategoryOutput, error) {
	categories, err := u.categoryRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	out := make([]CategoryOutput, 0, len(categories))
	for _, c := range categories {
		subs, err := u.categoryRepo.ListSubcategories(ctx, c.ID)
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		subOut := make([]SubcategoryOutput, 0, len(subs))
		for _, s := range subs {
			subOut = append(subOut, SubcategoryOutput{ID: s.ID, Name: s.Name, Slug: s.Slug, Position: s.Position})
		}
		out = append(out, CategoryOutput{
			ID:            c.ID,
			Name:          c.Name,
			Slug:          c.Slug,
			Position:      c.Position,
			Subcategories: subOut,
		})
	}
	return out, nil
}

func (u *CatalogUsecase) ListBrands(ctx context.Context) ([]model.Brand, error) {
	brands, err := u.brandRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	return brands, nil
}

type CategoryInput struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Position int    `json:"position"`
}

func (in CategoryInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "nombre requerido")
	}
	if strings.TrimSpace(in.Slug) == "" {
		return NewHTTPError(http.StatusBadRequest, "slug requerido")
	}
	return nil
}

func (u *CatalogUsecase) CreateCategory(ctx context.Context, in CategoryInput) (model.Category, error) {
	if err := in.validate(); err != nil {
		return model.Category{}, err
	}
	c, err := u.categoryRepo.Create(ctx, model.Category{
		Name:     strings.TrimSpace(in.Name),
		Slug:     strings.TrimSpace(in.Slug),
		Position: in.Position,
	})
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	return c, nil
}

func (u *CatalogUsecase) UpdateCategory(ctx context.Context, categoryID int64, in CategoryInput) error {
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}
	if err := in.validate(); err != nil {
		return err
	}
	err := u.categoryRepo.Update(ctx, model.Category{
		ID:       categoryID,
		Name:     strings.TrimSpace(in.Name),
		Slug:     strings.TrimSpace(in.Slug),
		Position: in.Position,
	})
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "categoría no encontrada")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	return nil
}

// DeleteCategory はサブカテゴリも一緒に消す。
func (u *CatalogUsecase) DeleteCategory(ctx context.Context, categoryID int64) error {
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}
	err := u.categoryRepo.Delete(ctx, categoryID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "categoría no encontrada")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	return nil
}

type SubcategoryInput struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	Position   int    `json:"position"`
}

func (u *CatalogUsecase) CreateSubcategory(ctx context.Context, in SubcategoryInput) (model.Subcategory, error) {
	if in.CategoryID <= 0 {
		return model.Subcategory{}, NewHTTPError(http.StatusBadRequest, "categoría requerida")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Subcategory{}, NewHTTPError(http.StatusBadRequest, "nombre requerido")
	}
	if strings.TrimSpace(in.Slug) == "" {
		return model.Subcategory{}, NewHTTPError(http.StatusBadRequest, "slug requerido")
	}

	//親の存在確認
	if _, err := u.categoryRepo.FindByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Subcategory{}, NewHTTPError(http.StatusNotFound, "categoría no encontrada")
		}
		return model.Subcategory{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	s, err := u.categoryRepo.CreateSubcategory(ctx, model.Subcategory{
		CategoryID: in.CategoryID,
		Name:       strings.TrimSpace(in.Name),
		Slug:       strings.TrimSpace(in.Slug),
		Position:   in.Position,
	})
	if err != nil {
		return model.Subcategory{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	return s, nil
}

func (u *CatalogUsecase) UpdateSubcategory(ctx context.Context, subcategoryID int64, in SubcategoryInput) error {
	if subcategoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "nombre requerido")
	}
	if strings.TrimSpace(in.Slug) == "" {
		return NewHTTPError(http.StatusBadRequest, "slug requerido")
	}

	current, err := u.categoryRepo.FindSubcategoryByID(ctx, subcategoryID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "subcategoría no encontrada")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	categoryID := current.CategoryID
	if in.CategoryID > 0 {
		categoryID = in.CategoryID
	}

	err = u.categoryRepo.UpdateSubcategory(ctx, model.Subcategory{
		ID:         subcategoryID,
		CategoryID: categoryID,
		Name:       strings.TrimSpace(in.Name),
		Slug:       strings.TrimSpace(in.Slug),
		Position:   in.Position,
	})
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	return nil
}

func (u *CatalogUsecase) DeleteSubcategory(ctx context.Context, subcategoryID int64) error {
	if subcategoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}
	err := u.categoryRepo.DeleteSubcategory(ctx, subcategoryID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "subcategoría no encontrada")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	return nil
}

type BrandInput struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	LogoURL string `json:"logo_url"`
}

func (u *CatalogUsecase) CreateBrand(ctx context.Context, in BrandInput) (model.Brand, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.Brand{}, NewHTTPError(http.StatusBadRequest, "nombre requerido")
	}
	if strings.TrimSpace(in.Slug) == "" {
		return model.Brand{}, NewHTTPError(http.StatusBadRequest, "slug requerido")
	}
	b, err := u.brandRepo.Create(ctx, model.Brand{
		Name:    strings.TrimSpace(in.Name),
		Slug:    strings.TrimSpace(in.Slug),
		LogoURL: strings.TrimSpace(in.LogoURL),
	})
	if err != nil {
		return model.Brand{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	return b, nil
}

func (u *CatalogUsecase) UpdateBrand(ctx context.Context, brandID int64, in BrandInput) error {
	if brandID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "nombre requerido")
	}
	if strings.TrimSpace(in.Slug) == "" {
		return NewHTTPError(http.StatusBadRequest, "slug requerido")
	}
	err := u.brandRepo.Update(ctx, model.Brand{
		ID:      brandID,
		Name:    strings.TrimSpace(in.Name),
		Slug:    strings.TrimSpace(in.Slug),
		LogoURL: strings.TrimSpace(in.LogoURL),
	})
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "marca no encontrada")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	return nil
}

func (u *CatalogUsecase) DeleteBrand(ctx context.Context, brandID int64) error {
	if brandID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}
	err := u.brandRepo.Delete(ctx, brandID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "marca no encontrada")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	return nil
}
