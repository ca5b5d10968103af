package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"tiendamontana/internal/domain/model"
	"tiendamontana/internal/infra/cache"
	repo "tiendamontana/internal/repository"
)

// 商品画像のメタ情報管理。ファイル本体は外部ストレージ（URLだけ預かる）。
type ImageUsecase struct {
	productRepo repo.ProductRepository
	imageRepo   repo.ProductImageRepository
	cache       *cache.ProductCache
}

func NewImageUsecase(productRepo repo.ProductRepository, imageRepo repo.ProductImageRepository, productCache *cache.ProductCache) *ImageUsecase {
	return &ImageUsecase{
		productRepo: productRepo,
		imageRepo:   imageRepo,
		cache:       productCache,
	}
}

func (u *ImageUsecase) invalidate(ctx context.Context, productID int64) {
	if u.cache != nil {
		_ = u.cache.Invalidate(ctx, productID)
	}
}

type AddImageInput struct {
	URL       string `json:"url"`
	AltText   string `json:"alt_text"`
	Position  int    `json:"position"`
	IsPrimary bool   `json:"is_primary"`
}

func (u *ImageUsecase) AddImage(ctx context.Context, productID int64, in AddImageInput) (model.ProductImage, error) {
	if productID <= 0 {
		return model.ProductImage{}, NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return model.ProductImage{}, NewHTTPError(http.StatusBadRequest, "url requerida")
	}

	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.ProductImage{}, NewHTTPError(http.StatusNotFound, "producto no encontrado")
		}
		return model.ProductImage{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	img, err := u.imageRepo.Create(ctx, model.ProductImage{
		ProductID: productID,
		URL:       url,
		AltText:   strings.TrimSpace(in.AltText),
		Position:  in.Position,
	})
	if err != nil {
		return model.ProductImage{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	if in.IsPrimary {
		if err := u.imageRepo.SetPrimary(ctx, productID, img.ID); err != nil {
			return model.ProductImage{}, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
		img.IsPrimary = true
	}

	u.invalidate(ctx, productID)
	return img, nil
}

type UpdateImageInput struct {
	AltText   *string `json:"alt_text"`
	Position  *int    `json:"position"`
	IsPrimary *bool   `json:"is_primary"`
}

func (u *ImageUsecase) UpdateImage(ctx context.Context, imageID int64, in UpdateImageInput) error {
	if imageID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}

	img, err := u.imageRepo.FindByID(ctx, imageID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "imagen no encontrada")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	if in.AltText != nil {
		img.AltText = strings.TrimSpace(*in.AltText)
	}
	if in.Position != nil {
		img.Position = *in.Position
	}
	if err := u.imageRepo.Update(ctx, img); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	if in.IsPrimary != nil && *in.IsPrimary {
		if err := u.imageRepo.SetPrimary(ctx, img.ProductID, img.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
		}
	}

	u.invalidate(ctx, img.ProductID)
	return nil
}

func (u *ImageUsecase) DeleteImage(ctx context.Context, imageID int64) error {
	if imageID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}

	img, err := u.imageRepo.FindByID(ctx, imageID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "imagen no encontrada")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	if err := u.imageRepo.Delete(ctx, imageID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}

	u.invalidate(ctx, img.ProductID)
	return nil
}

func (u *ImageUsecase) ListImages(ctx context.Context, productID int64) ([]model.ProductImage, error) {
	if productID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "identificador inválido")
	}
	images, err := u.imageRepo.ListByProductID(ctx, productID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "error de base de datos")
	}
	return images, nil
}
