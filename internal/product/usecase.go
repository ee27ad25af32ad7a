package product

import (
	"context"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
)

type catalogUseCase struct {
	service  Service
	products ProductRepository
	formats  FormatRepository
}

func NewUseCase(service Service, products ProductRepository, formats FormatRepository) UseCase {
	return &catalogUseCase{
		service:  service,
		products: products,
		formats:  formats,
	}
}

func (uc *catalogUseCase) ListProducts(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := uc.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, dto.NewProductResponse(p))
	}
	return resp, nil
}

func (uc *catalogUseCase) CreateProduct(ctx context.Context, req CreateProductRequest) (*dto.ProductResponse, error) {
	if err := validateCreateProduct(req); err != nil {
		return nil, err
	}

	formatID := strings.TrimSpace(req.FormatID)
	product := &domain.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		FormatID:    &formatID,
		Metadata:    req.Metadata,
	}
	if image := strings.TrimSpace(req.Image); image != "" {
		product.Image = &image
	}

	if err := uc.service.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	resp := dto.NewProductResponse(*product)
	return &resp, nil
}

func (uc *catalogUseCase) ListFormats(ctx context.Context) ([]dto.FormatResponse, error) {
	formats, err := uc.formats.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.FormatResponse, 0, len(formats))
	for _, f := range formats {
		resp = append(resp, dto.NewFormatResponse(f))
	}
	return resp, nil
}

func (uc *catalogUseCase) CreateFormat(ctx context.Context, req CreateFormatRequest) (*dto.FormatResponse, error) {
	if !req.Volume.IsPositive() {
		return nil, apperrors.NewValidationError("volume is required", apperrors.ValidationDetail{
			Field:   "volume",
			Message: "volume must be greater than 0",
		})
	}

	format := &domain.Format{
		Volume:      req.Volume,
		Description: req.Description,
		Metadata:    req.Metadata,
	}
	if err := uc.service.CreateFormat(ctx, format); err != nil {
		return nil, err
	}

	resp := dto.NewFormatResponse(*format)
	return &resp, nil
}

func validateCreateProduct(req CreateProductRequest) error {
	var details []apperrors.ValidationDetail

	if strings.TrimSpace(req.Name) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "name",
			Message: "name is required",
		})
	}
	switch {
	case !req.Price.IsPositive():
		details = append(details, apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must be greater than 0",
		})
	case !domain.PriceFits(req.Price):
		details = append(details, apperrors.ValidationDetail{
			Field:   "price",
			Message: "price allows at most 2 decimals and 10 integer digits",
		})
	}
	if strings.TrimSpace(req.FormatID) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "formatId",
			Message: "formatId is required",
		})
	}
	if req.Stock < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "stock",
			Message: "stock must be non-negative",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("name, price and formatId are required", details...)
	}
	return nil
}
