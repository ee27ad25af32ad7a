package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	InStock     bool            `json:"inStock"`
	FormatID    *string         `json:"formatId"`
	Format      *FormatResponse `json:"format,omitempty"`
	Image       *string         `json:"image"`
	Metadata    map[string]any  `json:"metadata"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type FormatResponse struct {
	ID          string          `json:"id"`
	Volume      decimal.Decimal `json:"volume"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
	Metadata    map[string]any  `json:"metadata"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func NewProductResponse(p domain.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		InStock:     p.InStock(),
		FormatID:    p.FormatID,
		Image:       p.Image,
		Metadata:    orEmpty(p.Metadata),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Format != nil {
		f := NewFormatResponse(*p.Format)
		resp.Format = &f
	}
	return resp
}

func NewFormatResponse(f domain.Format) FormatResponse {
	return FormatResponse{
		ID:          f.ID,
		Volume:      f.Volume,
		Label:       f.Label(),
		Description: f.Description,
		Metadata:    orEmpty(f.Metadata),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
