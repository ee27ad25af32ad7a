package product

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	FormatID    string          `json:"formatId"`
	Image       string          `json:"image,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

type CreateFormatRequest struct {
	Volume      decimal.Decimal `json:"volume"`
	Description string          `json:"description"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

// SeedResult counts what a catalog seed inserted. Entries already in the
// catalog are counted in Skipped.
type SeedResult struct {
	Formats  int
	Products int
	Skipped  int
}
