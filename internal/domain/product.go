package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	FormatID    *string
	// Format is only populated by queries that resolve the reference.
	Format    *Format
	Image     *string
	Metadata  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

// Format is the volume descriptor behind the 1L/5L/20L distinction.
type Format struct {
	ID          string
	Volume      decimal.Decimal
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Label renders the volume the way the catalog shows it, e.g. "5L".
func (f Format) Label() string {
	return f.Volume.String() + "L"
}
