package product

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"storefront/internal/commons"
	"storefront/internal/domain"
	"storefront/internal/dto"
)

type UseCase interface {
	ListProducts(ctx context.Context) ([]dto.ProductResponse, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*dto.ProductResponse, error)
	ListFormats(ctx context.Context) ([]dto.FormatResponse, error)
	CreateFormat(ctx context.Context, req CreateFormatRequest) (*dto.FormatResponse, error)
}

type Service interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	CreateFormat(ctx context.Context, format *domain.Format) error
	Seed(ctx context.Context, seed *commons.CatalogSeed) (SeedResult, error)
}

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type ProductRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, product *domain.Product) error
	ExistsTx(ctx context.Context, tx *sql.Tx, formatID, name string) (bool, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
}

type FormatRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, format *domain.Format) error
	ExistsTx(ctx context.Context, tx *sql.Tx, id string) (bool, error)
	FindIDTx(ctx context.Context, tx *sql.Tx, volume decimal.Decimal, description string) (string, error)
	FindAll(ctx context.Context) ([]domain.Format, error)
}
