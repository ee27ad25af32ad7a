package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/commons"
	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

const catalogTxTimeout = 5 * time.Second

type catalogService struct {
	db       TransactionManager
	products ProductRepository
	formats  FormatRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(db TransactionManager, products ProductRepository, formats FormatRepository, logger *zap.Logger) Service {
	return &catalogService{
		db:       db,
		products: products,
		formats:  formats,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// CreateProduct assigns id and timestamps and inserts the product. The format
// reference is checked in the same transaction.
func (s *catalogService) CreateProduct(ctx context.Context, product *domain.Product) error {
	txCtx, cancel := context.WithTimeout(ctx, catalogTxTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if product.FormatID != nil {
		exists, err := s.formats.ExistsTx(txCtx, tx, *product.FormatID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.NewValidationError("unknown format", apperrors.ValidationDetail{
				Field:   "formatId",
				Message: fmt.Sprintf("format %s does not exist", *product.FormatID),
			})
		}
	}

	product.ID = uuid.New().String()
	product.CreatedAt = s.now()
	product.UpdatedAt = product.CreatedAt

	if err := s.products.Insert(txCtx, tx, product); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing product: %w", err)
	}

	s.logger.Info("product created", zap.String("productId", product.ID), zap.String("name", product.Name))
	return nil
}

func (s *catalogService) CreateFormat(ctx context.Context, format *domain.Format) error {
	txCtx, cancel := context.WithTimeout(ctx, catalogTxTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	format.ID = uuid.New().String()
	format.CreatedAt = s.now()
	format.UpdatedAt = format.CreatedAt

	if err := s.formats.Insert(txCtx, tx, format); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing format: %w", err)
	}

	s.logger.Info("format created", zap.String("formatId", format.ID), zap.String("volume", format.Volume.String()))
	return nil
}

// Seed inserts a whole catalog file in one transaction; nothing is written
// when any entry is invalid. A format matching on volume and description, or
// a product matching on format and name, is left as it is, so the same file
// can be seeded again.
func (s *catalogService) Seed(ctx context.Context, seed *commons.CatalogSeed) (SeedResult, error) {
	var result SeedResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, err
	}
	defer tx.Rollback()

	for i, fs := range seed.Formats {
		volume, err := decimal.NewFromString(strings.TrimSpace(fs.Volume))
		if err != nil || !volume.IsPositive() {
			return SeedResult{}, fmt.Errorf("format %d: invalid volume %q", i, fs.Volume)
		}

		formatID, err := s.formats.FindIDTx(ctx, tx, volume, fs.Description)
		if err != nil {
			return SeedResult{}, err
		}
		if formatID != "" {
			result.Skipped++
		} else {
			now := s.now()
			format := &domain.Format{
				ID:          uuid.New().String(),
				Volume:      volume,
				Description: fs.Description,
				Metadata:    fs.Metadata,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := s.formats.Insert(ctx, tx, format); err != nil {
				return SeedResult{}, err
			}
			formatID = format.ID
			result.Formats++
		}

		for j, ps := range fs.Products {
			price, err := decimal.NewFromString(strings.TrimSpace(ps.Price))
			if err != nil || !price.IsPositive() || !domain.PriceFits(price) {
				return SeedResult{}, fmt.Errorf("format %d product %d: invalid price %q", i, j, ps.Price)
			}

			exists, err := s.products.ExistsTx(ctx, tx, formatID, ps.Name)
			if err != nil {
				return SeedResult{}, err
			}
			if exists {
				result.Skipped++
				continue
			}

			product := &domain.Product{
				ID:          uuid.New().String(),
				Name:        ps.Name,
				Description: ps.Description,
				Price:       price,
				Stock:       ps.Stock,
				FormatID:    &formatID,
				Metadata:    ps.Metadata,
				CreatedAt:   s.now(),
			}
			product.UpdatedAt = product.CreatedAt
			if ps.Image != "" {
				image := ps.Image
				product.Image = &image
			}
			if err := s.products.Insert(ctx, tx, product); err != nil {
				return SeedResult{}, err
			}
			result.Products++
		}
	}

	if err := tx.Commit(); err != nil {
		return SeedResult{}, fmt.Errorf("committing catalog seed: %w", err)
	}

	s.logger.Info("catalog seeded",
		zap.Int("formats", result.Formats),
		zap.Int("products", result.Products),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}
