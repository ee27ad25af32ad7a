package product

import (
	"database/sql"

	"go.uber.org/zap"

	"storefront/internal/product/repository"
)

func NewModule(db *sql.DB, logger *zap.Logger) *Controller {
	products := repository.NewSQLProductRepository(db)
	formats := repository.NewSQLFormatRepository(db)
	svc := NewService(db, products, formats, logger)
	uc := NewUseCase(svc, products, formats)
	return NewController(uc, logger)
}

// NewSeeder builds the service used by the seed command.
func NewSeeder(db *sql.DB, logger *zap.Logger) Service {
	return NewService(db, repository.NewSQLProductRepository(db), repository.NewSQLFormatRepository(db), logger)
}
