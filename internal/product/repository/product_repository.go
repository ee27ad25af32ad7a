package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/infrastructure/dbtypes"
)

// productSelect resolves the format reference with a left join so products
// whose format is missing are still listed.
const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.stock, p.formatId, p.image, p.metadata,
	       p.createdAt, p.updatedAt,
	       f.id, f.volume, f.description, f.metadata, f.createdAt, f.updatedAt
	FROM Products p
	LEFT JOIN Formats f ON f.id = p.formatId`

type SQLProductRepository struct {
	db *sql.DB
}

func NewSQLProductRepository(db *sql.DB) *SQLProductRepository {
	return &SQLProductRepository{db: db}
}

func (r *SQLProductRepository) Insert(ctx context.Context, tx *sql.Tx, product *domain.Product) error {
	metadata, err := dbtypes.EncodeJSON(product.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO Products (id, name, description, price, stock, formatId, image, metadata,
		                      createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		product.ID, product.Name, product.Description, product.Price, product.Stock,
		product.FormatID, product.Image, metadata, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}

	return nil
}

// ExistsTx reports whether formatID already lists a product called name.
func (r *SQLProductRepository) ExistsTx(ctx context.Context, tx *sql.Tx, formatID, name string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM Products WHERE formatId = ? AND name = ? LIMIT 1`, formatID, name).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking product: %w", err)
	}
	return true, nil
}

// FindAll returns every product newest first, with its format resolved.
func (r *SQLProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	return r.query(ctx, productSelect+` ORDER BY p.createdAt DESC, p.id DESC`)
}

// FindByIDs returns the products among ids that exist. Unknown ids are
// skipped.
func (r *SQLProductRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`%s WHERE p.id IN (%s)`, productSelect, strings.Join(placeholders, ", "))
	return r.query(ctx, query, args...)
}

func (r *SQLProductRepository) query(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func scanProduct(rows *sql.Rows) (*domain.Product, error) {
	var p domain.Product
	var (
		formatID          sql.NullString
		formatVolume      sql.NullString
		formatDescription sql.NullString
		formatMetadata    map[string]any
		format            domain.Format
	)

	err := rows.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.FormatID, &p.Image,
		dbtypes.JSON{V: &p.Metadata}, dbtypes.Time{T: &p.CreatedAt}, dbtypes.Time{T: &p.UpdatedAt},
		&formatID, &formatVolume, &formatDescription, dbtypes.JSON{V: &formatMetadata},
		dbtypes.Time{T: &format.CreatedAt}, dbtypes.Time{T: &format.UpdatedAt},
	)
	if err != nil {
		return nil, fmt.Errorf("scanning product row: %w", err)
	}

	if formatID.Valid {
		format.ID = formatID.String
		format.Description = formatDescription.String
		format.Metadata = formatMetadata
		if err := format.Volume.Scan(formatVolume.String); err != nil {
			return nil, fmt.Errorf("scanning format volume: %w", err)
		}
		p.Format = &format
	}

	return &p, nil
}
