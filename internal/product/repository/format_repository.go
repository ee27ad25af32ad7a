package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/infrastructure/dbtypes"
)

type SQLFormatRepository struct {
	db *sql.DB
}

func NewSQLFormatRepository(db *sql.DB) *SQLFormatRepository {
	return &SQLFormatRepository{db: db}
}

func (r *SQLFormatRepository) Insert(ctx context.Context, tx *sql.Tx, format *domain.Format) error {
	metadata, err := dbtypes.EncodeJSON(format.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO Formats (id, volume, description, metadata, createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		format.ID, format.Volume, format.Description, metadata, format.CreatedAt, format.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting format: %w", err)
	}

	return nil
}

// ExistsTx reports whether a format with id exists, reading through tx.
func (r *SQLFormatRepository) ExistsTx(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM Formats WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking format: %w", err)
	}
	return true, nil
}

// FindIDTx returns the id of the format with this volume and description, or
// "" when there is none.
func (r *SQLFormatRepository) FindIDTx(ctx context.Context, tx *sql.Tx, volume decimal.Decimal, description string) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM Formats WHERE volume = ? AND description = ? ORDER BY createdAt, id LIMIT 1`,
		volume, description,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("finding format: %w", err)
	}
	return id, nil
}

// FindAll returns every format, newest first.
func (r *SQLFormatRepository) FindAll(ctx context.Context) ([]domain.Format, error) {
	query := `
		SELECT id, volume, description, metadata, createdAt, updatedAt
		FROM Formats
		ORDER BY createdAt DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying formats: %w", err)
	}
	defer rows.Close()

	formats := []domain.Format{}
	for rows.Next() {
		var f domain.Format
		err := rows.Scan(
			&f.ID, &f.Volume, &f.Description, dbtypes.JSON{V: &f.Metadata},
			dbtypes.Time{T: &f.CreatedAt}, dbtypes.Time{T: &f.UpdatedAt},
		)
		if err != nil {
			return nil, fmt.Errorf("scanning format row: %w", err)
		}
		formats = append(formats, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating format rows: %w", err)
	}

	return formats, nil
}
