package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/errors"
	"storefront/internal/infrastructure/dbtypes"
)

// SQLWebhookEventRepository is the ledger of provider event ids that have
// already been processed.
type SQLWebhookEventRepository struct {
	db *sql.DB
}

func NewSQLWebhookEventRepository(db *sql.DB) *SQLWebhookEventRepository {
	return &SQLWebhookEventRepository{db: db}
}

func (r *SQLWebhookEventRepository) Exists(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM WebhookEvents WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking webhook event: %w", err)
	}
	return count > 0, nil
}

// Insert records the event. A second insert of the same id fails with a
// duplicate key error the caller can detect with dbtypes.IsDuplicateKey.
func (r *SQLWebhookEventRepository) Insert(ctx context.Context, tx *sql.Tx, event *domain.WebhookEvent) error {
	query := `
		INSERT INTO WebhookEvents (id, provider, type, orderId, outcome, processedAt)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query,
		event.ID, string(event.Provider), event.Type, event.OrderID, string(event.Outcome), event.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting webhook event: %w", err)
	}

	return nil
}

func (r *SQLWebhookEventRepository) FindByID(ctx context.Context, id string) (*domain.WebhookEvent, error) {
	query := `SELECT id, provider, type, orderId, outcome, processedAt FROM WebhookEvents WHERE id = ?`

	var event domain.WebhookEvent
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID, &event.Provider, &event.Type, &event.OrderID, &event.Outcome,
		dbtypes.Time{T: &event.ProcessedAt},
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("webhook event %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("scanning webhook event: %w", err)
	}

	return &event, nil
}
