package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/errors"
	"storefront/internal/infrastructure/dbtypes"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const orderColumns = `id, idempotencyKey, paymentId, customerEmail, merchantEmail,
	paymentMethod, status, currency, transactionDetails, metadata, createdAt, updatedAt`

type SQLOrderRepository struct {
	db    *sql.DB
	items *SQLOrderItemRepository
}

func NewSQLOrderRepository(db *sql.DB) *SQLOrderRepository {
	return &SQLOrderRepository{
		db:    db,
		items: NewSQLOrderItemRepository(db),
	}
}

// Insert writes the order row only. Items are written by the caller in the
// same transaction.
func (r *SQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}

	details, err := dbtypes.EncodeJSON(order.TransactionDetails)
	if err != nil {
		return err
	}
	metadata, err := dbtypes.EncodeJSON(order.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO Orders (id, idempotencyKey, paymentId, customerEmail, merchantEmail,
		                    paymentMethod, status, currency, transactionDetails, metadata,
		                    createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		order.ID, order.IdempotencyKey, order.PaymentID, order.CustomerEmail, order.MerchantEmail,
		string(order.PaymentMethod), string(order.Status), order.Currency, details, metadata,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	return nil
}

func (r *SQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.findOne(ctx, r.db, "id = ?", id, fmt.Sprintf("order with id %s not found", id))
}

// FindByIDTx reads the order through tx, so it sees the transaction's own
// writes and does not need a second connection.
func (r *SQLOrderRepository) FindByIDTx(ctx context.Context, tx *sql.Tx, id string) (*domain.Order, error) {
	return r.findOne(ctx, tx, "id = ?", id, fmt.Sprintf("order with id %s not found", id))
}

func (r *SQLOrderRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	return r.findOne(ctx, r.db, "idempotencyKey = ?", key, "order with idempotency key not found")
}

// FindByPaymentIDTx returns the newest order carrying paymentID.
func (r *SQLOrderRepository) FindByPaymentIDTx(ctx context.Context, tx *sql.Tx, paymentID string) (*domain.Order, error) {
	return r.findOne(ctx, tx, "paymentId = ?", paymentID, fmt.Sprintf("order with payment id %s not found", paymentID))
}

// FindAll returns every order, newest first.
func (r *SQLOrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders ORDER BY createdAt DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	items, err := r.items.FindByOrderIDs(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, nil
}

// TransitionStatus moves the order from one status to another only if it is
// still in from. It reports false when another writer got there first.
func (r *SQLOrderRepository) TransitionStatus(ctx context.Context, tx *sql.Tx, id string, from, to domain.OrderStatus, paymentID *string, at time.Time) (bool, error) {
	query := `
		UPDATE Orders
		SET status = ?, paymentId = COALESCE(?, paymentId), updatedAt = ?
		WHERE id = ? AND status = ?
	`

	result, err := tx.ExecContext(ctx, query, string(to), paymentID, at, id, string(from))
	if err != nil {
		return false, fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// SetPaymentID records the external transaction reference on a pending order.
func (r *SQLOrderRepository) SetPaymentID(ctx context.Context, id, paymentID string, at time.Time) error {
	query := `UPDATE Orders SET paymentId = ?, updatedAt = ? WHERE id = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, query, paymentID, at, id, string(domain.OrderStatusPending))
	if err != nil {
		return fmt.Errorf("updating order payment id: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 1 {
		return nil
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return errors.NewConflictError(fmt.Sprintf("order %s is no longer pending", id))
}

func (r *SQLOrderRepository) findOne(ctx context.Context, q querier, where string, arg any, notFound string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE ` + where + ` ORDER BY createdAt DESC LIMIT 1`

	order, err := scanOrder(q.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(notFound)
	}
	if err != nil {
		return nil, err
	}

	items, err := r.items.FindByOrderIDs(ctx, q, []string{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]

	return order, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID, &order.IdempotencyKey, &order.PaymentID, &order.CustomerEmail, &order.MerchantEmail,
		&order.PaymentMethod, &order.Status, &order.Currency,
		dbtypes.JSON{V: &order.TransactionDetails}, dbtypes.JSON{V: &order.Metadata},
		dbtypes.Time{T: &order.CreatedAt}, dbtypes.Time{T: &order.UpdatedAt},
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning order row: %w", err)
	}
	return &order, nil
}
