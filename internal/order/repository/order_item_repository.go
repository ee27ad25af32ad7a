package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"storefront/internal/domain"
)

type SQLOrderItemRepository struct {
	db *sql.DB
}

func NewSQLOrderItemRepository(db *sql.DB) *SQLOrderItemRepository {
	return &SQLOrderItemRepository{db: db}
}

func (r *SQLOrderItemRepository) Insert(ctx context.Context, tx *sql.Tx, orderID string, position int, item domain.OrderItem) error {
	query := `INSERT INTO OrderItems (orderId, position, productId, quantity, price) VALUES (?, ?, ?, ?, ?)`

	if _, err := tx.ExecContext(ctx, query, orderID, position, item.ProductID, item.Quantity, item.Price); err != nil {
		return fmt.Errorf("inserting order item: %w", err)
	}

	return nil
}

// FindByOrderIDs returns the items of each order in submission order.
func (r *SQLOrderItemRepository) FindByOrderIDs(ctx context.Context, q querier, orderIDs []string) (map[string][]domain.OrderItem, error) {
	items := make(map[string][]domain.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return items, nil
	}

	placeholders := make([]string, len(orderIDs))
	args := make([]any, len(orderIDs))
	for i, id := range orderIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT orderId, productId, quantity, price
		FROM OrderItems
		WHERE orderId IN (%s)
		ORDER BY orderId, position`,
		strings.Join(placeholders, ", "),
	)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		items[orderID] = append(items[orderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order item rows: %w", err)
	}

	return items, nil
}
