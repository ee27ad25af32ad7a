package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/errors"
	"storefront/internal/infrastructure/tracing"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type OrderItemRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, orderID string, position int, item domain.OrderItem) error
}

type OrderRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) error
	FindByIDTx(ctx context.Context, tx *sql.Tx, id string) (*domain.Order, error)
	TransitionStatus(ctx context.Context, tx *sql.Tx, id string, from, to domain.OrderStatus, paymentID *string, at time.Time) (bool, error)
}

// OrderService owns the SQL transactions that write orders.
type OrderService struct {
	db            TransactionManager
	orderRepo     OrderRepository
	orderItemRepo OrderItemRepository
	logger        *zap.Logger
	txTimeout     time.Duration
	now           func() time.Time
}

func NewOrderService(
	db TransactionManager,
	orderRepo OrderRepository,
	orderItemRepo OrderItemRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *OrderService {
	if txTimeout <= 0 {
		txTimeout = 5 * time.Second
	}
	return &OrderService{
		db:            db,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		logger:        logger,
		txTimeout:     txTimeout,
		now:           func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// CreateOrder writes the order and its items atomically. Timestamps are
// assigned here; the caller supplies everything else.
func (s *OrderService) CreateOrder(ctx context.Context, order *domain.Order) error {
	ctx, span := tracing.Tracer("order").Start(ctx, "order.persist")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", order.ID), attribute.Int("order.items", len(order.Items)))

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	// Rollback after Commit is a no-op.
	defer tx.Rollback()

	now := s.now()
	order.CreatedAt = now
	order.UpdatedAt = now

	if err := s.orderRepo.Insert(txCtx, tx, order); err != nil {
		return err
	}

	for i, item := range order.Items {
		if err := s.orderItemRepo.Insert(txCtx, tx, order.ID, i, item); err != nil {
			s.logger.Error("failed to insert order item", zap.String("orderId", order.ID), zap.String("productId", item.ProductID), zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.String("orderId", order.ID), zap.Error(err))
		return err
	}

	s.logger.Info("order persisted",
		zap.String("orderId", order.ID),
		zap.Int("itemCount", len(order.Items)),
		zap.String("total", order.Total().String()),
	)
	return nil
}

// ChangeStatus applies an explicit status change. Only a pending order may
// move, and only to a terminal status.
func (s *OrderService) ChangeStatus(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order, err := s.orderRepo.FindByIDTx(txCtx, tx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, errors.NewConflictError(fmt.Sprintf("order cannot move from %s to %s", order.Status, next))
	}

	at := s.now()
	moved, err := s.orderRepo.TransitionStatus(txCtx, tx, id, order.Status, next, nil, at)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, errors.NewConflictError(fmt.Sprintf("order %s changed concurrently", id))
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("order status changed", zap.String("orderId", id), zap.String("from", string(order.Status)), zap.String("to", string(next)))

	order.Status = next
	order.UpdatedAt = at
	return order, nil
}
