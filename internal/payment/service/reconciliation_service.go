package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/errors"
	"storefront/internal/infrastructure/dbtypes"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type OrderRepository interface {
	FindByIDTx(ctx context.Context, tx *sql.Tx, id string) (*domain.Order, error)
	FindByPaymentIDTx(ctx context.Context, tx *sql.Tx, paymentID string) (*domain.Order, error)
	TransitionStatus(ctx context.Context, tx *sql.Tx, id string, from, to domain.OrderStatus, paymentID *string, at time.Time) (bool, error)
}

type WebhookEventRepository interface {
	Exists(ctx context.Context, tx *sql.Tx, id string) (bool, error)
	Insert(ctx context.Context, tx *sql.Tx, event *domain.WebhookEvent) error
}

// Reconciliation is a verified provider event reduced to the status change
// it asks for. A nil Target means the event type is not acted on.
type Reconciliation struct {
	EventID   string
	Provider  domain.PaymentProvider
	Type      string
	OrderID   string
	PaymentID string
	Target    *domain.OrderStatus
}

// ReconciliationService applies webhook events to orders. The ledger check,
// the status change and the ledger insert share one transaction.
type ReconciliationService struct {
	db        TransactionManager
	orderRepo OrderRepository
	ledger    WebhookEventRepository
	logger    *zap.Logger
	txTimeout time.Duration
	now       func() time.Time
}

func NewReconciliationService(
	db TransactionManager,
	orderRepo OrderRepository,
	ledger WebhookEventRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *ReconciliationService {
	if txTimeout <= 0 {
		txTimeout = 5 * time.Second
	}
	return &ReconciliationService{
		db:        db,
		orderRepo: orderRepo,
		ledger:    ledger,
		logger:    logger,
		txTimeout: txTimeout,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Apply returns the outcome to acknowledge. It returns a NotFoundError when
// the event names an order that does not exist, so the provider redelivers.
func (s *ReconciliationService) Apply(ctx context.Context, rec Reconciliation) (domain.WebhookOutcome, string, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return "", "", err
	}
	defer tx.Rollback()

	seen, err := s.ledger.Exists(txCtx, tx, rec.EventID)
	if err != nil {
		return "", "", err
	}
	if seen {
		return domain.WebhookDuplicate, "", nil
	}

	outcome := domain.WebhookIgnored
	var orderID string

	if rec.Target != nil && (rec.OrderID != "" || rec.PaymentID != "") {
		order, err := s.findOrder(txCtx, tx, rec)
		if err != nil {
			return "", "", err
		}
		orderID = order.ID

		outcome, err = s.transition(txCtx, tx, order, *rec.Target, rec.PaymentID)
		if err != nil {
			return "", "", err
		}
	}

	event := &domain.WebhookEvent{
		ID:          rec.EventID,
		Provider:    rec.Provider,
		Type:        rec.Type,
		Outcome:     outcome,
		ProcessedAt: s.now(),
	}
	if orderID != "" {
		event.OrderID = &orderID
	}

	if err := s.ledger.Insert(txCtx, tx, event); err != nil {
		if dbtypes.IsDuplicateKey(err) {
			// a concurrent delivery of the same event committed first
			return domain.WebhookDuplicate, orderID, nil
		}
		return "", "", err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.String("eventId", rec.EventID), zap.Error(err))
		return "", "", err
	}

	return outcome, orderID, nil
}

func (s *ReconciliationService) findOrder(ctx context.Context, tx *sql.Tx, rec Reconciliation) (*domain.Order, error) {
	if rec.OrderID != "" {
		order, err := s.orderRepo.FindByIDTx(ctx, tx, rec.OrderID)
		if err == nil {
			return order, nil
		}
		if _, ok := errors.IsNotFoundError(err); !ok || rec.PaymentID == "" {
			return nil, err
		}
	}

	return s.orderRepo.FindByPaymentIDTx(ctx, tx, rec.PaymentID)
}

func (s *ReconciliationService) transition(ctx context.Context, tx *sql.Tx, order *domain.Order, target domain.OrderStatus, paymentID string) (domain.WebhookOutcome, error) {
	if !order.Status.CanTransitionTo(target) {
		s.logger.Info("order already settled",
			zap.String("orderId", order.ID),
			zap.String("status", string(order.Status)),
			zap.String("requested", string(target)),
		)
		return domain.WebhookNoop, nil
	}

	var ref *string
	if paymentID != "" {
		ref = &paymentID
	}

	moved, err := s.orderRepo.TransitionStatus(ctx, tx, order.ID, order.Status, target, ref, s.now())
	if err != nil {
		return "", fmt.Errorf("applying %s to order %s: %w", target, order.ID, err)
	}
	if !moved {
		return domain.WebhookNoop, nil
	}

	return domain.WebhookApplied, nil
}
