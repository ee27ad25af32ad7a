package usecase

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	dtoerrors "storefront/internal/errors"
	"storefront/internal/infrastructure/dbtypes"
	"storefront/internal/infrastructure/tracing"
	"storefront/internal/notification"
	"storefront/internal/receipt"
)

const maxOrderItems = 100

type OrderWriter interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
}

type IdempotencyLookup interface {
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
}

type ReceiptRenderer interface {
	Render(order *domain.Order) ([]byte, error)
}

type NotificationDispatcher interface {
	Dispatch(ctx context.Context, msg notification.Message) error
}

type SubmitOrderConfig struct {
	DefaultCurrency     string
	MerchantEmail       string
	MaxRetryAttempts    int
	ConfirmationTimeout time.Duration
	Sender              notification.Sender
}

// SubmitOrderUseCase places an order in two phases. Phase one persists it
// and decides the caller's outcome. Phase two renders and emails a receipt;
// its failures are logged and never change that outcome.
type SubmitOrderUseCase struct {
	orderSvc   OrderWriter
	orderRepo  IdempotencyLookup
	renderer   ReceiptRenderer
	dispatcher NotificationDispatcher
	cfg        SubmitOrderConfig
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewSubmitOrderUseCase takes a nil dispatcher to mean notifications are
// disabled.
func NewSubmitOrderUseCase(
	orderSvc OrderWriter,
	orderRepo IdempotencyLookup,
	renderer ReceiptRenderer,
	dispatcher NotificationDispatcher,
	cfg SubmitOrderConfig,
	logger *zap.Logger,
) *SubmitOrderUseCase {
	if cfg.MaxRetryAttempts < 1 {
		cfg.MaxRetryAttempts = 1
	}
	if cfg.ConfirmationTimeout <= 0 {
		cfg.ConfirmationTimeout = 30 * time.Second
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = domain.DefaultCurrency
	}
	return &SubmitOrderUseCase{
		orderSvc:   orderSvc,
		orderRepo:  orderRepo,
		renderer:   renderer,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
		sleep:      sleepContext,
	}
}

func (uc *SubmitOrderUseCase) Submit(ctx context.Context, req dto.SubmitOrderRequest) (*dto.SubmitOrderResult, error) {
	ctx, span := tracing.Tracer("order").Start(ctx, "order.submit")
	defer span.End()

	uc.logger.Info("submit order started", zap.Int("itemCount", len(req.Items)), zap.String("paymentMethod", req.PaymentMethod))

	if err := validateSubmitRequest(req); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" {
		existing, err := uc.findByKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			uc.logger.Info("idempotent replay", zap.String("orderId", existing.ID))
			span.SetAttributes(attribute.Bool("order.replayed", true))
			return &dto.SubmitOrderResult{Order: existing, Replayed: true}, nil
		}
	}

	order := uc.buildOrder(req, key)
	span.SetAttributes(attribute.String("order.id", order.ID))

	if err := uc.persistWithRetry(ctx, order); err != nil {
		if key != "" && dbtypes.IsDuplicateKey(err) {
			// another request with the same key won the insert
			existing, findErr := uc.findByKey(ctx, key)
			if findErr == nil && existing != nil {
				return &dto.SubmitOrderResult{Order: existing, Replayed: true}, nil
			}
		}
		uc.logger.Error("failed to persist order", zap.String("orderId", order.ID), zap.Error(err))
		span.SetStatus(codes.Error, "persistence failed")
		return nil, dtoerrors.NewPersistenceError("order could not be saved", err)
	}

	if err := uc.confirm(ctx, order); err != nil {
		uc.logger.Error("order confirmation failed",
			zap.String("orderId", order.ID),
			zap.Error(err),
		)
	}

	return &dto.SubmitOrderResult{Order: order}, nil
}

func (uc *SubmitOrderUseCase) findByKey(ctx context.Context, key string) (*domain.Order, error) {
	existing, err := uc.orderRepo.FindByIdempotencyKey(ctx, key)
	if err == nil {
		return existing, nil
	}
	if _, ok := dtoerrors.IsNotFoundError(err); ok {
		return nil, nil
	}
	uc.logger.Error("failed to look up idempotency key", zap.Error(err))
	return nil, dtoerrors.NewPersistenceError("order lookup failed", err)
}

func (uc *SubmitOrderUseCase) buildOrder(req dto.SubmitOrderRequest, key string) *domain.Order {
	items := make([]domain.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.OrderItem{
			ProductID: strings.TrimSpace(item.ProductID),
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	order := &domain.Order{
		ID:                 uuid.New().String(),
		MerchantEmail:      uc.cfg.MerchantEmail,
		Items:              items,
		PaymentMethod:      domain.PaymentMethod(req.PaymentMethod),
		Status:             domain.OrderStatusPending,
		Currency:           uc.cfg.DefaultCurrency,
		TransactionDetails: req.TransactionDetails,
		Metadata:           req.Metadata,
	}

	if key != "" {
		order.IdempotencyKey = &key
	}
	if email := strings.TrimSpace(req.CustomerEmail); email != "" {
		order.CustomerEmail = &email
	}
	if email := strings.TrimSpace(req.MerchantEmail); email != "" {
		order.MerchantEmail = email
	}
	if ref := strings.TrimSpace(req.PaymentID); ref != "" {
		order.PaymentID = &ref
	}
	if req.Status != "" {
		order.Status = domain.OrderStatus(req.Status)
	}
	if c := strings.TrimSpace(req.Currency); c != "" {
		order.Currency = strings.ToUpper(c)
	}

	return order
}

func (uc *SubmitOrderUseCase) persistWithRetry(ctx context.Context, order *domain.Order) error {
	maxAttempts := uc.cfg.MaxRetryAttempts
	// Wait before attempt 2 is 100ms, before attempt 3 is 200ms, and so on.
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = uc.orderSvc.CreateOrder(ctx, order)
		if err == nil {
			return nil
		}

		if !dbtypes.IsRetryable(err) || attempt == maxAttempts {
			return err
		}

		base := backoffs[min(attempt, len(backoffs)-1)]
		// ±20% jitter
		wait := base + time.Duration(float64(base)*(rand.Float64()*0.4-0.2))
		uc.logger.Warn("lock contention, retrying",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", maxAttempts),
			zap.String("orderId", order.ID),
			zap.Duration("wait", wait),
		)
		if sleepErr := uc.sleep(ctx, wait); sleepErr != nil {
			return err
		}
	}

	return err
}

// confirm is phase two. It runs on a context that outlives the request so a
// client disconnect does not cut the email short.
func (uc *SubmitOrderUseCase) confirm(ctx context.Context, order *domain.Order) error {
	if uc.dispatcher == nil {
		uc.logger.Debug("notifications disabled, skipping confirmation", zap.String("orderId", order.ID))
		return nil
	}
	if !order.HasCustomerEmail() {
		uc.logger.Debug("no customer email, skipping confirmation", zap.String("orderId", order.ID))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.cfg.ConfirmationTimeout)
	defer cancel()

	_, renderSpan := tracing.Tracer("order").Start(ctx, "order.render_receipt")
	pdf, err := uc.renderer.Render(order)
	if err != nil {
		renderSpan.SetStatus(codes.Error, err.Error())
		renderSpan.End()
		return err
	}
	renderSpan.SetAttributes(attribute.Int("receipt.bytes", len(pdf)))
	renderSpan.End()

	msg, err := notification.OrderConfirmation(ctx, order, uc.cfg.Sender, pdf, receipt.Filename(order.ID))
	if err != nil {
		return dtoerrors.NewDeliveryError("composing confirmation", err)
	}

	dispatchCtx, dispatchSpan := tracing.Tracer("order").Start(ctx, "order.dispatch_notification")
	defer dispatchSpan.End()
	if err := uc.dispatcher.Dispatch(dispatchCtx, msg); err != nil {
		dispatchSpan.SetStatus(codes.Error, err.Error())
		return err
	}

	uc.logger.Info("order confirmation sent", zap.String("orderId", order.ID))
	return nil
}

func validateSubmitRequest(req dto.SubmitOrderRequest) error {
	if len(req.Items) == 0 {
		return dtoerrors.NewValidationError("order must contain at least one item", dtoerrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	if !domain.PaymentMethod(req.PaymentMethod).Valid() {
		return dtoerrors.NewValidationError("unsupported payment method", dtoerrors.ValidationDetail{
			Field:   "paymentMethod",
			Message: "paymentMethod must be one of card, mobile",
		})
	}

	if req.Status != "" && !domain.OrderStatus(req.Status).Valid() {
		return dtoerrors.NewValidationError("unsupported order status", dtoerrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of PENDING, COMPLETED, CANCELED",
		})
	}

	var details []dtoerrors.ValidationDetail

	if c := strings.TrimSpace(req.Currency); c != "" && !domain.ValidCurrency(c) {
		details = append(details, dtoerrors.ValidationDetail{
			Field:   "currency",
			Message: "currency must be a three-letter code",
		})
	}

	if len(req.Items) > maxOrderItems {
		details = append(details, dtoerrors.ValidationDetail{
			Field:   "items",
			Message: "items exceeds maximum of " + strconv.Itoa(maxOrderItems),
		})
	}

	for idx, item := range req.Items {
		prefix := "items[" + strconv.Itoa(idx) + "]"
		if strings.TrimSpace(item.ProductID) == "" {
			details = append(details, dtoerrors.ValidationDetail{
				Field:   prefix + ".productId",
				Message: "productId is required",
			})
		}
		if item.Quantity < 1 {
			details = append(details, dtoerrors.ValidationDetail{
				Field:   prefix + ".quantity",
				Message: "quantity must be at least 1",
			})
		}
		switch {
		case item.Price.IsNegative():
			details = append(details, dtoerrors.ValidationDetail{
				Field:   prefix + ".price",
				Message: "price must be non-negative",
			})
		case !domain.PriceFits(item.Price):
			details = append(details, dtoerrors.ValidationDetail{
				Field:   prefix + ".price",
				Message: "price allows at most 2 decimals and 10 integer digits",
			})
		}
	}

	if len(details) > 0 {
		return dtoerrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
