package controller

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/commons"
	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
)

const idempotencyKeyHeader = "Idempotency-Key"

type SubmitOrderUseCase interface {
	Submit(ctx context.Context, req dto.SubmitOrderRequest) (*dto.SubmitOrderResult, error)
}

type OrderQueryUseCase interface {
	ListOrders(ctx context.Context) ([]dto.OrderResponse, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, req dto.UpdateOrderStatusRequest) (*domain.Order, error)
}

type OrderController struct {
	submit SubmitOrderUseCase
	query  OrderQueryUseCase
	logger *zap.Logger
}

func NewOrderController(submit SubmitOrderUseCase, query OrderQueryUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		submit: submit,
		query:  query,
		logger: logger,
	}
}

// CreateOrder answers 201 for a new order and 200 when an earlier order with
// the same idempotency key is returned instead.
func (c *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.SubmitOrderRequest
	if !commons.DecodeJSON(w, r, logger, &req) {
		return
	}

	// the header takes precedence over the body field
	if key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader)); key != "" {
		req.IdempotencyKey = key
	}

	result, err := c.submit.Submit(r.Context(), req)
	if err != nil {
		commons.WriteUseCaseError(w, logger, traceID, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	logger.Info("order submitted",
		zap.String("orderId", result.Order.ID),
		zap.Bool("replayed", result.Replayed),
	)
	commons.WriteJSON(w, logger, status, dto.NewOrderResponse(result.Order))
}

func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orders, err := c.query.ListOrders(r.Context())
	if err != nil {
		commons.WriteUseCaseError(w, logger, traceID, err)
		return
	}

	commons.WriteJSON(w, logger, http.StatusOK, orders)
}

func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID := chi.URLParam(r, "orderId")
	order, err := c.query.GetOrder(r.Context(), orderID)
	if err != nil {
		commons.WriteUseCaseError(w, logger, traceID, err)
		return
	}

	commons.WriteJSON(w, logger, http.StatusOK, dto.NewOrderResponse(order))
}

func (c *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID := chi.URLParam(r, "orderId")
	if strings.TrimSpace(orderID) == "" {
		commons.WriteValidationError(w, logger, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId is required",
		})
		return
	}

	var req dto.UpdateOrderStatusRequest
	if !commons.DecodeJSON(w, r, logger, &req) {
		return
	}

	order, err := c.query.UpdateOrderStatus(r.Context(), orderID, req)
	if err != nil {
		commons.WriteUseCaseError(w, logger, traceID, err)
		return
	}

	commons.WriteJSON(w, logger, http.StatusOK, dto.NewOrderResponse(order))
}
