package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
)

// Mock implementations
type mockSubmitUseCase struct {
	SubmitFunc func(ctx context.Context, req dto.SubmitOrderRequest) (*dto.SubmitOrderResult, error)
}

func (m *mockSubmitUseCase) Submit(ctx context.Context, req dto.SubmitOrderRequest) (*dto.SubmitOrderResult, error) {
	return m.SubmitFunc(ctx, req)
}

type mockQueryUseCase struct {
	ListOrdersFunc        func(ctx context.Context) ([]dto.OrderResponse, error)
	GetOrderFunc          func(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrderStatusFunc func(ctx context.Context, id string, req dto.UpdateOrderStatusRequest) (*domain.Order, error)
}

func (m *mockQueryUseCase) ListOrders(ctx context.Context) ([]dto.OrderResponse, error) {
	return m.ListOrdersFunc(ctx)
}

func (m *mockQueryUseCase) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return m.GetOrderFunc(ctx, id)
}

func (m *mockQueryUseCase) UpdateOrderStatus(ctx context.Context, id string, req dto.UpdateOrderStatusRequest) (*domain.Order, error) {
	return m.UpdateOrderStatusFunc(ctx, id, req)
}

func newRouter(c *OrderController) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/orders", c.CreateOrder)
	r.Get("/api/orders", c.ListOrders)
	r.Get("/api/orders/{orderId}", c.GetOrder)
	r.Patch("/api/orders/{orderId}/status", c.UpdateOrderStatus)
	return r
}

func do(h http.Handler, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sampleOrder() *domain.Order {
	return &domain.Order{
		ID:            "ord-1",
		Items:         []domain.OrderItem{{ProductID: "P1", Quantity: 2, Price: decimal.NewFromInt(1500)}},
		PaymentMethod: domain.PaymentMethodCard,
		Status:        domain.OrderStatusPending,
		Currency:      "XAF",
	}
}

const validBody = `{"items":[{"productId":"P1","quantity":2,"price":1500}],"paymentMethod":"card"}`

// Unit Tests

func TestCreateOrder_Created(t *testing.T) {
	c := NewOrderController(&mockSubmitUseCase{
		SubmitFunc: func(ctx context.Context, req dto.SubmitOrderRequest) (*dto.SubmitOrderResult, error) {
			require.Len(t, req.Items, 1)
			assert.True(t, decimal.NewFromInt(1500).Equal(req.Items[0].Price))
			assert.Empty(t, req.IdempotencyKey)
			return &dto.SubmitOrderResult{Order: sampleOrder()}, nil
		},
	}, nil, zap.NewNop())

	rec := do(newRouter(c), http.MethodPost, "/api/orders", []byte(validBody), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ord-1", body["id"])
	assert.Equal(t, "PENDING", body["status"])
	assert.Equal(t, float64(3000), body["total"])
}

func TestCreateOrder_ReplayIs200(t *testing.T) {
	c := NewOrderController(&mockSubmitUseCase{
		SubmitFunc: func(ctx context.Context, req dto.SubmitOrderRequest) (*dto.SubmitOrderResult, error) {
			assert.Equal(t, "from-header", req.IdempotencyKey)
			return &dto.SubmitOrderResult{Order: sampleOrder(), Replayed: true}, nil
		},
	}, nil, zap.NewNop())

	body := `{"items":[{"productId":"P1","quantity":1,"price":10}],"paymentMethod":"card","idempotencyKey":"from-body"}`
	rec := do(newRouter(c), http.MethodPost, "/api/orders", []byte(body), map[string]string{"Idempotency-Key": "from-header"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateOrder_ValidationError(t *testing.T) {
	c := NewOrderController(&mockSubmitUseCase{
		SubmitFunc: func(ctx context.Context, req dto.SubmitOrderRequest) (*dto.SubmitOrderResult, error) {
			return nil, apperrors.NewValidationError("order must contain at least one item", apperrors.ValidationDetail{
				Field:   "items",
				Message: "items must not be empty",
			})
		},
	}, nil, zap.NewNop())

	rec := do(newRouter(c), http.MethodPost, "/api/orders", []byte(`{"items":[],"paymentMethod":"card"}`), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body["error"])
	assert.Equal(t, "order must contain at least one item", body["message"])
	assert.Len(t, body["details"], 1)
}

func TestCreateOrder_InvalidJSON(t *testing.T) {
	c := NewOrderController(&mockSubmitUseCase{
		SubmitFunc: func(ctx context.Context, req dto.SubmitOrderRequest) (*dto.SubmitOrderResult, error) {
			t.Fatal("use case must not be called")
			return nil, nil
		},
	}, nil, zap.NewNop())

	rec := do(newRouter(c), http.MethodPost, "/api/orders", []byte(`{"items":`), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder_PersistenceErrorIs500(t *testing.T) {
	c := NewOrderController(&mockSubmitUseCase{
		SubmitFunc: func(ctx context.Context, req dto.SubmitOrderRequest) (*dto.SubmitOrderResult, error) {
			return nil, apperrors.NewPersistenceError("order could not be saved", errors.New("Error 1213: Deadlock found"))
		},
	}, nil, zap.NewNop())

	rec := do(newRouter(c), http.MethodPost, "/api/orders", []byte(validBody), nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PERSISTENCE_ERROR", body.Code)
	assert.NotContains(t, body.Message, "Deadlock")
	assert.NotEmpty(t, body.TraceID)
}

func TestListOrders(t *testing.T) {
	c := NewOrderController(nil, &mockQueryUseCase{
		ListOrdersFunc: func(ctx context.Context) ([]dto.OrderResponse, error) {
			return []dto.OrderResponse{}, nil
		},
	}, zap.NewNop())

	rec := do(newRouter(c), http.MethodGet, "/api/orders", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetOrder(t *testing.T) {
	c := NewOrderController(nil, &mockQueryUseCase{
		GetOrderFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			if id == "ord-1" {
				return sampleOrder(), nil
			}
			return nil, apperrors.NewNotFoundError("order with id " + id + " not found")
		},
	}, zap.NewNop())

	rec := do(newRouter(c), http.MethodGet, "/api/orders/ord-1", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(newRouter(c), http.MethodGet, "/api/orders/ord-404", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestUpdateOrderStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"applied", nil, http.StatusOK},
		{"unknown status", apperrors.NewValidationError("unsupported order status"), http.StatusBadRequest},
		{"missing order", apperrors.NewNotFoundError("order with id ord-1 not found"), http.StatusNotFound},
		{"terminal order", apperrors.NewConflictError("order ord-1 cannot move from COMPLETED to CANCELED"), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOrderController(nil, &mockQueryUseCase{
				UpdateOrderStatusFunc: func(ctx context.Context, id string, req dto.UpdateOrderStatusRequest) (*domain.Order, error) {
					assert.Equal(t, "ord-1", id)
					assert.Equal(t, "CANCELED", req.Status)
					if tt.err != nil {
						return nil, tt.err
					}
					order := sampleOrder()
					order.Status = domain.OrderStatusCanceled
					return order, nil
				},
			}, zap.NewNop())

			rec := do(newRouter(c), http.MethodPatch, "/api/orders/ord-1/status", []byte(`{"status":"CANCELED"}`), nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
