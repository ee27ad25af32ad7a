package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

func init() {
	// Prices and totals travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type SubmitOrderRequest struct {
	Items              []OrderItemRequest `json:"items"`
	PaymentMethod      string             `json:"paymentMethod"`
	CustomerEmail      string             `json:"customerEmail,omitempty"`
	MerchantEmail      string             `json:"merchantEmail,omitempty"`
	PaymentID          string             `json:"paymentId,omitempty"`
	Status             string             `json:"status,omitempty"`
	Currency           string             `json:"currency,omitempty"`
	TransactionDetails map[string]any     `json:"transactionDetails,omitempty"`
	Metadata           map[string]any     `json:"metadata,omitempty"`
	IdempotencyKey     string             `json:"idempotencyKey,omitempty"`
}

type OrderItemRequest struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// SubmitOrderResult is what the orchestrator hands back once the order is
// durable. Replayed is set when an earlier order with the same idempotency
// key was returned instead of creating a new one.
type SubmitOrderResult struct {
	Order    *domain.Order
	Replayed bool
}

type OrderResponse struct {
	ID                 string              `json:"id"`
	IdempotencyKey     *string             `json:"idempotencyKey,omitempty"`
	PaymentID          *string             `json:"paymentId"`
	CustomerEmail      *string             `json:"customerEmail"`
	MerchantEmail      string              `json:"merchantEmail"`
	Items              []OrderItemResponse `json:"items"`
	PaymentMethod      string              `json:"paymentMethod"`
	Status             string              `json:"status"`
	Currency           string              `json:"currency"`
	Total              decimal.Decimal     `json:"total"`
	TransactionDetails map[string]any      `json:"transactionDetails"`
	Metadata           map[string]any      `json:"metadata"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

type OrderItemResponse struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	// Product is only set by listings that resolve catalog references, and
	// stays empty when the product no longer exists.
	Product *ProductResponse `json:"product,omitempty"`
}

// NewOrderResponse maps a domain order onto its JSON shape.
func NewOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	return OrderResponse{
		ID:                 order.ID,
		IdempotencyKey:     order.IdempotencyKey,
		PaymentID:          order.PaymentID,
		CustomerEmail:      order.CustomerEmail,
		MerchantEmail:      order.MerchantEmail,
		Items:              items,
		PaymentMethod:      string(order.PaymentMethod),
		Status:             string(order.Status),
		Currency:           order.Currency,
		Total:              order.Total(),
		TransactionDetails: orEmpty(order.TransactionDetails),
		Metadata:           orEmpty(order.Metadata),
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}
}
