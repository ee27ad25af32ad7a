package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodMobile PaymentMethod = "mobile"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCard || m == PaymentMethodMobile
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCanceled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCanceled
}

// CanTransitionTo reports whether next is reachable from s. Only PENDING
// moves, and only to a terminal status.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return s == OrderStatusPending && next.IsTerminal()
}

const DefaultCurrency = "XAF"

type OrderItem struct {
	ProductID string
	Quantity  int
	// Price is the unit price copied at order time.
	Price decimal.Decimal
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID                 string
	IdempotencyKey     *string
	PaymentID          *string
	CustomerEmail      *string
	MerchantEmail      string
	Items              []OrderItem
	PaymentMethod      PaymentMethod
	Status             OrderStatus
	Currency           string
	TransactionDetails map[string]any
	Metadata           map[string]any
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Total is derived from the line items every time it is asked for.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (o Order) HasCustomerEmail() bool {
	return o.CustomerEmail != nil && *o.CustomerEmail != ""
}
