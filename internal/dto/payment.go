package dto

import "storefront/internal/domain"

type PaymentIntentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency,omitempty"`
	OrderID  string `json:"orderId,omitempty"`
}

type PaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type CheckoutSessionRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency,omitempty"`
	OrderID  string `json:"orderId"`
}

type CheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type MobileMoneyRequest struct {
	Provider string `json:"provider"`
	Amount   int64  `json:"amount"`
	Phone    string `json:"phone"`
	Currency string `json:"currency,omitempty"`
	OrderID  string `json:"orderId"`
}

type MobileMoneyResponse struct {
	TransactionID string `json:"transactionId"`
	Provider      string `json:"provider"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// WebhookDelivery is one inbound provider callback. Body is the exact byte
// sequence received; signatures are checked against it, never against a
// re-encoded form.
type WebhookDelivery struct {
	Body            []byte
	StripeSignature string
	MobileSignature string
}

type WebhookResult struct {
	Provider domain.PaymentProvider
	EventID  string
	Type     string
	OrderID  string
	Outcome  domain.WebhookOutcome
}

type WebhookAckResponse struct {
	Received bool   `json:"received"`
	Provider string `json:"provider"`
	EventID  string `json:"eventId"`
	Outcome  string `json:"outcome"`
}
