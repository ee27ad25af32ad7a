package usecase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

// MobileSignatureHeader carries the hex HMAC-SHA256 of the raw body, keyed
// with the shared mobile-money webhook secret.
const MobileSignatureHeader = "X-Mobile-Money-Signature"

type mobileMoneyEvent struct {
	EventID       string `json:"event_id"`
	TransactionID string `json:"transaction_id"`
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

// id is the ledger key. Aggregators that do not send an event id deliver
// one callback per transaction status.
func (e mobileMoneyEvent) id() string {
	if e.EventID != "" {
		return e.EventID
	}
	return e.TransactionID + ":" + e.status()
}

func (e mobileMoneyEvent) status() string {
	return strings.ToUpper(strings.TrimSpace(e.Status))
}

func (e mobileMoneyEvent) target() *domain.OrderStatus {
	var s domain.OrderStatus
	switch e.status() {
	case "ACCEPTED", "SUCCESS":
		s = domain.OrderStatusCompleted
	case "REFUSED", "FAILED", "CANCELED":
		s = domain.OrderStatusCanceled
	default:
		return nil
	}
	return &s
}

func verifyMobileSignature(body []byte, signature, secret string) error {
	if secret == "" {
		return errors.NewAuthenticationError("mobile money webhook secret is not configured", nil)
	}

	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return errors.NewAuthenticationError("mobile money signature is not hex encoded", err)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return errors.NewAuthenticationError("mobile money signature verification failed", nil)
	}

	return nil
}

func decodeMobileEvent(body []byte) (*mobileMoneyEvent, error) {
	var event mobileMoneyEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, errors.NewValidationError("invalid mobile money payload", errors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
	}

	if event.EventID == "" && event.TransactionID == "" {
		return nil, errors.NewValidationError("invalid mobile money payload", errors.ValidationDetail{
			Field:   "transaction_id",
			Message: "event_id or transaction_id is required",
		})
	}

	return &event, nil
}
