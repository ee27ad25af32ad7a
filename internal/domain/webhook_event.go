package domain

import "time"

type PaymentProvider string

const (
	ProviderStripe      PaymentProvider = "stripe"
	ProviderMobileMoney PaymentProvider = "mobile_money"
)

type WebhookOutcome string

const (
	// WebhookApplied means the event moved an order to a new status.
	WebhookApplied WebhookOutcome = "applied"
	// WebhookIgnored covers event types we do not act on.
	WebhookIgnored WebhookOutcome = "ignored"
	// WebhookNoop means the order was already in a terminal status.
	WebhookNoop WebhookOutcome = "noop"
	// WebhookDuplicate is never stored; it is reported for replays of a
	// ledgered event id.
	WebhookDuplicate WebhookOutcome = "duplicate"
)

type WebhookEvent struct {
	ID          string
	Provider    PaymentProvider
	Type        string
	OrderID     *string
	Outcome     WebhookOutcome
	ProcessedAt time.Time
}
