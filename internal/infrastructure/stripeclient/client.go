// Package stripeclient wraps the Stripe API calls and webhook verification
// the storefront needs for card payments.
package stripeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"storefront/internal/errors"
)

const provider = "stripe"

// Event types the reconciler acts on.
const (
	EventCheckoutCompleted = string(stripe.EventTypeCheckoutSessionCompleted)
	EventCheckoutExpired   = string(stripe.EventTypeCheckoutSessionExpired)
	EventIntentSucceeded   = string(stripe.EventTypePaymentIntentSucceeded)
	EventIntentFailed      = string(stripe.EventTypePaymentIntentPaymentFailed)
)

// zeroDecimal lists currencies Stripe charges in whole units.
var zeroDecimal = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

type Options struct {
	SecretKey     string
	WebhookSecret string
	PublicBaseURL string
	StoreName     string
	// APIURL overrides the Stripe endpoint. Empty means production.
	APIURL string
}

type Client struct {
	api           *client.API
	webhookSecret string
	publicBaseURL string
	storeName     string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// CardEvent is a verified webhook event reduced to what reconciliation
// needs.
type CardEvent struct {
	ID              string
	Type            string
	OrderID         string
	PaymentIntentID string
	Amount          int64
	Currency        string
}

func New(opts Options, logger *zap.Logger) *Client {
	// GetBackendWithConfig fills in defaults on the config it is given, so
	// each backend gets its own.
	backendConfig := func(url string) *stripe.BackendConfig {
		cfg := &stripe.BackendConfig{
			LeveledLogger:     logger.Sugar(),
			MaxNetworkRetries: stripe.Int64(0),
		}
		if url != "" {
			cfg.URL = stripe.String(url)
		}
		return cfg
	}

	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig(opts.APIURL)),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig("")),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig("")),
	}

	return &Client{
		api:           client.New(opts.SecretKey, backends),
		webhookSecret: opts.WebhookSecret,
		publicBaseURL: strings.TrimRight(opts.PublicBaseURL, "/"),
		storeName:     opts.StoreName,
	}
}

// IsZeroDecimal reports whether currency has no minor unit at Stripe.
func IsZeroDecimal(currency string) bool {
	return zeroDecimal[strings.ToLower(currency)]
}

// MinorUnits converts a whole amount into the unit Stripe expects.
func MinorUnits(amount int64, currency string) int64 {
	if IsZeroDecimal(currency) {
		return amount
	}
	return amount * 100
}

// CreatePaymentIntent asks Stripe for an intent of amount, already in the
// currency's smallest unit.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount int64, currency, orderID string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if orderID != "" {
		params.AddMetadata("orderId", orderID)
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, errors.NewUpstreamError(provider, err)
	}

	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// CreateCheckoutSession opens a hosted checkout for one order. amount is in
// whole currency units.
func (c *Client) CreateCheckoutSession(ctx context.Context, amount int64, currency, orderID string) (*CheckoutSession, error) {
	name := "Commande"
	if c.storeName != "" {
		name += " " + c.storeName
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(strings.ToLower(currency)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(name),
					Description: stripe.String("Commande #" + orderID),
				},
				UnitAmount: stripe.Int64(MinorUnits(amount, currency)),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL:        stripe.String(c.publicBaseURL + "/confirmation?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(c.publicBaseURL + "/checkout"),
		ClientReferenceID: stripe.String(orderID),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{"orderId": orderID},
		},
	}
	params.Context = ctx
	params.AddMetadata("orderId", orderID)

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.NewUpstreamError(provider, err)
	}

	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// VerifyEvent checks the Stripe-Signature header against the raw payload
// and decodes the event. Any failure is an AuthenticationError.
func (c *Client) VerifyEvent(payload []byte, signature string) (*CardEvent, error) {
	if c.webhookSecret == "" {
		return nil, errors.NewAuthenticationError("stripe webhook secret is not configured", nil)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errors.NewAuthenticationError("stripe signature verification failed", err)
	}

	return decodeEvent(event)
}

func decodeEvent(event stripe.Event) (*CardEvent, error) {
	out := &CardEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventCheckoutCompleted, EventCheckoutExpired:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("decoding checkout session: %w", err)
		}
		out.OrderID = session.Metadata["orderId"]
		if out.OrderID == "" {
			out.OrderID = session.ClientReferenceID
		}
		if session.PaymentIntent != nil {
			out.PaymentIntentID = session.PaymentIntent.ID
		}
		out.Amount = session.AmountTotal
		out.Currency = string(session.Currency)

	case EventIntentSucceeded, EventIntentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("decoding payment intent: %w", err)
		}
		out.OrderID = intent.Metadata["orderId"]
		out.PaymentIntentID = intent.ID
		out.Amount = intent.Amount
		out.Currency = string(intent.Currency)
	}

	return out, nil
}
