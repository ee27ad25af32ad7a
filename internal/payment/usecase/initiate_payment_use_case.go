package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/dto"
	"storefront/internal/errors"
	"storefront/internal/infrastructure/stripeclient"
)

const (
	ProviderCinetPay = "cinetpay"
	ProviderYoomee   = "yoomee"

	mobilePendingMessage = "Paiement initié. Veuillez confirmer sur votre téléphone."
)

type CardGateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency, orderID string) (*stripeclient.PaymentIntent, error)
	CreateCheckoutSession(ctx context.Context, amount int64, currency, orderID string) (*stripeclient.CheckoutSession, error)
}

type OrderPaymentRepository interface {
	SetPaymentID(ctx context.Context, id, paymentID string, at time.Time) error
}

// InitiatePaymentUseCase opens payments with the providers. It never moves
// an order's status; that only happens when the provider calls back.
type InitiatePaymentUseCase struct {
	gateway  CardGateway
	orders   OrderPaymentRepository
	payment  config.PaymentConfig
	currency string
	logger   *zap.Logger
	newTxnID func() string
	now      func() time.Time
}

func NewInitiatePaymentUseCase(
	gateway CardGateway,
	orders OrderPaymentRepository,
	payment config.PaymentConfig,
	currency string,
	logger *zap.Logger,
) *InitiatePaymentUseCase {
	return &InitiatePaymentUseCase{
		gateway:  gateway,
		orders:   orders,
		payment:  payment,
		currency: currency,
		logger:   logger,
		newTxnID: func() string { return "TXN_" + uuid.NewString() },
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// CreatePaymentIntent takes the amount in the currency's smallest unit, as
// the card form on the client computes it.
func (uc *InitiatePaymentUseCase) CreatePaymentIntent(ctx context.Context, req dto.PaymentIntentRequest) (*dto.PaymentIntentResponse, error) {
	if req.Amount <= 0 {
		return nil, errors.NewValidationError("invalid amount", errors.ValidationDetail{
			Field:   "amount",
			Message: "amount must be a positive integer",
		})
	}
	currency := uc.currencyOrDefault(req.Currency)

	pi, err := uc.gateway.CreatePaymentIntent(ctx, req.Amount, currency, req.OrderID)
	if err != nil {
		uc.logger.Error("failed to create payment intent", zap.String("orderId", req.OrderID), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("payment intent created",
		zap.String("paymentIntentId", pi.ID),
		zap.String("orderId", req.OrderID),
		zap.Int64("amount", req.Amount),
		zap.String("currency", currency),
	)

	return &dto.PaymentIntentResponse{ClientSecret: pi.ClientSecret, PaymentIntentID: pi.ID}, nil
}

// CreateCheckoutSession takes the amount in whole currency units.
func (uc *InitiatePaymentUseCase) CreateCheckoutSession(ctx context.Context, req dto.CheckoutSessionRequest) (*dto.CheckoutSessionResponse, error) {
	var details []errors.ValidationDetail
	if req.Amount <= 0 {
		details = append(details, errors.ValidationDetail{Field: "amount", Message: "amount must be a positive integer"})
	}
	if strings.TrimSpace(req.OrderID) == "" {
		details = append(details, errors.ValidationDetail{Field: "orderId", Message: "orderId is required"})
	}
	if len(details) > 0 {
		return nil, errors.NewValidationError("validation failed", details...)
	}
	currency := uc.currencyOrDefault(req.Currency)

	session, err := uc.gateway.CreateCheckoutSession(ctx, req.Amount, currency, req.OrderID)
	if err != nil {
		uc.logger.Error("failed to create checkout session", zap.String("orderId", req.OrderID), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("checkout session created", zap.String("sessionId", session.ID), zap.String("orderId", req.OrderID))

	return &dto.CheckoutSessionResponse{SessionID: session.ID, URL: session.URL}, nil
}

// InitiateMobileMoney generates the transaction id the aggregator will echo
// back in its callback and stores it on the order as the payment reference.
func (uc *InitiatePaymentUseCase) InitiateMobileMoney(ctx context.Context, req dto.MobileMoneyRequest) (*dto.MobileMoneyResponse, error) {
	var details []errors.ValidationDetail
	if req.Provider == "" {
		details = append(details, errors.ValidationDetail{Field: "provider", Message: "provider is required"})
	}
	if req.Amount <= 0 {
		details = append(details, errors.ValidationDetail{Field: "amount", Message: "amount must be a positive integer"})
	}
	if strings.TrimSpace(req.Phone) == "" {
		details = append(details, errors.ValidationDetail{Field: "phone", Message: "phone is required"})
	}
	if strings.TrimSpace(req.OrderID) == "" {
		details = append(details, errors.ValidationDetail{Field: "orderId", Message: "orderId is required"})
	}
	if len(details) > 0 {
		return nil, errors.NewValidationError("validation failed", details...)
	}

	provider := strings.ToLower(req.Provider)
	switch provider {
	case ProviderCinetPay:
		if uc.payment.CinetPayAPIKey == "" || uc.payment.CinetPaySiteID == "" {
			return nil, errors.NewInternalError("CinetPay credentials not configured", nil)
		}
	case ProviderYoomee:
	default:
		return nil, errors.NewValidationError("provider not supported", errors.ValidationDetail{
			Field:   "provider",
			Message: fmt.Sprintf("provider must be one of %s, %s", ProviderCinetPay, ProviderYoomee),
		})
	}

	// TODO: call the aggregator's payment init endpoint once merchant accounts are live.
	txnID := uc.newTxnID()
	if err := uc.orders.SetPaymentID(ctx, req.OrderID, txnID, uc.now()); err != nil {
		return nil, err
	}

	uc.logger.Info("mobile money payment initiated",
		zap.String("provider", provider),
		zap.String("transactionId", txnID),
		zap.String("orderId", req.OrderID),
		zap.Int64("amount", req.Amount),
		zap.String("currency", uc.currencyOrDefault(req.Currency)),
	)

	return &dto.MobileMoneyResponse{
		TransactionID: txnID,
		Provider:      provider,
		Status:        "pending",
		Message:       mobilePendingMessage,
	}, nil
}

func (uc *InitiatePaymentUseCase) currencyOrDefault(currency string) string {
	if c := strings.TrimSpace(currency); c != "" {
		return strings.ToUpper(c)
	}
	return uc.currency
}
