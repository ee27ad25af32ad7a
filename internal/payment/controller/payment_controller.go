package controller

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/commons"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/payment/usecase"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	maxWebhookBody        = 1 << 20
)

type InitiatePaymentUseCase interface {
	CreatePaymentIntent(ctx context.Context, req dto.PaymentIntentRequest) (*dto.PaymentIntentResponse, error)
	CreateCheckoutSession(ctx context.Context, req dto.CheckoutSessionRequest) (*dto.CheckoutSessionResponse, error)
	InitiateMobileMoney(ctx context.Context, req dto.MobileMoneyRequest) (*dto.MobileMoneyResponse, error)
}

type ReconcileWebhookUseCase interface {
	Reconcile(ctx context.Context, delivery dto.WebhookDelivery) (*dto.WebhookResult, error)
}

type PaymentController struct {
	initiate  InitiatePaymentUseCase
	reconcile ReconcileWebhookUseCase
	logger    *zap.Logger
}

func NewPaymentController(initiate InitiatePaymentUseCase, reconcile ReconcileWebhookUseCase, logger *zap.Logger) *PaymentController {
	return &PaymentController{
		initiate:  initiate,
		reconcile: reconcile,
		logger:    logger,
	}
}

func (c *PaymentController) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.PaymentIntentRequest
	if !commons.DecodeJSON(w, r, logger, &req) {
		return
	}

	resp, err := c.initiate.CreatePaymentIntent(r.Context(), req)
	if err != nil {
		commons.WriteUseCaseError(w, logger, traceID, err)
		return
	}

	commons.WriteJSON(w, logger, http.StatusOK, resp)
}

func (c *PaymentController) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CheckoutSessionRequest
	if !commons.DecodeJSON(w, r, logger, &req) {
		return
	}

	resp, err := c.initiate.CreateCheckoutSession(r.Context(), req)
	if err != nil {
		commons.WriteUseCaseError(w, logger, traceID, err)
		return
	}

	commons.WriteJSON(w, logger, http.StatusOK, resp)
}

func (c *PaymentController) InitiateMobileMoney(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.MobileMoneyRequest
	if !commons.DecodeJSON(w, r, logger, &req) {
		return
	}

	resp, err := c.initiate.InitiateMobileMoney(r.Context(), req)
	if err != nil {
		commons.WriteUseCaseError(w, logger, traceID, err)
		return
	}

	commons.WriteJSON(w, logger, http.StatusOK, resp)
}

// Webhook acknowledges a provider callback only after its effect is
// committed. The body is read raw because signatures cover the exact bytes.
func (c *PaymentController) Webhook(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		logger.Warn("failed to read webhook body", zap.Error(err))
		commons.WriteValidationError(w, logger, "unreadable webhook body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body could not be read",
		})
		return
	}

	result, err := c.reconcile.Reconcile(r.Context(), dto.WebhookDelivery{
		Body:            body,
		StripeSignature: r.Header.Get(stripeSignatureHeader),
		MobileSignature: r.Header.Get(usecase.MobileSignatureHeader),
	})
	if err != nil {
		commons.WriteUseCaseError(w, logger, traceID, err)
		return
	}

	commons.WriteJSON(w, logger, http.StatusOK, dto.WebhookAckResponse{
		Received: true,
		Provider: string(result.Provider),
		EventID:  result.EventID,
		Outcome:  string(result.Outcome),
	})
}
