package usecase

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	"storefront/internal/errors"
	"storefront/internal/infrastructure/stripeclient"
	"storefront/internal/infrastructure/tracing"
	"storefront/internal/payment/service"
)

type CardEventVerifier interface {
	VerifyEvent(payload []byte, signature string) (*stripeclient.CardEvent, error)
}

type Reconciler interface {
	Apply(ctx context.Context, rec service.Reconciliation) (domain.WebhookOutcome, string, error)
}

// ReconcileWebhookUseCase authenticates a provider callback and hands the
// resulting status change to the reconciler. Nothing is written for a
// delivery that fails verification.
type ReconcileWebhookUseCase struct {
	verifier     CardEventVerifier
	reconciler   Reconciler
	mobileSecret string
	logger       *zap.Logger
}

func NewReconcileWebhookUseCase(
	verifier CardEventVerifier,
	reconciler Reconciler,
	mobileSecret string,
	logger *zap.Logger,
) *ReconcileWebhookUseCase {
	return &ReconcileWebhookUseCase{
		verifier:     verifier,
		reconciler:   reconciler,
		mobileSecret: mobileSecret,
		logger:       logger,
	}
}

func (uc *ReconcileWebhookUseCase) Reconcile(ctx context.Context, delivery dto.WebhookDelivery) (*dto.WebhookResult, error) {
	ctx, span := tracing.Tracer("payment").Start(ctx, "payment.reconcile_webhook")
	defer span.End()

	var (
		rec service.Reconciliation
		err error
	)
	switch {
	case delivery.StripeSignature != "":
		rec, err = uc.cardReconciliation(delivery)
	case delivery.MobileSignature != "":
		rec, err = uc.mobileReconciliation(delivery)
	default:
		err = errors.NewAuthenticationError("webhook carries no provider signature", nil)
	}
	if err != nil {
		uc.logger.Warn("webhook rejected", zap.Error(err))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("webhook.provider", string(rec.Provider)),
		attribute.String("webhook.event_id", rec.EventID),
		attribute.String("webhook.type", rec.Type),
	)

	outcome, orderID, err := uc.reconciler.Apply(ctx, rec)
	if err != nil {
		if _, ok := errors.IsNotFoundError(err); ok {
			uc.logger.Warn("webhook references unknown order",
				zap.String("provider", string(rec.Provider)),
				zap.String("eventId", rec.EventID),
				zap.String("orderId", rec.OrderID),
				zap.String("paymentId", rec.PaymentID),
			)
		} else {
			uc.logger.Error("failed to reconcile webhook", zap.String("eventId", rec.EventID), zap.Error(err))
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	uc.logger.Info("webhook reconciled",
		zap.String("provider", string(rec.Provider)),
		zap.String("eventId", rec.EventID),
		zap.String("type", rec.Type),
		zap.String("orderId", orderID),
		zap.String("outcome", string(outcome)),
	)

	return &dto.WebhookResult{
		Provider: rec.Provider,
		EventID:  rec.EventID,
		Type:     rec.Type,
		OrderID:  orderID,
		Outcome:  outcome,
	}, nil
}

func (uc *ReconcileWebhookUseCase) cardReconciliation(delivery dto.WebhookDelivery) (service.Reconciliation, error) {
	event, err := uc.verifier.VerifyEvent(delivery.Body, delivery.StripeSignature)
	if err != nil {
		return service.Reconciliation{}, err
	}

	rec := service.Reconciliation{
		EventID:   event.ID,
		Provider:  domain.ProviderStripe,
		Type:      event.Type,
		OrderID:   event.OrderID,
		PaymentID: event.PaymentIntentID,
	}

	var s domain.OrderStatus
	switch event.Type {
	case stripeclient.EventCheckoutCompleted, stripeclient.EventIntentSucceeded:
		s = domain.OrderStatusCompleted
		rec.Target = &s
	case stripeclient.EventIntentFailed, stripeclient.EventCheckoutExpired:
		s = domain.OrderStatusCanceled
		rec.Target = &s
	}

	return rec, nil
}

func (uc *ReconcileWebhookUseCase) mobileReconciliation(delivery dto.WebhookDelivery) (service.Reconciliation, error) {
	if err := verifyMobileSignature(delivery.Body, delivery.MobileSignature, uc.mobileSecret); err != nil {
		return service.Reconciliation{}, err
	}

	event, err := decodeMobileEvent(delivery.Body)
	if err != nil {
		return service.Reconciliation{}, err
	}

	return service.Reconciliation{
		EventID:   event.id(),
		Provider:  domain.ProviderMobileMoney,
		Type:      event.status(),
		OrderID:   event.OrderID,
		PaymentID: event.TransactionID,
		Target:    event.target(),
	}, nil
}
