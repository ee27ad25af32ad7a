package payment

import (
	"database/sql"

	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/infrastructure/stripeclient"
	orderrepo "storefront/internal/order/repository"
	"storefront/internal/payment/controller"
	"storefront/internal/payment/repository"
	"storefront/internal/payment/service"
	"storefront/internal/payment/usecase"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.PaymentController {
	orderRepo := orderrepo.NewSQLOrderRepository(db)
	ledger := repository.NewSQLWebhookEventRepository(db)

	stripe := stripeclient.New(stripeclient.Options{
		SecretKey:     cfg.Payment.StripeSecretKey,
		WebhookSecret: cfg.Payment.StripeWebhookSecret,
		PublicBaseURL: cfg.Store.PublicBaseURL,
		StoreName:     cfg.Store.Name,
	}, logger.Named("stripe"))

	reconciliation := service.NewReconciliationService(db, orderRepo, ledger, logger, cfg.Order.TxTimeout)

	initiate := usecase.NewInitiatePaymentUseCase(stripe, orderRepo, cfg.Payment, cfg.Store.Currency, logger)
	reconcile := usecase.NewReconcileWebhookUseCase(stripe, reconciliation, cfg.Payment.MobileMoneyWebhookSecret, logger)

	return controller.NewPaymentController(initiate, reconcile, logger)
}
