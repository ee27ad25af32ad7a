package order

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/notification"
	"storefront/internal/order/controller"
	orderrepo "storefront/internal/order/repository"
	"storefront/internal/order/service"
	"storefront/internal/order/usecase"
	"storefront/internal/receipt"
)

// NewModule wires the order feature. Confirmation emails are only sent when
// an SMTP relay is configured.
func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger, products usecase.ProductLookup) (*controller.OrderController, error) {
	orderRepo := orderrepo.NewSQLOrderRepository(db)
	orderItemRepo := orderrepo.NewSQLOrderItemRepository(db)

	orderSvc := service.NewOrderService(db, orderRepo, orderItemRepo, logger, cfg.Order.TxTimeout)

	var dispatcher usecase.NotificationDispatcher
	if cfg.Mail.Enabled() {
		smtp, err := notification.NewSMTPDispatcher(cfg.Mail, logger.Named("mail"))
		if err != nil {
			return nil, fmt.Errorf("building mail dispatcher: %w", err)
		}
		dispatcher = smtp
	} else {
		logger.Warn("SMTP relay not configured, order confirmations disabled")
	}

	fromAddress := cfg.Mail.User
	if fromAddress == "" {
		fromAddress = cfg.Store.MerchantEmail
	}

	submit := usecase.NewSubmitOrderUseCase(
		orderSvc,
		orderRepo,
		receipt.NewGenerator(cfg.Store.Name, cfg.Receipt.FontPath),
		dispatcher,
		usecase.SubmitOrderConfig{
			DefaultCurrency:     cfg.Store.Currency,
			MerchantEmail:       cfg.Store.MerchantEmail,
			MaxRetryAttempts:    cfg.Order.MaxRetryAttempts,
			ConfirmationTimeout: cfg.Order.ConfirmationTimeout,
			Sender: notification.Sender{
				StoreName: cfg.Store.Name,
				Address:   fromAddress,
				Locale:    cfg.Store.Locale,
			},
		},
		logger,
	)
	query := usecase.NewOrderQueryUseCase(orderRepo, orderSvc, products, logger)

	return controller.NewOrderController(submit, query, logger), nil
}
