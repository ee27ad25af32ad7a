package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	ordercontroller "storefront/internal/order/controller"
	paymentcontroller "storefront/internal/payment/controller"
	"storefront/internal/product"
)

func NewRouter(
	productCtrl *product.Controller,
	orderCtrl *ordercontroller.OrderController,
	paymentCtrl *paymentcontroller.PaymentController,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderCtrl.CreateOrder)
			r.Get("/", orderCtrl.ListOrders)
			r.Get("/{orderId}", orderCtrl.GetOrder)
			r.Patch("/{orderId}/status", orderCtrl.UpdateOrderStatus)
		})

		r.Get("/products", productCtrl.HandleListProducts)
		r.Post("/products", productCtrl.HandleCreateProduct)
		r.Get("/formats", productCtrl.HandleListFormats)
		r.Post("/formats", productCtrl.HandleCreateFormat)

		r.Post("/payment/intent", paymentCtrl.CreatePaymentIntent)
		r.Post("/payment/checkout-session", paymentCtrl.CreateCheckoutSession)
		r.Post("/payment/mobile-money", paymentCtrl.InitiateMobileMoney)
		r.Post("/webhook/payment", paymentCtrl.Webhook)
	})

	return r
}

// requestLogger writes one line per request through zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("requestId", middleware.GetReqID(r.Context())),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
