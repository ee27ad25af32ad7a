package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/domain"
	orderrepo "storefront/internal/order/repository"
	"storefront/internal/payment/usecase"
	"storefront/internal/testutil"
)

func signMobile(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Integration Tests

func TestModule_MobileMoneyRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	ctx := context.Background()

	orders := orderrepo.NewSQLOrderRepository(db)
	order := &domain.Order{
		ID:            uuid.NewString(),
		Items:         []domain.OrderItem{{ProductID: "P1", Quantity: 2, Price: decimal.NewFromInt(1500)}},
		PaymentMethod: domain.PaymentMethodMobile,
		Status:        domain.OrderStatusPending,
		Currency:      "XAF",
	}
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, orders.Insert(ctx, tx, order))
	require.NoError(t, tx.Commit())

	cfg := &config.Config{
		Store:   config.StoreConfig{Name: "MULA", Currency: "XAF", PublicBaseURL: "http://localhost:3000"},
		Payment: config.PaymentConfig{MobileMoneyWebhookSecret: "mm_secret"},
	}
	ctrl := NewModule(db, cfg, zap.NewNop())

	// initiation stores the transaction id on the order
	initReq := httptest.NewRequest(http.MethodPost, "/api/payment/mobile-money",
		bytes.NewReader([]byte(`{"provider":"yoomee","amount":3000,"phone":"+237600000000","orderId":"`+order.ID+`"}`)))
	initRec := httptest.NewRecorder()
	ctrl.InitiateMobileMoney(initRec, initReq)
	require.Equal(t, http.StatusOK, initRec.Code)

	stored, err := orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PaymentID)
	txnID := *stored.PaymentID

	// the aggregator calls back with only the transaction id
	body := []byte(`{"transaction_id":"` + txnID + `","status":"ACCEPTED","amount":3000,"currency":"XAF"}`)
	deliver := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/webhook/payment", bytes.NewReader(body))
		req.Header.Set(usecase.MobileSignatureHeader, signMobile(body, "mm_secret"))
		rec := httptest.NewRecorder()
		ctrl.Webhook(rec, req)
		return rec
	}

	first := deliver()
	require.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), `"outcome":"applied"`)

	second := deliver()
	require.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), `"outcome":"duplicate"`)

	stored, err = orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, stored.Status)
}

func TestModule_StripeWebhookWithoutSecretIsRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	ctrl := NewModule(db, &config.Config{Store: config.StoreConfig{Currency: "XAF"}}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/payment", bytes.NewReader([]byte(`{"id":"evt_1"}`)))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	rec := httptest.NewRecorder()
	ctrl.Webhook(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTHENTICATION_FAILED")
}
