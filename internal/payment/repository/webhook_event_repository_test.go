package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	dtoerrors "storefront/internal/errors"
	"storefront/internal/infrastructure/dbtypes"
	"storefront/internal/testutil"
)

// Integration Tests

func TestWebhookEventRepository_InsertAndExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSQLWebhookEventRepository(db)
	ctx := context.Background()
	orderID := "ord-1"
	processedAt := time.Date(2026, 6, 2, 8, 30, 0, 0, time.UTC)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	exists, err := repo.Exists(ctx, tx, "evt_1")
	require.NoError(t, err)
	assert.False(t, exists)

	err = repo.Insert(ctx, tx, &domain.WebhookEvent{
		ID:          "evt_1",
		Provider:    domain.ProviderStripe,
		Type:        "checkout.session.completed",
		OrderID:     &orderID,
		Outcome:     domain.WebhookApplied,
		ProcessedAt: processedAt,
	})
	require.NoError(t, err)

	exists, err = repo.Exists(ctx, tx, "evt_1")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, tx.Commit())

	event, err := repo.FindByID(ctx, "evt_1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderStripe, event.Provider)
	assert.Equal(t, domain.WebhookApplied, event.Outcome)
	require.NotNil(t, event.OrderID)
	assert.Equal(t, "ord-1", *event.OrderID)
	assert.True(t, processedAt.Equal(event.ProcessedAt))
}

func TestWebhookEventRepository_DuplicateID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSQLWebhookEventRepository(db)
	ctx := context.Background()
	event := &domain.WebhookEvent{
		ID:          "txn-9:ACCEPTED",
		Provider:    domain.ProviderMobileMoney,
		Type:        "ACCEPTED",
		Outcome:     domain.WebhookIgnored,
		ProcessedAt: time.Now().UTC(),
	}

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, tx, event))
	require.NoError(t, tx.Commit())

	tx, err = db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	err = repo.Insert(ctx, tx, event)
	require.Error(t, err)
	assert.True(t, dbtypes.IsDuplicateKey(err))
}

func TestWebhookEventRepository_FindByIDNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	_, err := NewSQLWebhookEventRepository(db).FindByID(context.Background(), "missing")
	_, ok := dtoerrors.IsNotFoundError(err)
	assert.True(t, ok)
}
