package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	dtoerrors "storefront/internal/errors"
)

type mockOrderReader struct {
	FindAllFunc  func(ctx context.Context) ([]domain.Order, error)
	FindByIDFunc func(ctx context.Context, id string) (*domain.Order, error)
}

func (m *mockOrderReader) FindAll(ctx context.Context) ([]domain.Order, error) {
	return m.FindAllFunc(ctx)
}

func (m *mockOrderReader) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return m.FindByIDFunc(ctx, id)
}

type mockStatusChanger struct {
	ChangeStatusFunc func(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error)
}

func (m *mockStatusChanger) ChangeStatus(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error) {
	return m.ChangeStatusFunc(ctx, id, next)
}

type mockProductLookup struct {
	FindByIDsFunc func(ctx context.Context, ids []string) ([]domain.Product, error)
	calls         int
}

func (m *mockProductLookup) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	m.calls++
	return m.FindByIDsFunc(ctx, ids)
}

// Unit Tests

func TestListOrders_ResolvesProducts(t *testing.T) {
	orders := []domain.Order{
		{ID: "ord-2", Status: domain.OrderStatusPending, Items: []domain.OrderItem{
			{ProductID: "P1", Quantity: 1, Price: decimal.NewFromInt(1500)},
			{ProductID: "P-gone", Quantity: 1, Price: decimal.NewFromInt(900)},
		}},
		{ID: "ord-1", Status: domain.OrderStatusCompleted, Items: []domain.OrderItem{
			{ProductID: "P1", Quantity: 3, Price: decimal.NewFromInt(1500)},
		}},
	}
	products := &mockProductLookup{FindByIDsFunc: func(ctx context.Context, ids []string) ([]domain.Product, error) {
		assert.ElementsMatch(t, []string{"P1", "P-gone"}, ids)
		return []domain.Product{{ID: "P1", Name: "Huile de baobab", Price: decimal.NewFromInt(1500)}}, nil
	}}

	uc := NewOrderQueryUseCase(&mockOrderReader{
		FindAllFunc: func(ctx context.Context) ([]domain.Order, error) { return orders, nil },
	}, nil, products, zap.NewNop())

	resp, err := uc.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, 1, products.calls)

	assert.Equal(t, "ord-2", resp[0].ID)
	require.NotNil(t, resp[0].Items[0].Product)
	assert.Equal(t, "Huile de baobab", resp[0].Items[0].Product.Name)
	assert.Nil(t, resp[0].Items[1].Product)
	assert.Equal(t, "P-gone", resp[0].Items[1].ProductID)

	require.NotNil(t, resp[1].Items[0].Product)
	assert.True(t, decimal.NewFromInt(4500).Equal(resp[1].Total))
}

func TestListOrders_EmptySkipsProductLookup(t *testing.T) {
	products := &mockProductLookup{}
	uc := NewOrderQueryUseCase(&mockOrderReader{
		FindAllFunc: func(ctx context.Context) ([]domain.Order, error) { return nil, nil },
	}, nil, products, zap.NewNop())

	resp, err := uc.ListOrders(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Empty(t, resp)
	assert.Equal(t, 0, products.calls)
}

func TestGetOrder_NotFound(t *testing.T) {
	uc := NewOrderQueryUseCase(&mockOrderReader{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			return nil, dtoerrors.NewNotFoundError("order with id " + id + " not found")
		},
	}, nil, nil, zap.NewNop())

	_, err := uc.GetOrder(context.Background(), "missing")
	_, ok := dtoerrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestUpdateOrderStatus(t *testing.T) {
	t.Run("rejects unknown status", func(t *testing.T) {
		changer := &mockStatusChanger{ChangeStatusFunc: func(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error) {
			t.Fatal("must not change status")
			return nil, nil
		}}
		uc := NewOrderQueryUseCase(nil, changer, nil, zap.NewNop())

		_, err := uc.UpdateOrderStatus(context.Background(), "ord-1", dto.UpdateOrderStatusRequest{Status: "REFUNDED"})
		ve, ok := dtoerrors.IsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "status", ve.Details[0].Field)
	})

	t.Run("applies transition", func(t *testing.T) {
		changer := &mockStatusChanger{ChangeStatusFunc: func(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error) {
			assert.Equal(t, "ord-1", id)
			assert.Equal(t, domain.OrderStatusCanceled, next)
			return &domain.Order{ID: id, Status: next}, nil
		}}
		uc := NewOrderQueryUseCase(nil, changer, nil, zap.NewNop())

		order, err := uc.UpdateOrderStatus(context.Background(), "ord-1", dto.UpdateOrderStatusRequest{Status: "CANCELED"})
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCanceled, order.Status)
	})

	t.Run("passes conflict through", func(t *testing.T) {
		changer := &mockStatusChanger{ChangeStatusFunc: func(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error) {
			return nil, dtoerrors.NewConflictError("order ord-1 cannot move from COMPLETED to PENDING")
		}}
		uc := NewOrderQueryUseCase(nil, changer, nil, zap.NewNop())

		_, err := uc.UpdateOrderStatus(context.Background(), "ord-1", dto.UpdateOrderStatusRequest{Status: "PENDING"})
		_, ok := dtoerrors.IsConflictError(err)
		assert.True(t, ok)
	})
}
