package usecase

import (
	"context"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	dtoerrors "storefront/internal/errors"
)

type OrderReader interface {
	FindAll(ctx context.Context) ([]domain.Order, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
}

type StatusChanger interface {
	ChangeStatus(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error)
}

type ProductLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}

// OrderQueryUseCase serves the admin dashboard: listings with catalog
// references resolved, single lookups, and the manual status change.
type OrderQueryUseCase struct {
	orderRepo OrderReader
	orderSvc  StatusChanger
	products  ProductLookup
	logger    *zap.Logger
}

func NewOrderQueryUseCase(orderRepo OrderReader, orderSvc StatusChanger, products ProductLookup, logger *zap.Logger) *OrderQueryUseCase {
	return &OrderQueryUseCase{
		orderRepo: orderRepo,
		orderSvc:  orderSvc,
		products:  products,
		logger:    logger,
	}
}

// ListOrders returns every order newest first. An item whose product has
// since been removed from the catalog keeps its productId and has no product.
func (uc *OrderQueryUseCase) ListOrders(ctx context.Context) ([]dto.OrderResponse, error) {
	orders, err := uc.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var ids []string
	for _, order := range orders {
		for _, item := range order.Items {
			if !seen[item.ProductID] {
				seen[item.ProductID] = true
				ids = append(ids, item.ProductID)
			}
		}
	}

	byID := make(map[string]dto.ProductResponse, len(ids))
	if len(ids) > 0 {
		products, err := uc.products.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			byID[p.ID] = dto.NewProductResponse(p)
		}
	}

	resp := make([]dto.OrderResponse, len(orders))
	for i := range orders {
		resp[i] = dto.NewOrderResponse(&orders[i])
		for j := range resp[i].Items {
			if p, ok := byID[resp[i].Items[j].ProductID]; ok {
				resp[i].Items[j].Product = &p
			}
		}
	}

	uc.logger.Debug("orders listed", zap.Int("count", len(resp)), zap.Int("products", len(byID)))
	return resp, nil
}

func (uc *OrderQueryUseCase) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return uc.orderRepo.FindByID(ctx, id)
}

func (uc *OrderQueryUseCase) UpdateOrderStatus(ctx context.Context, id string, req dto.UpdateOrderStatusRequest) (*domain.Order, error) {
	next := domain.OrderStatus(req.Status)
	if !next.Valid() {
		return nil, dtoerrors.NewValidationError("unsupported order status", dtoerrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of PENDING, COMPLETED, CANCELED",
		})
	}

	order, err := uc.orderSvc.ChangeStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order status updated by admin", zap.String("orderId", id), zap.String("status", string(next)))
	return order, nil
}
