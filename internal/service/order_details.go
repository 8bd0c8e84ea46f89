package service

import (
	"context"
	"time"

	"github.com/talkincode/storefront/internal/apperr"
	"github.com/talkincode/storefront/internal/cache"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/repository"
)

const resourceOrderDetail = "order_detail"

type OrderDetailCount struct {
	TotalOrderDetails int64 `json:"totalOrderDetails"`
}

type OrderDetailService struct {
	cached
	details  *repository.OrderDetailRepository
	orders   *repository.OrderRepository
	products *repository.ProductRepository
}

func NewOrderDetailService(details *repository.OrderDetailRepository, orders *repository.OrderRepository,
	products *repository.ProductRepository, store cache.Store, ttl time.Duration) *OrderDetailService {
	return &OrderDetailService{
		cached:   cached{store: store, ttl: ttl},
		details:  details,
		orders:   orders,
		products: products,
	}
}

func (s *OrderDetailService) List(ctx context.Context, q repository.ListQuery) (*repository.Page[domain.OrderDetail], error) {
	page, err := s.details.List(ctx, q)
	return page, storeErr(err, "")
}

// Create adds a line to an existing order
func (s *OrderDetailService) Create(ctx context.Context, in OrderDetailInput) (*domain.OrderDetail, error) {
	if err := check(&in); err != nil {
		return nil, err
	}
	if found, err := s.orders.Exists(ctx, in.OrderID); err != nil {
		return nil, storeErr(err, "")
	} else if !found {
		return nil, apperr.NotFound("Order not found.")
	}
	if found, err := s.products.Exists(ctx, in.ProductID); err != nil {
		return nil, storeErr(err, "")
	} else if !found {
		return nil, apperr.NotFound("Product not found.")
	}
	d := &domain.OrderDetail{OrderID: in.OrderID, ProductID: in.ProductID, Quantity: in.Quantity}
	if err := s.details.Create(ctx, d); err != nil {
		return nil, storeErr(err, "")
	}
	return d, nil
}

// Show order detail with its order and product
func (s *OrderDetailService) Show(ctx context.Context, id int64) (*domain.OrderDetail, error) {
	return show(ctx, s.cached, s.details.Resource, resourceOrderDetail, id, "Order detail not found.", "order", "product")
}

func (s *OrderDetailService) Update(ctx context.Context, id int64, in OrderDetailUpdateInput) error {
	if err := check(&in); err != nil {
		return err
	}
	return patch(ctx, s.cached, s.details.Resource, resourceOrderDetail, id,
		map[string]interface{}{"quantity": in.Quantity},
		"Order detail not found, update failed!", "Order detail update failed!")
}

func (s *OrderDetailService) Destroy(ctx context.Context, id int64) error {
	return destroy(ctx, s.cached, s.details.Resource, resourceOrderDetail, id, "Order detail deletion unsuccessful.")
}

func (s *OrderDetailService) Count(ctx context.Context) (*OrderDetailCount, error) {
	n, err := s.details.Count(ctx)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return &OrderDetailCount{TotalOrderDetails: n}, nil
}
