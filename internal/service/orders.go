package service

import (
	"context"
	"fmt"
	"time"

	"github.com/talkincode/storefront/internal/apperr"
	"github.com/talkincode/storefront/internal/cache"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/repository"
)

const resourceOrder = "order"

// Enqueuer accepts created orders for asynchronous side effects
type Enqueuer interface {
	Enqueue(order *domain.Order)
}

type OrderStats struct {
	TotalOrders     int64 `json:"totalOrders"`
	TotalIncome     int64 `json:"totalIncome"`
	CompletedOrders int64 `json:"completedOrders"`
	PendingOrders   int64 `json:"pendingOrders"`
}

type OrderCount struct {
	TotalOrders int64 `json:"totalOrders"`
}

type OrderService struct {
	cached
	orders    *repository.OrderRepository
	customers *repository.CustomerRepository
	products  *repository.ProductRepository
	queue     Enqueuer
}

func NewOrderService(orders *repository.OrderRepository, customers *repository.CustomerRepository,
	products *repository.ProductRepository, queue Enqueuer, store cache.Store, ttl time.Duration) *OrderService {
	return &OrderService{
		cached:    cached{store: store, ttl: ttl},
		orders:    orders,
		customers: customers,
		products:  products,
		queue:     queue,
	}
}

func (s *OrderService) List(ctx context.Context, q repository.ListQuery) (*repository.Page[domain.Order], error) {
	page, err := s.orders.List(ctx, q)
	return page, storeErr(err, "")
}

// Store creates a completed order with its lines for the customer. The amount is
// taken as sent and not recomputed from product prices.
func (s *OrderService) Store(ctx context.Context, customerID int64, in OrderInput) (*domain.Order, error) {
	if err := check(&in); err != nil {
		return nil, err
	}
	found, err := s.customers.Exists(ctx, customerID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	if !found {
		return nil, apperr.NotFound("Customer not found.")
	}

	ids := make([]int64, len(in.Products))
	for i, line := range in.Products {
		ids[i] = line.ProductID
	}
	missing, err := s.products.Missing(ctx, ids)
	if err != nil {
		return nil, storeErr(err, "")
	}
	if len(missing) > 0 {
		absent := make(map[int64]bool, len(missing))
		for _, id := range missing {
			absent[id] = true
		}
		fields := apperr.FieldErrors{}
		for i, line := range in.Products {
			if absent[line.ProductID] {
				key := fmt.Sprintf("products[%d].productId", i)
				fields.Add(key, fmt.Sprintf("The selected %s is invalid.", key))
			}
		}
		return nil, apperr.InvalidInput(fields)
	}

	order := &domain.Order{
		Amount:     in.TotalAmount,
		Status:     domain.OrderStatusCompleted,
		CustomerID: customerID,
	}
	details := make([]domain.OrderDetail, len(in.Products))
	for i, line := range in.Products {
		details[i] = domain.OrderDetail{ProductID: line.ProductID, Quantity: line.Quantity}
	}
	if err := s.orders.CreateWithDetails(ctx, order, details); err != nil {
		return nil, storeErr(err, "")
	}
	if s.queue != nil {
		s.queue.Enqueue(order)
	}
	return order, nil
}

// Show order with its lines and customer
func (s *OrderService) Show(ctx context.Context, id int64) (*domain.Order, error) {
	return show(ctx, s.cached, s.orders.Resource, resourceOrder, id, "Order not found.", "order_details", "customer")
}

func (s *OrderService) Update(ctx context.Context, id int64, in OrderUpdateInput) error {
	if err := check(&in); err != nil {
		return err
	}
	return patch(ctx, s.cached, s.orders.Resource, resourceOrder, id,
		map[string]interface{}{"status": in.Status},
		"Order not found, update failed!", "Order update failed!")
}

// Destroy removes the order, its lines go with it and leave the cache too
func (s *OrderService) Destroy(ctx context.Context, id int64) error {
	lines, err := s.orders.DetailIDs(ctx, id)
	if err != nil {
		return apperr.Internal("Order deletion unsuccessful.", err)
	}
	if err := destroy(ctx, s.cached, s.orders.Resource, resourceOrder, id, "Order deletion unsuccessful."); err != nil {
		return err
	}
	for _, lid := range lines {
		cache.Forget(ctx, s.store, cache.Key(resourceOrderDetail, lid))
	}
	return nil
}

func (s *OrderService) Count(ctx context.Context) (*OrderCount, error) {
	n, err := s.orders.Count(ctx)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return &OrderCount{TotalOrders: n}, nil
}

func (s *OrderService) Stats(ctx context.Context) (*OrderStats, error) {
	var (
		stats OrderStats
		err   error
	)
	if stats.TotalOrders, err = s.orders.Count(ctx); err != nil {
		return nil, storeErr(err, "")
	}
	if stats.TotalIncome, err = s.orders.SumAmount(ctx); err != nil {
		return nil, storeErr(err, "")
	}
	if stats.CompletedOrders, err = s.orders.CountByStatus(ctx, domain.OrderStatusCompleted); err != nil {
		return nil, storeErr(err, "")
	}
	if stats.PendingOrders, err = s.orders.CountByStatus(ctx, domain.OrderStatusPending); err != nil {
		return nil, storeErr(err, "")
	}
	return &stats, nil
}
