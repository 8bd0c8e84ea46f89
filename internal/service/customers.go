package service

import (
	"context"
	"time"

	"github.com/talkincode/storefront/internal/cache"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/repository"
)

const resourceCustomer = "customer"

type CustomerStats struct {
	TotalCustomers int64 `json:"totalCustomers"`
	TotalRevenues  int64 `json:"totalRevenues"`
}

type CustomerService struct {
	cached
	customers *repository.CustomerRepository
	orders    *repository.OrderRepository
}

func NewCustomerService(customers *repository.CustomerRepository, orders *repository.OrderRepository, store cache.Store, ttl time.Duration) *CustomerService {
	return &CustomerService{
		cached:    cached{store: store, ttl: ttl},
		customers: customers,
		orders:    orders,
	}
}

func (s *CustomerService) List(ctx context.Context, q repository.ListQuery) (*repository.Page[domain.Customer], error) {
	page, err := s.customers.List(ctx, q)
	return page, storeErr(err, "")
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*domain.Customer, error) {
	if err := check(&in); err != nil {
		return nil, err
	}
	c := &domain.Customer{
		Firstname:   in.Firstname,
		Lastname:    in.Lastname,
		Phonenumber: in.Phonenumber,
		Email:       in.Email,
		Address:     in.Address,
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, storeErr(err, "")
	}
	return c, nil
}

// Show customer with its orders
func (s *CustomerService) Show(ctx context.Context, id int64) (*domain.Customer, error) {
	return show(ctx, s.cached, s.customers.Resource, resourceCustomer, id, "Customer not found.", "orders")
}

func (s *CustomerService) Update(ctx context.Context, id int64, in CustomerUpdateInput) error {
	if err := check(&in); err != nil {
		return err
	}
	fields := map[string]interface{}{}
	if in.Firstname != nil {
		fields["firstname"] = *in.Firstname
	}
	if in.Lastname != nil {
		fields["lastname"] = *in.Lastname
	}
	if in.Phonenumber != nil {
		fields["phonenumber"] = *in.Phonenumber
	}
	if in.Email != nil {
		fields["email"] = *in.Email
	}
	if in.Address != nil {
		fields["address"] = *in.Address
	}
	return patch(ctx, s.cached, s.customers.Resource, resourceCustomer, id, fields,
		"Customer not found.", "Customer record updating failed!")
}

func (s *CustomerService) Destroy(ctx context.Context, id int64) error {
	return destroy(ctx, s.cached, s.customers.Resource, resourceCustomer, id, "Customer deletion unsuccessful.")
}

// Stats revenue sums every order amount
func (s *CustomerService) Stats(ctx context.Context) (*CustomerStats, error) {
	n, err := s.customers.Count(ctx)
	if err != nil {
		return nil, storeErr(err, "")
	}
	revenue, err := s.orders.SumAmount(ctx)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return &CustomerStats{TotalCustomers: n, TotalRevenues: revenue}, nil
}
