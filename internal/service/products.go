package service

import (
	"context"
	"time"

	"github.com/talkincode/storefront/internal/cache"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/repository"
)

const resourceProduct = "product"

type ProductStats struct {
	TotalProducts int64 `json:"totalProducts"`
}

type ProductService struct {
	cached
	products *repository.ProductRepository
}

func NewProductService(products *repository.ProductRepository, store cache.Store, ttl time.Duration) *ProductService {
	return &ProductService{cached: cached{store: store, ttl: ttl}, products: products}
}

func (s *ProductService) List(ctx context.Context, q repository.ListQuery) (*repository.Page[domain.Product], error) {
	page, err := s.products.List(ctx, q)
	return page, storeErr(err, "")
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := check(&in); err != nil {
		return nil, err
	}
	p := &domain.Product{
		Name:      in.Name,
		UnitPrice: in.UnitPrice,
		Quantity:  in.Quantity,
		Category:  domain.Category(in.Category),
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, storeErr(err, "")
	}
	return p, nil
}

func (s *ProductService) Show(ctx context.Context, id int64) (*domain.Product, error) {
	return show(ctx, s.cached, s.products.Resource, resourceProduct, id, "Product not found.", "order_details")
}

func (s *ProductService) Update(ctx context.Context, id int64, in ProductUpdateInput) error {
	if err := check(&in); err != nil {
		return err
	}
	fields := map[string]interface{}{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.UnitPrice != nil {
		fields["unit_price"] = *in.UnitPrice
	}
	if in.Quantity != nil {
		fields["quantity"] = *in.Quantity
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	return patch(ctx, s.cached, s.products.Resource, resourceProduct, id, fields,
		"Product not found.", "Product update failed!")
}

func (s *ProductService) Destroy(ctx context.Context, id int64) error {
	return destroy(ctx, s.cached, s.products.Resource, resourceProduct, id, "Product deletion unsuccessful.")
}

func (s *ProductService) Count(ctx context.Context) (*ProductStats, error) {
	n, err := s.products.Count(ctx)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return &ProductStats{TotalProducts: n}, nil
}

// SeedIfEmpty inserts the given products when the table has none
func (s *ProductService) SeedIfEmpty(ctx context.Context, items []domain.Product) (int, error) {
	n, err := s.products.Count(ctx)
	if err != nil || n > 0 {
		return 0, err
	}
	for i := range items {
		if err := s.products.Create(ctx, &items[i]); err != nil {
			return i, err
		}
	}
	return len(items), nil
}
