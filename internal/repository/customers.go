package repository

import (
	"context"

	"github.com/talkincode/storefront/internal/domain"
	"gorm.io/gorm"
)

type CustomerRepository struct {
	*Resource[domain.Customer]
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	res := NewResource[domain.Customer](db, Text("firstname"), Text("lastname"), Text("email"))
	res.Relation("orders", func(ctx context.Context, db *gorm.DB, c *domain.Customer) error {
		c.Orders = []domain.Order{}
		return db.Where("customer_id = ?", c.ID).
			Order("created_at DESC").Order("id DESC").
			Find(&c.Orders).Error
	})
	return &CustomerRepository{Resource: res}
}
