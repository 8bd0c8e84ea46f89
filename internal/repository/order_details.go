package repository

import (
	"context"
	"errors"

	"github.com/talkincode/storefront/internal/domain"
	"gorm.io/gorm"
)

type OrderDetailRepository struct {
	*Resource[domain.OrderDetail]
}

func NewOrderDetailRepository(db *gorm.DB) *OrderDetailRepository {
	res := NewResource[domain.OrderDetail](db, Numeric("quantity"))
	res.Relation("order", func(ctx context.Context, db *gorm.DB, d *domain.OrderDetail) error {
		var o domain.Order
		if err := db.First(&o, d.OrderID).Error; err != nil {
			return err
		}
		d.Order = &o
		return nil
	})
	res.Relation("product", func(ctx context.Context, db *gorm.DB, d *domain.OrderDetail) error {
		var p domain.Product
		err := db.Unscoped().First(&p, d.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			d.Product = nil
			return nil
		}
		if err != nil {
			return err
		}
		d.Product = &p
		return nil
	})
	return &OrderDetailRepository{Resource: res}
}
