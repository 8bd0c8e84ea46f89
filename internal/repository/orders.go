package repository

import (
	"context"
	"errors"

	"github.com/spf13/cast"
	"github.com/talkincode/storefront/internal/domain"
	"gorm.io/gorm"
)

type OrderRepository struct {
	*Resource[domain.Order]
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	res := NewResource[domain.Order](db, Numeric("amount"))
	res.Relation("order_details", func(ctx context.Context, db *gorm.DB, o *domain.Order) error {
		o.OrderDetails = []domain.OrderDetail{}
		return db.Where("order_id = ?", o.ID).Order("id ASC").Find(&o.OrderDetails).Error
	})
	// customers are soft deleted, their orders keep pointing at the retained row
	res.Relation("customer", func(ctx context.Context, db *gorm.DB, o *domain.Order) error {
		var c domain.Customer
		err := db.Unscoped().First(&c, o.CustomerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			o.Customer = nil
			return nil
		}
		if err != nil {
			return err
		}
		o.Customer = &c
		return nil
	})
	return &OrderRepository{Resource: res, db: db}
}

// CreateWithDetails inserts the order and batch inserts its lines in one transaction.
// On return order.OrderDetails holds the stored lines.
func (r *OrderRepository) CreateWithDetails(ctx context.Context, order *domain.Order, details []domain.OrderDetail) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order.OrderDetails = nil
		if err := tx.Omit("Customer", "OrderDetails").Create(order).Error; err != nil {
			return err
		}
		for i := range details {
			details[i].OrderID = order.ID
		}
		if len(details) > 0 {
			if err := tx.Omit("Order", "Product").Create(&details).Error; err != nil {
				return err
			}
		}
		order.OrderDetails = details
		return nil
	})
	return translate(err, "create order")
}

// DetailIDs ids of the lines belonging to the order
func (r *OrderRepository) DetailIDs(ctx context.Context, orderID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&domain.OrderDetail{}).Where("order_id = ?", orderID).Order("id ASC").Pluck("id", &ids).Error
	if err != nil {
		return nil, translate(err, "order detail ids")
	}
	return ids, nil
}

// SumAmount total of every order amount, zero on an empty table
func (r *OrderRepository) SumAmount(ctx context.Context) (int64, error) {
	var total interface{}
	row := r.db.WithContext(ctx).Model(&domain.Order{}).Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return 0, translate(err, "sum order amount")
	}
	if b, ok := total.([]byte); ok {
		total = string(b)
	}
	return cast.ToInt64E(total)
}

func (r *OrderRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Where("status = ?", status).Count(&n).Error; err != nil {
		return 0, translate(err, "count orders by status")
	}
	return n, nil
}
