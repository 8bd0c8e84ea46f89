package repository

import (
	"context"

	"github.com/talkincode/storefront/internal/domain"
	"gorm.io/gorm"
)

type ProductRepository struct {
	*Resource[domain.Product]
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	res := NewResource[domain.Product](db, Text("name"), Numeric("unit_price"), Numeric("quantity"))
	res.Relation("order_details", func(ctx context.Context, db *gorm.DB, p *domain.Product) error {
		p.OrderDetails = []domain.OrderDetail{}
		return db.Where("product_id = ?", p.ID).Order("id ASC").Find(&p.OrderDetails).Error
	})
	return &ProductRepository{Resource: res, db: db}
}

// Missing returns the ids that match no live product, in input order without repeats
func (r *ProductRepository) Missing(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error; err != nil {
		return nil, translate(err, "check products")
	}
	seen := make(map[int64]bool, len(found))
	for _, id := range found {
		seen[id] = true
	}
	var missing []int64
	for _, id := range ids {
		if !seen[id] {
			missing = append(missing, id)
			seen[id] = true
		}
	}
	return missing, nil
}
