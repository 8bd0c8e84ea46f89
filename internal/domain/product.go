package domain

import (
	"time"

	"gorm.io/gorm"
)

// Category product category, stored as its string value
type Category string

const (
	CategoryFood        Category = "food"
	CategoryFruit       Category = "fruit"
	CategoryCereal      Category = "cereal"
	CategoryGrain       Category = "grain"
	CategoryVegetable   Category = "vegetable"
	CategoryContinental Category = "continental"
	CategoryOther       Category = "other"
)

var Categories = []Category{
	CategoryFood,
	CategoryFruit,
	CategoryCereal,
	CategoryGrain,
	CategoryVegetable,
	CategoryContinental,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Product unit_price is expressed in minor currency units
type Product struct {
	ID           int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string         `gorm:"size:255;not null;uniqueIndex" json:"name"`
	UnitPrice    int64          `gorm:"not null" json:"unit_price"`
	Quantity     int64          `gorm:"not null" json:"quantity"`
	Category     Category       `gorm:"size:32;not null" json:"category"`
	Sold         int64          `gorm:"not null;default:0" json:"sold"`
	OrderDetails []OrderDetail  `gorm:"foreignKey:ProductID" json:"order_details,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}
