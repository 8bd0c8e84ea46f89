package domain

import "time"

const (
	OrderStatusCompleted = "completed"
	OrderStatusPending   = "pending"
)

type Order struct {
	ID           int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Amount       int64         `gorm:"not null" json:"amount"`
	Status       string        `gorm:"size:50;index" json:"status"`
	CustomerID   int64         `gorm:"index;not null" json:"customer_id"`
	Customer     *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	OrderDetails []OrderDetail `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_details,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderDetail a single product line of an order
type OrderDetail struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	ProductID int64     `gorm:"index;not null" json:"product_id"`
	OrderID   int64     `gorm:"index;not null" json:"order_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Order     *Order    `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OrderDetail) TableName() string {
	return "order_details"
}
