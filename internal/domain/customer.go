package domain

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Customer struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Firstname   string         `gorm:"size:255;not null" json:"firstname"`
	Lastname    string         `gorm:"size:255;not null" json:"lastname"`
	Fullname    string         `gorm:"-" json:"fullname"`
	Phonenumber string         `gorm:"size:13;not null" json:"phonenumber"`
	Email       string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Address     string         `gorm:"size:1000" json:"address"`
	Orders      []Order        `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"orders,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Customer) TableName() string {
	return "customers"
}

func (c *Customer) AfterFind(*gorm.DB) error {
	c.fillFullname()
	return nil
}

func (c *Customer) AfterCreate(*gorm.DB) error {
	c.fillFullname()
	return nil
}

func (c *Customer) fillFullname() {
	c.Fullname = strings.TrimSpace(c.Firstname + " " + c.Lastname)
}

// CustomerProduct pivot between customers and products, no flow writes it yet
type CustomerProduct struct {
	CustomerID int64 `gorm:"primaryKey"`
	ProductID  int64 `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (CustomerProduct) TableName() string {
	return "customer_product"
}
