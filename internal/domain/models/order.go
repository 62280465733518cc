package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates customer order states.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
)

// Customer is a buyer with a credit line.
type Customer struct {
	ID          string          `bson:"_id" json:"id"`
	Name        string          `bson:"name" json:"name"`
	Email       string          `bson:"email" json:"email"`
	CreditLimit decimal.Decimal `bson:"credit_limit" json:"credit_limit"`
}

// OrderItem is one line of an order. Unit is either "bird" or "kg".
type OrderItem struct {
	ProductID   string          `bson:"product_id" json:"product_id" binding:"required"`
	ProductName string          `bson:"product_name" json:"product_name"`
	Quantity    int             `bson:"quantity" json:"quantity" binding:"required,min=1"`
	Unit        string          `bson:"unit" json:"unit" binding:"required,oneof=bird kg"`
	Price       decimal.Decimal `bson:"price" json:"price"`
}

// Order is a customer purchase.
type Order struct {
	ID              string          `bson:"_id" json:"id"`
	CustomerID      string          `bson:"customer_id" json:"customer_id"`
	Date            time.Time       `bson:"date" json:"date"`
	Items           []OrderItem     `bson:"items" json:"items"`
	Total           decimal.Decimal `bson:"total" json:"total"`
	Status          OrderStatus     `bson:"status" json:"status"`
	ShippingAddress string          `bson:"shipping_address" json:"shipping_address"`
	Notes           string          `bson:"notes,omitempty" json:"notes,omitempty"`
}
