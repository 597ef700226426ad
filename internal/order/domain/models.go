// Package domain holds read models for the payment and order subsystem.
// The settlement engine reads these tables to attribute commissions; it
// never mutates payment or order state.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusSucceeded TransactionStatus = "SUCCEEDED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusRefunded  TransactionStatus = "REFUNDED"
)

type PaymentTransaction struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrderID   snowflake.ID      `gorm:"not null;index" json:"order_id"`
	Status    TransactionStatus `gorm:"type:text;not null" json:"status"`
	Amount    decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency  string            `gorm:"type:text;not null" json:"currency"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (PaymentTransaction) TableName() string { return "payment_transactions" }

type Order struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrderNumber string          `gorm:"type:text;not null" json:"order_number"`
	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Shipping    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"shipping"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrderID   snowflake.ID    `gorm:"not null;index" json:"order_id"`
	ProductID snowflake.ID    `gorm:"not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Total     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
}

// TableName sets the database table name.
func (OrderItem) TableName() string { return "order_items" }

type Product struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	Name       string        `gorm:"type:text;not null" json:"name"`
	StoreID    *snowflake.ID `gorm:"index" json:"store_id,omitempty"`
	CategoryID *snowflake.ID `gorm:"index" json:"category_id,omitempty"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

type Store struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	Name    string       `gorm:"type:text;not null" json:"name"`
	OwnerID snowflake.ID `gorm:"not null;index" json:"owner_id"`
}

// TableName sets the database table name.
func (Store) TableName() string { return "stores" }

type Category struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Name string       `gorm:"type:text;not null" json:"name"`
	Slug string       `gorm:"type:text;not null" json:"slug"`
}

// TableName sets the database table name.
func (Category) TableName() string { return "categories" }

// TransactionLine joins an order item with its product attribution. Store
// is nil when the product has no owning store; such lines cannot earn a
// commission and are skipped by the recorder.
type TransactionLine struct {
	Item     OrderItem
	Product  Product
	Store    *Store
	Category *Category
}

// TransactionGraph is everything the commission recorder needs to process
// one payment: the transaction, its order, and each line's attribution.
type TransactionGraph struct {
	Transaction PaymentTransaction
	Order       Order
	Lines       []TransactionLine
}
