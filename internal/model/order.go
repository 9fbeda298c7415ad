package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// IsValid reports whether s is one of the known statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition may leave s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

func (s OrderStatus) String() string {
	return string(s)
}

type Order struct {
	BaseModel
	OrderNumber string `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_number"`
	// OwnerID is nil for guest orders.
	OwnerID    *uuid.UUID      `gorm:"type:uuid;index" json:"owner_id"`
	Owner      *User           `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Status     OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_price"`
	OrderedAt  time.Time       `gorm:"not null;index" json:"ordered_at"`
	Note       string          `gorm:"type:text" json:"note,omitempty"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
}

// OrderItem is immutable once created. UnitPrice and ProductName are
// snapshots taken when the order was placed.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
}

// LineTotal is UnitPrice x Quantity.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderSequence holds the per-day counter used for order numbers.
type OrderSequence struct {
	Day     string `gorm:"type:varchar(8);primaryKey"`
	Counter int64  `gorm:"not null"`
}
