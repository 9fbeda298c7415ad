package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one product line in a user's cart. A user holds at most one
// line per product; adding the same product again increments Quantity.
type CartItem struct {
	BaseModel
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_owner_product" json:"owner_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_owner_product" json:"product_id"`
	Product   Product   `json:"product"`
	Quantity  int       `gorm:"not null" json:"quantity"`
}

// Subtotal is the current (not frozen) price of the line.
func (c *CartItem) Subtotal() decimal.Decimal {
	return c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
