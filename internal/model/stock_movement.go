package model

import "github.com/google/uuid"

type MovementType string

const (
	MovementIn      MovementType = "IN"
	MovementOut     MovementType = "OUT"
	MovementSale    MovementType = "SALE"
	MovementRestock MovementType = "RESTOCK"
)

// Inbound reports whether the movement adds units to stock.
func (t MovementType) Inbound() bool {
	return t == MovementIn || t == MovementRestock
}

// StockMovement is the audit log of every stock change
type StockMovement struct {
	BaseModel
	ProductID uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product     `json:"product,omitempty"`
	Type      MovementType `gorm:"type:varchar(10);not null" json:"type"`
	Quantity  int          `gorm:"not null" json:"quantity"`
	OrderID   *uuid.UUID   `gorm:"type:uuid;index" json:"order_id,omitempty"`
	Note      string       `json:"note"`
}
