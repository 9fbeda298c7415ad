package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	// Stock is never negative. It is changed only by stock adjustments and by
	// order creation (or the optional restock on cancel).
	Stock    int    `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	Unit     string `gorm:"type:varchar(20)" json:"unit"`
	ImageURL string `gorm:"type:varchar(512)" json:"image_url,omitempty"`

	Categories []Category `gorm:"many2many:product_categories;" json:"categories,omitempty"`
}

type Category struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}
