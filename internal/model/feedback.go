package model

import "github.com/google/uuid"

type Feedback struct {
	BaseModel
	UserID  *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User    *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderID *uuid.UUID `gorm:"type:uuid;index" json:"order_id,omitempty"`
	Rating  int        `gorm:"not null" json:"rating"`
	Comment string     `gorm:"type:text" json:"comment"`
}
