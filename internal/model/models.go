package model

// All lists every persisted record, in migration order.
func All() []interface{} {
	return []interface{}{
		&Privilege{}, &Role{}, &User{},
		&Category{}, &Product{}, &StockMovement{},
		&CartItem{},
		&OrderSequence{}, &Order{}, &OrderItem{},
		&Attendance{}, &Feedback{},
	}
}
