package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // ADMIN, EMPLOYEE, CUSTOMER
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleAdmin    = "ADMIN"
	RoleEmployee = "EMPLOYEE"
	RoleCustomer = "CUSTOMER"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Full back-office access",
	},
	{
		Code:        RoleEmployee,
		Name:        "Employee",
		Description: "Order handling, stock adjustments and attendance",
	},
	{
		Code:        RoleCustomer,
		Name:        "Customer",
		Description: "Storefront access: cart, own orders and feedback",
	},
}

// RolePrivilegeCodes lists the privileges each seeded role receives.
// ADMIN is absent because it always receives every privilege.
var RolePrivilegeCodes = map[string][]string{
	RoleEmployee: {
		PrivOrderViewAll,
		PrivOrderUpdateStatus,
		PrivStockAdjust,
		PrivAttendanceRecord,
		PrivFeedbackView,
	},
	RoleCustomer: {},
}
