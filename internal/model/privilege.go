package model

// Privilege represents a permission that can be assigned to roles and users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "order:update_status"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivUserView          = "user:view"
	PrivUserCreate        = "user:create"
	PrivProductCreate     = "product:create"
	PrivProductUpdate     = "product:update"
	PrivStockAdjust       = "stock:adjust"
	PrivCategoryManage    = "category:manage"
	PrivOrderViewAll      = "order:view_all"
	PrivOrderUpdateStatus = "order:update_status"
	PrivOrderDelete       = "order:delete"
	PrivAttendanceRecord  = "attendance:record"
	PrivAttendanceViewAll = "attendance:view_all"
	PrivDashboardView     = "dashboard:view"
	PrivFeedbackView      = "feedback:view"
)

// DefaultPrivileges is the full privilege catalogue seeded at startup
var DefaultPrivileges = []Privilege{
	// User management
	{Code: PrivUserView, Name: "View Users"},
	{Code: PrivUserCreate, Name: "Create Users"},
	// Catalogue
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivStockAdjust, Name: "Adjust Stock"},
	{Code: PrivCategoryManage, Name: "Manage Categories"},
	// Orders
	{Code: PrivOrderViewAll, Name: "View All Orders"},
	{Code: PrivOrderUpdateStatus, Name: "Update Order Status"},
	{Code: PrivOrderDelete, Name: "Delete Order"},
	// Attendance
	{Code: PrivAttendanceRecord, Name: "Record Attendance"},
	{Code: PrivAttendanceViewAll, Name: "View All Attendance"},
	// Reporting
	{Code: PrivDashboardView, Name: "View Dashboard"},
	{Code: PrivFeedbackView, Name: "View Feedback"},
}
