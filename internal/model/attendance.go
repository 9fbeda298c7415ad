package model

import (
	"time"

	"github.com/google/uuid"
)

type AttendanceStatus string

// Early arrival and late departure are OVERTIME; late arrival and early
// departure are UNDERTIME.
const (
	AttendanceOvertime  AttendanceStatus = "OVERTIME"
	AttendanceUndertime AttendanceStatus = "UNDERTIME"
	AttendanceExactTime AttendanceStatus = "EXACT_TIME"
)

// Attendance is one employee's punches for one calendar day.
type Attendance struct {
	BaseModel
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_employee_date" json:"employee_id"`
	Employee   *User     `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	// Date is the local calendar day, YYYY-MM-DD.
	Date    string           `gorm:"type:varchar(10);not null;uniqueIndex:idx_attendance_employee_date;index" json:"date"`
	TimeIn  *time.Time       `json:"time_in"`
	TimeOut *time.Time       `json:"time_out"`
	Status  AttendanceStatus `gorm:"type:varchar(20)" json:"status"`
}
