package repository

import (
	"context"
	"time"

	"go-tinapa-shop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceFilter struct {
	EmployeeID *uuid.UUID
	FromDate   string // YYYY-MM-DD, inclusive
	ToDate     string // YYYY-MM-DD, inclusive
}

type AttendanceRepository interface {
	FindByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date string) (*model.Attendance, error)
	Create(ctx context.Context, attendance *model.Attendance) error
	SetTimeOut(ctx context.Context, id uuid.UUID, timeOut time.Time, status model.AttendanceStatus) (bool, error)
	List(ctx context.Context, filter AttendanceFilter) ([]model.Attendance, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db}
}

func (r *attendanceRepo) FindByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date string) (*model.Attendance, error) {
	var attendance model.Attendance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND date = ?", employeeID, date).
		First(&attendance).Error
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

func (r *attendanceRepo) Create(ctx context.Context, attendance *model.Attendance) error {
	return r.db.WithContext(ctx).Omit("Employee").Create(attendance).Error
}

// SetTimeOut records the time-out unless one is already set.
func (r *attendanceRepo) SetTimeOut(ctx context.Context, id uuid.UUID, timeOut time.Time, status model.AttendanceStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Attendance{}).
		Where("id = ? AND time_out IS NULL", id).
		Updates(map[string]interface{}{
			"time_out": timeOut,
			"status":   status,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *attendanceRepo) List(ctx context.Context, filter AttendanceFilter) ([]model.Attendance, error) {
	q := r.db.WithContext(ctx).Preload("Employee")
	if filter.EmployeeID != nil {
		q = q.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.FromDate != "" {
		q = q.Where("date >= ?", filter.FromDate)
	}
	if filter.ToDate != "" {
		q = q.Where("date <= ?", filter.ToDate)
	}

	records := []model.Attendance{}
	err := q.Order("date DESC, time_in ASC").Find(&records).Error
	return records, err
}
