package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-tinapa-shop/internal/event"
	"go-tinapa-shop/internal/model"
	"go-tinapa-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AttendanceService interface {
	RecordTimeIn(ctx context.Context, employeeID uuid.UUID) (*model.Attendance, error)
	RecordTimeOut(ctx context.Context, employeeID uuid.UUID) (*model.Attendance, error)
	ListAttendance(ctx context.Context, filter repository.AttendanceFilter) ([]model.Attendance, error)
}

// AttendanceEvent is published after every recorded punch.
type AttendanceEvent struct {
	AttendanceID uuid.UUID              `json:"attendance_id"`
	EmployeeID   uuid.UUID              `json:"employee_id"`
	Date         string                 `json:"date"`
	Punch        string                 `json:"punch"`
	At           time.Time              `json:"at"`
	Status       model.AttendanceStatus `json:"status"`
}

type attendanceService struct {
	attendanceRepo repository.AttendanceRepository
	userRepo       repository.UserRepository
	classifier     *Classifier
	publisher      event.Publisher
	notifier       Notifier
	now            func() time.Time
}

func NewAttendanceService(
	attendanceRepo repository.AttendanceRepository,
	userRepo repository.UserRepository,
	classifier *Classifier,
	publisher event.Publisher,
	notifier Notifier,
	now func() time.Time,
) AttendanceService {
	if now == nil {
		now = time.Now
	}
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
		classifier:     classifier,
		publisher:      orNopPublisher(publisher),
		notifier:       orNop(notifier),
		now:            now,
	}
}

// RecordTimeIn opens today's attendance record. An employee clocks in at
// most once per local calendar day.
func (s *attendanceService) RecordTimeIn(ctx context.Context, employeeID uuid.UUID) (*model.Attendance, error) {
	// 1. Only active employees punch
	if _, err := s.employee(ctx, employeeID); err != nil {
		return nil, err
	}

	// 2. One time-in per day
	now := s.now()
	date := s.classifier.Day(now)
	existing, err := s.attendanceRepo.FindByEmployeeAndDate(ctx, employeeID, date)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyRecorded
	}

	// 3. Classify and store
	record := &model.Attendance{
		EmployeeID: employeeID,
		Date:       date,
		TimeIn:     &now,
		Status:     s.classifier.Classify(now, PunchIn, nil),
	}
	record.CreatedBy = employeeID.String()
	record.UpdatedBy = employeeID.String()
	if err := s.attendanceRepo.Create(ctx, record); err != nil {
		// A concurrent time-in won the unique (employee, date) index.
		if _, findErr := s.attendanceRepo.FindByEmployeeAndDate(ctx, employeeID, date); findErr == nil {
			return nil, ErrAlreadyRecorded
		}
		return nil, err
	}

	s.announce(ctx, record, PunchIn, now)
	return record, nil
}

// RecordTimeOut closes today's record.
func (s *attendanceService) RecordTimeOut(ctx context.Context, employeeID uuid.UUID) (*model.Attendance, error) {
	if _, err := s.employee(ctx, employeeID); err != nil {
		return nil, err
	}

	now := s.now()
	record, err := s.attendanceRepo.FindByEmployeeAndDate(ctx, employeeID, s.classifier.Day(now))
	if err != nil {
		return nil, notFound(err, ErrNoTimeInFound)
	}
	if record.TimeIn == nil {
		return nil, ErrNoTimeInFound
	}
	if record.TimeOut != nil {
		return nil, ErrAlreadyRecorded
	}
	if !now.After(*record.TimeIn) {
		return nil, ErrTimeOutBeforeTimeIn
	}

	status := s.classifier.Classify(now, PunchOut, record.TimeIn)
	ok, err := s.attendanceRepo.SetTimeOut(ctx, record.ID, now, status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyRecorded
	}
	record.TimeOut = &now
	record.Status = status

	s.announce(ctx, record, PunchOut, now)
	return record, nil
}

func (s *attendanceService) ListAttendance(ctx context.Context, filter repository.AttendanceFilter) ([]model.Attendance, error) {
	for _, d := range []string{filter.FromDate, filter.ToDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, fieldError("AttendanceFilter.Date", "datetime", "2006-01-02")
		}
	}
	return s.attendanceRepo.List(ctx, filter)
}

func (s *attendanceService) employee(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrEmployeeNotFound)
	}
	if !user.IsActive || !user.IsEmployee() {
		return nil, ErrNotAnEmployee
	}
	return user, nil
}

func (s *attendanceService) announce(ctx context.Context, record *model.Attendance, kind PunchKind, at time.Time) {
	log.Info().Stringer("employee_id", record.EmployeeID).Str("date", record.Date).
		Stringer("punch", kind).Str("status", string(record.Status)).Msg("attendance recorded")

	publish(ctx, s.publisher, event.TopicAttendanceRecorded, record.EmployeeID.String(), AttendanceEvent{
		AttendanceID: record.ID,
		EmployeeID:   record.EmployeeID,
		Date:         record.Date,
		Punch:        kind.String(),
		At:           at,
		Status:       record.Status,
	})
	push(s.notifier, []string{record.EmployeeID.String()}, map[string]interface{}{
		"type":    "attendance_update",
		"action":  kind.String(),
		"date":    record.Date,
		"status":  record.Status,
		"message": fmt.Sprintf("%s recorded at %s (%s)", kind, at.In(s.classifier.Location()).Format("15:04:05"), record.Status),
	})
}
