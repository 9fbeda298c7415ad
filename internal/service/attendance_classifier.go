package service

import (
	"time"

	"go-tinapa-shop/internal/model"
)

type PunchKind int

const (
	PunchIn PunchKind = iota
	PunchOut
)

func (k PunchKind) String() string {
	if k == PunchIn {
		return "time_in"
	}
	return "time_out"
}

// ShiftTemplate is a fixed daily work window in local time.
type ShiftTemplate struct {
	Name        string
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
}

var (
	DayShift     = ShiftTemplate{Name: "day", StartHour: 8, EndHour: 18}
	EveningShift = ShiftTemplate{Name: "evening", StartHour: 18, EndHour: 22}
)

// Punches at or after this local hour belong to the evening shift.
const eveningCutoffHour = 12

// Classifier labels punches against the shift templates in one timezone.
type Classifier struct {
	loc *time.Location
}

func NewClassifier(loc *time.Location) *Classifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Classifier{loc: loc}
}

func (c *Classifier) Location() *time.Location {
	return c.loc
}

// ShiftFor picks the template a punch at t belongs to.
func (c *Classifier) ShiftFor(t time.Time) ShiftTemplate {
	if t.In(c.loc).Hour() >= eveningCutoffHour {
		return EveningShift
	}
	return DayShift
}

// Classify compares a punch with its shift boundary at millisecond
// precision. A time-out is judged against the shift of its paired time-in
// when one is given.
//
// Time-in: on the start is EXACT_TIME, later is UNDERTIME, earlier is OVERTIME.
// Time-out: on the end is EXACT_TIME, later is OVERTIME, earlier is UNDERTIME.
func (c *Classifier) Classify(t time.Time, kind PunchKind, pairedTimeIn *time.Time) model.AttendanceStatus {
	local := t.In(c.loc).Truncate(time.Millisecond)

	shift := c.ShiftFor(local)
	if kind == PunchOut && pairedTimeIn != nil {
		shift = c.ShiftFor(*pairedTimeIn)
	}

	if kind == PunchIn {
		start := c.on(local, shift.StartHour, shift.StartMinute)
		switch {
		case local.Equal(start):
			return model.AttendanceExactTime
		case local.After(start):
			return model.AttendanceUndertime
		default:
			return model.AttendanceOvertime
		}
	}

	end := c.on(local, shift.EndHour, shift.EndMinute)
	switch {
	case local.Equal(end):
		return model.AttendanceExactTime
	case local.After(end):
		return model.AttendanceOvertime
	default:
		return model.AttendanceUndertime
	}
}

// Day is the local calendar day of t, YYYY-MM-DD.
func (c *Classifier) Day(t time.Time) string {
	return t.In(c.loc).Format("2006-01-02")
}

func (c *Classifier) on(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, c.loc)
}
