package handler

import (
	"go-tinapa-shop/internal/middleware"
	"go-tinapa-shop/internal/model"
	"go-tinapa-shop/internal/repository"
	"go-tinapa-shop/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AttendanceHandler struct {
	service service.AttendanceService
}

func NewAttendanceHandler(s service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: s}
}

// PunchRequest carries the employee id scanned at the kiosk. Empty means
// the caller punches for themselves.
type PunchRequest struct {
	EmployeeID string `json:"employee_id"`
}

// POST /api/v1/attendance/time-in
func (h *AttendanceHandler) TimeIn(c *fiber.Ctx) error {
	employeeID, err := h.employee(c)
	if err != nil {
		return badRequest(c, "Invalid employee_id")
	}
	record, err := h.service.RecordTimeIn(c.UserContext(), employeeID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Time-in recorded", "data": record})
}

// POST /api/v1/attendance/time-out
func (h *AttendanceHandler) TimeOut(c *fiber.Ctx) error {
	employeeID, err := h.employee(c)
	if err != nil {
		return badRequest(c, "Invalid employee_id")
	}
	record, err := h.service.RecordTimeOut(c.UserContext(), employeeID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Time-out recorded", "data": record})
}

// GetAttendance lists records. Without attendance:view_all only the caller's.
// GET /api/v1/attendance?employee_id=&from=&to=
func (h *AttendanceHandler) GetAttendance(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	filter := repository.AttendanceFilter{
		FromDate: c.Query("from"),
		ToDate:   c.Query("to"),
	}
	if middleware.HasPrivilege(c, model.PrivAttendanceViewAll) {
		if raw := c.Query("employee_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return badRequest(c, "Invalid employee_id")
			}
			filter.EmployeeID = &id
		}
	} else {
		filter.EmployeeID = &userID
	}

	records, err := h.service.ListAttendance(c.UserContext(), filter)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(records)
}

func (h *AttendanceHandler) employee(c *fiber.Ctx) (uuid.UUID, error) {
	var req PunchRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return uuid.Nil, err
		}
	}
	if req.EmployeeID == "" {
		return middleware.UserID(c), nil
	}
	return uuid.Parse(req.EmployeeID)
}
