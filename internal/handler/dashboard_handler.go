package handler

import (
	"strconv"
	"time"

	"go-tinapa-shop/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
	loc     *time.Location
	now     func() time.Time
}

func NewDashboardHandler(s service.DashboardService, loc *time.Location) *DashboardHandler {
	return &DashboardHandler{service: s, loc: loc, now: time.Now}
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	daysStr := c.Query("days", "7")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.service.GetStockMovement(c.UserContext(), days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch stock movement"})
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}

	return c.JSON(stats)
}

// GetSales returns revenue per day for the sales report
// Query params: from, to (YYYY-MM-DD, default last 30 days)
func (h *DashboardHandler) GetSales(c *fiber.Ctx) error {
	from, to, err := dateRange(c, h.loc, h.now(), 30)
	if err != nil {
		return badRequest(c, "Invalid date, use YYYY-MM-DD")
	}

	summary, err := h.service.GetSalesSummary(c.UserContext(), from, to)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(summary)
}

// GetTopProducts returns best sellers by quantity
// Query params: from, to, limit (default 10)
func (h *DashboardHandler) GetTopProducts(c *fiber.Ctx) error {
	from, to, err := dateRange(c, h.loc, h.now(), 30)
	if err != nil {
		return badRequest(c, "Invalid date, use YYYY-MM-DD")
	}

	products, err := h.service.GetTopProducts(c.UserContext(), from, to, c.QueryInt("limit", 10))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(products)
}
