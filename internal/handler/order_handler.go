package handler

import (
	"time"

	"go-tinapa-shop/internal/middleware"
	"go-tinapa-shop/internal/model"
	"go-tinapa-shop/internal/repository"
	"go-tinapa-shop/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type OrderHandler struct {
	service service.OrderService
	loc     *time.Location
}

func NewOrderHandler(s service.OrderService, loc *time.Location) *OrderHandler {
	return &OrderHandler{service: s, loc: loc}
}

// CreateOrder places an order from selected cart items
// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req service.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	order, err := h.service.CreateOrder(c.UserContext(), userID, &req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Order placed", "data": order})
}

// GetOrders lists orders. Without order:view_all only the caller's own.
// GET /api/v1/orders?status=&from=&to=&owner_id=&limit=&offset=
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	filter := repository.OrderFilter{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	if s := c.Query("status"); s != "" {
		status := model.OrderStatus(s)
		filter.Status = &status
	}
	if from, ok, err := queryDate(c, "from", h.loc); err != nil {
		return badRequest(c, "Invalid from date, use YYYY-MM-DD")
	} else if ok {
		filter.From = &from
	}
	if to, ok, err := queryDate(c, "to", h.loc); err != nil {
		return badRequest(c, "Invalid to date, use YYYY-MM-DD")
	} else if ok {
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}

	if middleware.HasPrivilege(c, model.PrivOrderViewAll) {
		if raw := c.Query("owner_id"); raw != "" {
			ownerID, err := uuid.Parse(raw)
			if err != nil {
				return badRequest(c, "Invalid owner_id")
			}
			filter.OwnerID = &ownerID
		}
	} else {
		filter.OwnerID = &userID
	}

	orders, total, err := h.service.ListOrders(c.UserContext(), filter)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"data": orders, "total": total})
}

// GetOrder
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	orderID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid order ID")
	}

	order, err := h.visibleOrder(c, orderID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(order)
}

// UpdateStatus moves an order through its lifecycle. Customers without
// order:update_status may only cancel their own order.
// PATCH /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	orderID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid order ID")
	}

	var req service.UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if !middleware.HasPrivilege(c, model.PrivOrderUpdateStatus) {
		if req.Status != model.OrderCancelled {
			return c.Status(403).JSON(fiber.Map{
				"error": "Forbidden: requires '" + model.PrivOrderUpdateStatus + "' privilege",
				"code":  "FORBIDDEN",
			})
		}
		if _, err := h.visibleOrder(c, orderID); err != nil {
			return errorResponse(c, err)
		}
	}

	order, err := h.service.UpdateStatus(c.UserContext(), orderID, req.Status, getUserID(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "Order status updated", "data": order})
}

// DeleteOrder
// DELETE /api/v1/orders/:id
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	orderID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid order ID")
	}

	if err := h.service.DeleteOrder(c.UserContext(), orderID, getUserID(c)); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "Order deleted"})
}

// visibleOrder hides other people's orders from callers without order:view_all.
func (h *OrderHandler) visibleOrder(c *fiber.Ctx, orderID uuid.UUID) (*model.Order, error) {
	order, err := h.service.GetOrder(c.UserContext(), orderID)
	if err != nil {
		return nil, err
	}
	if middleware.HasPrivilege(c, model.PrivOrderViewAll) {
		return order, nil
	}
	if order.OwnerID == nil || *order.OwnerID != middleware.UserID(c) {
		return nil, service.ErrOrderNotFound
	}
	return order, nil
}
