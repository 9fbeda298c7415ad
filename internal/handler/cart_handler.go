package handler

import (
	"go-tinapa-shop/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	service service.CartService
}

func NewCartHandler(s service.CartService) *CartHandler {
	return &CartHandler{service: s}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	cart, err := h.service.ListItems(c.UserContext(), userID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(cart)
}

// POST /api/v1/cart
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req service.AddCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	item, err := h.service.AddItem(c.UserContext(), userID, &req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Added to cart", "data": item})
}

// PUT /api/v1/cart/:id
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	itemID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid cart item ID")
	}
	var req service.UpdateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	item, err := h.service.UpdateQuantity(c.UserContext(), userID, itemID, req.Quantity)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart updated", "data": item})
}

// DELETE /api/v1/cart/:id
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	itemID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid cart item ID")
	}

	if err := h.service.RemoveItem(c.UserContext(), userID, itemID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Removed from cart"})
}
