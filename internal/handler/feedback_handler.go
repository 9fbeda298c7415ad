package handler

import (
	"go-tinapa-shop/internal/service"

	"github.com/gofiber/fiber/v2"
)

type FeedbackHandler struct {
	service service.FeedbackService
}

func NewFeedbackHandler(s service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: s}
}

// POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req service.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	feedback, err := h.service.Submit(c.UserContext(), userID, &req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Thank you for your feedback", "data": feedback})
}

// GET /api/v1/feedback
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	feedback, err := h.service.List(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(feedback)
}
