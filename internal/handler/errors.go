package handler

import (
	"errors"

	"go-tinapa-shop/internal/service"
	"go-tinapa-shop/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type errorKind struct {
	err    error
	status int
	code   string
}

var errorKinds = []errorKind{
	{service.ErrProductNotFound, 404, "PRODUCT_NOT_FOUND"},
	{service.ErrCategoryNotFound, 404, "CATEGORY_NOT_FOUND"},
	{service.ErrCartItemNotFound, 404, "CART_ITEM_NOT_FOUND"},
	{service.ErrOrderNotFound, 404, "ORDER_NOT_FOUND"},
	{service.ErrEmployeeNotFound, 404, "EMPLOYEE_NOT_FOUND"},
	{service.ErrUserNotFound, 404, "USER_NOT_FOUND"},
	{service.ErrRoleNotFound, 404, "ROLE_NOT_FOUND"},
	{service.ErrEmptySelection, 400, "EMPTY_SELECTION"},
	{service.ErrInvalidQuantity, 400, "INVALID_QUANTITY"},
	{service.ErrInvalidStatus, 400, "INVALID_STATUS"},
	{service.ErrWrongPassword, 400, "WRONG_PASSWORD"},
	{service.ErrAlreadyRecorded, 409, "ALREADY_RECORDED"},
	{service.ErrEmailExists, 409, "EMAIL_EXISTS"},
	{gorm.ErrDuplicatedKey, 409, "DUPLICATE"},
	{service.ErrNoTimeInFound, 422, "NO_TIME_IN"},
	{service.ErrTimeOutBeforeTimeIn, 422, "TIME_OUT_BEFORE_TIME_IN"},
	{service.ErrNotAnEmployee, 403, "NOT_AN_EMPLOYEE"},
	{service.ErrUserInactive, 403, "USER_INACTIVE"},
	{service.ErrInvalidCredentials, 401, "INVALID_CREDENTIALS"},
	{jwt.ErrInvalidToken, 401, "INVALID_TOKEN"},
	{jwt.ErrMissingToken, 401, "INVALID_TOKEN"},
}

// errorResponse writes err as {"error", "code", ...details} with the status
// of its kind. Unknown errors are logged and hidden behind a 500.
func errorResponse(c *fiber.Ctx, err error) error {
	var (
		validationErr *service.ValidationError
		stockErr      *service.InsufficientStockError
		transitionErr *service.InvalidTransitionError
		ownerErr      *service.NotOwnerError
	)
	switch {
	case errors.As(err, &validationErr):
		return c.Status(400).JSON(fiber.Map{
			"error":   validationErr.Error(),
			"code":    "VALIDATION_FAILED",
			"details": validationErr.Fields,
		})
	case errors.As(err, &stockErr):
		return c.Status(409).JSON(fiber.Map{
			"error":        stockErr.Error(),
			"code":         "INSUFFICIENT_STOCK",
			"product_id":   stockErr.ProductID,
			"product_name": stockErr.ProductName,
			"requested":    stockErr.Requested,
			"available":    stockErr.Available,
		})
	case errors.As(err, &transitionErr):
		return c.Status(409).JSON(fiber.Map{
			"error": transitionErr.Error(),
			"code":  "INVALID_TRANSITION",
			"from":  transitionErr.From,
			"to":    transitionErr.To,
		})
	case errors.As(err, &ownerErr):
		return c.Status(403).JSON(fiber.Map{
			"error":         ownerErr.Error(),
			"code":          "NOT_OWNER",
			"cart_item_ids": ownerErr.CartItemIDs,
		})
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return c.Status(k.status).JSON(fiber.Map{"error": err.Error(), "code": k.code})
		}
	}

	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error", "code": "INTERNAL"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(400).JSON(fiber.Map{"error": msg, "code": "BAD_REQUEST"})
}
