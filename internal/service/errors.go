package service

import (
	"errors"
	"fmt"
	"strings"

	"go-tinapa-shop/internal/model"
	"go-tinapa-shop/pkg/validator"

	"github.com/google/uuid"
)

// Not found
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrUserNotFound     = errors.New("user not found")
)

// Cart and order rules
var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptySelection    = errors.New("no cart items selected")
	ErrNotOwner          = errors.New("cart item does not belong to the caller")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
)

// Attendance sequencing
var (
	ErrAlreadyRecorded     = errors.New("attendance already recorded")
	ErrNoTimeInFound       = errors.New("no time-in found for today")
	ErrTimeOutBeforeTimeIn = errors.New("time-out must be after time-in")
	ErrNotAnEmployee       = errors.New("user is not an active employee")
)

var ErrValidation = errors.New("validation failed")

// InsufficientStockError names the product that could not cover the request.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, only %d left", e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Shortfall is how many units are missing.
func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

// InvalidTransitionError carries the rejected status change.
type InvalidTransitionError struct {
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// NotOwnerError lists the cart items the caller tried to use but does not own.
type NotOwnerError struct {
	CartItemIDs []uuid.UUID
}

func (e *NotOwnerError) Error() string {
	ids := make([]string, len(e.CartItemIDs))
	for i, id := range e.CartItemIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("cart items not owned by caller: %s", strings.Join(ids, ", "))
}

func (e *NotOwnerError) Is(target error) bool {
	return target == ErrNotOwner
}

// ValidationError wraps the failed struct validation rules.
type ValidationError struct {
	Fields []*validator.ErrorResponse
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	first := e.Fields[0]
	return fmt.Sprintf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func fieldError(field, tag, param string) error {
	return &ValidationError{Fields: []*validator.ErrorResponse{{FailedField: field, Tag: tag, Value: param}}}
}
