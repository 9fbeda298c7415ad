package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-tinapa-shop/internal/event"
	"go-tinapa-shop/internal/model"
	"go-tinapa-shop/internal/ordernumber"
	"go-tinapa-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// allowedTransitions is the order state machine. DELIVERED and CANCELLED
// are terminal.
var allowedTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderPending:   {model.OrderConfirmed, model.OrderCancelled},
	model.OrderConfirmed: {model.OrderDelivered},
	model.OrderDelivered: {},
	model.OrderCancelled: {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to model.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

const (
	defaultOrderPageSize = 50
	maxOrderPageSize     = 200
)

type OrderService interface {
	CreateOrder(ctx context.Context, ownerID uuid.UUID, req *CreateOrderRequest) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, actorID string) (*model.Order, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID, actorID string) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error)
}

type CreateOrderRequest struct {
	CartItemIDs []uuid.UUID `json:"cart_item_ids"`
	Note        string      `json:"note" validate:"max=500"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" validate:"required,order_status"`
}

type OrderConfig struct {
	// RestockOnCancel returns stock taken by an order when it is cancelled,
	// or deleted while still PENDING or CONFIRMED.
	RestockOnCancel bool
	// Location decides the calendar day used in order numbers.
	Location *time.Location
	Now      func() time.Time
}

// OrderEvent is the payload of every order topic.
type OrderEvent struct {
	OrderID        uuid.UUID         `json:"order_id"`
	OrderNumber    string            `json:"order_number"`
	OwnerID        *uuid.UUID        `json:"owner_id"`
	Status         model.OrderStatus `json:"status"`
	PreviousStatus model.OrderStatus `json:"previous_status,omitempty"`
	TotalPrice     decimal.Decimal   `json:"total_price"`
	OccurredAt     time.Time         `json:"occurred_at"`
}

type orderService struct {
	db        *gorm.DB
	orders    repository.OrderRepository
	carts     repository.CartRepository
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	numbers   ordernumber.Generator
	publisher event.Publisher
	notifier  Notifier

	restockOnCancel bool
	loc             *time.Location
	now             func() time.Time
}

func NewOrderService(
	db *gorm.DB,
	orders repository.OrderRepository,
	carts repository.CartRepository,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	numbers ordernumber.Generator,
	publisher event.Publisher,
	notifier Notifier,
	cfg OrderConfig,
) OrderService {
	s := &orderService{
		db:              db,
		orders:          orders,
		carts:           carts,
		products:        products,
		movements:       movements,
		numbers:         numbers,
		publisher:       orNopPublisher(publisher),
		notifier:        orNop(notifier),
		restockOnCancel: cfg.RestockOnCancel,
		loc:             cfg.Location,
		now:             cfg.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CreateOrder turns the selected cart lines of ownerID into a PENDING order.
// Stock checks, stock decrements, the order insert and the removal of the
// consumed cart lines commit together or not at all.
func (s *orderService) CreateOrder(ctx context.Context, ownerID uuid.UUID, req *CreateOrderRequest) (*model.Order, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	ids := uniqueIDs(req.CartItemIDs)
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}

	actor := ownerID.String()
	var order *model.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Load the selected cart lines and check ownership
		items, err := s.carts.GetLineItems(tx, ids)
		if err != nil {
			return fmt.Errorf("load cart items: %w", err)
		}
		if len(items) != len(ids) {
			return ErrCartItemNotFound
		}
		var foreign []uuid.UUID
		for _, item := range items {
			if item.OwnerID != ownerID {
				foreign = append(foreign, item.ID)
			}
		}
		if len(foreign) > 0 {
			return &NotOwnerError{CartItemIDs: foreign}
		}

		// 2. Lock every product involved and verify stock before touching any
		requested := make(map[uuid.UUID]int)
		var productIDs []uuid.UUID
		for _, item := range items {
			if _, ok := requested[item.ProductID]; !ok {
				productIDs = append(productIDs, item.ProductID)
			}
			requested[item.ProductID] += item.Quantity
		}
		locked, err := s.products.LockByIDs(tx, productIDs)
		if err != nil {
			return fmt.Errorf("lock products: %w", err)
		}
		products := make(map[uuid.UUID]model.Product, len(locked))
		for _, p := range locked {
			products[p.ID] = p
		}
		for _, id := range productIDs {
			p, ok := products[id]
			if !ok {
				return fmt.Errorf("%w: %s", ErrProductNotFound, id)
			}
			if p.Stock < requested[id] {
				return &InsufficientStockError{ProductID: p.ID, ProductName: p.Name, Requested: requested[id], Available: p.Stock}
			}
		}

		// 3. Number the order
		now := s.now()
		number, err := s.numbers.Next(ctx, tx, now.In(s.loc))
		if err != nil {
			return err
		}
		order = &model.Order{
			OrderNumber: number,
			OwnerID:     &ownerID,
			Status:      model.OrderPending,
			OrderedAt:   now,
			Note:        req.Note,
		}
		order.CreatedBy = actor
		order.UpdatedBy = actor

		// 4. Decrement stock and snapshot prices
		total := decimal.Zero
		for _, item := range items {
			p := products[item.ProductID]
			ok, err := s.products.DecrementStock(tx, p.ID, item.Quantity, actor)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if !ok {
				return &InsufficientStockError{ProductID: p.ID, ProductName: p.Name, Requested: item.Quantity, Available: p.Stock}
			}
			line := model.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    item.Quantity,
				UnitPrice:   p.Price,
			}
			total = total.Add(line.LineTotal())
			order.Items = append(order.Items, line)
		}
		order.TotalPrice = total

		if err := s.orders.Create(tx, order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		// 5. Audit trail
		for _, line := range order.Items {
			movement := &model.StockMovement{
				ProductID: line.ProductID,
				Type:      model.MovementSale,
				Quantity:  line.Quantity,
				OrderID:   &order.ID,
				Note:      "order " + order.OrderNumber,
			}
			movement.CreatedBy = actor
			if err := s.movements.Create(tx, movement); err != nil {
				return fmt.Errorf("record stock movement: %w", err)
			}
		}

		// 6. Consume the selected cart lines only
		if err := s.carts.RemoveLineItems(tx, ids); err != nil {
			return notFound(err, ErrCartItemNotFound)
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Stringer("owner_id", ownerID).Int("items", len(ids)).Msg("create order rejected")
		return nil, err
	}

	log.Info().Stringer("order_id", order.ID).Str("order_number", order.OrderNumber).
		Stringer("owner_id", ownerID).Str("total", order.TotalPrice.StringFixed(2)).Msg("order created")

	publish(ctx, s.publisher, event.TopicOrderCreated, order.OrderNumber, s.orderEvent(order, ""))
	s.notifyStock(order.Items, "order_created")
	return order, nil
}

// UpdateStatus applies one state machine step. Requesting the status the
// order already has is a no-op that returns the order unchanged.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, actorID string) (*model.Order, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var (
		order    *model.Order
		previous model.OrderStatus
		changed  bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.orders.LockByID(tx, orderID)
		if err != nil {
			return notFound(err, ErrOrderNotFound)
		}
		order = current
		previous = current.Status

		if current.Status == status {
			return nil
		}
		if !CanTransition(current.Status, status) {
			return &InvalidTransitionError{From: current.Status, To: status}
		}

		now := s.now()
		ok, err := s.orders.UpdateStatus(tx, orderID, current.Status, status, actorID, now)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if !ok {
			// Someone else moved the order first; judge against what is there now.
			latest, err := s.orders.LockByID(tx, orderID)
			if err != nil {
				return notFound(err, ErrOrderNotFound)
			}
			order = latest
			if latest.Status == status {
				return nil
			}
			return &InvalidTransitionError{From: latest.Status, To: status}
		}

		if status == model.OrderCancelled && s.restockOnCancel {
			if err := s.restock(tx, current, actorID); err != nil {
				return err
			}
		}

		current.Status = status
		current.UpdatedAt = now
		current.UpdatedBy = actorID
		changed = true
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Stringer("status", status).Msg("order status change rejected")
		return nil, err
	}
	if !changed {
		log.Info().Stringer("order_id", orderID).Stringer("status", status).Msg("order already in requested status")
		return order, nil
	}

	log.Info().Stringer("order_id", orderID).Stringer("from", previous).Stringer("to", status).Msg("order status updated")
	publish(ctx, s.publisher, event.TopicOrderStatusChanged, order.OrderNumber, s.orderEvent(order, previous))
	if order.OwnerID != nil {
		push(s.notifier, []string{order.OwnerID.String()}, map[string]interface{}{
			"type":         "order_update",
			"action":       "status_changed",
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
			"status":       order.Status,
			"message":      fmt.Sprintf("Order %s is now %s", order.OrderNumber, order.Status),
		})
	}
	return order, nil
}

// DeleteOrder removes the order and its items permanently.
func (s *orderService) DeleteOrder(ctx context.Context, orderID uuid.UUID, actorID string) error {
	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.orders.LockByID(tx, orderID)
		if err != nil {
			return notFound(err, ErrOrderNotFound)
		}
		order = current

		if s.restockOnCancel && (current.Status == model.OrderPending || current.Status == model.OrderConfirmed) {
			if err := s.restock(tx, current, actorID); err != nil {
				return err
			}
		}
		return s.orders.Delete(tx, orderID)
	})
	if err != nil {
		return err
	}

	log.Info().Stringer("order_id", orderID).Str("order_number", order.OrderNumber).Str("actor", actorID).Msg("order deleted")
	publish(ctx, s.publisher, event.TopicOrderDeleted, order.OrderNumber, s.orderEvent(order, order.Status))
	return nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidStatus, *filter.Status)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultOrderPageSize
	}
	if filter.Limit > maxOrderPageSize {
		filter.Limit = maxOrderPageSize
	}
	return s.orders.List(ctx, filter)
}

// restock puts every line of order back into stock and logs it.
func (s *orderService) restock(tx *gorm.DB, order *model.Order, actorID string) error {
	for _, item := range order.Items {
		if err := s.products.IncrementStock(tx, item.ProductID, item.Quantity, actorID); err != nil {
			return fmt.Errorf("restock product %s: %w", item.ProductID, err)
		}
		movement := &model.StockMovement{
			ProductID: item.ProductID,
			Type:      model.MovementRestock,
			Quantity:  item.Quantity,
			OrderID:   &order.ID,
			Note:      "restock from order " + order.OrderNumber,
		}
		movement.CreatedBy = actorID
		if err := s.movements.Create(tx, movement); err != nil {
			return fmt.Errorf("record stock movement: %w", err)
		}
	}
	return nil
}

func (s *orderService) orderEvent(order *model.Order, previous model.OrderStatus) OrderEvent {
	return OrderEvent{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		OwnerID:        order.OwnerID,
		Status:         order.Status,
		PreviousStatus: previous,
		TotalPrice:     order.TotalPrice,
		OccurredAt:     s.now(),
	}
}

func (s *orderService) notifyStock(items []model.OrderItem, action string) {
	lines := make([]map[string]interface{}, len(items))
	for i, item := range items {
		lines[i] = map[string]interface{}{
			"product_id": item.ProductID,
			"quantity":   item.Quantity,
		}
	}
	push(s.notifier, nil, map[string]interface{}{
		"type":     "stock_update",
		"action":   action,
		"products": lines,
	})
}

// notFound maps gorm's record-not-found to the given domain error.
func notFound(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
