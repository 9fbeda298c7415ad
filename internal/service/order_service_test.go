package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-tinapa-shop/internal/event"
	"go-tinapa-shop/internal/model"
	"go-tinapa-shop/internal/ordernumber"
	"go-tinapa-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	db        *gorm.DB
	svc       OrderService
	publisher *recordingPublisher
	notifier  *recordingNotifier
	now       time.Time
}

func newOrderFixture(t *testing.T, restockOnCancel bool) *orderFixture {
	t.Helper()
	db := newTestDB(t)
	f := &orderFixture{
		db:        db,
		publisher: &recordingPublisher{},
		notifier:  &recordingNotifier{},
		now:       time.Date(2026, 10, 15, 2, 30, 0, 0, time.UTC),
	}
	f.svc = NewOrderService(
		db,
		repository.NewOrderRepo(db),
		repository.NewCartRepo(db),
		repository.NewProductRepo(db),
		repository.NewStockMovementRepo(db),
		ordernumber.NewSequenceGenerator(),
		f.publisher,
		f.notifier,
		OrderConfig{RestockOnCancel: restockOnCancel, Location: manila, Now: fixedClock(f.now)},
	)
	return f
}

func (f *orderFixture) placeOrder(t *testing.T, owner uuid.UUID, lines ...model.CartItem) *model.Order {
	t.Helper()
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ID
	}
	order, err := f.svc.CreateOrder(context.Background(), owner, &CreateOrderRequest{CartItemIDs: ids})
	require.NoError(t, err)
	return order
}

func TestCreateOrder_TotalsStockAndCart(t *testing.T) {
	f := newOrderFixture(t, false)
	owner := uuid.New()
	tinapa := seedProduct(t, f.db, "Tinapang Bangus", "50.00", 10)
	galunggong := seedProduct(t, f.db, "Tinapang Galunggong", "100.00", 5)
	line1 := seedCartItem(t, f.db, owner, tinapa.ID, 2)
	line2 := seedCartItem(t, f.db, owner, galunggong.ID, 1)

	order := f.placeOrder(t, owner, line1, line2)

	assert.True(t, decimal.NewFromInt(200).Equal(order.TotalPrice), "total %s", order.TotalPrice)
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, "PPT-20261015-000001", order.OrderNumber)
	assert.Equal(t, f.now, order.OrderedAt)
	require.Len(t, order.Items, 2)

	assert.Equal(t, 8, stockOf(t, f.db, tinapa.ID))
	assert.Equal(t, 4, stockOf(t, f.db, galunggong.ID))

	var cartLeft int64
	require.NoError(t, f.db.Model(&model.CartItem{}).Where("owner_id = ?", owner).Count(&cartLeft).Error)
	assert.Zero(t, cartLeft)

	var movements []model.StockMovement
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Find(&movements).Error)
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, model.MovementSale, m.Type)
	}

	stored, err := f.svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(stored.TotalPrice))
	assert.Len(t, stored.Items, 2)

	assert.Equal(t, []string{event.TopicOrderCreated}, f.publisher.topics())
	assert.NotEmpty(t, f.notifier.sent)
}

func TestCreateOrder_OrderNumbersIncreasePerDay(t *testing.T) {
	f := newOrderFixture(t, false)
	owner := uuid.New()
	p := seedProduct(t, f.db, "Tinapa", "50", 10)

	first := f.placeOrder(t, owner, seedCartItem(t, f.db, owner, p.ID, 1))
	second := f.placeOrder(t, owner, seedCartItem(t, f.db, owner, p.ID, 1))

	assert.Equal(t, "PPT-20261015-000001", first.OrderNumber)
	assert.Equal(t, "PPT-20261015-000002", second.OrderNumber)
}

func TestCreateOrder_InsufficientStockChangesNothing(t *testing.T) {
	f := newOrderFixture(t, false)
	owner := uuid.New()
	plenty := seedProduct(t, f.db, "Bangus", "50", 5)
	scarce := seedProduct(t, f.db, "Tamban", "30", 1)
	line1 := seedCartItem(t, f.db, owner, plenty.ID, 2)
	line2 := seedCartItem(t, f.db, owner, scarce.ID, 3)

	_, err := f.svc.CreateOrder(context.Background(), owner, &CreateOrderRequest{CartItemIDs: []uuid.UUID{line1.ID, line2.ID}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, scarce.ID, stockErr.ProductID)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 2, stockErr.Shortfall())

	assert.Equal(t, 5, stockOf(t, f.db, plenty.ID))
	assert.Equal(t, 1, stockOf(t, f.db, scarce.ID))

	var orders, cart, sequences int64
	require.NoError(t, f.db.Model(&model.Order{}).Count(&orders).Error)
	require.NoError(t, f.db.Model(&model.CartItem{}).Count(&cart).Error)
	require.NoError(t, f.db.Model(&model.OrderSequence{}).Count(&sequences).Error)
	assert.Zero(t, orders)
	assert.Equal(t, int64(2), cart)
	assert.Zero(t, sequences)
	assert.Empty(t, f.publisher.topics())
}

// The test database has a single connection, so the two checkouts commit one
// after the other. This covers the stock re-check of the later checkout. The
// conditional decrement itself is covered in the repository tests.
func TestCreateOrder_RacingCheckoutsCommitSerially(t *testing.T) {
	f := newOrderFixture(t, false)
	p := seedProduct(t, f.db, "Tinapa", "50", 3)
	alice, bob := uuid.New(), uuid.New()
	lines := map[uuid.UUID]model.CartItem{
		alice: seedCartItem(t, f.db, alice, p.ID, 2),
		bob:   seedCartItem(t, f.db, bob, p.ID, 2),
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for owner, line := range lines {
		wg.Add(1)
		go func(owner uuid.UUID, line model.CartItem) {
			defer wg.Done()
			_, err := f.svc.CreateOrder(context.Background(), owner, &CreateOrderRequest{CartItemIDs: []uuid.UUID{line.ID}})
			errs <- err
		}(owner, line)
	}
	wg.Wait()
	close(errs)

	var ok, rejected int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 1, stockOf(t, f.db, p.ID))
}

func TestCreateOrder_PriceIsFrozen(t *testing.T) {
	f := newOrderFixture(t, false)
	owner := uuid.New()
	p := seedProduct(t, f.db, "Tinapa", "50.00", 10)
	order := f.placeOrder(t, owner, seedCartItem(t, f.db, owner, p.ID, 2))

	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", p.ID).Update("price", "80.00").Error)

	stored, err := f.svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.True(t, decimal.NewFromInt(50).Equal(stored.Items[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(100).Equal(stored.TotalPrice))
}

func TestCreateOrder_OnlySelectedLinesAreConsumed(t *testing.T) {
	f := newOrderFixture(t, false)
	owner := uuid.New()
	a := seedProduct(t, f.db, "A", "10", 10)
	b := seedProduct(t, f.db, "B", "20", 10)
	selected := seedCartItem(t, f.db, owner, a.ID, 1)
	kept := seedCartItem(t, f.db, owner, b.ID, 1)

	f.placeOrder(t, owner, selected)

	var remaining []model.CartItem
	require.NoError(t, f.db.Where("owner_id = ?", owner).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)
	assert.Equal(t, 10, stockOf(t, f.db, b.ID))
}

func TestCreateOrder_RejectsBadSelections(t *testing.T) {
	f := newOrderFixture(t, false)
	owner, stranger := uuid.New(), uuid.New()
	p := seedProduct(t, f.db, "Tinapa", "50", 10)
	theirs := seedCartItem(t, f.db, stranger, p.ID, 1)

	tests := []struct {
		name string
		ids  []uuid.UUID
		want error
	}{
		{"empty", nil, ErrEmptySelection},
		{"only nil ids", []uuid.UUID{uuid.Nil}, ErrEmptySelection},
		{"unknown item", []uuid.UUID{uuid.New()}, ErrCartItemNotFound},
		{"someone else's item", []uuid.UUID{theirs.ID}, ErrNotOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateOrder(context.Background(), owner, &CreateOrderRequest{CartItemIDs: tt.ids})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, 10, stockOf(t, f.db, p.ID))
}

// consumedCart deletes the selected lines right after they are read, as if
// another checkout of the same lines committed in between.
type consumedCart struct {
	repository.CartRepository
}

func (c consumedCart) GetLineItems(tx *gorm.DB, ids []uuid.UUID) ([]model.CartItem, error) {
	items, err := c.CartRepository.GetLineItems(tx, ids)
	if err != nil {
		return nil, err
	}
	if err := tx.Unscoped().Where("id IN ?", ids).Delete(&model.CartItem{}).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func TestCreateOrder_CartLineIsConsumedOnce(t *testing.T) {
	f := newOrderFixture(t, false)
	f.svc = NewOrderService(
		f.db,
		repository.NewOrderRepo(f.db),
		consumedCart{repository.NewCartRepo(f.db)},
		repository.NewProductRepo(f.db),
		repository.NewStockMovementRepo(f.db),
		ordernumber.NewSequenceGenerator(),
		f.publisher,
		f.notifier,
		OrderConfig{Location: manila, Now: fixedClock(f.now)},
	)
	owner := uuid.New()
	p := seedProduct(t, f.db, "Tinapa", "50", 10)
	line := seedCartItem(t, f.db, owner, p.ID, 2)

	order, err := f.svc.CreateOrder(context.Background(), owner, &CreateOrderRequest{CartItemIDs: []uuid.UUID{line.ID}})
	assert.ErrorIs(t, err, ErrCartItemNotFound)
	assert.Nil(t, order)

	var orders, movements int64
	require.NoError(t, f.db.Model(&model.Order{}).Count(&orders).Error)
	require.NoError(t, f.db.Model(&model.StockMovement{}).Count(&movements).Error)
	assert.Zero(t, orders)
	assert.Zero(t, movements)
	assert.Equal(t, 10, stockOf(t, f.db, p.ID))
	assert.Empty(t, f.publisher.topics())
}

func TestUpdateStatus_StateMachine(t *testing.T) {
	tests := []struct {
		from, to model.OrderStatus
		ok       bool
	}{
		{model.OrderPending, model.OrderConfirmed, true},
		{model.OrderPending, model.OrderCancelled, true},
		{model.OrderConfirmed, model.OrderDelivered, true},
		{model.OrderPending, model.OrderDelivered, false},
		{model.OrderConfirmed, model.OrderCancelled, false},
		{model.OrderConfirmed, model.OrderPending, false},
		{model.OrderDelivered, model.OrderPending, false},
		{model.OrderDelivered, model.OrderCancelled, false},
		{model.OrderCancelled, model.OrderConfirmed, false},
		{model.OrderCancelled, model.OrderPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			f := newOrderFixture(t, false)
			owner := uuid.New()
			p := seedProduct(t, f.db, "Tinapa", "50", 10)
			order := f.placeOrder(t, owner, seedCartItem(t, f.db, owner, p.ID, 1))
			require.NoError(t, f.db.Model(&model.Order{}).Where("id = ?", order.ID).Update("status", tt.from).Error)

			updated, err := f.svc.UpdateStatus(context.Background(), order.ID, tt.to, "staff")
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, updated.Status)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidTransition)
			var transitionErr *InvalidTransitionError
			require.True(t, errors.As(err, &transitionErr))
			assert.Equal(t, tt.from, transitionErr.From)

			stored, err := f.svc.GetOrder(context.Background(), order.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.from, stored.Status)
		})
	}
}

func TestUpdateStatus_SameStatusIsNoOp(t *testing.T) {
	f := newOrderFixture(t, false)
	owner := uuid.New()
	p := seedProduct(t, f.db, "Tinapa", "50", 10)
	order := f.placeOrder(t, owner, seedCartItem(t, f.db, owner, p.ID, 1))

	_, err := f.svc.UpdateStatus(context.Background(), order.ID, model.OrderConfirmed, "staff")
	require.NoError(t, err)
	first, err := f.svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)

	again, err := f.svc.UpdateStatus(context.Background(), order.ID, model.OrderConfirmed, "someone-else")
	require.NoError(t, err)
	assert.Equal(t, model.OrderConfirmed, again.Status)

	second, err := f.svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
	assert.Equal(t, "staff", second.UpdatedBy)
	assert.Equal(t, []string{event.TopicOrderCreated, event.TopicOrderStatusChanged}, f.publisher.topics())
}

func TestUpdateStatus_UnknownStatusAndOrder(t *testing.T) {
	f := newOrderFixture(t, false)

	_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), model.OrderStatus("SHIPPED"), "staff")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(context.Background(), uuid.New(), model.OrderConfirmed, "staff")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateStatus_CancelRestock(t *testing.T) {
	for _, restock := range []bool{false, true} {
		name := "restock off"
		if restock {
			name = "restock on"
		}
		t.Run(name, func(t *testing.T) {
			f := newOrderFixture(t, restock)
			owner := uuid.New()
			p := seedProduct(t, f.db, "Tinapa", "50", 5)
			order := f.placeOrder(t, owner, seedCartItem(t, f.db, owner, p.ID, 2))
			require.Equal(t, 3, stockOf(t, f.db, p.ID))

			_, err := f.svc.UpdateStatus(context.Background(), order.ID, model.OrderCancelled, owner.String())
			require.NoError(t, err)

			var restocks int64
			require.NoError(t, f.db.Model(&model.StockMovement{}).Where("type = ?", model.MovementRestock).Count(&restocks).Error)
			if restock {
				assert.Equal(t, 5, stockOf(t, f.db, p.ID))
				assert.Equal(t, int64(1), restocks)
			} else {
				assert.Equal(t, 3, stockOf(t, f.db, p.ID))
				assert.Zero(t, restocks)
			}
		})
	}
}

func TestUpdateStatus_NotifiesOwner(t *testing.T) {
	f := newOrderFixture(t, false)
	owner := uuid.New()
	p := seedProduct(t, f.db, "Tinapa", "50", 5)
	order := f.placeOrder(t, owner, seedCartItem(t, f.db, owner, p.ID, 1))

	_, err := f.svc.UpdateStatus(context.Background(), order.ID, model.OrderConfirmed, "staff")
	require.NoError(t, err)

	last := f.notifier.sent[len(f.notifier.sent)-1]
	assert.Equal(t, []string{owner.String()}, last.UserIDs)
	assert.Contains(t, string(last.Data), `"status":"CONFIRMED"`)
}

func TestDeleteOrder(t *testing.T) {
	f := newOrderFixture(t, true)
	owner := uuid.New()
	p := seedProduct(t, f.db, "Tinapa", "50", 5)
	order := f.placeOrder(t, owner, seedCartItem(t, f.db, owner, p.ID, 2))

	require.NoError(t, f.svc.DeleteOrder(context.Background(), order.ID, "admin"))

	_, err := f.svc.GetOrder(context.Background(), order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	var items int64
	require.NoError(t, f.db.Unscoped().Model(&model.OrderItem{}).Where("order_id = ?", order.ID).Count(&items).Error)
	assert.Zero(t, items)
	assert.Equal(t, 5, stockOf(t, f.db, p.ID))

	assert.ErrorIs(t, f.svc.DeleteOrder(context.Background(), order.ID, "admin"), ErrOrderNotFound)
}

func TestDeleteOrder_DeliveredKeepsStock(t *testing.T) {
	f := newOrderFixture(t, true)
	owner := uuid.New()
	p := seedProduct(t, f.db, "Tinapa", "50", 5)
	order := f.placeOrder(t, owner, seedCartItem(t, f.db, owner, p.ID, 2))
	require.NoError(t, f.db.Model(&model.Order{}).Where("id = ?", order.ID).Update("status", model.OrderDelivered).Error)

	require.NoError(t, f.svc.DeleteOrder(context.Background(), order.ID, "admin"))
	assert.Equal(t, 3, stockOf(t, f.db, p.ID))
}

func TestListOrders(t *testing.T) {
	f := newOrderFixture(t, false)
	alice, bob := uuid.New(), uuid.New()
	p := seedProduct(t, f.db, "Tinapa", "50", 10)
	f.placeOrder(t, alice, seedCartItem(t, f.db, alice, p.ID, 1))
	f.placeOrder(t, alice, seedCartItem(t, f.db, alice, p.ID, 1))
	f.placeOrder(t, bob, seedCartItem(t, f.db, bob, p.ID, 1))

	orders, total, err := f.svc.ListOrders(context.Background(), repository.OrderFilter{OwnerID: &alice})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, orders, 2)

	pending := model.OrderPending
	_, total, err = f.svc.ListOrders(context.Background(), repository.OrderFilter{Status: &pending, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	bad := model.OrderStatus("LOST")
	_, _, err = f.svc.ListOrders(context.Background(), repository.OrderFilter{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(model.OrderPending, model.OrderConfirmed))
	assert.False(t, CanTransition(model.OrderDelivered, model.OrderDelivered))
	assert.False(t, CanTransition(model.OrderStatus("X"), model.OrderPending))
}
