package service

import (
	"context"
	"testing"

	"go-tinapa-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCartService(db *gorm.DB) CartService {
	return NewCartService(repository.NewCartRepo(db), repository.NewProductRepo(db))
}

func TestCart_AddAndList(t *testing.T) {
	db := newTestDB(t)
	svc := newCartService(db)
	owner := uuid.New()
	bangus := seedProduct(t, db, "Smoked Bangus", "120.50", 10)
	tamban := seedProduct(t, db, "Smoked Tamban", "45.00", 10)

	_, err := svc.AddItem(context.Background(), owner, &AddCartItemRequest{ProductID: bangus.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), owner, &AddCartItemRequest{ProductID: tamban.ID, Quantity: 1})
	require.NoError(t, err)

	view, err := svc.ListItems(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 3, view.Count)
	assert.True(t, decimal.RequireFromString("286").Equal(view.Total), view.Total.String())

	empty, err := svc.ListItems(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.True(t, empty.Total.IsZero())
}

func TestCart_AddSameProductMergesLines(t *testing.T) {
	db := newTestDB(t)
	svc := newCartService(db)
	owner := uuid.New()
	p := seedProduct(t, db, "Smoked Bangus", "120.50", 5)

	first, err := svc.AddItem(context.Background(), owner, &AddCartItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	second, err := svc.AddItem(context.Background(), owner, &AddCartItemRequest{ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	_, err = svc.AddItem(context.Background(), owner, &AddCartItemRequest{ProductID: p.ID, Quantity: 1})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 6, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available)

	view, err := svc.ListItems(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
}

func TestCart_AddRejects(t *testing.T) {
	db := newTestDB(t)
	svc := newCartService(db)
	p := seedProduct(t, db, "Smoked Bangus", "120.50", 2)

	tests := []struct {
		name string
		req  AddCartItemRequest
		want error
	}{
		{"zero quantity", AddCartItemRequest{ProductID: p.ID, Quantity: 0}, ErrInvalidQuantity},
		{"negative quantity", AddCartItemRequest{ProductID: p.ID, Quantity: -1}, ErrInvalidQuantity},
		{"missing product id", AddCartItemRequest{Quantity: 1}, ErrValidation},
		{"unknown product", AddCartItemRequest{ProductID: uuid.New(), Quantity: 1}, ErrProductNotFound},
		{"more than in stock", AddCartItemRequest{ProductID: p.ID, Quantity: 3}, ErrInsufficientStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddItem(context.Background(), uuid.New(), &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCart_UpdateQuantity(t *testing.T) {
	db := newTestDB(t)
	svc := newCartService(db)
	owner := uuid.New()
	p := seedProduct(t, db, "Smoked Bangus", "120.50", 4)
	item := seedCartItem(t, db, owner, p.ID, 1)

	updated, err := svc.UpdateQuantity(context.Background(), owner, item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = svc.UpdateQuantity(context.Background(), owner, item.ID, 5)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.UpdateQuantity(context.Background(), owner, item.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.UpdateQuantity(context.Background(), uuid.New(), item.ID, 2)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.UpdateQuantity(context.Background(), owner, uuid.New(), 2)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCart_RemoveItem(t *testing.T) {
	db := newTestDB(t)
	svc := newCartService(db)
	owner := uuid.New()
	p := seedProduct(t, db, "Smoked Bangus", "120.50", 4)
	item := seedCartItem(t, db, owner, p.ID, 1)

	assert.ErrorIs(t, svc.RemoveItem(context.Background(), uuid.New(), item.ID), ErrNotOwner)
	require.NoError(t, svc.RemoveItem(context.Background(), owner, item.ID))
	assert.ErrorIs(t, svc.RemoveItem(context.Background(), owner, item.ID), ErrCartItemNotFound)

	view, err := svc.ListItems(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}
