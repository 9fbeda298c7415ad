package service

import (
	"context"
	"errors"

	"go-tinapa-shop/internal/model"
	"go-tinapa-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// The stock checks here only keep a cart honest. The binding check happens
// when the order is placed.
type CartService interface {
	ListItems(ctx context.Context, ownerID uuid.UUID) (*CartView, error)
	AddItem(ctx context.Context, ownerID uuid.UUID, req *AddCartItemRequest) (*model.CartItem, error)
	UpdateQuantity(ctx context.Context, ownerID, itemID uuid.UUID, quantity int) (*model.CartItem, error)
	RemoveItem(ctx context.Context, ownerID, itemID uuid.UUID) error
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CartLine struct {
	model.CartItem
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartView prices the cart at current product prices.
type CartView struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *cartService) ListItems(ctx context.Context, ownerID uuid.UUID) (*CartView, error) {
	items, err := s.cartRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	view := &CartView{Items: make([]CartLine, 0, len(items)), Total: decimal.Zero}
	for _, item := range items {
		subtotal := item.Subtotal()
		view.Items = append(view.Items, CartLine{CartItem: item, Subtotal: subtotal})
		view.Total = view.Total.Add(subtotal)
		view.Count += item.Quantity
	}
	return view, nil
}

// AddItem puts a product in the cart, or raises the quantity of the line
// already holding it.
func (s *cartService) AddItem(ctx context.Context, ownerID uuid.UUID, req *AddCartItemRequest) (*model.CartItem, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}

	existing, err := s.cartRepo.FindByOwnerAndProduct(ctx, ownerID, req.ProductID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		quantity := existing.Quantity + req.Quantity
		if quantity > product.Stock {
			return nil, &InsufficientStockError{ProductID: product.ID, ProductName: product.Name, Requested: quantity, Available: product.Stock}
		}
		if err := s.cartRepo.UpdateQuantity(ctx, existing.ID, quantity); err != nil {
			return nil, err
		}
		existing.Quantity = quantity
		existing.Product = *product
		return existing, nil
	}

	if req.Quantity > product.Stock {
		return nil, &InsufficientStockError{ProductID: product.ID, ProductName: product.Name, Requested: req.Quantity, Available: product.Stock}
	}
	item := &model.CartItem{OwnerID: ownerID, ProductID: product.ID, Quantity: req.Quantity}
	item.CreatedBy = ownerID.String()
	item.UpdatedBy = ownerID.String()
	if err := s.cartRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	item.Product = *product

	log.Debug().Stringer("owner_id", ownerID).Stringer("product_id", product.ID).Int("quantity", item.Quantity).Msg("cart item added")
	return item, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, ownerID, itemID uuid.UUID, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	item, err := s.ownedItem(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}
	if quantity > item.Product.Stock {
		return nil, &InsufficientStockError{ProductID: item.ProductID, ProductName: item.Product.Name, Requested: quantity, Available: item.Product.Stock}
	}
	if err := s.cartRepo.UpdateQuantity(ctx, itemID, quantity); err != nil {
		return nil, notFound(err, ErrCartItemNotFound)
	}
	item.Quantity = quantity
	return item, nil
}

func (s *cartService) RemoveItem(ctx context.Context, ownerID, itemID uuid.UUID) error {
	if _, err := s.ownedItem(ctx, ownerID, itemID); err != nil {
		return err
	}
	if err := s.cartRepo.Delete(ctx, itemID); err != nil {
		return notFound(err, ErrCartItemNotFound)
	}
	return nil
}

func (s *cartService) ownedItem(ctx context.Context, ownerID, itemID uuid.UUID) (*model.CartItem, error) {
	item, err := s.cartRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, notFound(err, ErrCartItemNotFound)
	}
	if item.OwnerID != ownerID {
		return nil, &NotOwnerError{CartItemIDs: []uuid.UUID{itemID}}
	}
	return item, nil
}
