package service

import (
	"context"
	"fmt"

	"go-tinapa-shop/internal/model"
	"go-tinapa-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultHistoryLimit = 100

type InventoryService interface {
	CreateProduct(ctx context.Context, req *ProductRequest, actor Actor) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	AdjustStock(ctx context.Context, productID uuid.UUID, req *StockAdjustmentRequest, actor Actor) (*model.Product, error)
	GetStockHistory(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error)

	CreateCategory(ctx context.Context, req *CategoryRequest, actor Actor) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	// InitialStock is only read on create.
	InitialStock int         `json:"initial_stock" validate:"gte=0"`
	Unit         string      `json:"unit" validate:"max=20"`
	ImageURL     string      `json:"image_url" validate:"omitempty,url,max=512"`
	CategoryIDs  []uuid.UUID `json:"category_ids"`
}

type StockAdjustmentRequest struct {
	Type     model.MovementType `json:"type" validate:"required,oneof=IN OUT"`
	Quantity int                `json:"quantity" validate:"required,gt=0"`
	Note     string             `json:"note" validate:"max=500"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type inventoryService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	movementRepo repository.StockMovementRepository
	notifier     Notifier
}

func NewInventoryService(
	db *gorm.DB,
	pRepo repository.ProductRepository,
	cRepo repository.CategoryRepository,
	mRepo repository.StockMovementRepository,
	notifier Notifier,
) InventoryService {
	return &inventoryService{
		db:           db,
		productRepo:  pRepo,
		categoryRepo: cRepo,
		movementRepo: mRepo,
		notifier:     orNop(notifier),
	}
}

func (s *inventoryService) CreateProduct(ctx context.Context, req *ProductRequest, actor Actor) (*model.Product, error) {
	// 1. Validate
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	categories, err := s.categories(ctx, req.CategoryIDs)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price.Round(2),
		Stock:       req.InitialStock,
		Unit:        req.Unit,
		ImageURL:    req.ImageURL,
		Categories:  categories,
	}
	product.CreatedBy = actor.ID
	product.UpdatedBy = actor.ID

	// 2. Insert the product and log its opening stock together
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Create(tx, product); err != nil {
			return err
		}
		if product.Stock == 0 {
			return nil
		}
		movement := &model.StockMovement{
			ProductID: product.ID,
			Type:      model.MovementIn,
			Quantity:  product.Stock,
			Note:      "initial stock",
		}
		movement.CreatedBy = actor.ID
		return s.movementRepo.Create(tx, movement)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Stringer("product_id", product.ID).Str("name", product.Name).Str("user", actor.ID).Msg("product created")

	// 3. Broadcast
	push(s.notifier, nil, map[string]interface{}{
		"type":    "stock_update",
		"action":  "product_created",
		"product": productPayload(product),
		"user":    actor.payload(),
		"message": fmt.Sprintf("%s created product '%s'", actor.display(), product.Name),
	})
	return product, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	categories, err := s.categories(ctx, req.CategoryIDs)
	if err != nil {
		return nil, err
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Price = req.Price.Round(2)
	existing.Unit = req.Unit
	existing.ImageURL = req.ImageURL
	existing.Categories = categories
	existing.UpdatedBy = actor.ID

	if err := s.productRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	push(s.notifier, nil, map[string]interface{}{
		"type":    "stock_update",
		"action":  "product_updated",
		"product": productPayload(existing),
		"user":    actor.payload(),
		"message": fmt.Sprintf("%s updated product '%s'", actor.display(), existing.Name),
	})
	return existing, nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return product, nil
}

func (s *inventoryService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx, filter)
}

// AdjustStock applies a manual IN or OUT movement. OUT never takes stock
// below zero.
func (s *inventoryService) AdjustStock(ctx context.Context, productID uuid.UUID, req *StockAdjustmentRequest, actor Actor) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var (
		product  model.Product
		oldStock int
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the product
		locked, err := s.productRepo.LockByIDs(tx, []uuid.UUID{productID})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return ErrProductNotFound
		}
		product = locked[0]
		oldStock = product.Stock

		// 2. Move stock
		if req.Type == model.MovementOut {
			ok, err := s.productRepo.DecrementStock(tx, productID, req.Quantity, actor.ID)
			if err != nil {
				return err
			}
			if !ok {
				return &InsufficientStockError{ProductID: product.ID, ProductName: product.Name, Requested: req.Quantity, Available: product.Stock}
			}
			product.Stock -= req.Quantity
		} else {
			if err := s.productRepo.IncrementStock(tx, productID, req.Quantity, actor.ID); err != nil {
				return err
			}
			product.Stock += req.Quantity
		}

		// 3. Log the movement
		movement := &model.StockMovement{
			ProductID: productID,
			Type:      req.Type,
			Quantity:  req.Quantity,
			Note:      req.Note,
		}
		movement.CreatedBy = actor.ID
		return s.movementRepo.Create(tx, movement)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Stringer("product_id", productID).Str("type", string(req.Type)).Int("quantity", req.Quantity).
		Int("stock", product.Stock).Str("user", actor.ID).Msg("stock adjusted")

	verb := "added"
	if req.Type == model.MovementOut {
		verb = "removed"
	}
	push(s.notifier, nil, map[string]interface{}{
		"type":   "stock_update",
		"action": "stock_adjusted",
		"movement": map[string]interface{}{
			"type":       req.Type,
			"quantity":   req.Quantity,
			"product_id": product.ID,
			"old_stock":  oldStock,
			"new_stock":  product.Stock,
		},
		"user":    actor.payload(),
		"message": fmt.Sprintf("%s %s %d units of '%s' (%s)", actor.display(), verb, req.Quantity, product.Name, req.Type),
	})
	return &product, nil
}

func (s *inventoryService) GetStockHistory(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.movementRepo.FindByProduct(ctx, productID, limit)
}

func (s *inventoryService) CreateCategory(ctx context.Context, req *CategoryRequest, actor Actor) (*model.Category, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	category := &model.Category{Name: req.Name, Description: req.Description}
	category.CreatedBy = actor.ID
	category.UpdatedBy = actor.ID
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *inventoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.FindAll(ctx)
}

func (s *inventoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return notFound(s.categoryRepo.Delete(ctx, id), ErrCategoryNotFound)
}

// categories resolves ids, failing if any of them is unknown.
func (s *inventoryService) categories(ctx context.Context, ids []uuid.UUID) ([]model.Category, error) {
	ids = uniqueIDs(ids)
	categories, err := s.categoryRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(categories) != len(ids) {
		return nil, ErrCategoryNotFound
	}
	return categories, nil
}

func validateProduct(req *ProductRequest) error {
	if err := validate(req); err != nil {
		return err
	}
	if req.Price.IsNegative() {
		return fieldError("ProductRequest.Price", "gte", "0")
	}
	return nil
}

func productPayload(p *model.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":    p.ID,
		"name":  p.Name,
		"stock": p.Stock,
		"price": p.Price,
	}
}
