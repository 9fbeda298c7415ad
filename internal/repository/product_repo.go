package repository

import (
	"context"

	"go-tinapa-shop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductFilter struct {
	CategoryID  *uuid.UUID
	Search      string
	InStockOnly bool
}

type ProductRepository interface {
	Update(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// The methods below run inside the caller's transaction.
	Create(tx *gorm.DB, product *model.Product) error
	LockByIDs(tx *gorm.DB, ids []uuid.UUID) ([]model.Product, error)
	DecrementStock(tx *gorm.DB, id uuid.UUID, amount int, updatedBy string) (bool, error)
	IncrementStock(tx *gorm.DB, id uuid.UUID, amount int, updatedBy string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return tx.Create(product).Error
}

// Update saves the product fields and replaces its categories. Stock only
// moves through the stock operations.
func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(product).Select("name", "description", "price", "unit", "image_url", "updated_by").
			Updates(product).Error
		if err != nil {
			return err
		}
		return tx.Model(product).Association("Categories").Replace(product.Categories)
	})
}

func (r *productRepo) FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx).Preload("Categories")
	if filter.CategoryID != nil {
		q = q.Where("id IN (?)", r.db.Table("product_categories").
			Select("product_id").Where("category_id = ?", *filter.CategoryID))
	}
	if filter.Search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	if filter.InStockOnly {
		q = q.Where("stock > 0")
	}
	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Preload("Categories").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// LockByIDs loads the products with row locks, in id order so that
// concurrent orders over overlapping products cannot deadlock.
func (r *productRepo) LockByIDs(tx *gorm.DB, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error
	return products, err
}

// DecrementStock subtracts amount only if that leaves stock non-negative.
// It reports false when the guard rejected the update.
func (r *productRepo) DecrementStock(tx *gorm.DB, id uuid.UUID, amount int, updatedBy string) (bool, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, amount).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", amount),
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepo) IncrementStock(tx *gorm.DB, id uuid.UUID, amount int, updatedBy string) error {
	res := tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", amount),
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
