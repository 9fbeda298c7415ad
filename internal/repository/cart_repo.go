package repository

import (
	"context"

	"go-tinapa-shop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.CartItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CartItem, error)
	FindByOwnerAndProduct(ctx context.Context, ownerID, productID uuid.UUID) (*model.CartItem, error)
	Create(ctx context.Context, item *model.CartItem) error
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	Delete(ctx context.Context, id uuid.UUID) error

	// GetLineItems and RemoveLineItems run inside the order transaction.
	GetLineItems(tx *gorm.DB, ids []uuid.UUID) ([]model.CartItem, error)
	RemoveLineItems(tx *gorm.DB, ids []uuid.UUID) error
}

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepo(db *gorm.DB) CartRepository {
	return &cartRepo{db}
}

func (r *cartRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.WithContext(ctx).Preload("Product").
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *cartRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CartItem, error) {
	var item model.CartItem
	if err := r.db.WithContext(ctx).Preload("Product").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepo) FindByOwnerAndProduct(ctx context.Context, ownerID, productID uuid.UUID) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).Preload("Product").
		Where("owner_id = ? AND product_id = ?", ownerID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepo) Create(ctx context.Context, item *model.CartItem) error {
	return r.db.WithContext(ctx).Omit("Product").Create(item).Error
}

func (r *cartRepo) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	res := r.db.WithContext(ctx).Model(&model.CartItem{}).Where("id = ?", id).Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cartRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.RemoveLineItems(r.db.WithContext(ctx), []uuid.UUID{id})
}

// GetLineItems row-locks the lines so a second checkout of the same lines
// waits until the first one commits or rolls back.
func (r *cartRepo) GetLineItems(tx *gorm.DB, ids []uuid.UUID) ([]model.CartItem, error) {
	var items []model.CartItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("product_id ASC, id ASC").
		Find(&items).Error
	return items, err
}

// RemoveLineItems hard-deletes the given cart lines. It returns
// gorm.ErrRecordNotFound unless every line was deleted, so a line can only
// be consumed once.
func (r *cartRepo) RemoveLineItems(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	res := tx.Unscoped().Where("id IN ?", ids).Delete(&model.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(ids)) {
		return gorm.ErrRecordNotFound
	}
	return nil
}
