package repository

import (
	"context"

	"go-tinapa-shop/internal/model"

	"gorm.io/gorm"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *model.Feedback) error
	FindAll(ctx context.Context, limit int) ([]model.Feedback, error)
}

type feedbackRepo struct {
	db *gorm.DB
}

func NewFeedbackRepo(db *gorm.DB) FeedbackRepository {
	return &feedbackRepo{db}
}

func (r *feedbackRepo) Create(ctx context.Context, feedback *model.Feedback) error {
	return r.db.WithContext(ctx).Omit("User").Create(feedback).Error
}

func (r *feedbackRepo) FindAll(ctx context.Context, limit int) ([]model.Feedback, error) {
	feedback := []model.Feedback{}
	q := r.db.WithContext(ctx).Preload("User").Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&feedback).Error
	return feedback, err
}
