package service

import (
	"context"

	"go-tinapa-shop/internal/model"
	"go-tinapa-shop/internal/repository"

	"github.com/google/uuid"
)

type FeedbackService interface {
	Submit(ctx context.Context, userID uuid.UUID, req *FeedbackRequest) (*model.Feedback, error)
	List(ctx context.Context, limit int) ([]model.Feedback, error)
}

type FeedbackRequest struct {
	OrderID *uuid.UUID `json:"order_id"`
	Rating  int        `json:"rating" validate:"required,min=1,max=5"`
	Comment string     `json:"comment" validate:"max=2000"`
}

type feedbackService struct {
	feedbackRepo repository.FeedbackRepository
}

func NewFeedbackService(feedbackRepo repository.FeedbackRepository) FeedbackService {
	return &feedbackService{feedbackRepo: feedbackRepo}
}

func (s *feedbackService) Submit(ctx context.Context, userID uuid.UUID, req *FeedbackRequest) (*model.Feedback, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	feedback := &model.Feedback{
		UserID:  &userID,
		OrderID: req.OrderID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	feedback.CreatedBy = userID.String()
	feedback.UpdatedBy = userID.String()
	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (s *feedbackService) List(ctx context.Context, limit int) ([]model.Feedback, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.feedbackRepo.FindAll(ctx, limit)
}
