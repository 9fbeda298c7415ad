package service

import (
	"context"
	"time"

	"go-tinapa-shop/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	maxReportDays      = 366
	defaultTopProducts = 10
)

type DashboardService interface {
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetSalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error)
	GetTopProducts(ctx context.Context, from, to time.Time, limit int) ([]repository.ProductSales, error)
}

// SalesSummary is the data behind the sales report.
type SalesSummary struct {
	From       time.Time               `json:"from"`
	To         time.Time               `json:"to"`
	OrderCount int64                   `json:"order_count"`
	Revenue    decimal.Decimal         `json:"revenue"`
	Days       []repository.DailySales `json:"days"`
}

type dashboardService struct {
	salesRepo    repository.SalesRepository
	movementRepo repository.StockMovementRepository
	now          func() time.Time
}

func NewDashboardService(salesRepo repository.SalesRepository, movementRepo repository.StockMovementRepository) DashboardService {
	return &dashboardService{salesRepo: salesRepo, movementRepo: movementRepo, now: time.Now}
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	return s.salesRepo.GetDashboardStats(ctx)
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	if days <= 0 {
		days = 7
	}
	if days > maxReportDays {
		days = maxReportDays
	}
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.movementRepo.GetStockMovement(ctx, startDate, endDate)
}

func (s *dashboardService) GetSalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	if to.Before(from) {
		return nil, fieldError("SalesSummary.To", "gtefield", "From")
	}
	days, err := s.salesRepo.GetDailySales(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary := &SalesSummary{From: from, To: to, Revenue: decimal.Zero, Days: days}
	for _, d := range days {
		summary.OrderCount += d.OrderCount
		summary.Revenue = summary.Revenue.Add(d.Revenue)
	}
	return summary, nil
}

func (s *dashboardService) GetTopProducts(ctx context.Context, from, to time.Time, limit int) ([]repository.ProductSales, error) {
	if to.Before(from) {
		return nil, fieldError("TopProducts.To", "gtefield", "From")
	}
	if limit <= 0 {
		limit = defaultTopProducts
	}
	return s.salesRepo.GetTopProducts(ctx, from, to, limit)
}
