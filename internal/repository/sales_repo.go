package repository

import (
	"context"
	"time"

	"go-tinapa-shop/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LowStockThreshold marks products that need restocking on the dashboard.
const LowStockThreshold = 10

type SalesRepository interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
	GetDailySales(ctx context.Context, startDate, endDate time.Time) ([]DailySales, error)
	GetTopProducts(ctx context.Context, startDate, endDate time.Time, limit int) ([]ProductSales, error)
}

// DashboardStats for the overview cards
type DashboardStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
	PendingOrders  int64           `json:"pending_orders"`
}

// DailySales is revenue for one day, cancelled orders excluded.
type DailySales struct {
	Date       string          `json:"date"`
	OrderCount int64           `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type ProductSales struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type salesRepo struct {
	db *gorm.DB
}

func NewSalesRepo(db *gorm.DB) SalesRepository {
	return &salesRepo{db}
}

func (r *salesRepo) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Where("stock < ?", LowStockThreshold).Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	// Valuation is SUM(stock * price)
	if err := db.Model(&model.Product{}).Select("COALESCE(SUM(stock * price), 0)").Scan(&stats.TotalValuation).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Order{}).Where("status = ?", model.OrderPending).Count(&stats.PendingOrders).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *salesRepo) GetDailySales(ctx context.Context, startDate, endDate time.Time) ([]DailySales, error) {
	results := []DailySales{}

	rows, err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select(`
			DATE(ordered_at) as date,
			COUNT(*) as order_count,
			COALESCE(SUM(total_price), 0) as revenue
		`).
		Where("status <> ? AND ordered_at BETWEEN ? AND ?", model.OrderCancelled, startDate, endDate).
		Group("DATE(ordered_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data DailySales
		if err := rows.Scan(&data.Date, &data.OrderCount, &data.Revenue); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}

func (r *salesRepo) GetTopProducts(ctx context.Context, startDate, endDate time.Time, limit int) ([]ProductSales, error) {
	results := []ProductSales{}

	rows, err := r.db.WithContext(ctx).Table("order_items AS oi").
		Select(`
			oi.product_id,
			MAX(oi.product_name) as product_name,
			SUM(oi.quantity) as quantity,
			SUM(oi.unit_price * oi.quantity) as revenue
		`).
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.status <> ? AND o.ordered_at BETWEEN ? AND ?", model.OrderCancelled, startDate, endDate).
		Where("oi.deleted_at IS NULL AND o.deleted_at IS NULL").
		Group("oi.product_id").
		Order("quantity DESC").
		Limit(limit).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data ProductSales
		if err := rows.Scan(&data.ProductID, &data.ProductName, &data.Quantity, &data.Revenue); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}
