// Package ordernumber issues human-readable order numbers of the form
// PPT-YYYYMMDD-NNNNNN, where NNNNNN is a per-day counter.
package ordernumber

import (
	"context"
	"fmt"
	"time"

	"go-tinapa-shop/internal/model"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const prefix = "PPT"

// Generator returns the next order number for the day of now. tx is the
// order-creation transaction; a counter kept in the database must be bumped
// through it so that a rolled back order also rolls back its number.
type Generator interface {
	Next(ctx context.Context, tx *gorm.DB, now time.Time) (string, error)
}

func format(day string, n int64) string {
	return fmt.Sprintf("%s-%s-%06d", prefix, day, n)
}

// SequenceGenerator keeps the counter in the order_sequences table. The
// upsert takes the row lock, so concurrent orders serialize on it.
type SequenceGenerator struct{}

func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{}
}

func (g *SequenceGenerator) Next(ctx context.Context, tx *gorm.DB, now time.Time) (string, error) {
	day := now.Format("20060102")

	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"counter": gorm.Expr("order_sequences.counter + 1")}),
	}).Create(&model.OrderSequence{Day: day, Counter: 1}).Error
	if err != nil {
		return "", fmt.Errorf("bump order sequence: %w", err)
	}

	var seq model.OrderSequence
	if err := tx.WithContext(ctx).First(&seq, "day = ?", day).Error; err != nil {
		return "", fmt.Errorf("read order sequence: %w", err)
	}
	return format(day, seq.Counter), nil
}

// RedisGenerator uses INCR on a per-day key. Numbers consumed by rolled back
// orders are not reused.
type RedisGenerator struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisGenerator(client redis.UniversalClient) *RedisGenerator {
	return &RedisGenerator{client: client, ttl: 48 * time.Hour}
}

func (g *RedisGenerator) Next(ctx context.Context, _ *gorm.DB, now time.Time) (string, error) {
	day := now.Format("20060102")
	key := "order_seq:" + day

	n, err := g.client.Incr(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("redis incr %s: %w", key, err)
	}
	if n == 1 {
		if err := g.client.Expire(ctx, key, g.ttl).Err(); err != nil {
			return "", fmt.Errorf("redis expire %s: %w", key, err)
		}
	}
	return format(day, n), nil
}
