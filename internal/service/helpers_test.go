package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-tinapa-shop/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var manila = time.FixedZone("PHT", 8*60*60)

// newTestDB opens a private in-memory database. A single connection runs
// transactions one at a time; SQLite ignores row locks.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) model.Product {
	t.Helper()
	p := model.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock, Unit: "pack"}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedCartItem(t *testing.T, db *gorm.DB, ownerID, productID uuid.UUID, quantity int) model.CartItem {
	t.Helper()
	item := model.CartItem{OwnerID: ownerID, ProductID: productID, Quantity: quantity}
	require.NoError(t, db.Omit("Product").Create(&item).Error)
	return item
}

func seedUser(t *testing.T, db *gorm.DB, email, roleCode string, active bool) model.User {
	t.Helper()
	var role model.Role
	require.NoError(t, db.Where(model.Role{Code: roleCode}).FirstOrCreate(&role, model.Role{Code: roleCode, Name: roleCode}).Error)
	u := model.User{Email: email, FullName: email, RoleID: &role.ID, IsActive: true}
	require.NoError(t, u.SetPassword("secret123"))
	require.NoError(t, db.Omit("Role").Create(&u).Error)
	if !active {
		require.NoError(t, db.Model(&u).Update("is_active", false).Error)
		u.IsActive = false
	}
	return u
}

func stockOf(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var p model.Product
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return p.Stock
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type publishedEvent struct {
	Topic   string
	Key     string
	Payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Payload: payload})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Topic
	}
	return out
}

type sentMessage struct {
	UserIDs []string
	Data    []byte
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *recordingNotifier) Broadcast(msg []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{Data: msg})
}

func (n *recordingNotifier) SendToUsers(userIDs []string, msg []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{UserIDs: userIDs, Data: msg})
}
