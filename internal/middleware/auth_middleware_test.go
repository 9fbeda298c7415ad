package middleware

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"go-tinapa-shop/internal/model"
	"go-tinapa-shop/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUsers struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUsers) FindByEmail(context.Context, string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) FindAll(context.Context, string) ([]model.User, error) { return nil, nil }

func (f *fakeUsers) Create(context.Context, *model.User) error { return nil }

func (f *fakeUsers) UpdatePassword(context.Context, uuid.UUID, string) error { return nil }

func newUser(active bool, privileges ...string) *model.User {
	u := &model.User{Email: "staff@tinapa.ph", FullName: "Staff", IsActive: active}
	u.ID = uuid.New()
	role := &model.Role{Code: model.RoleEmployee}
	for _, p := range privileges {
		role.Privileges = append(role.Privileges, model.Privilege{Code: p})
	}
	u.Role = role
	return u
}

func setup(t *testing.T, users ...*model.User) (*fiber.App, *jwt.Manager) {
	t.Helper()
	tokens := jwt.NewManager("test-secret", time.Hour)
	repo := &fakeUsers{users: map[uuid.UUID]*model.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}

	app := fiber.New()
	app.Use(RequireAuth(tokens, repo))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": UserID(c).String(), "role": c.Locals("user_role")})
	})
	app.Get("/orders", RequirePrivilege(model.PrivOrderViewAll), func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})
	app.Get("/reports", RequireAnyPrivilege(model.PrivDashboardView, model.PrivFeedbackView), func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})
	return app, tokens
}

func token(t *testing.T, tokens *jwt.Manager, u *model.User) string {
	t.Helper()
	s, err := tokens.GenerateToken(u.ID, u.Email, u.FullName, u.RoleCode(), nil)
	require.NoError(t, err)
	return s
}

func get(t *testing.T, app *fiber.App, path, auth string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireAuth(t *testing.T) {
	active := newUser(true)
	inactive := newUser(false)
	unknown := newUser(true)
	app, tokens := setup(t, active, inactive)

	assert.Equal(t, 401, get(t, app, "/me", ""))
	assert.Equal(t, 401, get(t, app, "/me", "Token abc"))
	assert.Equal(t, 401, get(t, app, "/me", "Bearer not-a-jwt"))
	assert.Equal(t, 401, get(t, app, "/me", "Bearer "+token(t, tokens, inactive)))
	assert.Equal(t, 401, get(t, app, "/me", "Bearer "+token(t, tokens, unknown)))

	other := jwt.NewManager("other-secret", time.Hour)
	assert.Equal(t, 401, get(t, app, "/me", "Bearer "+token(t, other, active)))

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, tokens, active))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, active.ID.String(), body["id"])
	assert.Equal(t, model.RoleEmployee, body["role"])
}

func TestRequireAuth_QueryTokenOnlyForUpgrades(t *testing.T) {
	u := newUser(true)
	app, tokens := setup(t, u)

	assert.Equal(t, 401, get(t, app, "/me?token="+token(t, tokens, u), ""))
}

func TestRequirePrivilege(t *testing.T) {
	staff := newUser(true, model.PrivOrderViewAll)
	viewer := newUser(true, model.PrivFeedbackView)
	app, tokens := setup(t, staff, viewer)

	assert.Equal(t, 200, get(t, app, "/orders", "Bearer "+token(t, tokens, staff)))
	assert.Equal(t, 403, get(t, app, "/orders", "Bearer "+token(t, tokens, viewer)))

	assert.Equal(t, 200, get(t, app, "/reports", "Bearer "+token(t, tokens, viewer)))
	assert.Equal(t, 403, get(t, app, "/reports", "Bearer "+token(t, tokens, staff)))
}

func TestRequirePrivilege_WithoutAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/", RequirePrivilege(model.PrivOrderViewAll), func(c *fiber.Ctx) error { return c.SendStatus(200) })
	app.Get("/who", func(c *fiber.Ctx) error {
		if UserID(c) != uuid.Nil {
			return c.SendStatus(500)
		}
		return c.SendStatus(204)
	})

	assert.Equal(t, 403, get(t, app, "/", ""))
	assert.Equal(t, 204, get(t, app, "/who", ""))
}
