package service

import (
	"context"
	"testing"
	"time"

	"go-tinapa-shop/internal/model"
	"go-tinapa-shop/internal/repository"
	"go-tinapa-shop/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedDefaults(t *testing.T, db *gorm.DB, adminEmail, adminPassword string) {
	t.Helper()
	require.NoError(t, SeedDefaults(context.Background(),
		repository.NewPrivilegeRepo(db),
		repository.NewRoleRepo(db),
		repository.NewUserRepo(db),
		adminEmail, adminPassword,
	))
}

func TestSeedDefaults(t *testing.T) {
	db := newTestDB(t)
	seedDefaults(t, db, "admin@tinapa.ph", "admin123")
	seedDefaults(t, db, "admin@tinapa.ph", "other-password")

	roles := repository.NewRoleRepo(db)
	admin, err := roles.FindByCode(context.Background(), model.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, admin.Privileges, len(model.DefaultPrivileges))

	employee, err := roles.FindByCode(context.Background(), model.RoleEmployee)
	require.NoError(t, err)
	assert.Len(t, employee.Privileges, len(model.RolePrivilegeCodes[model.RoleEmployee]))

	customer, err := roles.FindByCode(context.Background(), model.RoleCustomer)
	require.NoError(t, err)
	assert.Empty(t, customer.Privileges)

	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	user, err := repository.NewUserRepo(db).FindByEmail(context.Background(), "admin@tinapa.ph")
	require.NoError(t, err)
	assert.True(t, user.CheckPassword("admin123"))
	assert.Equal(t, model.RoleAdmin, user.RoleCode())
}

func newAuthService(t *testing.T) (AuthService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	seedDefaults(t, db, "admin@tinapa.ph", "admin123")
	tokens := jwt.NewManager("test-secret", time.Hour)
	return NewAuthService(repository.NewUserRepo(db), repository.NewRoleRepo(db), tokens), db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)

	registered, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "  Buyer@Tinapa.ph ",
		Password: "secret123",
		FullName: "Juan Buyer",
	})
	require.NoError(t, err)
	assert.Equal(t, "buyer@tinapa.ph", registered.User.Email)
	assert.Equal(t, model.RoleCustomer, registered.User.Role)
	assert.NotEmpty(t, registered.Token)

	_, err = svc.Register(context.Background(), &RegisterRequest{Email: "buyer@tinapa.ph", Password: "secret123", FullName: "Again"})
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = svc.Register(context.Background(), &RegisterRequest{Email: "not-an-email", Password: "secret123", FullName: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	login, err := svc.Login(context.Background(), "BUYER@tinapa.ph", "secret123")
	require.NoError(t, err)

	validated, err := svc.ValidateToken(context.Background(), login.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, validated.User.ID)

	_, err = svc.Login(context.Background(), "buyer@tinapa.ph", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@tinapa.ph", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.ValidateToken(context.Background(), "garbage")
	assert.Error(t, err)
}

func TestLogin_InactiveUser(t *testing.T) {
	svc, db := newAuthService(t)
	seedUser(t, db, "gone@tinapa.ph", model.RoleEmployee, false)

	_, err := svc.Login(context.Background(), "gone@tinapa.ph", "secret123")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthService(t)

	assert.ErrorIs(t, svc.ChangePassword(context.Background(), "admin@tinapa.ph", "wrong", "newsecret"), ErrWrongPassword)
	assert.ErrorIs(t, svc.ChangePassword(context.Background(), "admin@tinapa.ph", "admin123", "short"), ErrValidation)
	assert.ErrorIs(t, svc.ChangePassword(context.Background(), "nobody@tinapa.ph", "x", "newsecret"), ErrUserNotFound)

	require.NoError(t, svc.ChangePassword(context.Background(), "admin@tinapa.ph", "admin123", "newsecret"))
	_, err := svc.Login(context.Background(), "admin@tinapa.ph", "newsecret")
	assert.NoError(t, err)
}

func TestUserService(t *testing.T) {
	db := newTestDB(t)
	seedDefaults(t, db, "", "")
	svc := NewUserService(repository.NewUserRepo(db), repository.NewRoleRepo(db))

	created, err := svc.CreateUser(context.Background(), &CreateUserRequest{
		Email:    "Staff@Tinapa.ph",
		Password: "secret123",
		FullName: "Store Staff",
		RoleCode: model.RoleEmployee,
	}, "admin-id")
	require.NoError(t, err)
	assert.Equal(t, "staff@tinapa.ph", created.Email)
	assert.Equal(t, "admin-id", created.CreatedBy)

	_, err = svc.CreateUser(context.Background(), &CreateUserRequest{
		Email: "staff@tinapa.ph", Password: "secret123", FullName: "Dup", RoleCode: model.RoleEmployee,
	}, "admin-id")
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = svc.CreateUser(context.Background(), &CreateUserRequest{
		Email: "boss@tinapa.ph", Password: "secret123", FullName: "Boss", RoleCode: "OWNER",
	}, "admin-id")
	assert.ErrorIs(t, err, ErrValidation)

	employees, err := svc.ListUsers(context.Background(), model.RoleEmployee)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, created.ID, employees[0].ID)

	customers, err := svc.ListUsers(context.Background(), model.RoleCustomer)
	require.NoError(t, err)
	assert.Empty(t, customers)

	got, err := svc.GetUser(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleEmployee, got.Role)
}
