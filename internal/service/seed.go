package service

import (
	"context"
	"errors"
	"fmt"

	"go-tinapa-shop/internal/model"
	"go-tinapa-shop/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SeedDefaults creates the privilege catalogue, the default roles with their
// privileges and, when missing, the first administrator. It is safe to run
// on every start.
func SeedDefaults(
	ctx context.Context,
	privilegeRepo repository.PrivilegeRepository,
	roleRepo repository.RoleRepository,
	userRepo repository.UserRepository,
	adminEmail, adminPassword string,
) error {
	// 1. Privileges first
	if err := privilegeRepo.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed privileges: %w", err)
	}

	// 2. Roles
	if err := roleRepo.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	// 3. Role privileges
	allPrivileges, err := privilegeRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	for _, def := range model.DefaultRoles {
		role, err := roleRepo.FindByCode(ctx, def.Code)
		if err != nil {
			return err
		}
		if len(role.Privileges) > 0 {
			continue
		}
		grant := allPrivileges
		if def.Code != model.RoleAdmin {
			if grant, err = privilegeRepo.FindByCodes(ctx, model.RolePrivilegeCodes[def.Code]); err != nil {
				return err
			}
		}
		if len(grant) == 0 {
			continue
		}
		if err := roleRepo.AssignPrivileges(ctx, role, grant); err != nil {
			return fmt.Errorf("assign privileges to %s: %w", def.Code, err)
		}
		log.Info().Str("role", def.Code).Int("privileges", len(grant)).Msg("role privileges assigned")
	}

	// 4. First administrator
	if adminEmail == "" {
		return nil
	}
	_, err = userRepo.FindByEmail(ctx, adminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	adminRole, err := roleRepo.FindByCode(ctx, model.RoleAdmin)
	if err != nil {
		return err
	}
	admin := &model.User{
		Email:    adminEmail,
		FullName: "Administrator",
		RoleID:   &adminRole.ID,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(adminPassword); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Info().Str("email", adminEmail).Msg("admin user created")
	return nil
}
