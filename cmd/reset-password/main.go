package main

import (
	"context"
	"flag"

	"go-tinapa-shop/internal/model"
	"go-tinapa-shop/internal/repository"
	"go-tinapa-shop/pkg/config"
	"go-tinapa-shop/pkg/database"
	"go-tinapa-shop/pkg/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	email := flag.String("email", "", "email of the account to reset")
	password := flag.String("password", "", "new password (at least 6 characters)")
	flag.Parse()

	if *email == "" || len(*password) < 6 {
		flag.Usage()
		log.Fatal().Msg("-email and a -password of at least 6 characters are required")
	}

	// 1. Load config
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Setup(cfg.Log.Level, true)

	// 2. Setup Database
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	// 3. Find user
	ctx := context.Background()
	users := repository.NewUserRepo(db)
	user, err := users.FindByEmail(ctx, *email)
	if err != nil {
		log.Fatal().Err(err).Str("email", *email).Msg("user not found")
	}

	// 4. Hash and store
	if err := user.SetPassword(*password); err != nil {
		log.Fatal().Err(err).Msg("failed to hash password")
	}
	if err := users.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		log.Fatal().Err(err).Msg("failed to update password")
	}

	log.Info().Str("email", user.Email).Str("role", roleOf(user)).Msg("password reset")
}

func roleOf(u *model.User) string {
	if code := u.RoleCode(); code != "" {
		return code
	}
	return "none"
}
