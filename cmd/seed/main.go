// Command seed creates the first admin account, or resets its password.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"showcase/internal/app/service"
	"showcase/internal/common/security"
	"showcase/internal/domain/repository"
	"showcase/internal/platform/config"
	"showcase/internal/platform/database"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin email")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	role := flag.String("role", security.RoleSuperAdmin, "admin or superadmin")
	flag.Parse()

	if *email == "" || *password == "" {
		slog.Error("email and password are required (flags or ADMIN_EMAIL / ADMIN_PASSWORD)")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DBConnStr)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate", "error", err)
		os.Exit(1)
	}

	tokens := security.NewTokenService(cfg.JWTKey, cfg.AdminTokenTTL, cfg.CreatorTokenTTL)
	auth := service.NewAuthService(repository.NewPgAdminRepository(db), repository.NewPgCreatorRepository(db), tokens)

	admin, created, err := auth.EnsureAdmin(ctx, *email, *password, *role)
	if err != nil {
		slog.Error("failed to seed admin", "error", err)
		os.Exit(1)
	}
	if created {
		slog.Info("admin created", "id", admin.ID, "email", admin.Email, "role", admin.Role)
	} else {
		slog.Info("admin password reset", "id", admin.ID, "email", admin.Email)
	}
}
