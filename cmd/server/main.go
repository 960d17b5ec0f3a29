package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"showcase/internal/api"
	"showcase/internal/api/middleware"
	"showcase/internal/app/access"
	"showcase/internal/app/guard"
	"showcase/internal/app/service"
	"showcase/internal/app/worker"
	"showcase/internal/common/security"
	"showcase/internal/domain/repository"
	"showcase/internal/platform/config"
	"showcase/internal/platform/database"
	"showcase/internal/platform/queue"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded", "env", cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Initialize Database
	db, err := database.Connect(ctx, cfg.DBConnStr)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	// 3. Initialize Redis
	rdb, err := queue.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer queue.CloseRedis(rdb)

	// 4. Initialize Repositories
	adminRepo := repository.NewPgAdminRepository(db)
	creatorRepo := repository.NewPgCreatorRepository(db)
	projectRepo := repository.NewPgProjectRepository(db)
	collaboratorRepo := repository.NewPgCollaboratorRepository(db)
	ratingRepo := repository.NewPgRatingRepository(db)
	contactRepo := repository.NewPgContactRepository(db)
	messageRepo := repository.NewPgMessageRepository(db)

	// 5. Initialize Services
	tokens := security.NewTokenService(cfg.JWTKey, cfg.AdminTokenTTL, cfg.CreatorTokenTTL)
	engine := access.NewEngine(projectRepo, collaboratorRepo)
	ratingGuard := guard.NewRatingGuard(ratingRepo, cfg.IPHashSalt, cfg.RatingLocation,
		guard.WithLocker(queue.NewRedisLocker(rdb, "rating:"), cfg.RatingLockTTL))
	notifications := queue.NewNotificationQueue(rdb, cfg.NotifyQueueName)

	services := api.Services{
		Auth:     service.NewAuthService(adminRepo, creatorRepo, tokens),
		Creators: service.NewCreatorService(creatorRepo),
		Projects: service.NewProjectService(projectRepo, collaboratorRepo, creatorRepo, engine, db),
		Ratings:  service.NewRatingService(ratingRepo, ratingGuard),
		Contacts: service.NewContactService(contactRepo, notifications),
		Messages: service.NewMessageService(messageRepo, projectRepo),
	}

	// 6. Notification Worker
	if cfg.NotifyWebhookURL != "" {
		notifyWorker := worker.NewNotificationWorker(notifications, contactRepo, cfg.NotifyWebhookURL, cfg.NotifyMaxAttempts)
		go notifyWorker.Start(ctx)
	}

	// 7. Router & HTTP Server
	publicLimiter := middleware.NewRateLimiter(cfg.PublicRateLimitRPS, cfg.PublicRateLimitBurst)
	go publicLimiter.Run(ctx)

	router := api.NewRouter(services, api.Options{
		Tokens:        tokens,
		CookieSecure:  cfg.CookieSecure,
		PublicLimiter: publicLimiter,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 8. Graceful Shutdown
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}
