package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-auth-service/internal/config"
	"go-auth-service/internal/database"
	"go-auth-service/internal/email"
	"go-auth-service/internal/handler"
	"go-auth-service/internal/middleware"
	"go-auth-service/internal/password"
	"go-auth-service/internal/repository"
	"go-auth-service/internal/router"
	"go-auth-service/internal/service"
	"go-auth-service/internal/token"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	resetTokenRepo := repository.NewResetTokenRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	slog.Info("database ready")

	tokenManager, err := token.NewManager(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token manager: %w", err)
	}
	hasher := password.NewHasher(cfg.BcryptCost)

	sender, err := newSender(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	auditService := service.NewAuditService(auditRepo)
	authService := service.NewAuthService(userRepo, hasher, tokenManager, cfg.SessionTokenTTL, cfg.PasswordMinEntropy)
	resetService := service.NewResetService(userRepo, resetTokenRepo, hasher, tokenManager, sender, cfg.ResetTokenTTL, cfg.ResetURLBase, cfg.PasswordMinEntropy)

	authMiddleware := middleware.NewAuthMiddleware(tokenManager)
	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:  handler.NewAuthHandler(authService, auditService),
		Reset: handler.NewResetHandler(resetService, auditService),
		Audit: handler.NewAuditHandler(auditService),
	})

	gcCtx, gcCancel := context.WithCancel(context.Background())
	go resetService.StartGC(gcCtx, cfg.ResetTokenGC)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			func() {
				gcCancel()
			},
			func() {
				db.Close()
			},
		},
	}, nil
}

func newSender(cfg *config.Config) (email.Sender, error) {
	switch cfg.EmailDriver {
	case "smtp":
		return email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom), nil
	case "log":
		slog.Warn("using log email driver; reset links are written to the log")
		return email.NewLogSender(), nil
	default:
		return nil, fmt.Errorf("unknown email driver %q", cfg.EmailDriver)
	}
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
