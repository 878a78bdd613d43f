package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pathlab/labledger/internal/config"
	v1 "github.com/pathlab/labledger/internal/handler/v1"
	"github.com/pathlab/labledger/internal/repository/postgres"
	"github.com/pathlab/labledger/internal/service"
	"github.com/pathlab/labledger/pkg/auth"
	"github.com/pathlab/labledger/pkg/database"
	"github.com/pathlab/labledger/pkg/logger"
	"github.com/pathlab/labledger/pkg/metrics"
	"github.com/pathlab/labledger/pkg/tracer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	collector := metrics.NewCollector("labledger")
	jwtManager := auth.NewJWTManager(cfg.JWT)

	caseRepo := postgres.NewCaseRepository(db)
	testRepo := postgres.NewTestRepository(db)
	userRepo := postgres.NewUserRepository(db)

	caseSvc := service.NewCaseService(caseRepo, testRepo, userRepo, collector, log)
	catalogSvc := service.NewCatalogService(testRepo, log)
	userSvc := service.NewUserService(userRepo, log)
	authSvc := service.NewAuthService(userRepo, jwtManager, log)

	router := v1.NewRouter(cfg, jwtManager, collector, v1.Handlers{
		Auth:  v1.NewAuthHandler(authSvc),
		Cases: v1.NewCaseHandler(caseSvc),
		Tests: v1.NewTestHandler(catalogSvc),
		Users: v1.NewUserHandler(userSvc),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("address", srv.Addr),
			zap.String("environment", cfg.App.Environment),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}
