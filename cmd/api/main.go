package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrGreenNV/bank-rest-test/internal/bootstrap"
	"github.com/MrGreenNV/bank-rest-test/internal/controller"
	infraRedis "github.com/MrGreenNV/bank-rest-test/internal/infrastructure/redis"
	"github.com/MrGreenNV/bank-rest-test/internal/infrastructure/security"
	"github.com/MrGreenNV/bank-rest-test/internal/repository/postgres"
	"github.com/MrGreenNV/bank-rest-test/internal/service"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, "bank-api", "bank")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Persistence ---
	accountRepo := postgres.NewAccountRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Infrastructure ---
	pinHasher := security.NewBcryptPinHasher(app.Config.Bank.BcryptCost)
	viewCache := infraRedis.NewViewCache(app.Redis, infraRedis.ViewCacheSettings{
		TTL:              app.Config.Redis.CacheTTL,
		BreakerThreshold: app.Config.Bank.CacheBreakerThreshold,
		BreakerTimeout:   app.Config.Bank.CacheBreakerOpenTimeout,
	}, app.Metrics, app.Logger)

	// --- Service ---
	accountService := service.NewAccountService(
		accountRepo,
		pinHasher,
		txManager,
		viewCache,
		app.Metrics,
		app.Logger,
	)

	// --- Router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:           app.Pool,
		RedisClient:    app.Redis,
		AccountService: accountService,
		Metrics:        app.Metrics,
		CORSConfig:     app.Config.Server.CORS,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		app.Logger.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}
	app.Logger.Info().Msg("Server exited")
}
