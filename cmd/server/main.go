// Command server runs the summer camp enrollment API.
//
// @title                       Sportify Camp API
// @version                     1.0
// @description                 Class catalog, enrollment and payments for a summer sports camp.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	_ "github.com/sportify/camp-server/docs"
	"github.com/sportify/camp-server/internal/api"
	"github.com/sportify/camp-server/internal/api/handler"
	"github.com/sportify/camp-server/internal/api/middleware"
	"github.com/sportify/camp-server/internal/core/service"
	mongodb "github.com/sportify/camp-server/internal/infrastructure/db/mongo"
	redisdb "github.com/sportify/camp-server/internal/infrastructure/db/redis"
	"github.com/sportify/camp-server/internal/infrastructure/payment"
	"github.com/sportify/camp-server/internal/infrastructure/queue"
	"github.com/sportify/camp-server/internal/pkg/config"
	"github.com/sportify/camp-server/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.OptionsFor(cfg.Env, cfg.LogLevel, "camp-server"))

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	identities := mongodb.NewIdentityRepository(db)
	classes := mongodb.NewClassRepository(db)
	selections := mongodb.NewSelectionRepository(db)
	payments := mongodb.NewPaymentRepository(db)
	transactor := mongodb.NewTransactor(mongoClient, cfg.Mongo.Transactions)
	if !transactor.Atomic() {
		log.Warn().Msg("mongo transactions disabled, failed commits are compensated")
	}

	// --- Activity audit ---
	activity := queue.NewDispatcher(
		cfg.AuditWorkers,
		service.NewActivityService(mongodb.NewActivityRepository(db), log),
		log,
	)
	workerCtx, stopWorkers := context.WithCancel(context.WithoutCancel(ctx))
	defer stopWorkers()
	activity.Start(workerCtx)

	// --- Services ---
	issuer := service.NewTokenIssuer(cfg.Auth.JWTSecret)
	gate := service.NewRoleGate(identities)
	gateway := payment.NewLocalGateway(payment.Config{
		Currency:  cfg.Payment.Currency,
		MaxAmount: cfg.Payment.MaxAmount,
		HoldTTL:   cfg.Payment.HoldTTL,
	})

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  rate.Limit(cfg.Limits.RPS),
		Burst: cfg.Limits.Burst,
	})
	defer limiter.Stop()

	e := api.NewRouter(api.Dependencies{
		Auth: service.NewAuthService(identities, issuer, service.AuthOptions{
			RequireRegistered:   cfg.Auth.RequireRegistered,
			BootstrapAdminEmail: cfg.Auth.BootstrapAdminEmail,
		}, log),
		Users:      service.NewUserService(identities, activity, log),
		Classes:    service.NewClassService(classes, activity, log),
		Selections: service.NewSelectionService(selections, classes, payments, log),
		Enrollments: service.NewEnrollmentService(
			selections, classes, payments, gateway, transactor,
			redisdb.NewCommitLock(rdb, cfg.Redis.LockTTL), activity, log,
		),
		Authenticator: service.NewAuthGuard(cfg.Auth.JWTSecret),
		Authorizer:    gate,
		RateLimiter:   limiter,
		HealthChecks: map[string]handler.DependencyCheck{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Log: log,
	})

	// --- Serve ---
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	// In-flight requests are done; drain the audit queue before storage closes.
	activity.Close()
	return nil
}
