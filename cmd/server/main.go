package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bebidaspos/internal/config"
	"bebidaspos/internal/infra"
	"bebidaspos/internal/model"
	"bebidaspos/internal/repository"
	"bebidaspos/internal/repository/memory"
	"bebidaspos/internal/router"
	"bebidaspos/internal/service"
	"bebidaspos/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in development, JSON in production
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		repos repository.Repositories
		db    *gorm.DB
	)
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err = infra.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		repos = repository.NewGormRepositories(db)
	case config.StoreMemory:
		repos = memory.NewStore().Repositories()
		seedDefaultUsers(ctx, service.NewAuthService(repos.Users, cfg))
	default:
		log.Fatal().Str("driver", cfg.StoreDriver).Msg("unknown STORE_DRIVER")
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	} else {
		log.Warn().Msg("REDIS_URL not set: price cache and receipt jobs disabled")
	}

	// Worker handlers are wired here (composition root) so the pool has
	// access to every infrastructure dependency.
	var pool *worker.Pool
	if rdb != nil {
		pool = worker.NewPool(rdb, workerHandlers(cfg, repos, rdb, infra.NewMailer(cfg)))
		pool.Start(ctx, cfg.WorkerPoolSize)
	}

	inventorySvc := service.NewInventoryService(repos.Inventory, repos.Products, nil)
	worker.StartLowStockMonitor(ctx, inventorySvc, cfg.LowStockInterval, nil)

	r := router.New(cfg, repos, db, rdb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("store", cfg.StoreDriver).Msgf("bebidas POS listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	cancel()
	if pool != nil {
		pool.Wait()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}

// workerHandlers registers the receipt processor, plus the e-mail processor
// when SMTP is configured. Without SMTP the receipt worker gets no e-mail
// queue, so nothing is pushed to a queue nobody drains.
func workerHandlers(cfg *config.Config, repos repository.Repositories, rdb *redis.Client, mailer *infra.Mailer) map[string]worker.Processor {
	var emails worker.EmailQueue
	handlers := map[string]worker.Processor{}
	if mailer.Enabled() {
		emails = worker.NewDispatcher(rdb)
		handlers[worker.QueueEmail] = worker.NewEmailWorker(mailer)
	} else {
		log.Warn().Msg("SMTP_HOST not set: receipts will not be e-mailed")
	}
	handlers[worker.QueueReceipt] = worker.NewReceiptWorker(repos.Sales, repos.Products, emails, cfg.StoreName, cfg.ReceiptStoragePath)
	return handlers
}

// seedDefaultUsers gives an in-memory deployment something to log in with.
func seedDefaultUsers(ctx context.Context, auth service.AuthService) {
	defaults := []struct{ username, password, role string }{
		{"admin", "admin", model.RoleAdmin},
		{"funcionario", "123456", model.RoleEmployee},
	}
	for _, u := range defaults {
		if _, err := auth.CreateUser(ctx, u.username, u.password, u.role); err != nil {
			log.Fatal().Err(err).Str("username", u.username).Msg("failed to seed user")
		}
	}
	log.Warn().Msg("memory store seeded with default users admin/admin and funcionario/123456")
}
