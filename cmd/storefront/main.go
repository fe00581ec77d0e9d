package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Elavasaran/yummie-mart-porta/internal/auth"
	"github.com/Elavasaran/yummie-mart-porta/internal/cache"
	"github.com/Elavasaran/yummie-mart-porta/internal/catalog"
	"github.com/Elavasaran/yummie-mart-porta/internal/config"
	"github.com/Elavasaran/yummie-mart-porta/internal/events"
	h "github.com/Elavasaran/yummie-mart-porta/internal/http"
	"github.com/Elavasaran/yummie-mart-porta/internal/lifecycle"
	"github.com/Elavasaran/yummie-mart-porta/internal/logger"
	"github.com/Elavasaran/yummie-mart-porta/internal/scheduler"
	"github.com/Elavasaran/yummie-mart-porta/internal/seller"
	"github.com/Elavasaran/yummie-mart-porta/internal/session"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	repo, err := catalog.NewRepository(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		return err
	}
	log.Info("catalog ready", "db_path", cfg.DBPath)

	sessionCache, closeCache := newSessionCache(ctx, cfg, log)
	defer closeCache()

	publisher := newPublisher(cfg, log)
	defer publisher.Close()

	registry := session.NewRegistry(sessionCache, func(sessionID string) *lifecycle.Manager {
		return lifecycle.NewManager(scheduler.New(),
			lifecycle.WithSessionID(sessionID),
			lifecycle.WithAdvanceDelay(cfg.OrderAdvanceDelay),
			lifecycle.WithPublisher(publisher),
			lifecycle.WithLogger(log.With("session_id", sessionID)),
		)
	},
		session.WithIdleTTL(cfg.SessionIdleTTL),
		session.WithLogger(log),
	)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	router := h.NewRouter(h.RouterConfig{
		Sessions:           registry,
		Products:           catalog.NewService(repo),
		OTP:                auth.NewAuthenticator(tokens),
		Tokens:             tokens,
		Signups:            seller.NewSignups(seller.WithIdleTTL(cfg.SessionIdleTTL)),
		Orders:             seller.NewDemoOrderBook(),
		Quotes:             seller.NewDemoQuoteBook(),
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("storefront starting", "addr", srv.Addr, "events", cfg.EventsBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	// park live sessions before the cache and publisher go away
	if err := registry.Close(); err != nil {
		log.Warn("session registry close failed", "error", err)
	}

	log.Info("server exited")
	return nil
}

func newSessionCache(ctx context.Context, cfg config.Config, log *slog.Logger) (cache.SessionCache, func()) {
	if cfg.RedisAddr == "" {
		log.Info("redis not configured, idle sessions are discarded")
		return cache.NopCache{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, continuing with cache errors logged", "addr", cfg.RedisAddr, "error", err)
	}

	return cache.NewRedisCache(client, cfg.SessionIdleTTL*4), func() { _ = client.Close() }
}

func newPublisher(cfg config.Config, log *slog.Logger) events.Publisher {
	var (
		broker events.Publisher
		name   string
	)

	switch cfg.EventsBackend {
	case config.EventsKafka:
		broker, name = events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...), "kafka"
	case config.EventsRabbitMQ:
		p, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			log.Warn("rabbitmq unavailable, falling back to log events", "error", err)
			return events.NewLogPublisher(log)
		}
		broker, name = p, "rabbitmq"
	default:
		return events.NewLogPublisher(log)
	}

	return events.NewBreakerPublisher(broker, events.BreakerSettings{
		Name:             name,
		FailureThreshold: uint32(cfg.BreakerFailures),
		OpenTimeout:      cfg.BreakerTimeout,
	}, log)
}
