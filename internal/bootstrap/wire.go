package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/tripassist/config"
	"github.com/Domenick1991/tripassist/internal/auth"
	"github.com/Domenick1991/tripassist/internal/cache"
	"github.com/Domenick1991/tripassist/internal/composer"
	"github.com/Domenick1991/tripassist/internal/db"
	"github.com/Domenick1991/tripassist/internal/gateway"
	"github.com/Domenick1991/tripassist/internal/kafka"
	"github.com/Domenick1991/tripassist/internal/nlp"
	"github.com/Domenick1991/tripassist/internal/repository"
	"github.com/Domenick1991/tripassist/internal/service/assistant"
	"github.com/Domenick1991/tripassist/internal/service/booking"
	"github.com/Domenick1991/tripassist/internal/service/flights"
	"github.com/Domenick1991/tripassist/internal/session"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	publishRetries = 3
)

// App is the fully wired service graph shared by the HTTP server and the CLI.
type App struct {
	Config    *config.Config
	Log       logrus.FieldLogger
	Inventory repository.InventoryRepository
	Flights   *flights.FlightService
	Bookings  *booking.BookingService
	Assistant *assistant.Assistant
	Tokens    *auth.Service

	// Sessions is set only for the in-process backend.
	Sessions *session.MemoryStore

	closers []func() error
}

// OpenInventory connects the configured inventory backend. Postgres goes
// through pgx; SQLite through GORM, migrated on open.
func OpenInventory(ctx context.Context, cfg config.DatabaseConfig, log logrus.FieldLogger) (repository.InventoryRepository, func() error, error) {
	switch cfg.Driver {
	case db.DriverPostgres:
		pool, err := db.ConnectPostgres(ctx, cfg.DSN())
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() error {
			pool.Close()
			return nil
		}
		return repository.NewPGInventoryRepository(pool, log), closeFn, nil
	case db.DriverSQLite:
		gdb, err := db.OpenGorm(db.DriverSQLite, cfg.DSN())
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("db: sqlite handle: %w", err)
		}
		if err := db.Migrate(gdb); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return repository.NewGormInventoryRepository(gdb, log), sqlDB.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Build wires every component from cfg. Optional integrations (Redis, Kafka,
// the live flight API, the LLM, bearer tokens) are only constructed when
// configured.
func Build(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	app := &App{Config: cfg, Log: log}

	inventory, closeInventory, err := OpenInventory(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	app.Inventory = inventory
	app.closers = append(app.closers, closeInventory)

	var redisCache *cache.RedisCache
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = cache.NewRedisClient(cfg.Redis)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		app.closers = append(app.closers, redisClient.Close)
		redisCache = cache.NewRedisCache(redisClient, cfg.Gateway.CacheTTL(), cfg.Booking.PolicyCacheTTL())
	}

	var store session.Store
	var assistantOpts []assistant.Option
	switch cfg.Session.Backend {
	case SessionBackendRedis:
		if redisClient == nil {
			_ = app.Close()
			return nil, errors.New("session backend redis requires redis.enabled")
		}
		store = session.NewRedisStore(redisClient, cfg.Session.TTL())
		// instances sharing the store must also share the per-user lock
		assistantOpts = append(assistantOpts, assistant.WithLocker(session.NewRedisLocker(redisClient, cfg.Session.LockTTL())))
	default:
		app.Sessions = session.NewMemoryStore(cfg.Session.TTL(), cfg.Session.MaxEntries)
		store = app.Sessions
	}

	var flightOpts []flights.FlightServiceOption
	bookingOpts := []booking.BookingServiceOption{booking.WithPublishTimeout(cfg.Booking.PublishTimeout())}
	if redisCache != nil {
		flightOpts = append(flightOpts, flights.WithPolicyCache(redisCache))
		bookingOpts = append(bookingOpts, booking.WithSeatLocker(cache.NewSeatLocks(redisClient), cfg.Booking.SeatLockTTL()))
	}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		app.closers = append(app.closers, producer.Close)
		if err := producer.CheckConnection(ctx); err != nil {
			// bookings still commit; events are retried per message
			log.WithError(err).Warn("kafka unreachable at startup")
		}
		bookingOpts = append(bookingOpts,
			booking.WithProducer(kafka.Retrying{Producer: producer, MaxRetries: publishRetries}, cfg.Kafka.BookingTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}
	app.Flights = flights.NewFlightService(inventory, inventory, log, flightOpts...)
	app.Bookings = booking.NewBookingService(inventory, log, bookingOpts...)

	if live := liveGateway(cfg.Gateway, redisCache, log); live != nil {
		assistantOpts = append(assistantOpts, assistant.WithLiveGateway(live))
	}

	var generator composer.Generator
	if cfg.LLM.Enabled() {
		generator = composer.NewChatClient(composer.LLMConfig{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout(),
		})
	}

	app.Assistant = assistant.New(
		store,
		nlp.NewKeywordExtractor(),
		app.Flights,
		app.Bookings,
		composer.New(generator, log),
		log,
		assistantOpts...,
	)

	if cfg.Auth.Enabled() {
		app.Tokens = auth.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	}

	log.WithFields(logrus.Fields{
		"database":        cfg.Database.Driver,
		"session_backend": cfg.Session.Backend,
		"redis":           cfg.Redis.Enabled,
		"kafka":           cfg.Kafka.Enabled,
		"live_data":       cfg.Gateway.APIKey != "",
		"llm":             cfg.LLM.Enabled(),
		"auth":            cfg.Auth.Enabled(),
	}).Info("application wired")
	return app, nil
}

// liveGateway returns nil when no API key is configured.
func liveGateway(cfg config.GatewayConfig, redisCache *cache.RedisCache, log logrus.FieldLogger) gateway.Gateway {
	if cfg.APIKey == "" {
		return nil
	}
	client := gateway.NewClient(gateway.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout(),
	}, log)
	if redisCache == nil {
		return client
	}
	return gateway.NewCachedGateway(client, redisCache, cfg.Timeout(), log)
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
