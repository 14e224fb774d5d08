// Package app wires Daybreak's components together from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/daybreakhq/daybreak/adapter/api"
	identityPersistence "github.com/daybreakhq/daybreak/internal/identity/infrastructure/persistence"
	"github.com/daybreakhq/daybreak/internal/planning/application/commands"
	"github.com/daybreakhq/daybreak/internal/planning/application/queries"
	"github.com/daybreakhq/daybreak/internal/planning/engine"
	planningPersistence "github.com/daybreakhq/daybreak/internal/planning/infrastructure/persistence"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/database"
	_ "github.com/daybreakhq/daybreak/internal/shared/infrastructure/database/postgres"
	_ "github.com/daybreakhq/daybreak/internal/shared/infrastructure/database/sqlite"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/eventbus"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/locking"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/migrations"
	"github.com/daybreakhq/daybreak/pkg/config"
	"github.com/daybreakhq/daybreak/pkg/observability"
)

// Container holds the wired application.
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Conn   database.Connection
	Server *api.Server

	publisher eventbus.Publisher
	redis     *redis.Client
}

// New builds the container: config, logging, storage, broker, engine, and
// the HTTP server.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	}
	logCfg.Level = cfg.LogLevel
	logger := observability.NewLogger(logCfg)

	conn, err := database.NewConnection(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrations.Run(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	c := &Container{Config: cfg, Logger: logger, Conn: conn}

	var locker locking.PlanLocker = locking.NewLocalPlanLocker()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		c.redis = redis.NewClient(opts)
		locker = locking.NewRedisPlanLocker(c.redis, logger)
		logger.Info("using Redis plan locks", "addr", opts.Addr)
	}

	var publisher eventbus.Publisher = eventbus.NewInProcessBus(logger)
	if cfg.RabbitMQURL != "" {
		rabbit, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		publisher = eventbus.NewBreakerPublisher(rabbit, eventbus.DefaultBreakerConfig(), logger)
	}
	c.publisher = publisher

	loader := engine.NewModelLoader(cfg.ModelPath)
	predictor, err := loader.Load()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to load priority model: %w", err)
	}
	scheduler := engine.NewDayScheduler(predictor)

	userRepo := identityPersistence.NewUserRepository(conn)
	settingsRepo := identityPersistence.NewSettingsRepository(conn)
	taskRepo := planningPersistence.NewTaskRepository(conn)
	planRepo := planningPersistence.NewPlanRepository(conn)
	feedbackRepo := planningPersistence.NewFeedbackRepository(conn)
	uow := database.NewUnitOfWork(conn)

	handler := api.NewPlanningHandler(
		commands.NewGeneratePlanHandler(
			settingsRepo, taskRepo, planRepo, feedbackRepo,
			scheduler, uow, locker, publisher, logger,
			cfg.FeedbackFetchLimit, cfg.PlanLockTTL,
		),
		commands.NewMoveItemHandler(planRepo, taskRepo, feedbackRepo, uow, publisher, logger),
		commands.NewRemoveItemHandler(planRepo, taskRepo, uow, publisher, logger),
		commands.NewRecordFeedbackHandler(feedbackRepo, uow, publisher, logger),
		queries.NewGetPlanHandler(planRepo, taskRepo),
		queries.NewGetCalendarHandler(planRepo, taskRepo),
		queries.NewListFeedbackHandler(feedbackRepo),
		logger,
	)

	c.Server = api.NewServer(api.ServerConfig{
		Addr:         cfg.ListenAddr,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}, handler, userRepo, logger)

	return c, nil
}

// Close releases the container's resources.
func (c *Container) Close() error {
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			c.Logger.Warn("failed to close event publisher", "error", err)
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.Logger.Warn("failed to close Redis client", "error", err)
		}
	}
	return c.Conn.Close()
}
