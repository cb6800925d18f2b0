// Package app wires the scoring engine's dependencies.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/aurumlife/aurum/internal/prioritization/application/commands"
	"github.com/aurumlife/aurum/internal/prioritization/application/consumers"
	"github.com/aurumlife/aurum/internal/prioritization/application/services"
	"github.com/aurumlife/aurum/internal/prioritization/domain/hierarchy"
	"github.com/aurumlife/aurum/internal/prioritization/domain/task"
	"github.com/aurumlife/aurum/internal/prioritization/infrastructure/cache"
	"github.com/aurumlife/aurum/internal/prioritization/infrastructure/persistence"
	"github.com/aurumlife/aurum/internal/prioritization/jobs"
	"github.com/aurumlife/aurum/internal/shared/infrastructure/database"
	_ "github.com/aurumlife/aurum/internal/shared/infrastructure/database/postgres" // register driver
	_ "github.com/aurumlife/aurum/internal/shared/infrastructure/database/sqlite"   // register driver
	"github.com/aurumlife/aurum/internal/shared/infrastructure/jobqueue"
	"github.com/aurumlife/aurum/internal/shared/infrastructure/migrations"
	"github.com/aurumlife/aurum/pkg/config"
)

// Container holds all wired dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	DB          database.Connection
	RedisClient *redis.Client

	TaskRepo      task.Repository
	HierarchyRepo hierarchy.Repository

	Publisher  jobqueue.Publisher
	LocalBus   *jobqueue.InProcessBus
	Dispatcher *jobs.Dispatcher

	Resolver   *services.HierarchyResolver
	Checker    *services.DependencyChecker
	Calculator *services.ScoreCalculator

	RecalculateTaskScore    *commands.RecalculateTaskScoreHandler
	RecalculateDependents   *commands.RecalculateDependentsHandler
	RecalculateAreaTasks    *commands.RecalculateAreaTasksHandler
	RecalculateProjectTasks *commands.RecalculateProjectTasksHandler
	InitializeScores        *commands.InitializeScoresHandler

	ScoringHandler *consumers.ScoringJobHandler
}

// NewContainer creates and wires all dependencies. In development a missing
// Redis or RabbitMQ degrades gracefully; in production both are required.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = conn

	if err := migrations.Run(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("connected to database", "driver", conn.Driver())

	switch conn.Driver() {
	case database.DriverSQLite:
		c.TaskRepo = persistence.NewSQLiteTaskRepository(conn)
		c.HierarchyRepo = persistence.NewSQLiteHierarchyRepository(conn)
	default:
		c.TaskRepo = persistence.NewPostgresTaskRepository(conn)
		c.HierarchyRepo = persistence.NewPostgresHierarchyRepository(conn)
	}

	// Redis fronts hierarchy reads; the resolver works without it.
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				_ = conn.Close()
				return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
			}
			logger.Warn("invalid Redis URL, hierarchy cache disabled", "error", err)
		} else {
			redisClient := redis.NewClient(opt)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				if !cfg.IsDevelopment() {
					_ = conn.Close()
					return nil, fmt.Errorf("failed to connect to Redis: %w", err)
				}
				logger.Warn("Redis not available, hierarchy cache disabled", "error", err)
			} else {
				c.RedisClient = redisClient
				c.HierarchyRepo = cache.NewRedisHierarchyCache(c.HierarchyRepo, redisClient, cfg.HierarchyCacheTTL, logger)
				logger.Info("connected to Redis")
			}
		}
	}

	rabbitPublisher, err := jobqueue.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			c.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		// Local mode runs jobs synchronously in-process.
		logger.Warn("RabbitMQ not available, running jobs in-process", "error", err)
		c.LocalBus = jobqueue.NewInProcessBus(logger)
		c.Publisher = c.LocalBus
	} else {
		c.Publisher = rabbitPublisher
	}

	c.Dispatcher = jobs.NewDispatcher(c.Publisher, logger)

	c.Calculator = services.NewScoreCalculator(services.DefaultCalculatorConfig())
	c.Resolver = services.NewHierarchyResolver(c.HierarchyRepo, logger, services.DefaultResolverConfig())
	c.Checker = services.NewDependencyChecker(c.TaskRepo, logger)

	c.RecalculateTaskScore = commands.NewRecalculateTaskScoreHandler(c.TaskRepo, c.Resolver, c.Checker, c.Calculator, logger)
	c.RecalculateDependents = commands.NewRecalculateDependentsHandler(c.TaskRepo, c.Dispatcher, logger)
	c.RecalculateAreaTasks = commands.NewRecalculateAreaTasksHandler(c.TaskRepo, c.Dispatcher, logger)
	c.RecalculateProjectTasks = commands.NewRecalculateProjectTasksHandler(c.TaskRepo, c.Dispatcher, logger)
	c.InitializeScores = commands.NewInitializeScoresHandler(c.TaskRepo, c.Dispatcher, logger, cfg.BulkBatchSize, cfg.BulkBatchPause)

	c.ScoringHandler = consumers.NewScoringJobHandler(
		c.RecalculateTaskScore,
		c.RecalculateDependents,
		c.RecalculateAreaTasks,
		c.RecalculateProjectTasks,
		c.InitializeScores,
		logger,
	)

	if c.LocalBus != nil {
		c.LocalBus.RegisterHandler(c.ScoringHandler)
	}

	return c, nil
}

// Close releases all resources held by the container.
func (c *Container) Close() {
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			c.Logger.Warn("failed to close publisher", "error", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("failed to close Redis client", "error", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("failed to close database", "error", err)
		}
	}
}
