package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dorakingx/subscryption/internal/billing/application/commands"
	"github.com/dorakingx/subscryption/internal/billing/application/queries"
	billingDomain "github.com/dorakingx/subscryption/internal/billing/domain"
	"github.com/dorakingx/subscryption/internal/billing/infrastructure/cache"
	billingPersistence "github.com/dorakingx/subscryption/internal/billing/infrastructure/persistence"
	"github.com/dorakingx/subscryption/internal/billing/infrastructure/token"
	sharedApplication "github.com/dorakingx/subscryption/internal/shared/application"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/database/postgres"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/database/sqlite"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/eventbus"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/migrations"
	sharedPersistence "github.com/dorakingx/subscryption/internal/shared/infrastructure/persistence"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/outbox"
	"github.com/dorakingx/subscryption/pkg/config"
)

// Container wires the billing engine together: repositories, handlers, the
// outbox relay and the external token gateway.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	Pool        *pgxpool.Pool
	SQLiteDB    *sql.DB
	RedisClient *redis.Client

	PlanRepo        billingDomain.PlanRepository
	SubRepo         billingDomain.SubscriptionRepository
	AccessRepo      billingDomain.AccessPolicyRepository
	OutboxRepo      outbox.Repository
	UnitOfWork      sharedApplication.UnitOfWork
	TokenGateway    billingDomain.TokenGateway
	StatusCache     queries.StatusCache
	EventPublisher  eventbus.Publisher
	OutboxProcessor *outbox.Processor

	// Command handlers
	CreatePlanHandler        *commands.CreatePlanHandler
	UpdatePlanStatusHandler  *commands.UpdatePlanStatusHandler
	SubscribeHandler         *commands.SubscribeHandler
	CancelHandler            *commands.CancelSubscriptionHandler
	CollectPaymentHandler    *commands.CollectPaymentHandler
	SetPausedHandler         *commands.SetPausedHandler
	AuthorizePullerHandler   *commands.AuthorizePullerHandler
	TransferOwnershipHandler *commands.TransferOwnershipHandler

	// Query handlers
	GetPlanHandler         *queries.GetPlanHandler
	GetPlanCountHandler    *queries.GetPlanCountHandler
	ListPlansHandler       *queries.ListPlansHandler
	GetSubscriptionHandler *queries.GetSubscriptionHandler
	IsSubscribedHandler    *queries.IsSubscribedHandler
}

// NewContainer initializes all dependencies. DATABASE_URL selects PostgreSQL;
// without it the engine runs on the embedded SQLite ledger.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		c.Pool = pool

		c.PlanRepo = billingPersistence.NewPostgresPlanRepository(pool)
		c.SubRepo = billingPersistence.NewPostgresSubscriptionRepository(pool)
		c.AccessRepo = billingPersistence.NewPostgresAccessPolicyRepository(pool)
		c.OutboxRepo = outbox.NewPostgresRepository(pool)
		c.UnitOfWork = sharedPersistence.NewPostgresUnitOfWork(pool)
		logger.Info("connected to database", "driver", "postgres")
	} else {
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		c.SQLiteDB = db

		c.PlanRepo = billingPersistence.NewSQLitePlanRepository(db)
		c.SubRepo = billingPersistence.NewSQLiteSubscriptionRepository(db)
		c.AccessRepo = billingPersistence.NewSQLiteAccessPolicyRepository(db)
		c.OutboxRepo = outbox.NewSQLiteRepository(db)
		c.UnitOfWork = sharedPersistence.NewSQLiteUnitOfWork(db)
		logger.Info("connected to database", "driver", "sqlite", "path", cfg.SQLitePath)
	}

	// Redis status cache (optional in development)
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				c.Close()
				return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
			}
			logger.Warn("invalid Redis URL, status checks will hit the ledger", "error", err)
		} else {
			redisClient := redis.NewClient(opt)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				if !cfg.IsDevelopment() {
					c.Close()
					return nil, fmt.Errorf("failed to connect to Redis: %w", err)
				}
				logger.Warn("Redis not available, status checks will hit the ledger", "error", err)
			} else {
				c.RedisClient = redisClient
				c.StatusCache = cache.NewRedisStatusCache(redisClient, cfg.StatusCacheTTL, logger)
				logger.Info("connected to Redis")
			}
		}
	}

	// Token gateway
	if cfg.TokenGatewayURL != "" {
		gwCfg := token.DefaultConfig(cfg.TokenGatewayURL)
		gwCfg.Timeout = cfg.TokenGatewayTimeout
		c.TokenGateway = token.NewHTTPGateway(gwCfg, logger)
	} else {
		if !cfg.IsDevelopment() {
			c.Close()
			return nil, fmt.Errorf("TOKEN_GATEWAY_URL is required outside development")
		}
		logger.Warn("no token gateway configured, using noop gateway")
		c.TokenGateway = token.NewNoopGateway(logger)
	}

	// Event publisher
	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				c.Close()
				return nil, err
			}
			logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
			c.EventPublisher = eventbus.NewNoopPublisher()
		} else {
			c.EventPublisher = publisher
		}
	} else {
		logger.Info("no event broker configured, using noop publisher")
		c.EventPublisher = eventbus.NewNoopPublisher()
	}

	processorCfg := outbox.DefaultProcessorConfig()
	processorCfg.PollInterval = cfg.OutboxPollInterval
	processorCfg.BatchSize = cfg.OutboxBatchSize
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorCfg, logger)

	if err := c.ensureAccessPolicy(ctx); err != nil {
		c.Close()
		return nil, err
	}

	custody := sharedDomain.NewIdentity(cfg.CustodyAccount)
	guard := commands.NewGuard()

	c.CreatePlanHandler = commands.NewCreatePlanHandler(c.PlanRepo, c.AccessRepo, c.OutboxRepo, c.UnitOfWork)
	c.UpdatePlanStatusHandler = commands.NewUpdatePlanStatusHandler(c.PlanRepo, c.AccessRepo, c.OutboxRepo, c.UnitOfWork)
	c.SubscribeHandler = commands.NewSubscribeHandler(c.PlanRepo, c.SubRepo, c.AccessRepo, c.OutboxRepo, c.UnitOfWork, c.TokenGateway, custody, guard, c.StatusCache)
	c.CancelHandler = commands.NewCancelSubscriptionHandler(c.PlanRepo, c.SubRepo, c.OutboxRepo, c.UnitOfWork, guard, c.StatusCache)
	c.CollectPaymentHandler = commands.NewCollectPaymentHandler(c.PlanRepo, c.SubRepo, c.AccessRepo, c.OutboxRepo, c.UnitOfWork, c.TokenGateway, custody, guard, c.StatusCache)
	c.SetPausedHandler = commands.NewSetPausedHandler(c.AccessRepo, c.OutboxRepo, c.UnitOfWork)
	c.AuthorizePullerHandler = commands.NewAuthorizePullerHandler(c.AccessRepo, c.OutboxRepo, c.UnitOfWork)
	c.TransferOwnershipHandler = commands.NewTransferOwnershipHandler(c.AccessRepo, c.OutboxRepo, c.UnitOfWork)

	c.GetPlanHandler = queries.NewGetPlanHandler(c.PlanRepo)
	c.GetPlanCountHandler = queries.NewGetPlanCountHandler(c.PlanRepo)
	c.ListPlansHandler = queries.NewListPlansHandler(c.PlanRepo)
	c.GetSubscriptionHandler = queries.NewGetSubscriptionHandler(c.SubRepo)
	c.IsSubscribedHandler = queries.NewIsSubscribedHandler(c.SubRepo, c.StatusCache)

	return c, nil
}

// ensureAccessPolicy initializes the authorization singleton with the
// configured owner on first run.
func (c *Container) ensureAccessPolicy(ctx context.Context) error {
	policy, err := c.AccessRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load access policy: %w", err)
	}
	if policy != nil || c.Config.OwnerAccount == "" {
		return nil
	}

	policy, err = billingDomain.NewAccessPolicy(sharedDomain.NewIdentity(c.Config.OwnerAccount))
	if err != nil {
		return fmt.Errorf("failed to create access policy: %w", err)
	}
	if err := c.AccessRepo.Save(ctx, policy); err != nil {
		return fmt.Errorf("failed to save access policy: %w", err)
	}
	c.Logger.Info("initialized access policy", "owner", c.Config.OwnerAccount)
	return nil
}

// Close releases all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.SQLiteDB != nil {
		if err := c.SQLiteDB.Close(); err != nil {
			c.Logger.Warn("error closing database", "error", err)
		}
	}
}
