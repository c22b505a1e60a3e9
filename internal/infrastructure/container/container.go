package container

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/sparkchat-backend/internal/config"
	"github.com/gdugdh24/sparkchat-backend/internal/delivery/http"
	"github.com/gdugdh24/sparkchat-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/sparkchat-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/sparkchat-backend/internal/delivery/realtime"
	"github.com/gdugdh24/sparkchat-backend/internal/infrastructure/database"
	"github.com/gdugdh24/sparkchat-backend/internal/infrastructure/gemini"
	"github.com/gdugdh24/sparkchat-backend/internal/infrastructure/server"
	"github.com/gdugdh24/sparkchat-backend/internal/repository"
	"github.com/gdugdh24/sparkchat-backend/internal/repository/memory"
	"github.com/gdugdh24/sparkchat-backend/internal/repository/postgres"
	"github.com/gdugdh24/sparkchat-backend/internal/usecase/auth"
	"github.com/gdugdh24/sparkchat-backend/internal/usecase/match"
	"github.com/gdugdh24/sparkchat-backend/internal/usecase/message"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	Config  *config.Config
	Log     logrus.FieldLogger
	DB      *sqlx.DB
	Redis   *redis.Client
	Gemini  *gemini.GeminiClient
	Gateway *realtime.Gateway
	Server  *server.Server
}

type repositories struct {
	likes         repository.LikeLedger
	matches       repository.MatchRepository
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	users         repository.UserRepository
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Container, error) {
	c := &Container{Config: cfg, Log: log}

	repos, err := c.initRepositories(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	// Realtime fan-out and presence go through Redis only when it is enabled
	var gatewayOpts []realtime.Option
	if cfg.Redis.Enabled {
		c.Redis, err = database.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		gatewayOpts = append(gatewayOpts,
			realtime.WithRelay(realtime.NewRedisRelay(c.Redis, realtime.DefaultRelayChannel, log)),
			realtime.WithPresence(realtime.NewRedisPresence(c.Redis, 2*cfg.Realtime.PingInterval)),
		)
	}

	// Icebreakers are optional; without a key matches simply have none
	var icebreakers match.IcebreakerGenerator
	if cfg.GeminiAPIKey != "" {
		c.Gemini, err = gemini.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.WithError(err).Warn("gemini client unavailable, icebreakers disabled")
		} else {
			icebreakers = c.Gemini
		}
	}

	tokenService := auth.NewTokenService(cfg.JWT.AccessSecret)

	c.Gateway = realtime.NewGateway(tokenService, realtime.Config{
		PingInterval: cfg.Realtime.PingInterval,
		WriteTimeout: cfg.Realtime.WriteTimeout,
	}, log, gatewayOpts...)

	// Initialize use cases
	matchUseCase := match.NewMatchUseCase(
		repos.likes,
		repos.matches,
		repos.conversations,
		repos.users,
		c.Gateway,
		c.Gateway,
		icebreakers,
		log,
	)

	messageUseCase := message.NewMessageUseCase(
		repos.conversations,
		repos.messages,
		c.Gateway,
		message.Limits{
			Default: cfg.Messages.DefaultLimit,
			Max:     cfg.Messages.MaxLimit,
		},
		log,
	)

	if err := handler.RegisterValidators(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := http.NewRouter(
		handler.NewMatchHandler(matchUseCase),
		handler.NewConversationHandler(messageUseCase),
		middleware.NewAuthMiddleware(tokenService),
		c.Gateway,
		log,
	)

	c.Server = server.NewServer(&cfg.Server, router.Setup(), log)

	return c, nil
}

func (c *Container) initRepositories(ctx context.Context) (*repositories, error) {
	switch c.Config.Storage.Type {
	case config.StorageMemory:
		store := memory.NewStore()
		if path := c.Config.Storage.Path; path != "" {
			n, err := store.LoadUsers(path)
			if err != nil {
				return nil, fmt.Errorf("failed to seed users: %w", err)
			}
			c.Log.WithField("count", n).Info("seeded users into memory store")
		}
		c.Log.Warn("using in-memory storage, data is lost on restart")
		return &repositories{
			likes:         store.LikeLedger(),
			matches:       store.Matches(),
			conversations: store.Conversations(),
			messages:      store.Messages(),
			users:         store.Users(),
		}, nil

	case config.StoragePostgres:
		db, err := database.NewPostgresDB(ctx, &c.Config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db

		if c.Config.Database.AutoMigrate {
			migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if err := database.Migrate(migrateCtx, db); err != nil {
				return nil, err
			}
		}
		return &repositories{
			likes:         postgres.NewLikeLedger(db),
			matches:       postgres.NewMatchRepository(db),
			conversations: postgres.NewConversationRepository(db),
			messages:      postgres.NewMessageRepository(db),
			users:         postgres.NewUserRepository(db),
		}, nil
	}
	return nil, fmt.Errorf("unknown storage type %q", c.Config.Storage.Type)
}

// Close closes all connections
func (c *Container) Close() {
	if c.Gemini != nil {
		if err := c.Gemini.Close(); err != nil {
			c.Log.WithError(err).Warn("error closing gemini client")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.WithError(err).Warn("error closing redis")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Log.WithError(err).Warn("error closing database")
		}
	}
}
