// @title           User Management API
// @version         1.0
// @description     Role-based user management: registration, login, profile and admin account management.
// @BasePath        /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/userdesk/user-management/internal/api"
	"github.com/userdesk/user-management/internal/api/handler"
	"github.com/userdesk/user-management/internal/core/ports"
	"github.com/userdesk/user-management/internal/core/service"
	"github.com/userdesk/user-management/internal/infrastructure/config"
	mongostore "github.com/userdesk/user-management/internal/infrastructure/db/mongo"
	redisstore "github.com/userdesk/user-management/internal/infrastructure/db/redis"
	"github.com/userdesk/user-management/internal/infrastructure/db/sqlstore"
	"github.com/userdesk/user-management/internal/infrastructure/mq"
	"github.com/userdesk/user-management/internal/infrastructure/seed"
	"github.com/userdesk/user-management/internal/infrastructure/token"
	"github.com/userdesk/user-management/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "user-management-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

// closers run in reverse order on shutdown.
type closers []func()

func (c closers) close() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var cleanup closers
	defer cleanup.close()

	readiness := map[string]handler.Pinger{}

	// --- Credential store ---
	var users ports.UserRepository
	switch cfg.Database.Driver {
	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
			DialTimeout: cfg.Mongo.DialTimeout,
		})
		if err != nil {
			return err
		}
		cleanup = append(cleanup, func() { _ = client.Disconnect(context.Background()) })
		repo := mongostore.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		users = repo
		readiness["mongodb"] = mongostore.Pinger{DB: db}
	default:
		db, err := sqlstore.Open(ctx, sqlstore.Config{
			Driver:       cfg.Database.Driver,
			DSN:          cfg.Database.URL,
			MaxOpenConns: cfg.Database.MaxOpenConns,
		})
		if err != nil {
			return err
		}
		cleanup = append(cleanup, func() { _ = sqlstore.Close(db) })
		users = sqlstore.NewUserRepository(db)
		readiness["database"] = sqlstore.Pinger{DB: db}
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("credential store ready")

	// --- Token revocation ---
	var revoked ports.RevocationStore
	switch cfg.Redis.Backend {
	case config.RevocationMemory:
		revoked = token.NewMemoryRevocationList()
		log.Warn().Msg("using in-process revocation list; logouts are not shared between instances")
	default:
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		cleanup = append(cleanup, func() { _ = rdb.Close() })
		revoked = redisstore.NewRevocationList(rdb)
		readiness["redis"] = redisstore.Pinger{Client: rdb}
	}

	// --- User events ---
	var events ports.UserEventPublisher = mq.NopPublisher{}
	if cfg.AMQP.URL != "" {
		pub, err := mq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		cleanup = append(cleanup, func() { _ = pub.Close() })
		events = pub
		log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("publishing user events")
	}

	// --- Services ---
	issuer := token.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(users, issuer, revoked, events, log.With().Str("component", "auth").Logger())
	userService := service.NewUserService(users, events, log.With().Str("component", "users").Logger())

	if cfg.Seed.Enabled {
		seeder := seed.NewSeeder(users, userService, log.With().Str("component", "seed").Logger())
		if _, err := seeder.Run(ctx, seed.DefaultAccounts(cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)); err != nil {
			return err
		}
	}

	e := api.NewRouter(api.Dependencies{
		Log:         log,
		AuthService: authService,
		UserService: userService,
		Readiness:   readiness,
		APIPrefix:   cfg.APIPrefix,
		CORSOrigins: cfg.CORSOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("prefix", cfg.APIPrefix).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
