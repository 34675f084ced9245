package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/cartodesk/internal/auth"
	"github.com/kirinyoku/cartodesk/internal/catalog"
	"github.com/kirinyoku/cartodesk/internal/config"
	"github.com/kirinyoku/cartodesk/internal/gamestore"
	"github.com/kirinyoku/cartodesk/internal/postgres"
	"github.com/kirinyoku/cartodesk/internal/redis"
	"github.com/kirinyoku/cartodesk/internal/report"
	postgresrepo "github.com/kirinyoku/cartodesk/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/cartodesk/internal/repository/redis"
	"github.com/kirinyoku/cartodesk/internal/service"
	"github.com/kirinyoku/cartodesk/internal/service/games"
	"github.com/kirinyoku/cartodesk/internal/service/reports"
	httpgin "github.com/kirinyoku/cartodesk/internal/transport/http/gin"
	"github.com/kirinyoku/cartodesk/internal/uow"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	store      *gamestore.Store
	pubsub     *redisrepo.GamesPubSub
	forwarder  *changeForwarder
	closers    []func()
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	if err := a.init(ctx); err != nil {
		a.close()
		return nil, err
	}

	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.cfg

	cat, err := catalog.Load(cfg.App.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	scope, err := report.ParseScope(cfg.App.ReportScope)
	if err != nil {
		return fmt.Errorf("invalid report scope: %w", err)
	}

	loc, err := time.LoadLocation(cfg.App.Location)
	if err != nil {
		return fmt.Errorf("invalid time zone: %w", err)
	}

	tokens, err := auth.NewManager(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize auth: %w", err)
	}

	// Storage
	var (
		persister gamestore.Persister
		spend     reports.SpendSource
	)
	switch cfg.Storage {
	case config.StorageMemory:
		persister = gamestore.NewMemoryPersister()
		spend = reports.NewMemorySpend()
		a.logger.Warn("using in-memory storage, data is lost on restart")
	default:
		pool, err := postgres.New(ctx, postgres.Config{
			DSN:      cfg.Postgres.DSN(),
			MaxConns: cfg.Postgres.MaxConns,
			Migrate:  cfg.Postgres.Migrate,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		pgStore := postgresrepo.NewStore(pool)
		u := uow.NewUoW(pgStore).WithOpts(pgx.TxOptions{
			IsoLevel:   pgx.RepeatableRead,
			AccessMode: pgx.ReadWrite,
		})
		persister = gamestore.NewPostgresPersister(pgStore, u, a.logger)
		spend = pgStore.Campaigns()
	}

	// Redis is optional; every consumer tolerates its absence.
	var (
		cache   *redisrepo.Cache
		idem    *redisrepo.IdempotencyStore
		limiter games.Limiter
	)
	if cfg.Redis.Enabled {
		rdb, err := redis.New(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })

		cache = redisrepo.NewCache(rdb, cfg.App.CampaignCacheTTL)
		idem = redisrepo.NewIdempotencyStore(rdb, cfg.App.IdempotencyTTL)
		if cfg.App.RateLimitPerMin > 0 {
			limiter = redisrepo.NewRateLimiter(rdb, "games", cfg.App.RateLimitPerMin, time.Minute)
		}
		a.pubsub = redisrepo.NewGamesPubSub(rdb, uuid.NewString())
	}

	a.store = gamestore.New(persister, gamestore.WithLogger(a.logger))
	if err := a.store.Load(ctx); err != nil {
		return fmt.Errorf("failed to load games: %w", err)
	}

	if a.pubsub != nil {
		a.forwarder = newChangeForwarder(a.pubsub, a.logger)
		a.store.Subscribe(a.forwarder.Enqueue)
		a.logger.Info("sharing game changes over redis", "origin", a.pubsub.Origin())
	}

	services := service.NewServices(a.store, cat, spend, cache, limiter, a.logger, service.Config{
		Reports: reports.Config{
			Scope:    scope,
			CacheTTL: cfg.App.CampaignCacheTTL,
			Location: loc,
		},
	})

	router := httpgin.NewRouter(services, idem, tokens, a.store, a.logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	defer a.close()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Cancelled on shutdown so that event streams end.
	a.httpServer.BaseContext = func(net.Listener) context.Context { return gCtx }

	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	if a.pubsub != nil {
		g.Go(func() error {
			return a.forwarder.Run(gCtx)
		})

		g.Go(func() error {
			err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, msg redisrepo.GamesChanged) {
				a.logger.Debug("games changed elsewhere", "origin", msg.Origin, "kind", msg.Kind)
				if err := a.store.Reload(ctx); err != nil {
					a.logger.Error("reload after remote change", slog.Any("err", err))
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("games subscription: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
