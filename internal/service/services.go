package service

import (
	"log/slog"

	"github.com/kirinyoku/cartodesk/internal/catalog"
	"github.com/kirinyoku/cartodesk/internal/gamestore"
	redisrepo "github.com/kirinyoku/cartodesk/internal/repository/redis"
	"github.com/kirinyoku/cartodesk/internal/service/games"
	"github.com/kirinyoku/cartodesk/internal/service/lifecycle"
	"github.com/kirinyoku/cartodesk/internal/service/reports"
)

type Services struct {
	Games     *games.Service
	Lifecycle *lifecycle.Service
	Reports   *reports.Service
}

type Config struct {
	Reports reports.Config
}

// NewServices wires the services over one store. limiter and cache may be nil.
func NewServices(
	store *gamestore.Store,
	cat *catalog.Catalog,
	spend reports.SpendSource,
	cache *redisrepo.Cache,
	limiter games.Limiter,
	logger *slog.Logger,
	cfg Config,
) *Services {
	return &Services{
		Games:     games.New(store, cat, limiter, logger),
		Lifecycle: lifecycle.New(store, cat, logger),
		Reports:   reports.New(store, cat, spend, cache, logger, cfg.Reports),
	}
}
