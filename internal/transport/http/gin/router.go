package httpgin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/cartodesk/internal/auth"
	"github.com/kirinyoku/cartodesk/internal/gamestore"
	"github.com/kirinyoku/cartodesk/internal/rbac"
	redisrepo "github.com/kirinyoku/cartodesk/internal/repository/redis"
	"github.com/kirinyoku/cartodesk/internal/service"
	"github.com/kirinyoku/cartodesk/internal/service/games"
	"github.com/kirinyoku/cartodesk/internal/service/lifecycle"
	"github.com/kirinyoku/cartodesk/internal/service/reports"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// EventSource delivers store change notifications to the live stream.
type EventSource interface {
	Subscribe(fn func(gamestore.Event)) (unsubscribe func())
}

// NewRouter builds the HTTP API. idem may be nil to disable idempotent replays.
func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	tokens *auth.Manager,
	events EventSource,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), RequestIDMiddleware(logger), LoggingMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/", auth.RequireAccessToken(tokens))
	{
		api.GET("/catalog", handleGetCatalog(svcs))

		api.POST("/games", handleCreateGame(svcs, idem))
		api.GET("/games", handleListGames(svcs))
		api.GET("/games/:id", handleGetGame(svcs))
		api.GET("/games/:id/wait", handleGetWait(svcs))

		api.POST("/games/:id/start", handleStartGame(svcs))
		api.POST("/games/:id/finish", handleFinishGame(svcs))
		api.POST("/games/:id/revert", rbac.RequireAnyRole(rbac.RoleAdmin), handleRevertGame(svcs))
		api.POST("/games/:id/move", handleMoveGame(svcs))

		api.GET("/queue", handleGetQueue(svcs))
		api.GET("/queue/board", handleGetBoard(svcs))
		api.GET("/queue/optimizations", handleGetOptimizations(svcs))

		api.GET("/practitioners/:id/next", handleGetNext(svcs))
		api.GET("/practitioners/:id/active", handleGetActive(svcs))

		api.GET("/reports/dashboard", handleGetDashboard(svcs))

		api.GET("/events", handleStreamEvents(events))
	}

	admin := api.Group("/", rbac.RequireAnyRole(rbac.RoleAdmin))
	{
		admin.GET("/reports/clients", handleGetClients(svcs))
		admin.GET("/reports/financial", handleGetFinancial(svcs))
		admin.GET("/reports/profit", handleGetProfit(svcs))
		admin.GET("/reports/campaigns", handleGetCampaigns(svcs))
		admin.GET("/reports/export", handleExportFinished(svcs))
		admin.PUT("/campaigns/:name/spend", handleSetSpend(svcs))
	}

	return r
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	var rl games.RateLimitedError

	switch {
	case errors.As(err, &rl):
		c.Header("Retry-After", redisrepo.RetryAfterSeconds(rl.RetryAfter))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})

	case errors.Is(err, games.ErrNotFound),
		errors.Is(err, lifecycle.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "game not found"})

	case errors.Is(err, games.ErrValidation),
		errors.Is(err, reports.ErrValidation),
		errors.Is(err, lifecycle.ErrInvalidMove):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, games.ErrForbidden),
		errors.Is(err, lifecycle.ErrForbidden),
		errors.Is(err, reports.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})

	case errors.Is(err, lifecycle.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: lifecycle.ErrInvalidTransition.Error()})
	case errors.Is(err, lifecycle.ErrPractitionerBusy):
		c.JSON(http.StatusConflict, ErrorResponse{Error: lifecycle.ErrPractitionerBusy.Error()})
	case errors.Is(err, lifecycle.ErrConflict),
		errors.Is(err, gamestore.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: lifecycle.ErrConflict.Error()})

	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
