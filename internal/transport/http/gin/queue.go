package httpgin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/kirinyoku/cartodesk/internal/service"
	"github.com/kirinyoku/cartodesk/internal/service/lifecycle"
)

// @Summary  Start attending a waiting game
// @Security BearerAuth
// @Param    id        path   string  true   "Game ID"
// @Param    If-Match  header string  false  "expected version"
// @Success  200  {object}  lifecycle.StartResult
// @Failure  409  {object}  ErrorResponse "busy practitioner / wrong status / stale version"
// @Router   /games/{id}/start [post]
func handleStartGame(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		version, ok := ifMatchVersion(c)
		if !ok {
			return
		}

		res, err := svcs.Lifecycle.Start(c.Request.Context(), c.Param("id"), version)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.Header("ETag", versionETag(res.Game.Version))
		c.JSON(http.StatusOK, res)
	}
}

// @Summary  Finish an in-progress game
// @Security BearerAuth
// @Param    id        path   string  true   "Game ID"
// @Param    If-Match  header string  false  "expected version"
// @Success  200  {object}  domain.Game
// @Failure  409  {object}  ErrorResponse
// @Router   /games/{id}/finish [post]
func handleFinishGame(svcs *service.Services) gin.HandlerFunc {
	return transition(svcs.Lifecycle.Finish)
}

// @Summary  Return a finished game to in progress (admin)
// @Security BearerAuth
// @Param    id        path   string  true   "Game ID"
// @Param    If-Match  header string  false  "expected version"
// @Success  200  {object}  domain.Game
// @Failure  403  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse
// @Router   /games/{id}/revert [post]
func handleRevertGame(svcs *service.Services) gin.HandlerFunc {
	return transition(svcs.Lifecycle.Revert)
}

type transitionFunc func(ctx context.Context, id string, version int64) (domain.Game, error)

func transition(fn transitionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		version, ok := ifMatchVersion(c)
		if !ok {
			return
		}

		g, err := fn(c.Request.Context(), c.Param("id"), version)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.Header("ETag", versionETag(g.Version))
		c.JSON(http.StatusOK, g)
	}
}

// @Summary  Move a waiting game one place up or down
// @Security BearerAuth
// @Param    id   path  string      true  "Game ID"
// @Param    req  body  MoveRequest true  "payload"
// @Success  200  {array}   queue.Entry
// @Failure  400  {object}  ErrorResponse "already at the edge"
// @Router   /games/{id}/move [post]
func handleMoveGame(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MoveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		entries, err := svcs.Lifecycle.Reorder(
			c.Request.Context(),
			c.Param("id"),
			lifecycle.Direction(req.Direction),
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, entries)
	}
}

// @Summary  Waiting list with positions and estimated waits
// @Security BearerAuth
// @Param    practitioner_id query string false "practitioner; empty lists all"
// @Success  200  {array}  queue.Entry
// @Router   /queue [get]
func handleGetQueue(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries := svcs.Lifecycle.Queue(c.Request.Context(), c.Query("practitioner_id"))
		writeJSONWithETag(c, http.StatusOK, entries)
	}
}

// @Summary  Waiting, in progress and finished columns
// @Security BearerAuth
// @Param    practitioner_id query string false "practitioner; empty shows all"
// @Success  200  {object}  queue.Board
// @Router   /queue/board [get]
func handleGetBoard(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		board := svcs.Lifecycle.Board(c.Request.Context(), c.Query("practitioner_id"))
		writeJSONWithETag(c, http.StatusOK, board)
	}
}

// @Summary  Load balancing hints per practitioner
// @Security BearerAuth
// @Success  200  {array}  queue.Optimization
// @Router   /queue/optimizations [get]
func handleGetOptimizations(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svcs.Lifecycle.Optimizations(c.Request.Context()))
	}
}

// @Summary  Next waiting game of a practitioner
// @Security BearerAuth
// @Param    id  path  string  true  "Practitioner ID"
// @Success  200  {object}  domain.Game
// @Success  204  "queue empty"
// @Router   /practitioners/{id}/next [get]
func handleGetNext(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := svcs.Lifecycle.Next(c.Request.Context(), c.Param("id"))
		if !ok {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, g)
	}
}

// @Summary  Game a practitioner is attending
// @Security BearerAuth
// @Param    id  path  string  true  "Practitioner ID"
// @Success  200  {object}  domain.Game
// @Success  204  "idle"
// @Router   /practitioners/{id}/active [get]
func handleGetActive(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := svcs.Lifecycle.Active(c.Request.Context(), c.Param("id"))
		if !ok {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, g)
	}
}
