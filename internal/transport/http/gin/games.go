package httpgin

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/cartodesk/internal/domain"
	redisrepo "github.com/kirinyoku/cartodesk/internal/repository/redis"
	"github.com/kirinyoku/cartodesk/internal/service"
	"github.com/kirinyoku/cartodesk/internal/service/games"
)

const idemLockTTL = 60 * time.Second

// @Summary  Practitioners and game types
// @Security BearerAuth
// @Success  200  {object}  CatalogResponse
// @Router   /catalog [get]
func handleGetCatalog(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat := svcs.Games.Catalog()
		c.JSON(http.StatusOK, CatalogResponse{
			Practitioners: cat.Practitioners(),
			GameTypes:     cat.GameTypes(),
		})
	}
}

// @Summary  Record a paid game (idempotent)
// @Security BearerAuth
// @Param    req body  CreateGameRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} domain.Game
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "idempotency key in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /games [post]
func handleCreateGame(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateGameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx := c.Request.Context()

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemGame(c.GetString("user_id"), idemKey)

			if payload, ok, _ := idem.GetResult(ctx, idemStorageKey); ok {
				replay(c, idemKey, payload)
				return
			}

			locked, err := idem.AcquireLock(ctx, idemStorageKey, idemLockTTL)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(ctx, idemStorageKey); ok {
					replay(c, idemKey, payload)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		g, err := svcs.Games.Create(ctx, games.CreateInput{
			ClientName:       req.ClientName,
			GameTypeID:       req.GameTypeID,
			PractitionerID:   req.PractitionerID,
			Value:            req.Value,
			Date:             req.Date,
			PaymentTime:      req.PaymentTime,
			Status:           req.Status,
			Campaign:         req.Campaign,
			ConversationLink: req.ConversationLink,
		}, "ip:"+c.ClientIP())
		if err != nil {
			if idemStorageKey != "" {
				_ = idem.Release(ctx, idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		if idemStorageKey != "" {
			b, _ := json.Marshal(g)
			_ = idem.SaveResult(ctx, idemStorageKey, b)
			c.Header("Idempotency-Key", idemKey)
		}

		c.Header("ETag", versionETag(g.Version))
		c.JSON(http.StatusCreated, g)
	}
}

func replay(c *gin.Context, idemKey string, payload []byte) {
	c.Header("Idempotency-Key", idemKey)
	c.Data(http.StatusCreated, "application/json; charset=utf-8", payload)
}

// @Summary  List games
// @Security BearerAuth
// @Param    status          query  string  false "waiting|in_progress|finished|paid_only"
// @Param    date            query  string  false "YYYY-MM-DD"
// @Param    practitioner_id query  string  false "practitioner"
// @Success  200  {array}   domain.Game
// @Failure  400  {object}  ErrorResponse
// @Router   /games [get]
func handleListGames(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := games.Filter{
			Date:           c.Query("date"),
			PractitionerID: c.Query("practitioner_id"),
		}

		if v := c.Query("status"); v != "" {
			st, err := domain.ParseStatus(v)
			if err != nil {
				badRequest(c, "invalid status")
				return
			}
			f.Status = st
		}

		if f.Date != "" {
			if _, err := time.Parse(domain.DateLayout, f.Date); err != nil {
				badRequest(c, "invalid date")
				return
			}
		}

		c.JSON(http.StatusOK, svcs.Games.List(c.Request.Context(), f))
	}
}

// @Summary  Get game
// @Security BearerAuth
// @Param    id  path  string  true  "Game ID"
// @Success  200  {object}  domain.Game
// @Failure  404  {object}  ErrorResponse
// @Router   /games/{id} [get]
func handleGetGame(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, err := svcs.Games.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Header("ETag", versionETag(g.Version))
		c.JSON(http.StatusOK, g)
	}
}

// @Summary  Queue position and estimated wait of a game
// @Security BearerAuth
// @Param    id  path  string  true  "Game ID"
// @Success  200  {object}  WaitResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /games/{id}/wait [get]
func handleGetWait(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		pos, err := svcs.Lifecycle.Position(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		wait, err := svcs.Lifecycle.Wait(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, WaitResponse{GameID: id, Position: pos, WaitMinutes: wait})
	}
}
