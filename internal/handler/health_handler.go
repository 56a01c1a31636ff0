package handler

import (
	"context"
	"time"

	"quiz-results/internal/dto"
	"quiz-results/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// DBPinger is satisfied by *sqlx.DB.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// CachePinger is satisfied by domain.Cache.
type CachePinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    DBPinger
	cache CachePinger
}

func NewHealthHandler(db DBPinger, cache CachePinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Health godoc
// @Summary Health check
// @Description Pings the database and the answer cache. A cache outage only degrades the service.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), healthCheckTimeout)
	defer cancel()

	resp := dto.HealthResponse{Status: "ok", Database: "up", Cache: "up"}
	status := fiber.StatusOK

	if err := h.db.PingContext(ctx); err != nil {
		logger.Get().Error("Database health check failed", zap.Error(err))
		resp.Database = "down"
		resp.Status = "unavailable"
		status = fiber.StatusServiceUnavailable
	}
	if h.cache == nil {
		resp.Cache = "disabled"
	} else if err := h.cache.Ping(ctx); err != nil {
		logger.Get().Warn("Cache health check failed", zap.Error(err))
		resp.Cache = "down"
		if status == fiber.StatusOK {
			resp.Status = "degraded"
		}
	}
	return c.Status(status).JSON(resp)
}
