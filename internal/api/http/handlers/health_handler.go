package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-service/internal/persistence"
)

// HealthHandler serves liveness/readiness probes. Postgres gates readiness;
// redis is a cache and only shows up as informational.
type HealthHandler struct {
	pool  *pgxpool.Pool
	redis *persistence.Redis
}

// NewHealthHandler constructs handler.
func NewHealthHandler(pool *pgxpool.Pool, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{pool: pool, redis: redis}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready GET /health/ready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{}
	ready := true

	if h.pool != nil {
		if err := h.pool.Ping(c.UserContext()); err != nil {
			checks["postgres"] = err.Error()
			ready = false
		} else {
			checks["postgres"] = "ok"
		}
	} else {
		checks["postgres"] = "not configured"
		ready = false
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.UserContext()); err != nil {
			checks["redis"] = err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	status := fiber.StatusOK
	if !ready {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"checks": checks})
}
