package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/crmdb/internal/backup"
	"github.com/localnerve/crmdb/internal/config"
	"github.com/localnerve/crmdb/internal/services"
	"github.com/sirupsen/logrus"
)

// HealthHandler reports storage and backup reachability
type HealthHandler struct {
	Config  *config.Config
	Storage services.Pinger
	Sink    backup.Sink
	Logger  *logrus.Logger
}

// Health handles GET /api/health
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Config, h.Storage, h.Sink, h.Logger)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
