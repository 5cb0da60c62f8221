package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Check pings one dependency.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Check
}

// NewHealthHandler reports on each named dependency. A nil map means none.
func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	services := fiber.Map{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			services[name] = err.Error()
			status = "degraded"
			continue
		}
		services[name] = "connected"
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"services": services,
	})
}
