package handlers

import (
	"kycgate/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

func HealthCheck(c *fiber.Ctx) error {
	services := fiber.Map{
		"database": "connected",
		"redis":    "connected",
	}
	if repositories.CacheService != nil {
		if err := repositories.CacheService.HealthCheck(c.Context()); err != nil {
			services["redis"] = "unavailable"
		}
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"version":  "1.0.0",
		"services": services,
	})
}
