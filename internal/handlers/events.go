package handlers

import (
	"strconv"

	"kycgate/internal/repositories"
	"kycgate/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// EventHandler exposes the audit log.
type EventHandler struct {
	repo repositories.EventRepository
}

func NewEventHandler(repo repositories.EventRepository) *EventHandler {
	return &EventHandler{repo: repo}
}

// List returns recent events, optionally filtered by component and name.
func (h *EventHandler) List(c *fiber.Ctx) error {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return response.BadRequest(c, "Invalid limit")
		}
		limit = parsed
	}

	events, err := h.repo.List(c.Query("component"), c.Query("name"), limit)
	if err != nil {
		return response.ServerError(c, "Failed to list events")
	}
	return c.JSON(fiber.Map{"events": events})
}
