package handlers

import (
	"errors"

	"kycgate/internal/middleware"
	"kycgate/internal/services/provider"
	"kycgate/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type ProviderHandler struct {
	service provider.Service
}

func NewProviderHandler(service provider.Service) *ProviderHandler {
	return &ProviderHandler{service: service}
}

// AddProvider registers a new KYC provider. Admin only.
func (h *ProviderHandler) AddProvider(c *fiber.Ctx) error {
	var input struct {
		Address string `json:"address"`
		Name    string `json:"name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	p, err := h.service.AddProvider(c.Context(), middleware.CallerAddress(c), input.Address, input.Name)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrUnauthorized):
			return response.Forbidden(c, err.Error())
		case errors.Is(err, provider.ErrAlreadyExists):
			return response.Conflict(c, err.Error())
		case errors.Is(err, provider.ErrInvalidAddress):
			return response.BadRequest(c, err.Error())
		default:
			return response.ServerError(c, "Failed to add provider")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(p)
}

// RemoveProvider deactivates a provider. Admin only.
func (h *ProviderHandler) RemoveProvider(c *fiber.Ctx) error {
	address := c.Params("address")

	err := h.service.RemoveProvider(c.Context(), middleware.CallerAddress(c), address)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrUnauthorized):
			return response.Forbidden(c, err.Error())
		case errors.Is(err, provider.ErrNotFound):
			return response.NotFound(c, err.Error())
		default:
			return response.ServerError(c, "Failed to remove provider")
		}
	}

	return response.Success(c, "Provider deactivated", nil)
}

// ActivateProvider reactivates a previously removed provider. Admin only.
func (h *ProviderHandler) ActivateProvider(c *fiber.Ctx) error {
	address := c.Params("address")

	err := h.service.ActivateProvider(c.Context(), middleware.CallerAddress(c), address)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrUnauthorized):
			return response.Forbidden(c, err.Error())
		case errors.Is(err, provider.ErrNotFound):
			return response.NotFound(c, err.Error())
		default:
			return response.ServerError(c, "Failed to activate provider")
		}
	}

	return response.Success(c, "Provider activated", nil)
}

// GetProvider returns one provider by address.
func (h *ProviderHandler) GetProvider(c *fiber.Ctx) error {
	p, err := h.service.GetProvider(c.Context(), c.Params("address"))
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.ServerError(c, "Failed to get provider")
	}
	return c.JSON(p)
}

// ListProviders returns every registered provider, active or not.
func (h *ProviderHandler) ListProviders(c *fiber.Ctx) error {
	providers, err := h.service.ListProviders(c.Context())
	if err != nil {
		return response.ServerError(c, "Failed to list providers")
	}
	return c.JSON(fiber.Map{"providers": providers})
}
