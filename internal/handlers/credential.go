package handlers

import (
	"errors"

	"kycgate/internal/middleware"
	"kycgate/internal/services/credential"
	"kycgate/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type CredentialHandler struct {
	service credential.Service
}

func NewCredentialHandler(service credential.Service) *CredentialHandler {
	return &CredentialHandler{service: service}
}

func (h *CredentialHandler) Mint(c *fiber.Ctx) error {
	var req credential.MintRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	minted, err := h.service.MintSBT(c.Context(), middleware.CallerAddress(c), req)
	if err != nil {
		return h.mapError(c, err, "Failed to mint credential")
	}
	return c.Status(fiber.StatusCreated).JSON(minted)
}

func (h *CredentialHandler) Revoke(c *fiber.Ctx) error {
	var input struct {
		UserAddress string `json:"user_address"`
		Reason      string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	err := h.service.Revoke(c.Context(), middleware.CallerAddress(c), input.UserAddress, input.Reason)
	if err != nil {
		return h.mapError(c, err, "Failed to revoke credential")
	}
	return response.Success(c, "Credential revoked", nil)
}

func (h *CredentialHandler) Renew(c *fiber.Ctx) error {
	var input struct {
		UserAddress string `json:"user_address"`
		ExpiryDays  int    `json:"expiry_days"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	err := h.service.Renew(c.Context(), middleware.CallerAddress(c), input.UserAddress, input.ExpiryDays)
	if err != nil {
		return h.mapError(c, err, "Failed to renew credential")
	}
	return response.Success(c, "Credential renewed", nil)
}

// CheckExpiry materializes an expiry if the credential's date has
// passed. Callable by anyone; idempotent.
func (h *CredentialHandler) CheckExpiry(c *fiber.Ctx) error {
	expired, err := h.service.CheckExpiry(c.Context(), c.Params("address"))
	if err != nil {
		return h.mapError(c, err, "Failed to check expiry")
	}
	return c.JSON(fiber.Map{"expired": expired})
}

func (h *CredentialHandler) GetUserSBT(c *fiber.Ctx) error {
	cred, err := h.service.GetUserSBT(c.Context(), c.Params("address"))
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.ServerError(c, "Failed to get credential")
	}
	return c.JSON(cred)
}

func (h *CredentialHandler) IsVerified(c *fiber.Ctx) error {
	verified, err := h.service.IsVerified(c.Context(), c.Params("address"))
	if err != nil {
		return response.ServerError(c, "Failed to check credential")
	}
	return c.JSON(fiber.Map{"verified": verified})
}

func (h *CredentialHandler) BalanceOf(c *fiber.Ctx) error {
	balance, err := h.service.BalanceOf(c.Context(), c.Params("address"))
	if err != nil {
		return response.ServerError(c, "Failed to get balance")
	}
	return c.JSON(fiber.Map{"balance": balance})
}

// Transfer always fails: credentials are soul-bound.
func (h *CredentialHandler) Transfer(c *fiber.Ctx) error {
	var input struct {
		From    string `json:"from"`
		To      string `json:"to"`
		TokenID uint64 `json:"token_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	err := h.service.TransferFrom(c.Context(), middleware.CallerAddress(c), input.From, input.To, input.TokenID)
	if err != nil {
		return h.mapError(c, err, "Failed to transfer")
	}
	return response.Success(c, "Transferred", nil)
}

func (h *CredentialHandler) AddMinter(c *fiber.Ctx) error {
	var input struct {
		Minter string `json:"minter"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	err := h.service.AddMinter(c.Context(), middleware.CallerAddress(c), input.Minter)
	if err != nil {
		return h.mapError(c, err, "Failed to add minter")
	}
	return response.Success(c, "Minter added", nil)
}

func (h *CredentialHandler) RemoveMinter(c *fiber.Ctx) error {
	err := h.service.RemoveMinter(c.Context(), middleware.CallerAddress(c), c.Params("address"))
	if err != nil {
		return h.mapError(c, err, "Failed to remove minter")
	}
	return response.Success(c, "Minter removed", nil)
}

func (h *CredentialHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, credential.ErrUnauthorized),
		errors.Is(err, credential.ErrOwnerOnly):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, credential.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, credential.ErrAlreadyVerified),
		errors.Is(err, credential.ErrNonTransferable):
		return response.Conflict(c, err.Error())
	case errors.Is(err, credential.ErrInvalidAddress),
		errors.Is(err, credential.ErrInvalidExpiry):
		return response.BadRequest(c, err.Error())
	default:
		return response.ServerError(c, fallback)
	}
}
