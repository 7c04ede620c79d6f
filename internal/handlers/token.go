package handlers

import (
	"errors"

	"kycgate/internal/middleware"
	"kycgate/internal/services/token"
	"kycgate/internal/utils"
	"kycgate/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// TokenHandler exposes the mock stablecoin. Amounts cross the API as
// decimal strings and are converted with the token's own decimals.
type TokenHandler struct {
	stablecoin token.Stablecoin
	faucet     token.Faucet
}

func NewTokenHandler(stablecoin token.Stablecoin, faucet token.Faucet) *TokenHandler {
	return &TokenHandler{stablecoin: stablecoin, faucet: faucet}
}

func (h *TokenHandler) Info(c *fiber.Ctx) error {
	name, err := h.stablecoin.Name(c.Context())
	if err != nil {
		return response.ServerError(c, "Failed to get token info")
	}
	symbol, _ := h.stablecoin.Symbol(c.Context())
	decimals, _ := h.stablecoin.Decimals(c.Context())
	supply, _ := h.stablecoin.TotalSupply(c.Context())

	return c.JSON(fiber.Map{
		"name":         name,
		"symbol":       symbol,
		"decimals":     decimals,
		"total_supply": utils.FormatUnits(supply, decimals),
	})
}

func (h *TokenHandler) BalanceOf(c *fiber.Ctx) error {
	balance, err := h.stablecoin.BalanceOf(c.Context(), c.Params("address"))
	if err != nil {
		return response.ServerError(c, "Failed to get balance")
	}
	decimals, err := h.stablecoin.Decimals(c.Context())
	if err != nil {
		return response.ServerError(c, "Failed to get balance")
	}
	return c.JSON(fiber.Map{
		"address":   c.Params("address"),
		"balance":   balance,
		"formatted": utils.FormatUnits(balance, decimals),
	})
}

func (h *TokenHandler) Transfer(c *fiber.Ctx) error {
	var input struct {
		To     string `json:"to"`
		Amount string `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	amount, err := h.parseAmount(c, input.Amount)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.stablecoin.Transfer(c.Context(), middleware.CallerAddress(c), input.To, amount); err != nil {
		return h.mapError(c, err, "Transfer failed")
	}
	return response.Success(c, "Transfer completed", nil)
}

func (h *TokenHandler) Approve(c *fiber.Ctx) error {
	var input struct {
		Spender string `json:"spender"`
		Amount  string `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	amount, err := h.parseAmount(c, input.Amount)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.stablecoin.Approve(c.Context(), middleware.CallerAddress(c), input.Spender, amount); err != nil {
		return h.mapError(c, err, "Approve failed")
	}
	return response.Success(c, "Allowance set", nil)
}

func (h *TokenHandler) Allowance(c *fiber.Ctx) error {
	allowance, err := h.stablecoin.Allowance(c.Context(), c.Params("owner"), c.Params("spender"))
	if err != nil {
		return response.ServerError(c, "Failed to get allowance")
	}
	return c.JSON(fiber.Map{"allowance": allowance})
}

// Faucet mints demo funds to the caller. Admin only.
func (h *TokenHandler) Faucet(c *fiber.Ctx) error {
	var input struct {
		To     string `json:"to"`
		Amount string `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	amount, err := h.parseAmount(c, input.Amount)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.faucet.Mint(c.Context(), input.To, amount); err != nil {
		return h.mapError(c, err, "Mint failed")
	}
	return response.Success(c, "Tokens minted", nil)
}

func (h *TokenHandler) parseAmount(c *fiber.Ctx, raw string) (int64, error) {
	decimals, err := h.stablecoin.Decimals(c.Context())
	if err != nil {
		return 0, err
	}
	return utils.ParseUnits(raw, decimals)
}

func (h *TokenHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, token.ErrInsufficientBalance),
		errors.Is(err, token.ErrAllowanceExceeded):
		return response.Conflict(c, err.Error())
	case errors.Is(err, token.ErrInvalidAddress),
		errors.Is(err, token.ErrInvalidAmount):
		return response.BadRequest(c, err.Error())
	default:
		return response.ServerError(c, fallback)
	}
}
