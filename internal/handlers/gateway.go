package handlers

import (
	"errors"
	"strconv"

	"kycgate/internal/middleware"
	"kycgate/internal/repositories"
	"kycgate/internal/services/gateway"
	"kycgate/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type GatewayHandler struct {
	service gateway.Service
}

func NewGatewayHandler(service gateway.Service) *GatewayHandler {
	return &GatewayHandler{service: service}
}

func (h *GatewayHandler) SendPayment(c *fiber.Ctx) error {
	var req gateway.SendRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	payment, err := h.service.SendPayment(c.Context(), middleware.CallerAddress(c), &req)
	if err != nil {
		return h.mapError(c, err, "Payment failed")
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

func (h *GatewayHandler) SendBatchPayments(c *fiber.Ctx) error {
	var req gateway.BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	payments, err := h.service.SendBatchPayments(c.Context(), middleware.CallerAddress(c), &req)
	if err != nil {
		return h.mapError(c, err, "Batch payment failed")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"payments": payments})
}

func (h *GatewayHandler) CanSend(c *fiber.Ctx) error {
	decision, err := h.service.CanSendPayment(c.Context(), c.Params("address"))
	if err != nil {
		return response.ServerError(c, "Failed to check eligibility")
	}
	return c.JSON(decisionBody(decision))
}

func (h *GatewayHandler) CanReceive(c *fiber.Ctx) error {
	decision, err := h.service.CanReceivePayment(c.Context(), c.Params("address"))
	if err != nil {
		return response.ServerError(c, "Failed to check eligibility")
	}
	return c.JSON(decisionBody(decision))
}

func (h *GatewayHandler) GetPayment(c *fiber.Ctx) error {
	payment, err := h.service.GetPayment(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return response.NotFound(c, "payment not found")
		}
		return response.ServerError(c, "Failed to get payment")
	}
	return c.JSON(payment)
}

func (h *GatewayHandler) RecentPayments(c *fiber.Ctx) error {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return response.BadRequest(c, "Invalid limit")
		}
		limit = parsed
	}

	payments, err := h.service.GetRecentPayments(c.Context(), limit)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidLimit) {
			return response.BadRequest(c, err.Error())
		}
		return response.ServerError(c, "Failed to list payments")
	}
	return c.JSON(fiber.Map{"payments": payments})
}

func (h *GatewayHandler) UserStats(c *fiber.Ctx) error {
	stats, err := h.service.GetUserStats(c.Context(), c.Params("address"))
	if err != nil {
		return response.ServerError(c, "Failed to get user stats")
	}
	return c.JSON(stats)
}

func (h *GatewayHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.GetStats(c.Context())
	if err != nil {
		return response.ServerError(c, "Failed to get gateway stats")
	}
	return c.JSON(stats)
}

func (h *GatewayHandler) SetFeePercentage(c *fiber.Ctx) error {
	var input struct {
		BasisPoints int64 `json:"basis_points"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.service.SetFeePercentage(c.Context(), middleware.CallerAddress(c), input.BasisPoints); err != nil {
		return h.mapError(c, err, "Failed to set fee")
	}
	return response.Success(c, "Fee updated", nil)
}

func (h *GatewayHandler) SetTreasury(c *fiber.Ctx) error {
	var input struct {
		Treasury string `json:"treasury"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.service.SetTreasury(c.Context(), middleware.CallerAddress(c), input.Treasury); err != nil {
		return h.mapError(c, err, "Failed to set treasury")
	}
	return response.Success(c, "Treasury updated", nil)
}

func (h *GatewayHandler) SetRequireKYC(c *fiber.Ctx) error {
	var input struct {
		Required bool `json:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.service.SetRequireKYCForRecipients(c.Context(), middleware.CallerAddress(c), input.Required); err != nil {
		return h.mapError(c, err, "Failed to update KYC requirement")
	}
	return response.Success(c, "KYC requirement updated", nil)
}

func (h *GatewayHandler) AddToWhitelist(c *fiber.Ctx) error {
	var input struct {
		Recipient string `json:"recipient"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.service.AddToWhitelist(c.Context(), middleware.CallerAddress(c), input.Recipient); err != nil {
		return h.mapError(c, err, "Failed to whitelist recipient")
	}
	return response.Success(c, "Recipient whitelisted", nil)
}

func (h *GatewayHandler) RemoveFromWhitelist(c *fiber.Ctx) error {
	if err := h.service.RemoveFromWhitelist(c.Context(), middleware.CallerAddress(c), c.Params("address")); err != nil {
		return h.mapError(c, err, "Failed to remove recipient")
	}
	return response.Success(c, "Recipient removed", nil)
}

func (h *GatewayHandler) IsWhitelisted(c *fiber.Ctx) error {
	whitelisted, err := h.service.IsWhitelisted(c.Context(), c.Params("address"))
	if err != nil {
		return response.ServerError(c, "Failed to check whitelist")
	}
	return c.JSON(fiber.Map{"whitelisted": whitelisted})
}

func (h *GatewayHandler) Pause(c *fiber.Ctx) error {
	if err := h.service.Pause(c.Context(), middleware.CallerAddress(c)); err != nil {
		return h.mapError(c, err, "Failed to pause")
	}
	return response.Success(c, "Gateway paused", nil)
}

func (h *GatewayHandler) Unpause(c *fiber.Ctx) error {
	if err := h.service.Unpause(c.Context(), middleware.CallerAddress(c)); err != nil {
		return h.mapError(c, err, "Failed to unpause")
	}
	return response.Success(c, "Gateway unpaused", nil)
}

func (h *GatewayHandler) TransferOwnership(c *fiber.Ctx) error {
	var input struct {
		NewOwner string `json:"new_owner"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.service.TransferOwnership(c.Context(), middleware.CallerAddress(c), input.NewOwner); err != nil {
		return h.mapError(c, err, "Failed to transfer ownership")
	}
	return response.Success(c, "Ownership transferred", nil)
}

func decisionBody(d gateway.Decision) fiber.Map {
	body := fiber.Map{"allowed": d.Allowed()}
	if !d.Allowed() {
		body["reason"] = d.Reason()
	}
	return body
}

func (h *GatewayHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, gateway.ErrNotVerified),
		errors.Is(err, gateway.ErrRecipientNotEligible),
		errors.Is(err, gateway.ErrNotOwner):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, gateway.ErrContractPaused),
		errors.Is(err, gateway.ErrDuplicatePaymentID),
		errors.Is(err, repositories.ErrInsufficientBalance):
		return response.Conflict(c, err.Error())
	case errors.Is(err, gateway.ErrZeroAmount),
		errors.Is(err, gateway.ErrMissingTxID),
		errors.Is(err, gateway.ErrEmptyBatch),
		errors.Is(err, gateway.ErrArrayLengthMismatch),
		errors.Is(err, gateway.ErrBatchTooLarge),
		errors.Is(err, gateway.ErrFeeTooHigh),
		errors.Is(err, gateway.ErrInvalidTreasury),
		errors.Is(err, gateway.ErrInvalidAddress):
		return response.BadRequest(c, err.Error())
	default:
		return response.ServerError(c, fallback)
	}
}
