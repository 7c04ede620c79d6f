package handlers

import (
	"errors"

	"kycgate/internal/middleware"
	"kycgate/internal/repositories"
	"kycgate/internal/services/subscription"
	"kycgate/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type SubscriptionHandler struct {
	service subscription.Service
}

func NewSubscriptionHandler(service subscription.Service) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

// Pay charges the one-time subscription fee to the caller.
func (h *SubscriptionHandler) Pay(c *fiber.Ctx) error {
	payment, err := h.service.PaySubscription(c.Context(), middleware.CallerAddress(c))
	if err != nil {
		return h.mapError(c, err, "Payment failed")
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// ClaimGas reimburses the caller's gas costs from the native pool.
func (h *SubscriptionHandler) ClaimGas(c *fiber.Ctx) error {
	var input struct {
		Amount int64 `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.service.ClaimEthGas(c.Context(), middleware.CallerAddress(c), input.Amount); err != nil {
		return h.mapError(c, err, "Claim failed")
	}
	return response.Success(c, "Gas reimbursed", nil)
}

// Deposit moves native funds from the caller into the reimbursement pool.
func (h *SubscriptionHandler) Deposit(c *fiber.Ctx) error {
	var input struct {
		Amount int64 `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.service.DepositETH(c.Context(), middleware.CallerAddress(c), input.Amount); err != nil {
		return h.mapError(c, err, "Deposit failed")
	}
	return response.Success(c, "Deposit received", nil)
}

// FundNative credits native funds to an address. Owner only; this is
// how ETH enters a database-backed ledger.
func (h *SubscriptionHandler) FundNative(c *fiber.Ctx) error {
	var input struct {
		Recipient string `json:"recipient"`
		Amount    int64  `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.service.FundNative(c.Context(), middleware.CallerAddress(c), input.Recipient, input.Amount); err != nil {
		return h.mapError(c, err, "Funding failed")
	}
	return response.Success(c, "Native funds credited", nil)
}

// WithdrawFees sweeps collected fees to the owner. Owner only.
func (h *SubscriptionHandler) WithdrawFees(c *fiber.Ctx) error {
	amount, err := h.service.WithdrawFees(c.Context(), middleware.CallerAddress(c))
	if err != nil {
		return h.mapError(c, err, "Withdrawal failed")
	}
	return response.Success(c, "Fees withdrawn", fiber.Map{"amount": amount})
}

// UpdateFee changes the subscription fee. Owner only.
func (h *SubscriptionHandler) UpdateFee(c *fiber.Ctx) error {
	var input struct {
		Amount int64 `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.service.UpdateFeeAmount(c.Context(), middleware.CallerAddress(c), input.Amount); err != nil {
		return h.mapError(c, err, "Failed to update fee")
	}
	return response.Success(c, "Fee updated", nil)
}

func (h *SubscriptionHandler) TransferOwnership(c *fiber.Ctx) error {
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

func (h *SubscriptionHandler) Status(c *fiber.Ctx) error {
	address := c.Params("address")
	paid, err := h.service.HasUserPaid(c.Context(), address)
	if err != nil {
		return response.ServerError(c, "Failed to get subscription status")
	}
	reimbursed, err := h.service.HasUserBeenReimbursed(c.Context(), address)
	if err != nil {
		return response.ServerError(c, "Failed to get subscription status")
	}
	return c.JSON(fiber.Map{
		"address":    address,
		"paid":       paid,
		"reimbursed": reimbursed,
	})
}

func (h *SubscriptionHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.GetStats(c.Context())
	if err != nil {
		return response.ServerError(c, "Failed to get gate stats")
	}
	return c.JSON(stats)
}

func (h *SubscriptionHandler) Fee(c *fiber.Ctx) error {
	fee, err := h.service.FeeAmount(c.Context())
	if err != nil {
		return response.ServerError(c, "Failed to get fee")
	}
	return c.JSON(fiber.Map{"fee_amount": fee})
}

func (h *SubscriptionHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, subscription.ErrNotVerified),
		errors.Is(err, subscription.ErrNotOwner):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, subscription.ErrAlreadyPaid),
		errors.Is(err, subscription.ErrAlreadyReimbursed),
		errors.Is(err, subscription.ErrPaymentRequired),
		errors.Is(err, subscription.ErrInsufficientPool),
		errors.Is(err, subscription.ErrNothingToWithdraw),
		errors.Is(err, repositories.ErrAllowanceExceeded),
		errors.Is(err, repositories.ErrInsufficientBalance),
		errors.Is(err, repositories.ErrInsufficientNative):
		return response.Conflict(c, err.Error())
	case errors.Is(err, subscription.ErrInvalidAmount),
		errors.Is(err, subscription.ErrInvalidAddress):
		return response.BadRequest(c, err.Error())
	default:
		return response.ServerError(c, fallback)
	}
}
