package handlers

import (
	"errors"
	"time"

	"kycgate/internal/middleware"
	"kycgate/internal/services/verification"
	"kycgate/internal/utils/response"
	"kycgate/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type VerificationHandler struct {
	service verification.Service
}

func NewVerificationHandler(service verification.Service) *VerificationHandler {
	return &VerificationHandler{service: service}
}

func (h *VerificationHandler) Submit(c *fiber.Ctx) error {
	var req verification.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	record, err := h.service.Submit(c.Context(), middleware.CallerAddress(c), req)
	if err != nil {
		return h.mapError(c, err, "Failed to submit verification")
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (h *VerificationHandler) Approve(c *fiber.Ctx) error {
	var req verification.ApproveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	record, err := h.service.Approve(c.Context(), middleware.CallerAddress(c), req)
	if err != nil {
		return h.mapError(c, err, "Failed to approve verification")
	}
	return c.JSON(record)
}

func (h *VerificationHandler) Reject(c *fiber.Ctx) error {
	var input struct {
		UserAddress string `json:"user_address"`
		ReferenceID string `json:"reference_id"`
		Reason      string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	err := h.service.Reject(c.Context(), middleware.CallerAddress(c), input.UserAddress, input.ReferenceID, input.Reason)
	if err != nil {
		return h.mapError(c, err, "Failed to reject verification")
	}
	return response.Success(c, "Verification rejected", nil)
}

func (h *VerificationHandler) Suspend(c *fiber.Ctx) error {
	var input struct {
		UserAddress string `json:"user_address"`
		Reason      string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	err := h.service.Suspend(c.Context(), middleware.CallerAddress(c), input.UserAddress, input.Reason)
	if err != nil {
		return h.mapError(c, err, "Failed to suspend verification")
	}
	return response.Success(c, "Verification suspended", nil)
}

func (h *VerificationHandler) UpdateRiskScore(c *fiber.Ctx) error {
	var input struct {
		UserAddress string `json:"user_address"`
		RiskScore   int    `json:"risk_score"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Address("user_address", input.UserAddress)
	v.Range("risk_score", int64(input.RiskScore), 0, 100)
	if !v.Valid() {
		return response.ValidationError(c, v.Errors)
	}

	err := h.service.UpdateRiskScore(c.Context(), middleware.CallerAddress(c), input.UserAddress, input.RiskScore)
	if err != nil {
		return h.mapError(c, err, "Failed to update risk score")
	}
	return response.Success(c, "Risk score updated", nil)
}

func (h *VerificationHandler) GetStatus(c *fiber.Ctx) error {
	status, err := h.service.GetStatus(c.Context(), c.Params("address"))
	if err != nil {
		if errors.Is(err, verification.ErrNoRecord) {
			return response.NotFound(c, err.Error())
		}
		return response.ServerError(c, "Failed to get verification status")
	}
	return c.JSON(status)
}

func (h *VerificationHandler) GetRecord(c *fiber.Ctx) error {
	record, err := h.service.GetRecord(c.Context(), c.Params("address"))
	if err != nil {
		if errors.Is(err, verification.ErrNoRecord) {
			return response.NotFound(c, err.Error())
		}
		return response.ServerError(c, "Failed to get verification record")
	}
	return c.JSON(record)
}

func (h *VerificationHandler) IsVerified(c *fiber.Ctx) error {
	verified, err := h.service.IsVerifiedAndActive(c.Context(), c.Params("address"))
	if err != nil {
		return response.ServerError(c, "Failed to check verification")
	}
	return c.JSON(fiber.Map{"verified": verified})
}

func (h *VerificationHandler) SetExpiryPeriod(c *fiber.Ctx) error {
	var input struct {
		PeriodSeconds int64 `json:"period_seconds"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	err := h.service.SetExpiryPeriod(c.Context(), middleware.CallerAddress(c), time.Duration(input.PeriodSeconds)*time.Second)
	if err != nil {
		return h.mapError(c, err, "Failed to set expiry period")
	}
	return response.Success(c, "Expiry period updated", nil)
}

func (h *VerificationHandler) SetMaxRiskScore(c *fiber.Ctx) error {
	var input struct {
		MaxRiskScore int `json:"max_risk_score"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	err := h.service.SetMaxRiskScore(c.Context(), middleware.CallerAddress(c), input.MaxRiskScore)
	if err != nil {
		return h.mapError(c, err, "Failed to set max risk score")
	}
	return response.Success(c, "Max risk score updated", nil)
}

func (h *VerificationHandler) SetAdmin(c *fiber.Ctx) error {
	var input struct {
		NewAdmin string `json:"new_admin"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	err := h.service.SetAdmin(c.Context(), middleware.CallerAddress(c), input.NewAdmin)
	if err != nil {
		return h.mapError(c, err, "Failed to set admin")
	}
	return response.Success(c, "Admin updated", nil)
}

func (h *VerificationHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, verification.ErrUnauthorized),
		errors.Is(err, verification.ErrNotActiveProvider):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, verification.ErrNoRecord):
		return response.NotFound(c, err.Error())
	case errors.Is(err, verification.ErrInvalidState),
		errors.Is(err, verification.ErrReferenceMismatch):
		return response.Conflict(c, err.Error())
	case errors.Is(err, verification.ErrRiskTooHigh),
		errors.Is(err, verification.ErrInvalidRiskScore),
		errors.Is(err, verification.ErrInvalidAddress),
		errors.Is(err, verification.ErrMissingReference):
		return response.BadRequest(c, err.Error())
	default:
		return response.ServerError(c, fallback)
	}
}
