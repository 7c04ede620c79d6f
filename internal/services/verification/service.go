// Package verification implements the KYC verification ledger. Each
// user owns one record cycling pending -> approved | rejected and
// approved -> suspended; a fresh submission restarts the cycle from any
// status. Approvals carry a risk score bounded by an admin-configured
// ceiling and expire after a configured period.
package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kycgate/internal/models"
	"kycgate/internal/repositories"
	"kycgate/internal/validation"
)

// Service defines the verification ledger operations.
type Service interface {
	Submit(ctx context.Context, caller string, req SubmitRequest) (*models.VerificationRecord, error)
	Approve(ctx context.Context, caller string, req ApproveRequest) (*models.VerificationRecord, error)
	Reject(ctx context.Context, caller, user, referenceID, reason string) error
	Suspend(ctx context.Context, caller, user, reason string) error
	UpdateRiskScore(ctx context.Context, caller, user string, newScore int) error

	IsVerifiedAndActive(ctx context.Context, user string) (bool, error)
	GetRecord(ctx context.Context, user string) (*models.VerificationRecord, error)
	GetStatus(ctx context.Context, user string) (*models.VerificationStatus, error)

	SetExpiryPeriod(ctx context.Context, caller string, period time.Duration) error
	SetMaxRiskScore(ctx context.Context, caller string, max int) error
	SetAdmin(ctx context.Context, caller, newAdmin string) error
	IsAdmin(ctx context.Context, address string) (bool, error)
}

type service struct {
	repo  repositories.VerificationRepository
	cache StatusCache
}

// NewService creates a new verification ledger service.
func NewService(repo repositories.VerificationRepository, cache StatusCache) Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		panic("cache is required")
	}
	return &service{repo: repo, cache: cache}
}

func (s *service) Submit(ctx context.Context, caller string, req SubmitRequest) (*models.VerificationRecord, error) {
	provider, err := s.requireActiveProvider(caller)
	if err != nil {
		return nil, err
	}
	if !validation.IsAddress(req.UserAddress) {
		return nil, ErrInvalidAddress
	}
	if req.ReferenceID == "" {
		return nil, ErrMissingReference
	}
	user := validation.NormalizeAddress(req.UserAddress)

	// A resubmission overwrites the previous cycle, whatever its
	// outcome was. The record is a singleton per user.
	record, err := s.repo.GetRecord(user)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		record = &models.VerificationRecord{UserAddress: user}
	} else if err != nil {
		return nil, err
	}

	record.BridgeReferenceID = req.ReferenceID
	record.EncryptedPayload = req.EncryptedPayload
	record.Status = models.VerificationStatusPending
	record.RiskScore = 0
	record.AMLStatus = ""
	record.RejectionReason = ""
	record.SuspensionReason = ""
	record.SubmittedBy = provider.Address
	record.SubmittedAt = time.Now().UTC()
	record.ApprovedAt = nil
	record.ExpiresAt = nil

	err = s.repo.ExecuteInTransaction(func(tx repositories.VerificationRepository) error {
		if err := tx.SaveRecord(record); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentLedger, models.EventVerificationSubmitted, models.JSON{
			"user":         user,
			"reference_id": req.ReferenceID,
			"provider":     provider.Address,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit verification: %w", err)
	}

	s.cache.InvalidateVerificationStatus(ctx, user)
	return record, nil
}

func (s *service) Approve(ctx context.Context, caller string, req ApproveRequest) (*models.VerificationRecord, error) {
	provider, err := s.requireActiveProvider(caller)
	if err != nil {
		return nil, err
	}

	cfg, err := s.repo.GetConfig()
	if err != nil {
		return nil, err
	}
	if req.RiskScore > cfg.MaxRiskScore {
		return nil, ErrRiskTooHigh
	}

	user := validation.NormalizeAddress(req.UserAddress)
	record, err := s.repo.GetRecord(user)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	if record.Status != models.VerificationStatusPending {
		return nil, ErrInvalidState
	}
	if record.BridgeReferenceID != req.ReferenceID {
		return nil, ErrReferenceMismatch
	}

	now := time.Now().UTC()
	expiry := now.Add(time.Duration(cfg.ExpiryPeriodSeconds) * time.Second)

	record.Status = models.VerificationStatusApproved
	record.RiskScore = req.RiskScore
	record.AMLStatus = req.AMLStatus
	record.ApprovedAt = &now
	record.ExpiresAt = &expiry

	err = s.repo.ExecuteInTransaction(func(tx repositories.VerificationRepository) error {
		if err := tx.SaveRecord(record); err != nil {
			return err
		}
		p, err := tx.GetProvider(provider.Address)
		if err != nil {
			return err
		}
		p.ApprovalCount++
		if err := tx.SaveProvider(p); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentLedger, models.EventVerificationApproved, models.JSON{
			"user":         user,
			"reference_id": req.ReferenceID,
			"risk_score":   req.RiskScore,
			"aml_status":   req.AMLStatus,
			"expires_at":   expiry,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to approve verification: %w", err)
	}

	s.cache.InvalidateVerificationStatus(ctx, user)
	return record, nil
}

func (s *service) Reject(ctx context.Context, caller, user, referenceID, reason string) error {
	provider, err := s.requireActiveProvider(caller)
	if err != nil {
		return err
	}

	user = validation.NormalizeAddress(user)
	record, err := s.repo.GetRecord(user)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return ErrNoRecord
	}
	if err != nil {
		return err
	}
	if record.Status != models.VerificationStatusPending {
		return ErrInvalidState
	}
	if record.BridgeReferenceID != referenceID {
		return ErrReferenceMismatch
	}

	record.Status = models.VerificationStatusRejected
	record.RejectionReason = reason

	err = s.repo.ExecuteInTransaction(func(tx repositories.VerificationRepository) error {
		if err := tx.SaveRecord(record); err != nil {
			return err
		}
		p, err := tx.GetProvider(provider.Address)
		if err != nil {
			return err
		}
		p.RejectionCount++
		if err := tx.SaveProvider(p); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentLedger, models.EventVerificationRejected, models.JSON{
			"user":         user,
			"reference_id": referenceID,
			"reason":       reason,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to reject verification: %w", err)
	}

	s.cache.InvalidateVerificationStatus(ctx, user)
	return nil
}

func (s *service) Suspend(ctx context.Context, caller, user, reason string) error {
	if _, err := s.requireActiveProvider(caller); err != nil {
		return err
	}

	user = validation.NormalizeAddress(user)
	record, err := s.repo.GetRecord(user)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return ErrNoRecord
	}
	if err != nil {
		return err
	}
	// Only approved verifications can be suspended.
	if record.Status != models.VerificationStatusApproved {
		return ErrInvalidState
	}

	record.Status = models.VerificationStatusSuspended
	record.SuspensionReason = reason

	err = s.repo.ExecuteInTransaction(func(tx repositories.VerificationRepository) error {
		if err := tx.SaveRecord(record); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentLedger, models.EventVerificationSuspended, models.JSON{
			"user":   user,
			"reason": reason,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to suspend verification: %w", err)
	}

	s.cache.InvalidateVerificationStatus(ctx, user)
	return nil
}

func (s *service) UpdateRiskScore(ctx context.Context, caller, user string, newScore int) error {
	if _, err := s.requireActiveProvider(caller); err != nil {
		return err
	}

	cfg, err := s.repo.GetConfig()
	if err != nil {
		return err
	}
	if newScore > cfg.MaxRiskScore {
		return ErrRiskTooHigh
	}

	user = validation.NormalizeAddress(user)
	record, err := s.repo.GetRecord(user)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return ErrNoRecord
	}
	if err != nil {
		return err
	}

	oldScore := record.RiskScore
	record.RiskScore = newScore

	err = s.repo.ExecuteInTransaction(func(tx repositories.VerificationRepository) error {
		if err := tx.SaveRecord(record); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentLedger, models.EventRiskScoreUpdated, models.JSON{
			"user":      user,
			"old_score": oldScore,
			"new_score": newScore,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to update risk score: %w", err)
	}

	s.cache.InvalidateVerificationStatus(ctx, user)
	return nil
}

// IsVerifiedAndActive is a pure read: approved AND not yet expired.
// It never mutates the stored status.
func (s *service) IsVerifiedAndActive(ctx context.Context, user string) (bool, error) {
	record, err := s.repo.GetRecord(validation.NormalizeAddress(user))
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if record.Status != models.VerificationStatusApproved || record.ExpiresAt == nil {
		return false, nil
	}
	return time.Now().UTC().Before(*record.ExpiresAt), nil
}

func (s *service) GetRecord(ctx context.Context, user string) (*models.VerificationRecord, error) {
	record, err := s.repo.GetRecord(validation.NormalizeAddress(user))
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, ErrNoRecord
	}
	return record, err
}

func (s *service) GetStatus(ctx context.Context, user string) (*models.VerificationStatus, error) {
	user = validation.NormalizeAddress(user)

	if status, err := s.cache.GetVerificationStatus(ctx, user); err == nil {
		return status, nil
	}

	record, err := s.repo.GetRecord(user)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, err
	}

	status := &models.VerificationStatus{
		Status:    record.Status,
		ExpiresAt: record.ExpiresAt,
		RiskScore: record.RiskScore,
		AMLStatus: record.AMLStatus,
	}
	s.cache.SetVerificationStatus(ctx, user, status)
	return status, nil
}

func (s *service) SetExpiryPeriod(ctx context.Context, caller string, period time.Duration) error {
	cfg, err := s.requireAdminConfig(caller)
	if err != nil {
		return err
	}
	if period <= 0 {
		return fmt.Errorf("expiry period must be positive")
	}
	cfg.ExpiryPeriodSeconds = int64(period.Seconds())
	return s.repo.SaveConfig(cfg)
}

func (s *service) SetMaxRiskScore(ctx context.Context, caller string, max int) error {
	cfg, err := s.requireAdminConfig(caller)
	if err != nil {
		return err
	}
	if max < 0 || max > MaxRiskScoreCeiling {
		return ErrInvalidRiskScore
	}
	cfg.MaxRiskScore = max
	return s.repo.SaveConfig(cfg)
}

func (s *service) SetAdmin(ctx context.Context, caller, newAdmin string) error {
	cfg, err := s.requireAdminConfig(caller)
	if err != nil {
		return err
	}
	if !validation.IsAddress(newAdmin) {
		return ErrInvalidAddress
	}
	cfg.AdminAddress = validation.NormalizeAddress(newAdmin)
	return s.repo.SaveConfig(cfg)
}

func (s *service) IsAdmin(ctx context.Context, address string) (bool, error) {
	cfg, err := s.repo.GetConfig()
	if err != nil {
		return false, err
	}
	return cfg.AdminAddress == validation.NormalizeAddress(address), nil
}

func (s *service) requireActiveProvider(caller string) (*models.Provider, error) {
	provider, err := s.repo.GetProvider(validation.NormalizeAddress(caller))
	if err != nil {
		if errors.Is(err, repositories.ErrProviderNotFound) {
			return nil, ErrNotActiveProvider
		}
		return nil, err
	}
	if !provider.IsActive {
		return nil, ErrNotActiveProvider
	}
	return provider, nil
}

func (s *service) requireAdminConfig(caller string) (*models.LedgerConfig, error) {
	cfg, err := s.repo.GetConfig()
	if err != nil {
		return nil, err
	}
	if cfg.AdminAddress != validation.NormalizeAddress(caller) {
		return nil, ErrUnauthorized
	}
	return cfg, nil
}
