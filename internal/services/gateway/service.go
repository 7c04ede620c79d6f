// Package gateway implements the KYC-gated stablecoin payment gateway:
// single and batch transfers with a basis-point fee routed to the
// treasury, an optional recipient KYC requirement with an owner
// whitelist escape hatch, and a pause switch.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kycgate/internal/models"
	"kycgate/internal/repositories"
	"kycgate/internal/validation"

	"github.com/google/uuid"
)

// Service defines the payment gateway operations.
type Service interface {
	SendPayment(ctx context.Context, caller string, req *SendRequest) (*models.Payment, error)
	SendBatchPayments(ctx context.Context, caller string, req *BatchRequest) ([]models.Payment, error)

	CanSendPayment(ctx context.Context, user string) (Decision, error)
	CanReceivePayment(ctx context.Context, user string) (Decision, error)
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)
	GetRecentPayments(ctx context.Context, limit int) ([]models.Payment, error)
	GetUserStats(ctx context.Context, user string) (*models.UserPaymentStats, error)
	GetStats(ctx context.Context) (*GatewayStats, error)
	IsWhitelisted(ctx context.Context, address string) (bool, error)

	SetFeePercentage(ctx context.Context, caller string, basisPoints int64) error
	SetTreasury(ctx context.Context, caller, treasury string) error
	SetRequireKYCForRecipients(ctx context.Context, caller string, required bool) error
	AddToWhitelist(ctx context.Context, caller, recipient string) error
	RemoveFromWhitelist(ctx context.Context, caller, recipient string) error
	Pause(ctx context.Context, caller string) error
	Unpause(ctx context.Context, caller string) error
	TransferOwnership(ctx context.Context, caller, newOwner string) error
}

type service struct {
	repo       repositories.PaymentRepository
	credential CredentialChecker
}

// NewService creates a new payment gateway service.
func NewService(repo repositories.PaymentRepository, credential CredentialChecker) Service {
	if repo == nil {
		panic("repo is required")
	}
	if credential == nil {
		panic("credential checker is required")
	}
	return &service{repo: repo, credential: credential}
}

func (s *service) SendPayment(ctx context.Context, caller string, req *SendRequest) (*models.Payment, error) {
	caller = validation.NormalizeAddress(caller)
	if err := s.validateSend(ctx, caller, req); err != nil {
		return nil, err
	}

	var payment *models.Payment
	err := s.repo.ExecuteInTransaction(func(tx repositories.PaymentRepository) error {
		cfg, err := tx.GetConfig()
		if err != nil {
			return err
		}
		if cfg.Paused {
			return ErrContractPaused
		}
		p, err := s.executePayment(tx, cfg, caller, req.PaymentID, req.To, req.Amount, req.Description, "")
		if err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) SendBatchPayments(ctx context.Context, caller string, req *BatchRequest) ([]models.Payment, error) {
	caller = validation.NormalizeAddress(caller)

	if len(req.Items) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(req.Items) != len(req.PaymentIDs) {
		return nil, ErrArrayLengthMismatch
	}
	if len(req.Items) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	verified, err := s.credential.IsVerified(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("failed to check sender credential: %w", err)
	}
	if !verified {
		return nil, ErrNotVerified
	}

	for i, item := range req.Items {
		if item.Amount <= 0 {
			return nil, ErrZeroAmount
		}
		if req.PaymentIDs[i] == "" {
			return nil, ErrMissingTxID
		}
		if !validation.IsAddress(item.To) {
			return nil, ErrInvalidAddress
		}
		if err := s.checkRecipient(ctx, validation.NormalizeAddress(item.To)); err != nil {
			return nil, err
		}
	}

	batchRef := uuid.New().String()
	var payments []models.Payment
	err = s.repo.ExecuteInTransaction(func(tx repositories.PaymentRepository) error {
		cfg, err := tx.GetConfig()
		if err != nil {
			return err
		}
		if cfg.Paused {
			return ErrContractPaused
		}
		for i, item := range req.Items {
			to := validation.NormalizeAddress(item.To)
			p, err := s.executePayment(tx, cfg, caller, req.PaymentIDs[i], to, item.Amount, req.Description, batchRef)
			if err != nil {
				return err
			}
			payments = append(payments, *p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// executePayment performs the transfer and fee split inside the
// caller's transaction. Recipient and sender eligibility are checked
// before the transaction opens.
func (s *service) executePayment(tx repositories.PaymentRepository, cfg *models.GatewayConfig, from, paymentID, to string, amount int64, description, batchRef string) (*models.Payment, error) {
	if _, err := tx.GetByPaymentID(paymentID); err == nil {
		return nil, ErrDuplicatePaymentID
	} else if !errors.Is(err, repositories.ErrPaymentNotFound) {
		return nil, err
	}

	fee := amount * cfg.FeeBasisPoints / MaxFeeBasisPoints
	net := amount - fee

	ledger := tx.Token()
	if err := ledger.Debit(from, amount); err != nil {
		return nil, err
	}
	if err := ledger.Credit(to, net); err != nil {
		return nil, err
	}
	if fee > 0 {
		if err := ledger.Credit(cfg.TreasuryAddress, fee); err != nil {
			return nil, err
		}
	}

	payment := &models.Payment{
		PaymentID:   paymentID,
		FromAddress: from,
		ToAddress:   to,
		Amount:      amount,
		Fee:         fee,
		Description: description,
		Completed:   true,
		BatchRef:    batchRef,
		ExecutedAt:  time.Now().UTC(),
	}
	if err := tx.CreatePayment(payment); err != nil {
		return nil, err
	}
	err := tx.RecordEvent(models.ComponentGateway, models.EventPaymentCompleted, models.JSON{
		"payment_id": paymentID,
		"from":       from,
		"to":         to,
		"amount":     amount,
		"fee":        fee,
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) validateSend(ctx context.Context, caller string, req *SendRequest) error {
	if req.Amount <= 0 {
		return ErrZeroAmount
	}
	if req.PaymentID == "" {
		return ErrMissingTxID
	}
	if !validation.IsAddress(req.To) {
		return ErrInvalidAddress
	}

	verified, err := s.credential.IsVerified(ctx, caller)
	if err != nil {
		return fmt.Errorf("failed to check sender credential: %w", err)
	}
	if !verified {
		return ErrNotVerified
	}
	return s.checkRecipient(ctx, validation.NormalizeAddress(req.To))
}

func (s *service) checkRecipient(ctx context.Context, to string) error {
	cfg, err := s.repo.GetConfig()
	if err != nil {
		return err
	}
	if !cfg.RequireKYCForRecipients {
		return nil
	}
	verified, err := s.credential.IsVerified(ctx, to)
	if err != nil {
		return fmt.Errorf("failed to check recipient credential: %w", err)
	}
	if verified {
		return nil
	}
	whitelisted, err := s.repo.IsWhitelisted(to)
	if err != nil {
		return err
	}
	if !whitelisted {
		return ErrRecipientNotEligible
	}
	return nil
}

func (s *service) CanSendPayment(ctx context.Context, user string) (Decision, error) {
	cfg, err := s.repo.GetConfig()
	if err != nil {
		return Decision{}, err
	}
	if cfg.Paused {
		return Deny("contract is paused"), nil
	}
	verified, err := s.credential.IsVerified(ctx, validation.NormalizeAddress(user))
	if err != nil {
		return Decision{}, err
	}
	if !verified {
		return Deny("sender not KYC verified"), nil
	}
	return Allow(), nil
}

func (s *service) CanReceivePayment(ctx context.Context, user string) (Decision, error) {
	user = validation.NormalizeAddress(user)
	cfg, err := s.repo.GetConfig()
	if err != nil {
		return Decision{}, err
	}
	if !cfg.RequireKYCForRecipients {
		return Allow(), nil
	}
	verified, err := s.credential.IsVerified(ctx, user)
	if err != nil {
		return Decision{}, err
	}
	if verified {
		return Allow(), nil
	}
	whitelisted, err := s.repo.IsWhitelisted(user)
	if err != nil {
		return Decision{}, err
	}
	if whitelisted {
		return Allow(), nil
	}
	return Deny("recipient not KYC verified or whitelisted"), nil
}

func (s *service) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	return s.repo.GetByPaymentID(paymentID)
}

func (s *service) GetRecentPayments(ctx context.Context, limit int) ([]models.Payment, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	return s.repo.ListPayments(limit)
}

func (s *service) GetUserStats(ctx context.Context, user string) (*models.UserPaymentStats, error) {
	user = validation.NormalizeAddress(user)
	count, total, err := s.repo.UserStats(user)
	if err != nil {
		return nil, err
	}
	verified, err := s.credential.IsVerified(ctx, user)
	if err != nil {
		return nil, err
	}
	return &models.UserPaymentStats{
		PaymentCount: count,
		TotalAmount:  total,
		HasKYC:       verified,
	}, nil
}

func (s *service) GetStats(ctx context.Context) (*GatewayStats, error) {
	cfg, err := s.repo.GetConfig()
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountPayments()
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.ListPayments(10)
	if err != nil {
		return nil, err
	}
	return &GatewayStats{
		PaymentCount:   count,
		FeeBasisPoints: cfg.FeeBasisPoints,
		Treasury:       cfg.TreasuryAddress,
		RequireKYC:     cfg.RequireKYCForRecipients,
		Paused:         cfg.Paused,
		Recent:         recent,
	}, nil
}

func (s *service) IsWhitelisted(ctx context.Context, address string) (bool, error) {
	return s.repo.IsWhitelisted(validation.NormalizeAddress(address))
}

func (s *service) SetFeePercentage(ctx context.Context, caller string, basisPoints int64) error {
	if basisPoints < 0 || basisPoints > MaxFeeBasisPoints {
		return ErrFeeTooHigh
	}
	return s.updateConfig(caller, func(cfg *models.GatewayConfig) (string, models.JSON) {
		old := cfg.FeeBasisPoints
		cfg.FeeBasisPoints = basisPoints
		return models.EventFeePercentageUpdated, models.JSON{"old_bps": old, "new_bps": basisPoints}
	})
}

func (s *service) SetTreasury(ctx context.Context, caller, treasury string) error {
	if !validation.IsAddress(treasury) || validation.NormalizeAddress(treasury) == validation.ZeroAddress {
		return ErrInvalidTreasury
	}
	return s.updateConfig(caller, func(cfg *models.GatewayConfig) (string, models.JSON) {
		old := cfg.TreasuryAddress
		cfg.TreasuryAddress = validation.NormalizeAddress(treasury)
		return models.EventTreasuryUpdated, models.JSON{"old_treasury": old, "new_treasury": cfg.TreasuryAddress}
	})
}

func (s *service) SetRequireKYCForRecipients(ctx context.Context, caller string, required bool) error {
	return s.updateConfig(caller, func(cfg *models.GatewayConfig) (string, models.JSON) {
		cfg.RequireKYCForRecipients = required
		return models.EventKYCRequirementUpdated, models.JSON{"required": required}
	})
}

func (s *service) AddToWhitelist(ctx context.Context, caller, recipient string) error {
	if !validation.IsAddress(recipient) {
		return ErrInvalidAddress
	}
	recipient = validation.NormalizeAddress(recipient)

	return s.repo.ExecuteInTransaction(func(tx repositories.PaymentRepository) error {
		if err := s.requireOwner(tx, caller); err != nil {
			return err
		}
		if err := tx.AddToWhitelist(recipient); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentGateway, models.EventRecipientWhitelisted, models.JSON{
			"recipient": recipient,
		})
	})
}

func (s *service) RemoveFromWhitelist(ctx context.Context, caller, recipient string) error {
	recipient = validation.NormalizeAddress(recipient)

	return s.repo.ExecuteInTransaction(func(tx repositories.PaymentRepository) error {
		if err := s.requireOwner(tx, caller); err != nil {
			return err
		}
		if err := tx.RemoveFromWhitelist(recipient); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentGateway, models.EventRecipientRemoved, models.JSON{
			"recipient": recipient,
		})
	})
}

func (s *service) Pause(ctx context.Context, caller string) error {
	return s.updateConfig(caller, func(cfg *models.GatewayConfig) (string, models.JSON) {
		cfg.Paused = true
		return models.EventContractPaused, models.JSON{}
	})
}

func (s *service) Unpause(ctx context.Context, caller string) error {
	return s.updateConfig(caller, func(cfg *models.GatewayConfig) (string, models.JSON) {
		cfg.Paused = false
		return models.EventContractUnpaused, models.JSON{}
	})
}

func (s *service) TransferOwnership(ctx context.Context, caller, newOwner string) error {
	if !validation.IsAddress(newOwner) {
		return ErrInvalidAddress
	}
	return s.repo.ExecuteInTransaction(func(tx repositories.PaymentRepository) error {
		cfg, err := tx.GetConfig()
		if err != nil {
			return err
		}
		if cfg.OwnerAddress != validation.NormalizeAddress(caller) {
			return ErrNotOwner
		}
		cfg.OwnerAddress = validation.NormalizeAddress(newOwner)
		return tx.SaveConfig(cfg)
	})
}

func (s *service) updateConfig(caller string, mutate func(cfg *models.GatewayConfig) (string, models.JSON)) error {
	return s.repo.ExecuteInTransaction(func(tx repositories.PaymentRepository) error {
		cfg, err := tx.GetConfig()
		if err != nil {
			return err
		}
		if cfg.OwnerAddress != validation.NormalizeAddress(caller) {
			return ErrNotOwner
		}
		event, payload := mutate(cfg)
		if err := tx.SaveConfig(cfg); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentGateway, event, payload)
	})
}

func (s *service) requireOwner(tx repositories.PaymentRepository, caller string) error {
	cfg, err := tx.GetConfig()
	if err != nil {
		return err
	}
	if cfg.OwnerAddress != validation.NormalizeAddress(caller) {
		return ErrNotOwner
	}
	return nil
}
