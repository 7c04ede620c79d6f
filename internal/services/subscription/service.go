// Package subscription implements the KYC-gated subscription gate: a
// one-time stablecoin fee payable only by credential holders, with an
// optional one-time native-asset gas reimbursement afterwards. Paid and
// reimbursed are latches; payment is always a precondition for
// reimbursement, and neither can happen twice.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kycgate/internal/models"
	"kycgate/internal/repositories"
	"kycgate/internal/validation"
)

// Service defines the subscription gate operations.
type Service interface {
	PaySubscription(ctx context.Context, caller string) (*models.SubscriptionPayment, error)
	ClaimEthGas(ctx context.Context, caller string, amount int64) error
	DepositETH(ctx context.Context, caller string, amount int64) error
	FundNative(ctx context.Context, caller, recipient string, amount int64) error
	WithdrawFees(ctx context.Context, caller string) (int64, error)
	UpdateFeeAmount(ctx context.Context, caller string, newAmount int64) error
	TransferOwnership(ctx context.Context, caller, newOwner string) error

	HasUserPaid(ctx context.Context, user string) (bool, error)
	HasUserBeenReimbursed(ctx context.Context, user string) (bool, error)
	GetStats(ctx context.Context) (*models.GateStats, error)
	FeeAmount(ctx context.Context) (int64, error)
}

type service struct {
	repo       repositories.SubscriptionRepository
	credential CredentialChecker
}

// NewService creates a new subscription gate service.
func NewService(repo repositories.SubscriptionRepository, credential CredentialChecker) Service {
	if repo == nil {
		panic("repo is required")
	}
	if credential == nil {
		panic("credential checker is required")
	}
	return &service{repo: repo, credential: credential}
}

func (s *service) PaySubscription(ctx context.Context, caller string) (*models.SubscriptionPayment, error) {
	caller = validation.NormalizeAddress(caller)

	verified, err := s.credential.IsVerified(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("failed to check credential: %w", err)
	}
	if !verified {
		return nil, ErrNotVerified
	}

	var payment *models.SubscriptionPayment
	err = s.repo.ExecuteInTransaction(func(tx repositories.SubscriptionRepository) error {
		cfg, err := tx.GetConfig()
		if err != nil {
			return err
		}

		payment, err = tx.GetPayment(caller)
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			payment = &models.SubscriptionPayment{PayerAddress: caller}
		} else if err != nil {
			return err
		}
		if payment.Paid {
			return ErrAlreadyPaid
		}

		// Pull the fee against the payer's pre-approved allowance.
		// Allowance or balance shortfalls surface as token errors,
		// not gate errors.
		if err := pullFee(tx.Token(), caller, cfg.GateAddress, cfg.FeeAmount); err != nil {
			return err
		}

		now := time.Now().UTC()
		payment.Paid = true
		payment.FeeAmount = cfg.FeeAmount
		payment.PaidAt = &now

		cfg.TotalPaid += cfg.FeeAmount
		if err := tx.SaveConfig(cfg); err != nil {
			return err
		}
		if err := tx.SavePayment(payment); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentGate, models.EventFeePaid, models.JSON{
			"payer":   caller,
			"amount":  cfg.FeeAmount,
			"paid_at": now,
		})
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) ClaimEthGas(ctx context.Context, caller string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	caller = validation.NormalizeAddress(caller)

	return s.repo.ExecuteInTransaction(func(tx repositories.SubscriptionRepository) error {
		cfg, err := tx.GetConfig()
		if err != nil {
			return err
		}

		payment, err := tx.GetPayment(caller)
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return ErrPaymentRequired
		}
		if err != nil {
			return err
		}
		if !payment.Paid {
			return ErrPaymentRequired
		}
		if payment.Reimbursed {
			return ErrAlreadyReimbursed
		}

		pool, err := tx.Native().BalanceOf(cfg.GateAddress)
		if err != nil {
			return err
		}
		if pool < amount {
			return ErrInsufficientPool
		}
		if err := tx.Native().Debit(cfg.GateAddress, amount); err != nil {
			return err
		}
		if err := tx.Native().Credit(caller, amount); err != nil {
			return err
		}

		now := time.Now().UTC()
		payment.Reimbursed = true
		payment.ReimbursedAmount = amount
		payment.ReimbursedAt = &now

		cfg.TotalReimbursed += amount
		if err := tx.SaveConfig(cfg); err != nil {
			return err
		}
		if err := tx.SavePayment(payment); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentGate, models.EventGasReimbursed, models.JSON{
			"recipient":  caller,
			"amount":     amount,
			"claimed_at": now,
		})
	})
}

func (s *service) DepositETH(ctx context.Context, caller string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	caller = validation.NormalizeAddress(caller)

	return s.repo.ExecuteInTransaction(func(tx repositories.SubscriptionRepository) error {
		cfg, err := tx.GetConfig()
		if err != nil {
			return err
		}
		if err := tx.Native().Debit(caller, amount); err != nil {
			return err
		}
		if err := tx.Native().Credit(cfg.GateAddress, amount); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentGate, models.EventETHDeposited, models.JSON{
			"from":   caller,
			"amount": amount,
		})
	})
}

// FundNative credits native funds to an address from outside the
// ledger. Owner only; stands in for ETH arriving from the chain, which
// a database-backed ledger has no other source for.
func (s *service) FundNative(ctx context.Context, caller, recipient string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if !validation.IsAddress(recipient) {
		return ErrInvalidAddress
	}
	recipient = validation.NormalizeAddress(recipient)

	return s.repo.ExecuteInTransaction(func(tx repositories.SubscriptionRepository) error {
		cfg, err := tx.GetConfig()
		if err != nil {
			return err
		}
		if cfg.OwnerAddress != validation.NormalizeAddress(caller) {
			return ErrNotOwner
		}
		if err := tx.Native().Credit(recipient, amount); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentGate, models.EventNativeFunded, models.JSON{
			"recipient": recipient,
			"amount":    amount,
		})
	})
}

func (s *service) WithdrawFees(ctx context.Context, caller string) (int64, error) {
	caller = validation.NormalizeAddress(caller)

	var swept int64
	err := s.repo.ExecuteInTransaction(func(tx repositories.SubscriptionRepository) error {
		cfg, err := tx.GetConfig()
		if err != nil {
			return err
		}
		if cfg.OwnerAddress != caller {
			return ErrNotOwner
		}

		balance, err := tx.Token().BalanceOf(cfg.GateAddress)
		if err != nil {
			return err
		}
		if balance == 0 {
			return ErrNothingToWithdraw
		}

		if err := tx.Token().Debit(cfg.GateAddress, balance); err != nil {
			return err
		}
		if err := tx.Token().Credit(cfg.OwnerAddress, balance); err != nil {
			return err
		}
		swept = balance
		return nil
	})
	return swept, err
}

func (s *service) UpdateFeeAmount(ctx context.Context, caller string, newAmount int64) error {
	if newAmount <= 0 {
		return ErrInvalidAmount
	}

	return s.repo.ExecuteInTransaction(func(tx repositories.SubscriptionRepository) error {
		cfg, err := tx.GetConfig()
		if err != nil {
			return err
		}
		if cfg.OwnerAddress != validation.NormalizeAddress(caller) {
			return ErrNotOwner
		}

		oldAmount := cfg.FeeAmount
		cfg.FeeAmount = newAmount
		if err := tx.SaveConfig(cfg); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentGate, models.EventFeeAmountUpdated, models.JSON{
			"old_amount": oldAmount,
			"new_amount": newAmount,
		})
	})
}

func (s *service) TransferOwnership(ctx context.Context, caller, newOwner string) error {
	if !validation.IsAddress(newOwner) {
		return ErrInvalidAddress
	}

	return s.repo.ExecuteInTransaction(func(tx repositories.SubscriptionRepository) error {
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

func (s *service) HasUserPaid(ctx context.Context, user string) (bool, error) {
	payment, err := s.repo.GetPayment(validation.NormalizeAddress(user))
	if errors.Is(err, repositories.ErrSubscriptionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return payment.Paid, nil
}

func (s *service) HasUserBeenReimbursed(ctx context.Context, user string) (bool, error) {
	payment, err := s.repo.GetPayment(validation.NormalizeAddress(user))
	if errors.Is(err, repositories.ErrSubscriptionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return payment.Reimbursed, nil
}

func (s *service) GetStats(ctx context.Context) (*models.GateStats, error) {
	cfg, err := s.repo.GetConfig()
	if err != nil {
		return nil, err
	}
	ethBalance, err := s.repo.Native().BalanceOf(cfg.GateAddress)
	if err != nil {
		return nil, err
	}
	pyusdBalance, err := s.repo.Token().BalanceOf(cfg.GateAddress)
	if err != nil {
		return nil, err
	}
	return &models.GateStats{
		TotalPaid:       cfg.TotalPaid,
		TotalReimbursed: cfg.TotalReimbursed,
		ETHBalance:      ethBalance,
		PYUSDBalance:    pyusdBalance,
	}, nil
}

func (s *service) FeeAmount(ctx context.Context) (int64, error) {
	cfg, err := s.repo.GetConfig()
	if err != nil {
		return 0, err
	}
	return cfg.FeeAmount, nil
}

// pullFee moves the fee from the payer to the gate under the standard
// allowance discipline, inside the caller's transaction.
func pullFee(ledger repositories.TokenRepository, payer, gate string, amount int64) error {
	allowance, err := ledger.Allowance(payer, gate)
	if err != nil {
		return err
	}
	if allowance < amount {
		return repositories.ErrAllowanceExceeded
	}
	if err := ledger.Debit(payer, amount); err != nil {
		return err
	}
	if err := ledger.Credit(gate, amount); err != nil {
		return err
	}
	return ledger.SetAllowance(payer, gate, allowance-amount)
}
