// Package token implements the mock PYUSD ledger: standard balance,
// allowance and transferFrom discipline over database rows. The gate
// and gateway only see the Stablecoin interface; nothing here is a
// payment rule, just fungible bookkeeping.
package token

import (
	"context"
	"errors"
	"fmt"

	"kycgate/internal/repositories"
	"kycgate/internal/validation"
)

type service struct {
	repo repositories.TokenRepository
}

// NewService creates the mock stablecoin backed by the given repository.
func NewService(repo repositories.TokenRepository) interface {
	Stablecoin
	Faucet
} {
	if repo == nil {
		panic("repo is required")
	}
	return &service{repo: repo}
}

func (s *service) Name(ctx context.Context) (string, error) {
	info, err := s.repo.Info()
	if err != nil {
		return "", err
	}
	return info.Name, nil
}

func (s *service) Symbol(ctx context.Context) (string, error) {
	info, err := s.repo.Info()
	if err != nil {
		return "", err
	}
	return info.Symbol, nil
}

func (s *service) Decimals(ctx context.Context) (uint8, error) {
	info, err := s.repo.Info()
	if err != nil {
		return 0, err
	}
	return info.Decimals, nil
}

func (s *service) TotalSupply(ctx context.Context) (int64, error) {
	info, err := s.repo.Info()
	if err != nil {
		return 0, err
	}
	return info.TotalSupply, nil
}

func (s *service) BalanceOf(ctx context.Context, address string) (int64, error) {
	return s.repo.BalanceOf(validation.NormalizeAddress(address))
}

func (s *service) Transfer(ctx context.Context, caller, to string, amount int64) error {
	if !validation.IsAddress(to) {
		return ErrInvalidAddress
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	caller = validation.NormalizeAddress(caller)
	to = validation.NormalizeAddress(to)

	err := s.repo.ExecuteInTransaction(func(tx repositories.TokenRepository) error {
		if err := tx.Debit(caller, amount); err != nil {
			return err
		}
		return tx.Credit(to, amount)
	})
	if errors.Is(err, repositories.ErrInsufficientBalance) {
		return ErrInsufficientBalance
	}
	if err != nil {
		return fmt.Errorf("transfer failed: %w", err)
	}
	return nil
}

func (s *service) Approve(ctx context.Context, caller, spender string, amount int64) error {
	if !validation.IsAddress(spender) {
		return ErrInvalidAddress
	}
	if amount < 0 {
		return ErrInvalidAmount
	}
	return s.repo.SetAllowance(
		validation.NormalizeAddress(caller),
		validation.NormalizeAddress(spender),
		amount,
	)
}

func (s *service) Allowance(ctx context.Context, owner, spender string) (int64, error) {
	return s.repo.Allowance(
		validation.NormalizeAddress(owner),
		validation.NormalizeAddress(spender),
	)
}

func (s *service) TransferFrom(ctx context.Context, caller, from, to string, amount int64) error {
	if !validation.IsAddress(to) {
		return ErrInvalidAddress
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	caller = validation.NormalizeAddress(caller)
	from = validation.NormalizeAddress(from)
	to = validation.NormalizeAddress(to)

	err := s.repo.ExecuteInTransaction(func(tx repositories.TokenRepository) error {
		allowance, err := tx.Allowance(from, caller)
		if err != nil {
			return err
		}
		if allowance < amount {
			return repositories.ErrAllowanceExceeded
		}
		if err := tx.Debit(from, amount); err != nil {
			return err
		}
		if err := tx.Credit(to, amount); err != nil {
			return err
		}
		return tx.SetAllowance(from, caller, allowance-amount)
	})
	if errors.Is(err, repositories.ErrAllowanceExceeded) {
		return ErrAllowanceExceeded
	}
	if errors.Is(err, repositories.ErrInsufficientBalance) {
		return ErrInsufficientBalance
	}
	if err != nil {
		return fmt.Errorf("transferFrom failed: %w", err)
	}
	return nil
}

func (s *service) Mint(ctx context.Context, to string, amount int64) error {
	if !validation.IsAddress(to) {
		return ErrInvalidAddress
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	to = validation.NormalizeAddress(to)

	return s.repo.ExecuteInTransaction(func(tx repositories.TokenRepository) error {
		if err := tx.Credit(to, amount); err != nil {
			return err
		}
		return tx.AddSupply(amount)
	})
}
