// Package credential implements the soul-bound verification token. A
// credential is bound permanently to the address it was minted to:
// every transfer and approval entry point fails unconditionally, with
// no escape hatch for the owner or minter roles. Validity is evaluated
// lazily: IsVerified is a pure read, CheckExpiry is the separate
// idempotent mutation that materializes an expiry.
package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kycgate/internal/models"
	"kycgate/internal/repositories"
	"kycgate/internal/validation"
)

// Service defines the credential registry operations.
type Service interface {
	MintSBT(ctx context.Context, caller string, req MintRequest) (*models.Credential, error)
	Revoke(ctx context.Context, caller, user, reason string) error
	Renew(ctx context.Context, caller, user string, newExpiryDays int) error
	CheckExpiry(ctx context.Context, user string) (bool, error)

	IsVerified(ctx context.Context, user string) (bool, error)
	HasSBT(ctx context.Context, user string) (bool, error)
	BalanceOf(ctx context.Context, user string) (int, error)
	GetUserSBT(ctx context.Context, user string) (*models.Credential, error)

	// Standard token transfer entry points, present only to refuse.
	TransferFrom(ctx context.Context, caller, from, to string, tokenID uint64) error
	Approve(ctx context.Context, caller, spender string, tokenID uint64) error
	SetApprovalForAll(ctx context.Context, caller, operator string, approved bool) error

	AddMinter(ctx context.Context, caller, minter string) error
	RemoveMinter(ctx context.Context, caller, minter string) error
}

type service struct {
	repo  repositories.CredentialRepository
	cache CredentialCache
}

// NewService creates a new credential service.
func NewService(repo repositories.CredentialRepository, cache CredentialCache) Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		panic("cache is required")
	}
	return &service{repo: repo, cache: cache}
}

func (s *service) MintSBT(ctx context.Context, caller string, req MintRequest) (*models.Credential, error) {
	if err := s.requireMinter(caller); err != nil {
		return nil, err
	}
	if !validation.IsAddress(req.UserAddress) {
		return nil, ErrInvalidAddress
	}
	if req.ExpiryDays <= 0 {
		return nil, ErrInvalidExpiry
	}
	user := validation.NormalizeAddress(req.UserAddress)

	// At most one live credential per address: refuse while the holder
	// still has one that is verified and unexpired.
	existing, err := s.repo.GetByOwner(user)
	if err != nil && !errors.Is(err, repositories.ErrCredentialNotFound) {
		return nil, err
	}
	if existing != nil && existing.Active(time.Now().UTC()) {
		return nil, ErrAlreadyVerified
	}

	now := time.Now().UTC()
	minted := &models.Credential{
		OwnerAddress:     user,
		KYCReferenceID:   req.KYCReferenceID,
		Status:           models.CredentialStatusVerified,
		RiskScore:        req.RiskScore,
		AMLStatus:        req.AMLStatus,
		VerificationDate: now,
		ExpiryDate:       now.AddDate(0, 0, req.ExpiryDays),
	}

	err = s.repo.ExecuteInTransaction(func(tx repositories.CredentialRepository) error {
		cfg, err := tx.GetConfig()
		if err != nil {
			return err
		}
		minted.TokenID = cfg.NextTokenID
		cfg.NextTokenID++
		if err := tx.SaveConfig(cfg); err != nil {
			return err
		}
		if err := tx.Create(minted); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentCredential, models.EventSBTMinted, models.JSON{
			"user":         user,
			"token_id":     minted.TokenID,
			"reference_id": req.KYCReferenceID,
			"expiry_date":  minted.ExpiryDate,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mint credential: %w", err)
	}

	s.cache.InvalidateCredential(ctx, user)
	return minted, nil
}

func (s *service) Revoke(ctx context.Context, caller, user, reason string) error {
	if err := s.requireMinter(caller); err != nil {
		return err
	}
	user = validation.NormalizeAddress(user)

	held, err := s.repo.GetByOwner(user)
	if errors.Is(err, repositories.ErrCredentialNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	held.Status = models.CredentialStatusRevoked
	held.RevocationReason = reason

	err = s.repo.ExecuteInTransaction(func(tx repositories.CredentialRepository) error {
		if err := tx.Save(held); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentCredential, models.EventSBTRevoked, models.JSON{
			"user":     user,
			"token_id": held.TokenID,
			"reason":   reason,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to revoke credential: %w", err)
	}

	s.cache.InvalidateCredential(ctx, user)
	return nil
}

func (s *service) Renew(ctx context.Context, caller, user string, newExpiryDays int) error {
	if err := s.requireMinter(caller); err != nil {
		return err
	}
	if newExpiryDays <= 0 {
		return ErrInvalidExpiry
	}
	user = validation.NormalizeAddress(user)

	held, err := s.repo.GetByOwner(user)
	if errors.Is(err, repositories.ErrCredentialNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	// Renewal keeps the token id; it only pushes the expiry out and
	// restores verified status for a lapsed credential.
	held.Status = models.CredentialStatusVerified
	held.ExpiryDate = time.Now().UTC().AddDate(0, 0, newExpiryDays)

	err = s.repo.ExecuteInTransaction(func(tx repositories.CredentialRepository) error {
		if err := tx.Save(held); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentCredential, models.EventSBTRenewed, models.JSON{
			"user":        user,
			"token_id":    held.TokenID,
			"expiry_date": held.ExpiryDate,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to renew credential: %w", err)
	}

	s.cache.InvalidateCredential(ctx, user)
	return nil
}

// CheckExpiry materializes an expiry: anyone may call it, and it is
// idempotent. It returns true when this call flipped the status.
func (s *service) CheckExpiry(ctx context.Context, user string) (bool, error) {
	user = validation.NormalizeAddress(user)

	held, err := s.repo.GetByOwner(user)
	if errors.Is(err, repositories.ErrCredentialNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if held.Status != models.CredentialStatusVerified {
		return false, nil
	}
	if time.Now().UTC().Before(held.ExpiryDate) {
		return false, nil
	}

	held.Status = models.CredentialStatusExpired

	err = s.repo.ExecuteInTransaction(func(tx repositories.CredentialRepository) error {
		if err := tx.Save(held); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentCredential, models.EventSBTExpired, models.JSON{
			"user":     user,
			"token_id": held.TokenID,
		})
	})
	if err != nil {
		return false, fmt.Errorf("failed to mark credential expired: %w", err)
	}

	s.cache.InvalidateCredential(ctx, user)
	return true, nil
}

// IsVerified is the pure validity read: stored status AND expiry time,
// with no side effects.
func (s *service) IsVerified(ctx context.Context, user string) (bool, error) {
	user = validation.NormalizeAddress(user)

	if cached, err := s.cache.GetCredential(ctx, user); err == nil {
		return cached.Active(time.Now().UTC()), nil
	}

	held, err := s.repo.GetByOwner(user)
	if errors.Is(err, repositories.ErrCredentialNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.cache.SetCredential(ctx, held)
	return held.Active(time.Now().UTC()), nil
}

func (s *service) HasSBT(ctx context.Context, user string) (bool, error) {
	balance, err := s.BalanceOf(ctx, user)
	return balance > 0, err
}

// BalanceOf mirrors the token-ledger view: 1 while the holder's latest
// credential is not revoked, 0 after revocation or if none was minted.
func (s *service) BalanceOf(ctx context.Context, user string) (int, error) {
	held, err := s.repo.GetByOwner(validation.NormalizeAddress(user))
	if errors.Is(err, repositories.ErrCredentialNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if held.Status == models.CredentialStatusRevoked {
		return 0, nil
	}
	return 1, nil
}

func (s *service) GetUserSBT(ctx context.Context, user string) (*models.Credential, error) {
	held, err := s.repo.GetByOwner(validation.NormalizeAddress(user))
	if errors.Is(err, repositories.ErrCredentialNotFound) {
		return nil, ErrNotFound
	}
	return held, err
}

// TransferFrom always fails: soul-bound means soul-bound.
func (s *service) TransferFrom(ctx context.Context, caller, from, to string, tokenID uint64) error {
	return ErrNonTransferable
}

// Approve always fails.
func (s *service) Approve(ctx context.Context, caller, spender string, tokenID uint64) error {
	return ErrNonTransferable
}

// SetApprovalForAll always fails.
func (s *service) SetApprovalForAll(ctx context.Context, caller, operator string, approved bool) error {
	return ErrNonTransferable
}

func (s *service) AddMinter(ctx context.Context, caller, minter string) error {
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if !validation.IsAddress(minter) {
		return ErrInvalidAddress
	}
	return s.repo.AddMinter(validation.NormalizeAddress(minter))
}

func (s *service) RemoveMinter(ctx context.Context, caller, minter string) error {
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	return s.repo.RemoveMinter(validation.NormalizeAddress(minter))
}

func (s *service) requireOwner(caller string) error {
	cfg, err := s.repo.GetConfig()
	if err != nil {
		return err
	}
	if cfg.OwnerAddress != validation.NormalizeAddress(caller) {
		return ErrOwnerOnly
	}
	return nil
}

func (s *service) requireMinter(caller string) error {
	caller = validation.NormalizeAddress(caller)

	cfg, err := s.repo.GetConfig()
	if err != nil {
		return err
	}
	if cfg.OwnerAddress == caller {
		return nil
	}

	ok, err := s.repo.IsMinter(caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}
