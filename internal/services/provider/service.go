// Package provider implements the attester registry: the set of
// admin-authorized identities trusted to submit and decide KYC
// verifications. Providers are deactivated, never deleted, so their
// decision counters survive for audit.
package provider

import (
	"context"
	"errors"
	"fmt"

	"kycgate/internal/models"
	"kycgate/internal/repositories"
	"kycgate/internal/validation"
)

// AdminChecker reports whether an address holds the ledger admin role.
type AdminChecker interface {
	IsAdmin(ctx context.Context, address string) (bool, error)
}

// Service defines the provider registry operations.
type Service interface {
	AddProvider(ctx context.Context, caller, address, name string) (*models.Provider, error)
	RemoveProvider(ctx context.Context, caller, address string) error
	ActivateProvider(ctx context.Context, caller, address string) error
	GetProvider(ctx context.Context, address string) (*models.Provider, error)
	ListProviders(ctx context.Context) ([]models.Provider, error)
	IsActiveProvider(ctx context.Context, address string) (bool, error)
}

type service struct {
	repo  repositories.ProviderRepository
	admin AdminChecker
}

// NewService creates a new provider registry service.
func NewService(repo repositories.ProviderRepository, admin AdminChecker) Service {
	if repo == nil {
		panic("repo is required")
	}
	if admin == nil {
		panic("admin checker is required")
	}
	return &service{repo: repo, admin: admin}
}

func (s *service) AddProvider(ctx context.Context, caller, address, name string) (*models.Provider, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	if !validation.IsAddress(address) {
		return nil, ErrInvalidAddress
	}
	address = validation.NormalizeAddress(address)

	if _, err := s.repo.GetByAddress(address); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, repositories.ErrProviderNotFound) {
		return nil, err
	}

	registered := &models.Provider{
		Address:  address,
		Name:     name,
		IsActive: true,
	}

	err := s.repo.ExecuteInTransaction(func(tx repositories.ProviderRepository) error {
		if err := tx.Create(registered); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentRegistry, models.EventProviderAdded, models.JSON{
			"provider": address,
			"name":     name,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add provider: %w", err)
	}
	return registered, nil
}

func (s *service) RemoveProvider(ctx context.Context, caller, address string) error {
	return s.setActive(ctx, caller, address, false)
}

func (s *service) ActivateProvider(ctx context.Context, caller, address string) error {
	return s.setActive(ctx, caller, address, true)
}

func (s *service) setActive(ctx context.Context, caller, address string, active bool) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	address = validation.NormalizeAddress(address)

	registered, err := s.repo.GetByAddress(address)
	if err != nil {
		if errors.Is(err, repositories.ErrProviderNotFound) {
			return ErrNotFound
		}
		return err
	}

	registered.IsActive = active

	eventName := models.EventProviderRemoved
	if active {
		eventName = models.EventProviderActivated
	}

	return s.repo.ExecuteInTransaction(func(tx repositories.ProviderRepository) error {
		if err := tx.Update(registered); err != nil {
			return err
		}
		return tx.RecordEvent(models.ComponentRegistry, eventName, models.JSON{
			"provider": address,
		})
	})
}

func (s *service) GetProvider(ctx context.Context, address string) (*models.Provider, error) {
	registered, err := s.repo.GetByAddress(validation.NormalizeAddress(address))
	if err != nil {
		if errors.Is(err, repositories.ErrProviderNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return registered, nil
}

func (s *service) ListProviders(ctx context.Context) ([]models.Provider, error) {
	return s.repo.List()
}

func (s *service) IsActiveProvider(ctx context.Context, address string) (bool, error) {
	registered, err := s.repo.GetByAddress(validation.NormalizeAddress(address))
	if err != nil {
		if errors.Is(err, repositories.ErrProviderNotFound) {
			return false, nil
		}
		return false, err
	}
	return registered.IsActive, nil
}

func (s *service) requireAdmin(ctx context.Context, caller string) error {
	ok, err := s.admin.IsAdmin(ctx, validation.NormalizeAddress(caller))
	if err != nil {
		return fmt.Errorf("failed to check admin: %w", err)
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}
