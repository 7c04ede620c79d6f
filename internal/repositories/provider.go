package repositories

import (
	"errors"
	"fmt"

	"kycgate/internal/models"

	"gorm.io/gorm"
)

// ProviderRepository defines the interface for attester registry storage.
type ProviderRepository interface {
	Create(provider *models.Provider) error
	GetByAddress(address string) (*models.Provider, error)
	Update(provider *models.Provider) error
	List() ([]models.Provider, error)
	RecordEvent(component, name string, payload models.JSON) error
	ExecuteInTransaction(fn func(ProviderRepository) error) error
}

type providerRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) ProviderRepository {
	return &providerRepository{db: db}
}

func (r *providerRepository) Create(provider *models.Provider) error {
	if err := r.db.Create(provider).Error; err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}
	return nil
}

func (r *providerRepository) GetByAddress(address string) (*models.Provider, error) {
	var provider models.Provider
	if err := r.db.Where("address = ?", address).First(&provider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return &provider, nil
}

func (r *providerRepository) Update(provider *models.Provider) error {
	if err := r.db.Save(provider).Error; err != nil {
		return fmt.Errorf("failed to update provider: %w", err)
	}
	return nil
}

func (r *providerRepository) List() ([]models.Provider, error) {
	var providers []models.Provider
	if err := r.db.Order("created_at asc").Find(&providers).Error; err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return providers, nil
}

func (r *providerRepository) RecordEvent(component, name string, payload models.JSON) error {
	return recordEvent(r.db, component, name, payload)
}

func (r *providerRepository) ExecuteInTransaction(fn func(ProviderRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&providerRepository{db: tx})
	})
}
