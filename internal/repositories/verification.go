package repositories

import (
	"errors"
	"fmt"

	"kycgate/internal/models"

	"gorm.io/gorm"
)

// VerificationRepository defines the interface for the verification
// ledger: the per-user singleton records, its admin configuration, and
// the provider counters it increments on decisions.
type VerificationRepository interface {
	GetConfig() (*models.LedgerConfig, error)
	SaveConfig(cfg *models.LedgerConfig) error
	GetRecord(userAddress string) (*models.VerificationRecord, error)
	SaveRecord(record *models.VerificationRecord) error
	GetProvider(address string) (*models.Provider, error)
	SaveProvider(provider *models.Provider) error
	RecordEvent(component, name string, payload models.JSON) error
	ExecuteInTransaction(fn func(VerificationRepository) error) error
}

type verificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) GetConfig() (*models.LedgerConfig, error) {
	var cfg models.LedgerConfig
	if err := r.db.First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ledger config not seeded")
		}
		return nil, fmt.Errorf("failed to get ledger config: %w", err)
	}
	return &cfg, nil
}

func (r *verificationRepository) SaveConfig(cfg *models.LedgerConfig) error {
	if err := r.db.Save(cfg).Error; err != nil {
		return fmt.Errorf("failed to save ledger config: %w", err)
	}
	return nil
}

func (r *verificationRepository) GetRecord(userAddress string) (*models.VerificationRecord, error) {
	var record models.VerificationRecord
	if err := r.db.Where("user_address = ?", userAddress).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get verification record: %w", err)
	}
	return &record, nil
}

func (r *verificationRepository) SaveRecord(record *models.VerificationRecord) error {
	if err := r.db.Save(record).Error; err != nil {
		return fmt.Errorf("failed to save verification record: %w", err)
	}
	return nil
}

func (r *verificationRepository) GetProvider(address string) (*models.Provider, error) {
	var provider models.Provider
	if err := r.db.Where("address = ?", address).First(&provider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return &provider, nil
}

func (r *verificationRepository) SaveProvider(provider *models.Provider) error {
	if err := r.db.Save(provider).Error; err != nil {
		return fmt.Errorf("failed to save provider: %w", err)
	}
	return nil
}

func (r *verificationRepository) RecordEvent(component, name string, payload models.JSON) error {
	return recordEvent(r.db, component, name, payload)
}

func (r *verificationRepository) ExecuteInTransaction(fn func(VerificationRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&verificationRepository{db: tx})
	})
}
