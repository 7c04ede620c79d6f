package repositories

import (
	"errors"
	"fmt"

	"kycgate/internal/models"

	"gorm.io/gorm"
)

// CredentialRepository defines the interface for soul-bound credential
// storage. Credentials are never deleted; GetByOwner returns the latest
// credential row for an address.
type CredentialRepository interface {
	GetConfig() (*models.CredentialConfig, error)
	SaveConfig(cfg *models.CredentialConfig) error
	Create(credential *models.Credential) error
	Save(credential *models.Credential) error
	GetByOwner(ownerAddress string) (*models.Credential, error)
	GetByTokenID(tokenID uint64) (*models.Credential, error)
	IsMinter(address string) (bool, error)
	AddMinter(address string) error
	RemoveMinter(address string) error
	RecordEvent(component, name string, payload models.JSON) error
	ExecuteInTransaction(fn func(CredentialRepository) error) error
}

type credentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) GetConfig() (*models.CredentialConfig, error) {
	var cfg models.CredentialConfig
	if err := r.db.First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("credential config not seeded")
		}
		return nil, fmt.Errorf("failed to get credential config: %w", err)
	}
	return &cfg, nil
}

func (r *credentialRepository) SaveConfig(cfg *models.CredentialConfig) error {
	if err := r.db.Save(cfg).Error; err != nil {
		return fmt.Errorf("failed to save credential config: %w", err)
	}
	return nil
}

func (r *credentialRepository) Create(credential *models.Credential) error {
	if err := r.db.Create(credential).Error; err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}

func (r *credentialRepository) Save(credential *models.Credential) error {
	if err := r.db.Save(credential).Error; err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (r *credentialRepository) GetByOwner(ownerAddress string) (*models.Credential, error) {
	var credential models.Credential
	err := r.db.Where("owner_address = ?", ownerAddress).
		Order("token_id desc").
		First(&credential).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &credential, nil
}

func (r *credentialRepository) GetByTokenID(tokenID uint64) (*models.Credential, error) {
	var credential models.Credential
	if err := r.db.Where("token_id = ?", tokenID).First(&credential).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &credential, nil
}

func (r *credentialRepository) IsMinter(address string) (bool, error) {
	var minter models.CredentialMinter
	err := r.db.Where("address = ? AND is_active = ?", address, true).First(&minter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check minter: %w", err)
	}
	return true, nil
}

func (r *credentialRepository) AddMinter(address string) error {
	var minter models.CredentialMinter
	err := r.db.Where("address = ?", address).First(&minter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&models.CredentialMinter{Address: address, IsActive: true}).Error
	}
	if err != nil {
		return fmt.Errorf("failed to add minter: %w", err)
	}
	minter.IsActive = true
	return r.db.Save(&minter).Error
}

func (r *credentialRepository) RemoveMinter(address string) error {
	result := r.db.Model(&models.CredentialMinter{}).
		Where("address = ?", address).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to remove minter: %w", result.Error)
	}
	return nil
}

func (r *credentialRepository) RecordEvent(component, name string, payload models.JSON) error {
	return recordEvent(r.db, component, name, payload)
}

func (r *credentialRepository) ExecuteInTransaction(fn func(CredentialRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&credentialRepository{db: tx})
	})
}
