package repositories

import (
	"errors"
	"fmt"

	"kycgate/internal/models"

	"gorm.io/gorm"
)

// SubscriptionRepository defines the interface for the subscription
// gate's state. Token() and Native() return sub-repositories bound to
// the same DB handle, so inside ExecuteInTransaction the stablecoin
// pull, the native payout and the latch update commit or roll back as
// one unit.
type SubscriptionRepository interface {
	GetConfig() (*models.GateConfig, error)
	SaveConfig(cfg *models.GateConfig) error
	GetPayment(payerAddress string) (*models.SubscriptionPayment, error)
	SavePayment(payment *models.SubscriptionPayment) error
	Token() TokenRepository
	Native() NativeRepository
	RecordEvent(component, name string, payload models.JSON) error
	ExecuteInTransaction(fn func(SubscriptionRepository) error) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetConfig() (*models.GateConfig, error) {
	var cfg models.GateConfig
	if err := r.db.First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("gate config not seeded")
		}
		return nil, fmt.Errorf("failed to get gate config: %w", err)
	}
	return &cfg, nil
}

func (r *subscriptionRepository) SaveConfig(cfg *models.GateConfig) error {
	if err := r.db.Save(cfg).Error; err != nil {
		return fmt.Errorf("failed to save gate config: %w", err)
	}
	return nil
}

func (r *subscriptionRepository) GetPayment(payerAddress string) (*models.SubscriptionPayment, error) {
	var payment models.SubscriptionPayment
	if err := r.db.Where("payer_address = ?", payerAddress).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription payment: %w", err)
	}
	return &payment, nil
}

func (r *subscriptionRepository) SavePayment(payment *models.SubscriptionPayment) error {
	if err := r.db.Save(payment).Error; err != nil {
		return fmt.Errorf("failed to save subscription payment: %w", err)
	}
	return nil
}

func (r *subscriptionRepository) Token() TokenRepository {
	return &tokenRepository{db: r.db}
}

func (r *subscriptionRepository) Native() NativeRepository {
	return &nativeRepository{db: r.db}
}

func (r *subscriptionRepository) RecordEvent(component, name string, payload models.JSON) error {
	return recordEvent(r.db, component, name, payload)
}

func (r *subscriptionRepository) ExecuteInTransaction(fn func(SubscriptionRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&subscriptionRepository{db: tx})
	})
}
