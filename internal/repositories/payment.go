package repositories

import (
	"errors"
	"fmt"

	"kycgate/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository defines the interface for the payment gateway's
// state: payments, gateway configuration and the recipient whitelist.
// Token() returns a stablecoin ledger bound to the same DB handle for
// atomic fee routing.
type PaymentRepository interface {
	GetConfig() (*models.GatewayConfig, error)
	SaveConfig(cfg *models.GatewayConfig) error
	CreatePayment(payment *models.Payment) error
	GetByPaymentID(paymentID string) (*models.Payment, error)
	ListPayments(limit int) ([]models.Payment, error)
	CountPayments() (int64, error)
	UserStats(address string) (count int64, total int64, err error)
	IsWhitelisted(address string) (bool, error)
	AddToWhitelist(address string) error
	RemoveFromWhitelist(address string) error
	Token() TokenRepository
	RecordEvent(component, name string, payload models.JSON) error
	ExecuteInTransaction(fn func(PaymentRepository) error) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetConfig() (*models.GatewayConfig, error) {
	var cfg models.GatewayConfig
	if err := r.db.First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("gateway config not seeded")
		}
		return nil, fmt.Errorf("failed to get gateway config: %w", err)
	}
	return &cfg, nil
}

func (r *paymentRepository) SaveConfig(cfg *models.GatewayConfig) error {
	if err := r.db.Save(cfg).Error; err != nil {
		return fmt.Errorf("failed to save gateway config: %w", err)
	}
	return nil
}

func (r *paymentRepository) CreatePayment(payment *models.Payment) error {
	if err := r.db.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByPaymentID(paymentID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.Where("payment_id = ?", paymentID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) ListPayments(limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Order("created_at desc").Limit(limit).Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) CountPayments() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Payment{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}

func (r *paymentRepository) UserStats(address string) (int64, int64, error) {
	var count int64
	err := r.db.Model(&models.Payment{}).
		Where("from_address = ? AND completed = ?", address, true).
		Count(&count).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count user payments: %w", err)
	}

	var total struct{ Total int64 }
	err = r.db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("from_address = ? AND completed = ?", address, true).
		Scan(&total).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to sum user payments: %w", err)
	}
	return count, total.Total, nil
}

func (r *paymentRepository) IsWhitelisted(address string) (bool, error) {
	var row models.WhitelistedRecipient
	err := r.db.Where("address = ?", address).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check whitelist: %w", err)
	}
	return true, nil
}

func (r *paymentRepository) AddToWhitelist(address string) error {
	var row models.WhitelistedRecipient
	err := r.db.Unscoped().Where("address = ?", address).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&models.WhitelistedRecipient{Address: address}).Error
	}
	if err != nil {
		return fmt.Errorf("failed to whitelist recipient: %w", err)
	}
	// Restore a previously removed entry.
	return r.db.Unscoped().Model(&row).Update("deleted_at", nil).Error
}

func (r *paymentRepository) RemoveFromWhitelist(address string) error {
	result := r.db.Where("address = ?", address).Delete(&models.WhitelistedRecipient{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove recipient from whitelist: %w", result.Error)
	}
	return nil
}

func (r *paymentRepository) Token() TokenRepository {
	return &tokenRepository{db: r.db}
}

func (r *paymentRepository) RecordEvent(component, name string, payload models.JSON) error {
	return recordEvent(r.db, component, name, payload)
}

func (r *paymentRepository) ExecuteInTransaction(fn func(PaymentRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&paymentRepository{db: tx})
	})
}
