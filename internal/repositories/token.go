package repositories

import (
	"errors"
	"fmt"

	"kycgate/internal/models"

	"gorm.io/gorm"
)

// TokenRepository is the storage interface of the mock stablecoin
// ledger: balances, allowances and token metadata.
type TokenRepository interface {
	Info() (*models.TokenInfo, error)
	BalanceOf(address string) (int64, error)
	Credit(address string, amount int64) error
	Debit(address string, amount int64) error
	Allowance(owner, spender string) (int64, error)
	SetAllowance(owner, spender string, amount int64) error
	AddSupply(amount int64) error
	ExecuteInTransaction(fn func(TokenRepository) error) error
}

// NativeRepository tracks native-asset balances per address.
type NativeRepository interface {
	BalanceOf(address string) (int64, error)
	Credit(address string, amount int64) error
	Debit(address string, amount int64) error
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Info() (*models.TokenInfo, error) {
	var info models.TokenInfo
	if err := r.db.First(&info).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("token info not seeded")
		}
		return nil, fmt.Errorf("failed to get token info: %w", err)
	}
	return &info, nil
}

func (r *tokenRepository) BalanceOf(address string) (int64, error) {
	var row models.TokenBalance
	err := r.db.Where("address = ?", address).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get token balance: %w", err)
	}
	return row.Balance, nil
}

func (r *tokenRepository) Credit(address string, amount int64) error {
	var row models.TokenBalance
	err := r.db.Where("address = ?", address).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&models.TokenBalance{Address: address, Balance: amount}).Error
	}
	if err != nil {
		return fmt.Errorf("failed to credit token balance: %w", err)
	}
	row.Balance += amount
	return r.db.Save(&row).Error
}

func (r *tokenRepository) Debit(address string, amount int64) error {
	var row models.TokenBalance
	err := r.db.Where("address = ?", address).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInsufficientBalance
	}
	if err != nil {
		return fmt.Errorf("failed to debit token balance: %w", err)
	}
	if row.Balance < amount {
		return ErrInsufficientBalance
	}
	row.Balance -= amount
	return r.db.Save(&row).Error
}

func (r *tokenRepository) Allowance(owner, spender string) (int64, error) {
	var row models.TokenAllowance
	err := r.db.Where("owner_address = ? AND spender_address = ?", owner, spender).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get allowance: %w", err)
	}
	return row.Amount, nil
}

func (r *tokenRepository) SetAllowance(owner, spender string, amount int64) error {
	var row models.TokenAllowance
	err := r.db.Where("owner_address = ? AND spender_address = ?", owner, spender).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&models.TokenAllowance{
			OwnerAddress:   owner,
			SpenderAddress: spender,
			Amount:         amount,
		}).Error
	}
	if err != nil {
		return fmt.Errorf("failed to set allowance: %w", err)
	}
	row.Amount = amount
	return r.db.Save(&row).Error
}

func (r *tokenRepository) AddSupply(amount int64) error {
	result := r.db.Model(&models.TokenInfo{}).
		Where("1 = 1").
		Update("total_supply", gorm.Expr("total_supply + ?", amount))
	if result.Error != nil {
		return fmt.Errorf("failed to update total supply: %w", result.Error)
	}
	return nil
}

func (r *tokenRepository) ExecuteInTransaction(fn func(TokenRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&tokenRepository{db: tx})
	})
}

type nativeRepository struct {
	db *gorm.DB
}

func NewNativeRepository(db *gorm.DB) NativeRepository {
	return &nativeRepository{db: db}
}

func (r *nativeRepository) BalanceOf(address string) (int64, error) {
	var row models.NativeBalance
	err := r.db.Where("address = ?", address).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get native balance: %w", err)
	}
	return row.Balance, nil
}

func (r *nativeRepository) Credit(address string, amount int64) error {
	var row models.NativeBalance
	err := r.db.Where("address = ?", address).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&models.NativeBalance{Address: address, Balance: amount}).Error
	}
	if err != nil {
		return fmt.Errorf("failed to credit native balance: %w", err)
	}
	row.Balance += amount
	return r.db.Save(&row).Error
}

func (r *nativeRepository) Debit(address string, amount int64) error {
	var row models.NativeBalance
	err := r.db.Where("address = ?", address).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInsufficientNative
	}
	if err != nil {
		return fmt.Errorf("failed to debit native balance: %w", err)
	}
	if row.Balance < amount {
		return ErrInsufficientNative
	}
	row.Balance -= amount
	return r.db.Save(&row).Error
}
