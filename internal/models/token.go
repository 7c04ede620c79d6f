package models

import "gorm.io/gorm"

// TokenBalance is one row of the mock stablecoin balance ledger.
// Amounts are integer base units; the token's decimals live in TokenInfo
// and are read by consumers at call time.
type TokenBalance struct {
	gorm.Model
	Address string `gorm:"uniqueIndex;not null" json:"address"`
	Balance int64  `gorm:"default:0" json:"balance"`
}

// TokenAllowance mirrors the standard approve/transferFrom discipline.
type TokenAllowance struct {
	gorm.Model
	OwnerAddress   string `gorm:"index:idx_allowance,unique;not null" json:"owner_address"`
	SpenderAddress string `gorm:"index:idx_allowance,unique;not null" json:"spender_address"`
	Amount         int64  `gorm:"default:0" json:"amount"`
}

// TokenInfo is the singleton token metadata row.
type TokenInfo struct {
	gorm.Model
	Name        string `gorm:"default:'PayPal USD'"`
	Symbol      string `gorm:"default:'PYUSD'"`
	Decimals    uint8  `gorm:"default:6"`
	TotalSupply int64  `gorm:"default:0"`
}

// NativeBalance tracks the native asset (ETH) per address. The gate's
// reimbursement pool is simply the gate address's row.
type NativeBalance struct {
	gorm.Model
	Address string `gorm:"uniqueIndex;not null" json:"address"`
	Balance int64  `gorm:"default:0" json:"balance"`
}
