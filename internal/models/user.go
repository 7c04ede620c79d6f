package models

import (
	"time"

	"gorm.io/gorm"
)

// Account roles
const (
	RoleUser     = "user"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// Account binds a login identity to an on-ledger address.
// The address is the identity every domain service keys on; the
// password/role pair only exists so the HTTP layer can resolve a caller.
type Account struct {
	gorm.Model
	Address             string `gorm:"uniqueIndex;not null"`
	Email               string `gorm:"uniqueIndex;not null"`
	Password            string `gorm:"not null"`
	Name                string
	Role                string `gorm:"default:'user'"`
	Status              string `gorm:"default:'active'"`
	LastLoginAt         time.Time
	LastLoginIP         string
	FailedLoginAttempts int `gorm:"default:0"`
	TokenVersion        int `gorm:"default:1"`
}
