package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions
const (
	// Admin permissions
	PermissionReadAdmin  = "admin:read"
	PermissionWriteAdmin = "admin:write"

	// Provider permissions
	PermissionVerificationSubmit = "verification:submit"
	PermissionVerificationDecide = "verification:decide"
	PermissionCredentialMint     = "credential:mint"

	// User permissions
	PermissionPaymentWrite    = "payment:write"
	PermissionPaymentRead     = "payment:read"
	PermissionCredentialRead  = "credential:read"
	PermissionChangePassword  = "account:change-password"
	PermissionAccountRead     = "account:read"
	PermissionSubscriptionPay = "subscription:pay"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	Address      string   `json:"address"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{
			PermissionReadAdmin,
			PermissionWriteAdmin,
			PermissionVerificationSubmit,
			PermissionVerificationDecide,
			PermissionCredentialMint,
			PermissionPaymentRead,
			PermissionPaymentWrite,
			PermissionCredentialRead,
			PermissionAccountRead,
			PermissionChangePassword,
		}
	case RoleProvider:
		return []string{
			PermissionVerificationSubmit,
			PermissionVerificationDecide,
			PermissionCredentialMint,
			PermissionCredentialRead,
			PermissionAccountRead,
			PermissionChangePassword,
		}
	case RoleUser:
		return []string{
			PermissionPaymentRead,
			PermissionPaymentWrite,
			PermissionSubscriptionPay,
			PermissionCredentialRead,
			PermissionAccountRead,
			PermissionChangePassword,
		}
	default:
		return []string{}
	}
}
