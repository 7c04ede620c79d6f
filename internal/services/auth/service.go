package auth

import (
	"errors"
	"log"

	"kycgate/internal/models"
	"kycgate/internal/repositories"
	"kycgate/internal/utils"
	"kycgate/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Login(email, password string) (*models.Account, string, string, error)
	RefreshTokens(refreshToken string) (string, string, error)
	Logout(accountID uint) error
	ChangePassword(accountID uint, oldPassword, newPassword string) error
	GetAccountByID(accountID uint) (*models.Account, error)
	GetAccountTokenVersion(accountID uint) (int, error)
}

type service struct {
	accounts repositories.AccountRepository
}

func NewService(accounts repositories.AccountRepository) Service {
	if accounts == nil {
		panic("account repository is required")
	}
	return &service{accounts: accounts}
}

func (s *service) Login(email, password string) (*models.Account, string, string, error) {
	account, err := s.accounts.GetByEmail(email)
	if err != nil {
		log.Printf("Login failed: account not found for %s", email)
		return nil, "", "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		log.Printf("Login failed: incorrect password for account ID %d", account.ID)
		return nil, "", "", errors.New("invalid credentials")
	}

	accessToken, refreshToken, err := utils.GenerateTokens(&models.UserClaims{
		UserID:       account.ID,
		Address:      account.Address,
		Email:        account.Email,
		Role:         account.Role,
		TokenVersion: account.TokenVersion,
		Permissions:  models.GetDefaultPermissions(account.Role),
	})
	if err != nil {
		log.Println("Error generating tokens:", err)
		return nil, "", "", errors.New("error generating tokens")
	}

	return account, accessToken, refreshToken, nil
}

func (s *service) RefreshTokens(refreshToken string) (string, string, error) {
	_, claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return "", "", errors.New("invalid refresh token")
	}

	account, err := s.accounts.GetByID(claims.UserID)
	if err != nil {
		return "", "", errors.New("account not found")
	}

	if account.TokenVersion != claims.TokenVersion {
		return "", "", errors.New("token version mismatch")
	}

	return utils.GenerateTokens(&models.UserClaims{
		UserID:       account.ID,
		Address:      account.Address,
		Email:        account.Email,
		Role:         account.Role,
		TokenVersion: account.TokenVersion,
		Permissions:  models.GetDefaultPermissions(account.Role),
	})
}

func (s *service) GetAccountByID(accountID uint) (*models.Account, error) {
	return s.accounts.GetByID(accountID)
}

func (s *service) GetAccountTokenVersion(accountID uint) (int, error) {
	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		return 0, err
	}
	return account.TokenVersion, nil
}

func (s *service) Logout(accountID uint) error {
	return s.accounts.IncrementTokenVersion(accountID)
}

func (s *service) ChangePassword(accountID uint, oldPassword, newPassword string) error {
	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		return errors.New("failed to get account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(oldPassword)); err != nil {
		return errors.New("invalid old password")
	}

	if len(newPassword) < 8 || !validation.HasSpecialChar(newPassword) {
		return errors.New("password must be at least 8 characters and contain special characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}

	account.Password = string(hashedPassword)
	account.TokenVersion++ // Invalidate existing tokens

	if err := s.accounts.Update(account); err != nil {
		return errors.New("failed to update password")
	}

	return nil
}
