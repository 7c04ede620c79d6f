// Package user manages accounts: registration binds an email/password
// login to a ledger address that every domain service keys on.
package user

import (
	"errors"

	"kycgate/internal/models"
	"kycgate/internal/repositories"
	"kycgate/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// CreateAccountInput is the registration payload.
type CreateAccountInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type Service interface {
	GetByID(id uint) (*models.Account, error)
	GetByAddress(address string) (*models.Account, error)
	Create(input *CreateAccountInput) (*models.Account, error)
	Update(account *models.Account) error
	ChangePassword(accountID uint, oldPassword, newPassword string) error
}

type service struct {
	repo repositories.AccountRepository
}

func NewService(repo repositories.AccountRepository) Service {
	if repo == nil {
		panic("account repository is required")
	}
	return &service{repo: repo}
}

func (s *service) GetByID(id uint) (*models.Account, error) {
	return s.repo.GetByID(id)
}

func (s *service) GetByAddress(address string) (*models.Account, error) {
	return s.repo.GetByAddress(validation.NormalizeAddress(address))
}

func (s *service) Create(input *CreateAccountInput) (*models.Account, error) {
	if input.Email == "" {
		return nil, errors.New("email is required")
	}
	if !validation.IsAddress(input.Address) {
		return nil, errors.New("valid address is required")
	}

	if existing, _ := s.repo.GetByEmail(input.Email); existing != nil {
		return nil, errors.New("account with this email already exists")
	}
	address := validation.NormalizeAddress(input.Address)
	if existing, _ := s.repo.GetByAddress(address); existing != nil {
		return nil, errors.New("account with this address already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}

	account := &models.Account{
		Name:     input.Name,
		Email:    input.Email,
		Address:  address,
		Password: string(hashedPassword),
		Role:     role,
		Status:   "active",
	}
	if err := s.repo.Create(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *service) Update(account *models.Account) error {
	return s.repo.Update(account)
}

func (s *service) ChangePassword(accountID uint, oldPassword, newPassword string) error {
	account, err := s.repo.GetByID(accountID)
	if err != nil {
		return errors.New("account not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(oldPassword)); err != nil {
		return errors.New("incorrect password")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}

	account.Password = string(hashedPassword)
	account.TokenVersion++ // Invalidate existing tokens

	return s.repo.Update(account)
}
