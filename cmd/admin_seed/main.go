// Command admin_seed bootstraps a fresh deployment: it creates the
// admin account, seeds the singleton component configurations and
// writes the deployment binding file the UI and scripts read.
package main

import (
	"log"
	"os"

	"kycgate/internal/config"
	"kycgate/internal/models"
	"kycgate/internal/repositories"
	"kycgate/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminAddress := os.Getenv("ADMIN_ADDRESS")

	if adminEmail == "" || adminPassword == "" || adminAddress == "" {
		log.Fatal("ADMIN_EMAIL, ADMIN_PASSWORD, and ADMIN_ADDRESS must be set in environment")
	}
	if !validation.IsAddress(adminAddress) {
		log.Fatal("ADMIN_ADDRESS is not a valid address")
	}
	adminAddress = validation.NormalizeAddress(adminAddress)

	treasury := validation.NormalizeAddress(config.GetEnv("TREASURY_ADDRESS", adminAddress))
	gateAddress := validation.NormalizeAddress(config.GetEnv("GATE_ADDRESS", "0x0000000000000000000000000000000000000a01"))
	gatewayAddress := validation.NormalizeAddress(config.GetEnv("GATEWAY_ADDRESS", "0x0000000000000000000000000000000000000a02"))

	if err := repositories.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer func() {
		if repositories.DB != nil {
			if sqlDB, err := repositories.DB.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Printf("⚠️ Failed to close PostgreSQL connection: %v", err)
				}
			}
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				log.Printf("⚠️ Failed to close Redis connection: %v", err)
			}
		}
	}()

	seedAdminAccount(adminEmail, adminPassword, adminAddress)
	seedConfigs(adminAddress, treasury, gateAddress, gatewayAddress)

	dep := &config.Deployment{
		Network:    config.GetEnv("NETWORK", "local"),
		ChainID:    config.GetInt64Env("CHAIN_ID", 31337),
		Credential: adminAddress,
		Ledger:     adminAddress,
		Gate:       gateAddress,
		Gateway:    gatewayAddress,
		Stablecoin: gatewayAddress,
		Admin:      adminAddress,
		Owner:      adminAddress,
		Treasury:   treasury,
	}
	path := config.GetEnv("DEPLOYMENT_FILE", "deployments.json")
	if err := config.SaveDeployment(path, dep); err != nil {
		log.Fatal("Failed to write deployment file:", err)
	}

	log.Println("✅ Deployment seeded successfully!")
}

func seedAdminAccount(email, password, address string) {
	var existing models.Account
	if err := repositories.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Println("Admin account already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	admin := models.Account{
		Email:        email,
		Password:     string(hashedPassword),
		Address:      address,
		Role:         models.RoleAdmin,
		Status:       "active",
		TokenVersion: 1,
	}
	if err := repositories.DB.Create(&admin).Error; err != nil {
		log.Fatal("Failed to create admin account:", err)
	}
	log.Println("✅ Admin account created")
}

// seedConfigs creates the singleton configuration rows once. Existing
// rows are left untouched so reseeding never clobbers live settings.
func seedConfigs(admin, treasury, gateAddress, gatewayAddress string) {
	db := repositories.DB

	var count int64

	db.Model(&models.LedgerConfig{}).Count(&count)
	if count == 0 {
		if err := db.Create(&models.LedgerConfig{AdminAddress: admin}).Error; err != nil {
			log.Fatal("Failed to seed ledger config:", err)
		}
	}

	db.Model(&models.CredentialConfig{}).Count(&count)
	if count == 0 {
		if err := db.Create(&models.CredentialConfig{OwnerAddress: admin, NextTokenID: 1}).Error; err != nil {
			log.Fatal("Failed to seed credential config:", err)
		}
	}

	var minters int64
	db.Model(&models.CredentialMinter{}).Where("address = ?", admin).Count(&minters)
	if minters == 0 {
		if err := db.Create(&models.CredentialMinter{Address: admin, IsActive: true}).Error; err != nil {
			log.Fatal("Failed to seed admin minter:", err)
		}
	}

	db.Model(&models.GateConfig{}).Count(&count)
	if count == 0 {
		if err := db.Create(&models.GateConfig{OwnerAddress: admin, GateAddress: gateAddress}).Error; err != nil {
			log.Fatal("Failed to seed gate config:", err)
		}
	}

	db.Model(&models.GatewayConfig{}).Count(&count)
	if count == 0 {
		cfg := models.GatewayConfig{
			OwnerAddress:    admin,
			GatewayAddress:  gatewayAddress,
			TreasuryAddress: treasury,
		}
		if err := db.Create(&cfg).Error; err != nil {
			log.Fatal("Failed to seed gateway config:", err)
		}
	}

	db.Model(&models.TokenInfo{}).Count(&count)
	if count == 0 {
		if err := db.Create(&models.TokenInfo{}).Error; err != nil {
			log.Fatal("Failed to seed token info:", err)
		}
	}

	// Genesis native funds: the gate's reimbursement pool and the
	// owner's gas money. ETH has no on-ledger source otherwise.
	gasPool := config.GetInt64Env("GATE_GAS_POOL", 1_000_000_000_000_000_000)
	ownerGas := config.GetInt64Env("OWNER_NATIVE_BALANCE", 1_000_000_000_000_000_000)
	seedNativeBalance(gateAddress, gasPool)
	seedNativeBalance(admin, ownerGas)

	log.Println("✅ Component configurations seeded")
}

func seedNativeBalance(address string, amount int64) {
	var count int64
	repositories.DB.Model(&models.NativeBalance{}).Where("address = ?", address).Count(&count)
	if count > 0 {
		return
	}
	if err := repositories.DB.Create(&models.NativeBalance{Address: address, Balance: amount}).Error; err != nil {
		log.Fatal("Failed to seed native balance:", err)
	}
}
