package credential

import (
	"context"
	"testing"
	"time"

	"kycgate/internal/models"
	"kycgate/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerAddr  = "0x000000000000000000000000000000000000000a"
	minterAddr = "0x000000000000000000000000000000000000000b"
	holderAddr = "0x000000000000000000000000000000000000000c"
	otherAddr  = "0x000000000000000000000000000000000000000d"
)

type fakeCredentialRepo struct {
	cfg         models.CredentialConfig
	credentials []models.Credential
	minters     map[string]bool
	events      []string
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{
		cfg:     models.CredentialConfig{OwnerAddress: ownerAddr, NextTokenID: 1},
		minters: map[string]bool{minterAddr: true},
	}
}

func (f *fakeCredentialRepo) GetConfig() (*models.CredentialConfig, error) {
	cfg := f.cfg
	return &cfg, nil
}

func (f *fakeCredentialRepo) SaveConfig(cfg *models.CredentialConfig) error {
	f.cfg = *cfg
	return nil
}

func (f *fakeCredentialRepo) Create(c *models.Credential) error {
	f.credentials = append(f.credentials, *c)
	return nil
}

func (f *fakeCredentialRepo) Save(c *models.Credential) error {
	for i := range f.credentials {
		if f.credentials[i].TokenID == c.TokenID {
			f.credentials[i] = *c
			return nil
		}
	}
	f.credentials = append(f.credentials, *c)
	return nil
}

func (f *fakeCredentialRepo) GetByOwner(owner string) (*models.Credential, error) {
	for i := len(f.credentials) - 1; i >= 0; i-- {
		if f.credentials[i].OwnerAddress == owner {
			c := f.credentials[i]
			return &c, nil
		}
	}
	return nil, repositories.ErrCredentialNotFound
}

func (f *fakeCredentialRepo) GetByTokenID(tokenID uint64) (*models.Credential, error) {
	for i := range f.credentials {
		if f.credentials[i].TokenID == tokenID {
			c := f.credentials[i]
			return &c, nil
		}
	}
	return nil, repositories.ErrCredentialNotFound
}

func (f *fakeCredentialRepo) IsMinter(address string) (bool, error) {
	return f.minters[address], nil
}

func (f *fakeCredentialRepo) AddMinter(address string) error {
	f.minters[address] = true
	return nil
}

func (f *fakeCredentialRepo) RemoveMinter(address string) error {
	delete(f.minters, address)
	return nil
}

func (f *fakeCredentialRepo) RecordEvent(component, name string, payload models.JSON) error {
	f.events = append(f.events, name)
	return nil
}

func (f *fakeCredentialRepo) ExecuteInTransaction(fn func(repositories.CredentialRepository) error) error {
	return fn(f)
}

type noopCredentialCache struct{}

func (noopCredentialCache) GetCredential(ctx context.Context, owner string) (*models.Credential, error) {
	return nil, repositories.ErrCredentialNotFound
}

func (noopCredentialCache) SetCredential(ctx context.Context, credential *models.Credential) error {
	return nil
}

func (noopCredentialCache) InvalidateCredential(ctx context.Context, owner string) error {
	return nil
}

func mintFor(t *testing.T, svc Service, user string) *models.Credential {
	t.Helper()
	minted, err := svc.MintSBT(context.Background(), minterAddr, MintRequest{
		UserAddress:    user,
		KYCReferenceID: "ref-1",
		RiskScore:      10,
		AMLStatus:      "clear",
		ExpiryDays:     365,
	})
	require.NoError(t, err)
	return minted
}

func TestMintSBT(t *testing.T) {
	t.Run("requires minter role", func(t *testing.T) {
		repo := newFakeCredentialRepo()
		svc := NewService(repo, noopCredentialCache{})

		_, err := svc.MintSBT(context.Background(), holderAddr, MintRequest{
			UserAddress: holderAddr,
			ExpiryDays:  365,
		})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("owner can mint without minter entry", func(t *testing.T) {
		repo := newFakeCredentialRepo()
		svc := NewService(repo, noopCredentialCache{})

		_, err := svc.MintSBT(context.Background(), ownerAddr, MintRequest{
			UserAddress: holderAddr,
			ExpiryDays:  365,
		})
		assert.NoError(t, err)
	})

	t.Run("token ids are monotonic", func(t *testing.T) {
		repo := newFakeCredentialRepo()
		svc := NewService(repo, noopCredentialCache{})

		first := mintFor(t, svc, holderAddr)
		second := mintFor(t, svc, otherAddr)

		assert.Equal(t, uint64(1), first.TokenID)
		assert.Equal(t, uint64(2), second.TokenID)
		assert.Equal(t, uint64(3), repo.cfg.NextTokenID)
	})

	t.Run("refuses while holder has an active credential", func(t *testing.T) {
		repo := newFakeCredentialRepo()
		svc := NewService(repo, noopCredentialCache{})

		mintFor(t, svc, holderAddr)
		_, err := svc.MintSBT(context.Background(), minterAddr, MintRequest{
			UserAddress: holderAddr,
			ExpiryDays:  365,
		})
		assert.ErrorIs(t, err, ErrAlreadyVerified)
	})

	t.Run("remint allowed after revocation with a fresh id", func(t *testing.T) {
		repo := newFakeCredentialRepo()
		svc := NewService(repo, noopCredentialCache{})

		first := mintFor(t, svc, holderAddr)
		require.NoError(t, svc.Revoke(context.Background(), minterAddr, holderAddr, "fraud"))

		second := mintFor(t, svc, holderAddr)
		assert.Greater(t, second.TokenID, first.TokenID)
	})
}

func TestNonTransferable(t *testing.T) {
	repo := newFakeCredentialRepo()
	svc := NewService(repo, noopCredentialCache{})
	mintFor(t, svc, holderAddr)

	// Every transfer path fails, including for the owner and minter.
	for _, caller := range []string{holderAddr, ownerAddr, minterAddr} {
		err := svc.TransferFrom(context.Background(), caller, holderAddr, otherAddr, 1)
		assert.ErrorIs(t, err, ErrNonTransferable)

		err = svc.Approve(context.Background(), caller, otherAddr, 1)
		assert.ErrorIs(t, err, ErrNonTransferable)

		err = svc.SetApprovalForAll(context.Background(), caller, otherAddr, true)
		assert.ErrorIs(t, err, ErrNonTransferable)
	}
}

func TestCheckExpiry(t *testing.T) {
	t.Run("no-op before the expiry date", func(t *testing.T) {
		repo := newFakeCredentialRepo()
		svc := NewService(repo, noopCredentialCache{})
		mintFor(t, svc, holderAddr)

		flipped, err := svc.CheckExpiry(context.Background(), holderAddr)
		require.NoError(t, err)
		assert.False(t, flipped)
	})

	t.Run("flips exactly once after expiry", func(t *testing.T) {
		repo := newFakeCredentialRepo()
		svc := NewService(repo, noopCredentialCache{})
		repo.credentials = append(repo.credentials, models.Credential{
			TokenID:      1,
			OwnerAddress: holderAddr,
			Status:       models.CredentialStatusVerified,
			ExpiryDate:   time.Now().UTC().Add(-time.Hour),
		})

		flipped, err := svc.CheckExpiry(context.Background(), holderAddr)
		require.NoError(t, err)
		assert.True(t, flipped)

		flipped, err = svc.CheckExpiry(context.Background(), holderAddr)
		require.NoError(t, err)
		assert.False(t, flipped)

		held, err := svc.GetUserSBT(context.Background(), holderAddr)
		require.NoError(t, err)
		assert.Equal(t, models.CredentialStatusExpired, held.Status)
	})

	t.Run("unknown holder is a no-op", func(t *testing.T) {
		repo := newFakeCredentialRepo()
		svc := NewService(repo, noopCredentialCache{})

		flipped, err := svc.CheckExpiry(context.Background(), holderAddr)
		require.NoError(t, err)
		assert.False(t, flipped)
	})
}

func TestIsVerified(t *testing.T) {
	t.Run("expired credential reads false without mutation", func(t *testing.T) {
		repo := newFakeCredentialRepo()
		svc := NewService(repo, noopCredentialCache{})
		repo.credentials = append(repo.credentials, models.Credential{
			TokenID:      1,
			OwnerAddress: holderAddr,
			Status:       models.CredentialStatusVerified,
			ExpiryDate:   time.Now().UTC().Add(-time.Hour),
		})

		verified, err := svc.IsVerified(context.Background(), holderAddr)
		require.NoError(t, err)
		assert.False(t, verified)

		// The stored status stays verified until CheckExpiry runs.
		assert.Equal(t, models.CredentialStatusVerified, repo.credentials[0].Status)
	})

	t.Run("live credential reads true", func(t *testing.T) {
		repo := newFakeCredentialRepo()
		svc := NewService(repo, noopCredentialCache{})
		mintFor(t, svc, holderAddr)

		verified, err := svc.IsVerified(context.Background(), holderAddr)
		require.NoError(t, err)
		assert.True(t, verified)
	})
}

func TestRevokeAndRenew(t *testing.T) {
	repo := newFakeCredentialRepo()
	svc := NewService(repo, noopCredentialCache{})
	minted := mintFor(t, svc, holderAddr)

	require.NoError(t, svc.Revoke(context.Background(), minterAddr, holderAddr, "fraud"))

	balance, err := svc.BalanceOf(context.Background(), holderAddr)
	require.NoError(t, err)
	assert.Zero(t, balance)

	verified, err := svc.IsVerified(context.Background(), holderAddr)
	require.NoError(t, err)
	assert.False(t, verified)

	// Renewal restores validity without changing the token id.
	require.NoError(t, svc.Renew(context.Background(), minterAddr, holderAddr, 30))

	held, err := svc.GetUserSBT(context.Background(), holderAddr)
	require.NoError(t, err)
	assert.Equal(t, minted.TokenID, held.TokenID)
	assert.Equal(t, models.CredentialStatusVerified, held.Status)

	verified, err = svc.IsVerified(context.Background(), holderAddr)
	require.NoError(t, err)
	assert.True(t, verified)
}

func TestMinterManagement(t *testing.T) {
	repo := newFakeCredentialRepo()
	svc := NewService(repo, noopCredentialCache{})

	err := svc.AddMinter(context.Background(), minterAddr, otherAddr)
	assert.ErrorIs(t, err, ErrOwnerOnly)

	require.NoError(t, svc.AddMinter(context.Background(), ownerAddr, otherAddr))
	_, err = svc.MintSBT(context.Background(), otherAddr, MintRequest{
		UserAddress: holderAddr,
		ExpiryDays:  365,
	})
	assert.NoError(t, err)

	require.NoError(t, svc.RemoveMinter(context.Background(), ownerAddr, otherAddr))
	_, err = svc.MintSBT(context.Background(), otherAddr, MintRequest{
		UserAddress: "0x00000000000000000000000000000000000000ee",
		ExpiryDays:  365,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)
}
