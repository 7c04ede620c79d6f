package provider

import (
	"context"
	"testing"

	"kycgate/internal/models"
	"kycgate/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminAddr    = "0x000000000000000000000000000000000000000a"
	attesterAddr = "0x000000000000000000000000000000000000000b"
	randomAddr   = "0x000000000000000000000000000000000000000c"
)

type fakeProviderRepo struct {
	providers map[string]models.Provider
	events    []string
}

func newFakeProviderRepo() *fakeProviderRepo {
	return &fakeProviderRepo{providers: make(map[string]models.Provider)}
}

func (f *fakeProviderRepo) Create(p *models.Provider) error {
	f.providers[p.Address] = *p
	return nil
}

func (f *fakeProviderRepo) GetByAddress(address string) (*models.Provider, error) {
	p, ok := f.providers[address]
	if !ok {
		return nil, repositories.ErrProviderNotFound
	}
	return &p, nil
}

func (f *fakeProviderRepo) Update(p *models.Provider) error {
	f.providers[p.Address] = *p
	return nil
}

func (f *fakeProviderRepo) List() ([]models.Provider, error) {
	out := make([]models.Provider, 0, len(f.providers))
	for _, p := range f.providers {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProviderRepo) RecordEvent(component, name string, payload models.JSON) error {
	f.events = append(f.events, name)
	return nil
}

func (f *fakeProviderRepo) ExecuteInTransaction(fn func(repositories.ProviderRepository) error) error {
	return fn(f)
}

type stubAdmin struct {
	admin string
}

func (s stubAdmin) IsAdmin(ctx context.Context, address string) (bool, error) {
	return address == s.admin, nil
}

func newTestService(repo *fakeProviderRepo) Service {
	return NewService(repo, stubAdmin{admin: adminAddr})
}

func TestAddProvider(t *testing.T) {
	t.Run("admin registers an active provider", func(t *testing.T) {
		repo := newFakeProviderRepo()
		svc := newTestService(repo)

		registered, err := svc.AddProvider(context.Background(), adminAddr, attesterAddr, "Acme KYC")
		require.NoError(t, err)
		assert.Equal(t, attesterAddr, registered.Address)
		assert.Equal(t, "Acme KYC", registered.Name)
		assert.True(t, registered.IsActive)
		assert.Contains(t, repo.events, models.EventProviderAdded)
	})

	t.Run("non-admin refused", func(t *testing.T) {
		repo := newFakeProviderRepo()
		svc := newTestService(repo)

		_, err := svc.AddProvider(context.Background(), randomAddr, attesterAddr, "Acme KYC")
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Empty(t, repo.providers)
	})

	t.Run("malformed address refused", func(t *testing.T) {
		repo := newFakeProviderRepo()
		svc := newTestService(repo)

		_, err := svc.AddProvider(context.Background(), adminAddr, "0xnope", "Acme KYC")
		assert.ErrorIs(t, err, ErrInvalidAddress)
	})

	t.Run("duplicate refused", func(t *testing.T) {
		repo := newFakeProviderRepo()
		svc := newTestService(repo)

		_, err := svc.AddProvider(context.Background(), adminAddr, attesterAddr, "Acme KYC")
		require.NoError(t, err)

		_, err = svc.AddProvider(context.Background(), adminAddr, attesterAddr, "Acme KYC")
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("addresses stored lowercase", func(t *testing.T) {
		repo := newFakeProviderRepo()
		svc := newTestService(repo)

		upper := "0x000000000000000000000000000000000000000B"
		registered, err := svc.AddProvider(context.Background(), adminAddr, upper, "Acme KYC")
		require.NoError(t, err)
		assert.Equal(t, attesterAddr, registered.Address)

		active, err := svc.IsActiveProvider(context.Background(), upper)
		require.NoError(t, err)
		assert.True(t, active)
	})
}

func TestDeactivateAndReactivate(t *testing.T) {
	repo := newFakeProviderRepo()
	svc := newTestService(repo)

	_, err := svc.AddProvider(context.Background(), adminAddr, attesterAddr, "Acme KYC")
	require.NoError(t, err)

	t.Run("remove keeps the record", func(t *testing.T) {
		require.NoError(t, svc.RemoveProvider(context.Background(), adminAddr, attesterAddr))

		active, err := svc.IsActiveProvider(context.Background(), attesterAddr)
		require.NoError(t, err)
		assert.False(t, active)

		registered, err := svc.GetProvider(context.Background(), attesterAddr)
		require.NoError(t, err)
		assert.False(t, registered.IsActive)
		assert.Contains(t, repo.events, models.EventProviderRemoved)
	})

	t.Run("reactivate restores the flag", func(t *testing.T) {
		require.NoError(t, svc.ActivateProvider(context.Background(), adminAddr, attesterAddr))

		active, err := svc.IsActiveProvider(context.Background(), attesterAddr)
		require.NoError(t, err)
		assert.True(t, active)
		assert.Contains(t, repo.events, models.EventProviderActivated)
	})

	t.Run("unknown provider", func(t *testing.T) {
		err := svc.RemoveProvider(context.Background(), adminAddr, randomAddr)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("non-admin refused", func(t *testing.T) {
		err := svc.RemoveProvider(context.Background(), randomAddr, attesterAddr)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestIsActiveProvider(t *testing.T) {
	repo := newFakeProviderRepo()
	svc := newTestService(repo)

	// Never registered reads as inactive, not an error.
	active, err := svc.IsActiveProvider(context.Background(), randomAddr)
	require.NoError(t, err)
	assert.False(t, active)
}
