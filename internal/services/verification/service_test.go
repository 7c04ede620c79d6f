package verification

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
	adminAddr    = "0x00000000000000000000000000000000000000ad"
	providerAddr = "0x0000000000000000000000000000000000000001"
	userAddr     = "0x0000000000000000000000000000000000000002"
)

type fakeVerificationRepo struct {
	cfg       models.LedgerConfig
	records   map[string]models.VerificationRecord
	providers map[string]models.Provider
	events    []string
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{
		cfg: models.LedgerConfig{
			AdminAddress:        adminAddr,
			ExpiryPeriodSeconds: 365 * 24 * 3600,
			MaxRiskScore:        50,
		},
		records:   make(map[string]models.VerificationRecord),
		providers: make(map[string]models.Provider),
	}
}

func (f *fakeVerificationRepo) GetConfig() (*models.LedgerConfig, error) {
	cfg := f.cfg
	return &cfg, nil
}

func (f *fakeVerificationRepo) SaveConfig(cfg *models.LedgerConfig) error {
	f.cfg = *cfg
	return nil
}

func (f *fakeVerificationRepo) GetRecord(user string) (*models.VerificationRecord, error) {
	record, ok := f.records[user]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	return &record, nil
}

func (f *fakeVerificationRepo) SaveRecord(record *models.VerificationRecord) error {
	f.records[record.UserAddress] = *record
	return nil
}

func (f *fakeVerificationRepo) GetProvider(address string) (*models.Provider, error) {
	p, ok := f.providers[address]
	if !ok {
		return nil, repositories.ErrProviderNotFound
	}
	return &p, nil
}

func (f *fakeVerificationRepo) SaveProvider(p *models.Provider) error {
	f.providers[p.Address] = *p
	return nil
}

func (f *fakeVerificationRepo) RecordEvent(component, name string, payload models.JSON) error {
	f.events = append(f.events, name)
	return nil
}

func (f *fakeVerificationRepo) ExecuteInTransaction(fn func(repositories.VerificationRepository) error) error {
	return fn(f)
}

type noopStatusCache struct{}

func (noopStatusCache) GetVerificationStatus(ctx context.Context, user string) (*models.VerificationStatus, error) {
	return nil, repositories.ErrRecordNotFound
}

func (noopStatusCache) SetVerificationStatus(ctx context.Context, user string, status *models.VerificationStatus) error {
	return nil
}

func (noopStatusCache) InvalidateVerificationStatus(ctx context.Context, user string) error {
	return nil
}

func newTestService(repo *fakeVerificationRepo) Service {
	repo.providers[providerAddr] = models.Provider{Address: providerAddr, Name: "Acme KYC", IsActive: true}
	return NewService(repo, noopStatusCache{})
}

func submitFor(t *testing.T, svc Service, user string) *models.VerificationRecord {
	t.Helper()
	record, err := svc.Submit(context.Background(), providerAddr, SubmitRequest{
		UserAddress:      user,
		ReferenceID:      "ref-1",
		EncryptedPayload: "0xdeadbeef",
	})
	require.NoError(t, err)
	return record
}

func TestSubmit(t *testing.T) {
	t.Run("requires active provider", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)

		_, err := svc.Submit(context.Background(), userAddr, SubmitRequest{
			UserAddress: userAddr,
			ReferenceID: "ref-1",
		})
		assert.ErrorIs(t, err, ErrNotActiveProvider)
	})

	t.Run("inactive provider refused", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)
		repo.providers[providerAddr] = models.Provider{Address: providerAddr, IsActive: false}

		_, err := svc.Submit(context.Background(), providerAddr, SubmitRequest{
			UserAddress: userAddr,
			ReferenceID: "ref-1",
		})
		assert.ErrorIs(t, err, ErrNotActiveProvider)
	})

	t.Run("requires reference id", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)

		_, err := svc.Submit(context.Background(), providerAddr, SubmitRequest{UserAddress: userAddr})
		assert.ErrorIs(t, err, ErrMissingReference)
	})

	t.Run("creates pending record", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)

		record := submitFor(t, svc, userAddr)
		assert.Equal(t, models.VerificationStatusPending, record.Status)
		assert.Equal(t, providerAddr, record.SubmittedBy)
		assert.Nil(t, record.ApprovedAt)
		assert.Contains(t, repo.events, models.EventVerificationSubmitted)
	})

	t.Run("resubmission resets previous cycle", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)

		submitFor(t, svc, userAddr)
		_, err := svc.Approve(context.Background(), providerAddr, ApproveRequest{
			UserAddress: userAddr,
			ReferenceID: "ref-1",
			RiskScore:   10,
			AMLStatus:   "clear",
		})
		require.NoError(t, err)

		record := submitFor(t, svc, userAddr)
		assert.Equal(t, models.VerificationStatusPending, record.Status)
		assert.Zero(t, record.RiskScore)
		assert.Nil(t, record.ApprovedAt)
		assert.Nil(t, record.ExpiresAt)
	})

	t.Run("resubmission after rejection", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)

		submitFor(t, svc, userAddr)
		err := svc.Reject(context.Background(), providerAddr, userAddr, "ref-1", "document not valid")
		require.NoError(t, err)

		record := submitFor(t, svc, userAddr)
		assert.Equal(t, models.VerificationStatusPending, record.Status)
		assert.Empty(t, record.RejectionReason)
	})

	t.Run("resubmission over a pending record restarts the cycle", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)

		submitFor(t, svc, userAddr)
		record, err := svc.Submit(context.Background(), providerAddr, SubmitRequest{
			UserAddress:      userAddr,
			ReferenceID:      "ref-2",
			EncryptedPayload: "0xfeedface",
		})
		require.NoError(t, err)
		assert.Equal(t, models.VerificationStatusPending, record.Status)
		assert.Equal(t, "ref-2", record.BridgeReferenceID)
	})
}

func TestApprove(t *testing.T) {
	t.Run("stamps approval and expiry", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)
		submitFor(t, svc, userAddr)

		record, err := svc.Approve(context.Background(), providerAddr, ApproveRequest{
			UserAddress: userAddr,
			ReferenceID: "ref-1",
			RiskScore:   25,
			AMLStatus:   "clear",
		})
		require.NoError(t, err)

		assert.Equal(t, models.VerificationStatusApproved, record.Status)
		assert.Equal(t, 25, record.RiskScore)
		require.NotNil(t, record.ApprovedAt)
		require.NotNil(t, record.ExpiresAt)
		expectedExpiry := record.ApprovedAt.Add(365 * 24 * time.Hour)
		assert.WithinDuration(t, expectedExpiry, *record.ExpiresAt, time.Second)

		assert.EqualValues(t, 1, repo.providers[providerAddr].ApprovalCount)
	})

	t.Run("risk score equal to ceiling passes", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)
		submitFor(t, svc, userAddr)

		record, err := svc.Approve(context.Background(), providerAddr, ApproveRequest{
			UserAddress: userAddr,
			ReferenceID: "ref-1",
			RiskScore:   50,
			AMLStatus:   "clear",
		})
		require.NoError(t, err)
		assert.Equal(t, models.VerificationStatusApproved, record.Status)
		assert.Equal(t, 50, record.RiskScore)
	})

	t.Run("risk score above ceiling", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)
		submitFor(t, svc, userAddr)

		_, err := svc.Approve(context.Background(), providerAddr, ApproveRequest{
			UserAddress: userAddr,
			ReferenceID: "ref-1",
			RiskScore:   51,
		})
		assert.ErrorIs(t, err, ErrRiskTooHigh)
	})

	t.Run("only pending records", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)
		submitFor(t, svc, userAddr)

		_, err := svc.Approve(context.Background(), providerAddr, ApproveRequest{
			UserAddress: userAddr,
			ReferenceID: "ref-1",
		})
		require.NoError(t, err)

		_, err = svc.Approve(context.Background(), providerAddr, ApproveRequest{
			UserAddress: userAddr,
			ReferenceID: "ref-1",
		})
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("reference mismatch", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)
		submitFor(t, svc, userAddr)

		_, err := svc.Approve(context.Background(), providerAddr, ApproveRequest{
			UserAddress: userAddr,
			ReferenceID: "ref-other",
		})
		assert.ErrorIs(t, err, ErrReferenceMismatch)
	})

	t.Run("no record", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)

		_, err := svc.Approve(context.Background(), providerAddr, ApproveRequest{
			UserAddress: userAddr,
			ReferenceID: "ref-1",
		})
		assert.ErrorIs(t, err, ErrNoRecord)
	})
}

func TestReject(t *testing.T) {
	repo := newFakeVerificationRepo()
	svc := newTestService(repo)
	submitFor(t, svc, userAddr)

	err := svc.Reject(context.Background(), providerAddr, userAddr, "ref-1", "document mismatch")
	require.NoError(t, err)

	record, err := svc.GetRecord(context.Background(), userAddr)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusRejected, record.Status)
	assert.Equal(t, "document mismatch", record.RejectionReason)
	assert.EqualValues(t, 1, repo.providers[providerAddr].RejectionCount)

	// Decisions are final until resubmission.
	err = svc.Reject(context.Background(), providerAddr, userAddr, "ref-1", "again")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSuspend(t *testing.T) {
	t.Run("only approved records", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)
		submitFor(t, svc, userAddr)

		err := svc.Suspend(context.Background(), providerAddr, userAddr, "aml hit")
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("suspends approved record", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)
		submitFor(t, svc, userAddr)
		_, err := svc.Approve(context.Background(), providerAddr, ApproveRequest{
			UserAddress: userAddr,
			ReferenceID: "ref-1",
		})
		require.NoError(t, err)

		err = svc.Suspend(context.Background(), providerAddr, userAddr, "aml hit")
		require.NoError(t, err)

		record, err := svc.GetRecord(context.Background(), userAddr)
		require.NoError(t, err)
		assert.Equal(t, models.VerificationStatusSuspended, record.Status)

		verified, err := svc.IsVerifiedAndActive(context.Background(), userAddr)
		require.NoError(t, err)
		assert.False(t, verified)
	})
}

func TestIsVerifiedAndActive(t *testing.T) {
	t.Run("no record is false", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)

		verified, err := svc.IsVerifiedAndActive(context.Background(), userAddr)
		require.NoError(t, err)
		assert.False(t, verified)
	})

	t.Run("approved and unexpired is true", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)
		submitFor(t, svc, userAddr)
		_, err := svc.Approve(context.Background(), providerAddr, ApproveRequest{
			UserAddress: userAddr,
			ReferenceID: "ref-1",
		})
		require.NoError(t, err)

		verified, err := svc.IsVerifiedAndActive(context.Background(), userAddr)
		require.NoError(t, err)
		assert.True(t, verified)
	})

	t.Run("expired read does not mutate the record", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)

		past := time.Now().UTC().Add(-time.Hour)
		approvedAt := past.Add(-24 * time.Hour)
		repo.records[userAddr] = models.VerificationRecord{
			UserAddress:       userAddr,
			BridgeReferenceID: "ref-1",
			Status:            models.VerificationStatusApproved,
			ApprovedAt:        &approvedAt,
			ExpiresAt:         &past,
		}

		verified, err := svc.IsVerifiedAndActive(context.Background(), userAddr)
		require.NoError(t, err)
		assert.False(t, verified)

		// The stored status is untouched.
		assert.Equal(t, models.VerificationStatusApproved, repo.records[userAddr].Status)
	})
}

func TestLedgerConfig(t *testing.T) {
	t.Run("admin checks", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)

		isAdmin, err := svc.IsAdmin(context.Background(), adminAddr)
		require.NoError(t, err)
		assert.True(t, isAdmin)

		isAdmin, err = svc.IsAdmin(context.Background(), userAddr)
		require.NoError(t, err)
		assert.False(t, isAdmin)
	})

	t.Run("non-admin cannot change config", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)

		err := svc.SetMaxRiskScore(context.Background(), userAddr, 70)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("max risk score is capped at 100", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)

		err := svc.SetMaxRiskScore(context.Background(), adminAddr, 101)
		assert.ErrorIs(t, err, ErrInvalidRiskScore)

		err = svc.SetMaxRiskScore(context.Background(), adminAddr, 70)
		require.NoError(t, err)
		assert.Equal(t, 70, repo.cfg.MaxRiskScore)
	})

	t.Run("admin handover", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		svc := newTestService(repo)

		err := svc.SetAdmin(context.Background(), adminAddr, userAddr)
		require.NoError(t, err)

		isAdmin, err := svc.IsAdmin(context.Background(), userAddr)
		require.NoError(t, err)
		assert.True(t, isAdmin)

		err = svc.SetMaxRiskScore(context.Background(), adminAddr, 40)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestUpdateRiskScore(t *testing.T) {
	repo := newFakeVerificationRepo()
	svc := newTestService(repo)
	submitFor(t, svc, userAddr)
	_, err := svc.Approve(context.Background(), providerAddr, ApproveRequest{
		UserAddress: userAddr,
		ReferenceID: "ref-1",
		RiskScore:   10,
	})
	require.NoError(t, err)

	err = svc.UpdateRiskScore(context.Background(), providerAddr, userAddr, 51)
	assert.ErrorIs(t, err, ErrRiskTooHigh)

	// The ceiling itself is acceptable.
	err = svc.UpdateRiskScore(context.Background(), providerAddr, userAddr, 50)
	require.NoError(t, err)

	record, err := svc.GetRecord(context.Background(), userAddr)
	require.NoError(t, err)
	assert.Equal(t, 50, record.RiskScore)

	err = svc.UpdateRiskScore(context.Background(), providerAddr, userAddr, 30)
	require.NoError(t, err)

	record, err = svc.GetRecord(context.Background(), userAddr)
	require.NoError(t, err)
	assert.Equal(t, 30, record.RiskScore)
}
