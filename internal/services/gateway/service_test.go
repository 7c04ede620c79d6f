package gateway

import (
	"context"
	"fmt"
	"testing"

	"kycgate/internal/models"
	"kycgate/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gwOwner    = "0x000000000000000000000000000000000000000a"
	gwAddr     = "0x0000000000000000000000000000000000000a02"
	treasury   = "0x0000000000000000000000000000000000000a03"
	senderAddr = "0x000000000000000000000000000000000000000c"
	recvAddr   = "0x000000000000000000000000000000000000000d"
	recvAddr2  = "0x000000000000000000000000000000000000000e"
)

type fakePaymentRepo struct {
	cfg       models.GatewayConfig
	payments  map[string]models.Payment
	whitelist map[string]bool
	token     *fakeLedger
	events    []string
}

type fakeLedger struct {
	balances map[string]int64
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		cfg: models.GatewayConfig{
			OwnerAddress:    gwOwner,
			GatewayAddress:  gwAddr,
			TreasuryAddress: treasury,
			FeeBasisPoints:  100, // 1%
		},
		payments:  make(map[string]models.Payment),
		whitelist: make(map[string]bool),
		token:     &fakeLedger{balances: make(map[string]int64)},
	}
}

func (f *fakePaymentRepo) GetConfig() (*models.GatewayConfig, error) {
	cfg := f.cfg
	return &cfg, nil
}

func (f *fakePaymentRepo) SaveConfig(cfg *models.GatewayConfig) error {
	f.cfg = *cfg
	return nil
}

func (f *fakePaymentRepo) CreatePayment(p *models.Payment) error {
	f.payments[p.PaymentID] = *p
	return nil
}

func (f *fakePaymentRepo) GetByPaymentID(id string) (*models.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, repositories.ErrPaymentNotFound
	}
	return &p, nil
}

func (f *fakePaymentRepo) ListPayments(limit int) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.payments {
		if len(out) == limit {
			break
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePaymentRepo) CountPayments() (int64, error) {
	return int64(len(f.payments)), nil
}

func (f *fakePaymentRepo) UserStats(address string) (int64, int64, error) {
	var count, total int64
	for _, p := range f.payments {
		if p.FromAddress == address && p.Completed {
			count++
			total += p.Amount
		}
	}
	return count, total, nil
}

func (f *fakePaymentRepo) IsWhitelisted(address string) (bool, error) {
	return f.whitelist[address], nil
}

func (f *fakePaymentRepo) AddToWhitelist(address string) error {
	f.whitelist[address] = true
	return nil
}

func (f *fakePaymentRepo) RemoveFromWhitelist(address string) error {
	delete(f.whitelist, address)
	return nil
}

func (f *fakePaymentRepo) Token() repositories.TokenRepository { return f.token }

func (f *fakePaymentRepo) RecordEvent(component, name string, payload models.JSON) error {
	f.events = append(f.events, name)
	return nil
}

// ExecuteInTransaction snapshots state and restores it when fn fails,
// mirroring the rollback semantics of the real repository.
func (f *fakePaymentRepo) ExecuteInTransaction(fn func(repositories.PaymentRepository) error) error {
	payments := make(map[string]models.Payment, len(f.payments))
	for k, v := range f.payments {
		payments[k] = v
	}
	balances := make(map[string]int64, len(f.token.balances))
	for k, v := range f.token.balances {
		balances[k] = v
	}
	cfg := f.cfg

	if err := fn(f); err != nil {
		f.payments = payments
		f.token.balances = balances
		f.cfg = cfg
		return err
	}
	return nil
}

func (l *fakeLedger) Info() (*models.TokenInfo, error) {
	return &models.TokenInfo{Name: "PayPal USD", Symbol: "PYUSD", Decimals: 6}, nil
}

func (l *fakeLedger) BalanceOf(address string) (int64, error) {
	return l.balances[address], nil
}

func (l *fakeLedger) Credit(address string, amount int64) error {
	l.balances[address] += amount
	return nil
}

func (l *fakeLedger) Debit(address string, amount int64) error {
	if l.balances[address] < amount {
		return repositories.ErrInsufficientBalance
	}
	l.balances[address] -= amount
	return nil
}

func (l *fakeLedger) Allowance(owner, spender string) (int64, error) { return 0, nil }

func (l *fakeLedger) SetAllowance(owner, spender string, amount int64) error { return nil }

func (l *fakeLedger) AddSupply(amount int64) error { return nil }

func (l *fakeLedger) ExecuteInTransaction(fn func(repositories.TokenRepository) error) error {
	return fn(l)
}

type stubChecker struct {
	verified map[string]bool
}

func (s stubChecker) IsVerified(ctx context.Context, user string) (bool, error) {
	return s.verified[user], nil
}

func newGatewayService(repo *fakePaymentRepo, verified ...string) Service {
	checker := stubChecker{verified: make(map[string]bool)}
	for _, addr := range verified {
		checker.verified[addr] = true
	}
	return NewService(repo, checker)
}

func TestSendPayment(t *testing.T) {
	t.Run("requires sender credential", func(t *testing.T) {
		repo := newFakePaymentRepo()
		svc := newGatewayService(repo)

		_, err := svc.SendPayment(context.Background(), senderAddr, &SendRequest{
			PaymentID: "tx-1", To: recvAddr, Amount: 1_000_000,
		})
		assert.ErrorIs(t, err, ErrNotVerified)
	})

	t.Run("validates amount and id", func(t *testing.T) {
		repo := newFakePaymentRepo()
		svc := newGatewayService(repo, senderAddr)

		_, err := svc.SendPayment(context.Background(), senderAddr, &SendRequest{
			PaymentID: "tx-1", To: recvAddr, Amount: 0,
		})
		assert.ErrorIs(t, err, ErrZeroAmount)

		_, err = svc.SendPayment(context.Background(), senderAddr, &SendRequest{
			PaymentID: "", To: recvAddr, Amount: 1,
		})
		assert.ErrorIs(t, err, ErrMissingTxID)
	})

	t.Run("splits fee to treasury", func(t *testing.T) {
		repo := newFakePaymentRepo()
		svc := newGatewayService(repo, senderAddr)
		repo.token.balances[senderAddr] = 2_000_000

		payment, err := svc.SendPayment(context.Background(), senderAddr, &SendRequest{
			PaymentID:   "tx-1",
			To:          recvAddr,
			Amount:      1_000_000,
			Description: "invoice 42",
		})
		require.NoError(t, err)

		assert.Equal(t, int64(10_000), payment.Fee) // 1% of 1 PYUSD
		assert.True(t, payment.Completed)
		assert.Equal(t, int64(1_000_000), repo.token.balances[senderAddr])
		assert.Equal(t, int64(990_000), repo.token.balances[recvAddr])
		assert.Equal(t, int64(10_000), repo.token.balances[treasury])
		assert.Contains(t, repo.events, models.EventPaymentCompleted)
	})

	t.Run("duplicate payment id refused", func(t *testing.T) {
		repo := newFakePaymentRepo()
		svc := newGatewayService(repo, senderAddr)
		repo.token.balances[senderAddr] = 2_000_000

		_, err := svc.SendPayment(context.Background(), senderAddr, &SendRequest{
			PaymentID: "tx-1", To: recvAddr, Amount: 500_000,
		})
		require.NoError(t, err)

		_, err = svc.SendPayment(context.Background(), senderAddr, &SendRequest{
			PaymentID: "tx-1", To: recvAddr, Amount: 500_000,
		})
		assert.ErrorIs(t, err, ErrDuplicatePaymentID)
	})

	t.Run("paused gateway refuses payments", func(t *testing.T) {
		repo := newFakePaymentRepo()
		svc := newGatewayService(repo, senderAddr)
		repo.token.balances[senderAddr] = 2_000_000
		repo.cfg.Paused = true

		_, err := svc.SendPayment(context.Background(), senderAddr, &SendRequest{
			PaymentID: "tx-1", To: recvAddr, Amount: 500_000,
		})
		assert.ErrorIs(t, err, ErrContractPaused)
	})

	t.Run("recipient gating", func(t *testing.T) {
		repo := newFakePaymentRepo()
		svc := newGatewayService(repo, senderAddr)
		repo.token.balances[senderAddr] = 2_000_000
		repo.cfg.RequireKYCForRecipients = true

		_, err := svc.SendPayment(context.Background(), senderAddr, &SendRequest{
			PaymentID: "tx-1", To: recvAddr, Amount: 500_000,
		})
		assert.ErrorIs(t, err, ErrRecipientNotEligible)

		// A whitelist entry satisfies the requirement.
		repo.whitelist[recvAddr] = true
		_, err = svc.SendPayment(context.Background(), senderAddr, &SendRequest{
			PaymentID: "tx-1", To: recvAddr, Amount: 500_000,
		})
		assert.NoError(t, err)
	})
}

func TestSendBatchPayments(t *testing.T) {
	t.Run("validates batch shape", func(t *testing.T) {
		repo := newFakePaymentRepo()
		svc := newGatewayService(repo, senderAddr)

		_, err := svc.SendBatchPayments(context.Background(), senderAddr, &BatchRequest{})
		assert.ErrorIs(t, err, ErrEmptyBatch)

		_, err = svc.SendBatchPayments(context.Background(), senderAddr, &BatchRequest{
			PaymentIDs: []string{"tx-1"},
			Items:      []BatchItem{{To: recvAddr, Amount: 1}, {To: recvAddr2, Amount: 1}},
		})
		assert.ErrorIs(t, err, ErrArrayLengthMismatch)

		big := &BatchRequest{}
		for i := 0; i < MaxBatchSize+1; i++ {
			big.PaymentIDs = append(big.PaymentIDs, fmt.Sprintf("tx-%d", i))
			big.Items = append(big.Items, BatchItem{To: recvAddr, Amount: 1})
		}
		_, err = svc.SendBatchPayments(context.Background(), senderAddr, big)
		assert.ErrorIs(t, err, ErrBatchTooLarge)
	})

	t.Run("executes all items with a shared batch ref", func(t *testing.T) {
		repo := newFakePaymentRepo()
		svc := newGatewayService(repo, senderAddr)
		repo.token.balances[senderAddr] = 3_000_000

		payments, err := svc.SendBatchPayments(context.Background(), senderAddr, &BatchRequest{
			PaymentIDs: []string{"tx-1", "tx-2"},
			Items: []BatchItem{
				{To: recvAddr, Amount: 1_000_000},
				{To: recvAddr2, Amount: 2_000_000},
			},
			Description: "payroll",
		})
		require.NoError(t, err)
		require.Len(t, payments, 2)
		assert.Equal(t, payments[0].BatchRef, payments[1].BatchRef)
		assert.NotEmpty(t, payments[0].BatchRef)
		assert.Zero(t, repo.token.balances[senderAddr])
	})

	t.Run("failure rolls back the whole batch", func(t *testing.T) {
		repo := newFakePaymentRepo()
		svc := newGatewayService(repo, senderAddr)
		repo.token.balances[senderAddr] = 1_500_000 // covers only the first item

		_, err := svc.SendBatchPayments(context.Background(), senderAddr, &BatchRequest{
			PaymentIDs: []string{"tx-1", "tx-2"},
			Items: []BatchItem{
				{To: recvAddr, Amount: 1_000_000},
				{To: recvAddr2, Amount: 1_000_000},
			},
		})
		require.Error(t, err)

		// Nothing moved, nothing recorded.
		assert.Equal(t, int64(1_500_000), repo.token.balances[senderAddr])
		assert.Zero(t, repo.token.balances[recvAddr])
		assert.Empty(t, repo.payments)
	})
}

func TestEligibilityDecisions(t *testing.T) {
	t.Run("can send", func(t *testing.T) {
		repo := newFakePaymentRepo()
		svc := newGatewayService(repo, senderAddr)

		decision, err := svc.CanSendPayment(context.Background(), senderAddr)
		require.NoError(t, err)
		assert.True(t, decision.Allowed())
		assert.Empty(t, decision.Reason())

		decision, err = svc.CanSendPayment(context.Background(), recvAddr)
		require.NoError(t, err)
		assert.False(t, decision.Allowed())
		assert.NotEmpty(t, decision.Reason())
	})

	t.Run("paused denies sending", func(t *testing.T) {
		repo := newFakePaymentRepo()
		svc := newGatewayService(repo, senderAddr)
		repo.cfg.Paused = true

		decision, err := svc.CanSendPayment(context.Background(), senderAddr)
		require.NoError(t, err)
		assert.False(t, decision.Allowed())
	})

	t.Run("can receive respects the KYC toggle", func(t *testing.T) {
		repo := newFakePaymentRepo()
		svc := newGatewayService(repo)

		decision, err := svc.CanReceivePayment(context.Background(), recvAddr)
		require.NoError(t, err)
		assert.True(t, decision.Allowed())

		repo.cfg.RequireKYCForRecipients = true
		decision, err = svc.CanReceivePayment(context.Background(), recvAddr)
		require.NoError(t, err)
		assert.False(t, decision.Allowed())

		repo.whitelist[recvAddr] = true
		decision, err = svc.CanReceivePayment(context.Background(), recvAddr)
		require.NoError(t, err)
		assert.True(t, decision.Allowed())
	})
}

func TestGatewayAdmin(t *testing.T) {
	t.Run("fee bounds", func(t *testing.T) {
		repo := newFakePaymentRepo()
		svc := newGatewayService(repo)

		assert.ErrorIs(t, svc.SetFeePercentage(context.Background(), gwOwner, 10001), ErrFeeTooHigh)
		assert.ErrorIs(t, svc.SetFeePercentage(context.Background(), senderAddr, 200), ErrNotOwner)

		require.NoError(t, svc.SetFeePercentage(context.Background(), gwOwner, 250))
		assert.EqualValues(t, 250, repo.cfg.FeeBasisPoints)
	})

	t.Run("treasury must be a real address", func(t *testing.T) {
		repo := newFakePaymentRepo()
		svc := newGatewayService(repo)

		assert.ErrorIs(t, svc.SetTreasury(context.Background(), gwOwner, "not-an-address"), ErrInvalidTreasury)
		require.NoError(t, svc.SetTreasury(context.Background(), gwOwner, recvAddr2))
		assert.Equal(t, recvAddr2, repo.cfg.TreasuryAddress)
	})

	t.Run("pause and unpause", func(t *testing.T) {
		repo := newFakePaymentRepo()
		svc := newGatewayService(repo)

		assert.ErrorIs(t, svc.Pause(context.Background(), senderAddr), ErrNotOwner)

		require.NoError(t, svc.Pause(context.Background(), gwOwner))
		assert.True(t, repo.cfg.Paused)
		assert.Contains(t, repo.events, models.EventContractPaused)

		require.NoError(t, svc.Unpause(context.Background(), gwOwner))
		assert.False(t, repo.cfg.Paused)
	})

	t.Run("whitelist round trip", func(t *testing.T) {
		repo := newFakePaymentRepo()
		svc := newGatewayService(repo)

		require.NoError(t, svc.AddToWhitelist(context.Background(), gwOwner, recvAddr))
		ok, err := svc.IsWhitelisted(context.Background(), recvAddr)
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, svc.RemoveFromWhitelist(context.Background(), gwOwner, recvAddr))
		ok, err = svc.IsWhitelisted(context.Background(), recvAddr)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ownership handover", func(t *testing.T) {
		repo := newFakePaymentRepo()
		svc := newGatewayService(repo)

		require.NoError(t, svc.TransferOwnership(context.Background(), gwOwner, senderAddr))
		assert.ErrorIs(t, svc.Pause(context.Background(), gwOwner), ErrNotOwner)
		assert.NoError(t, svc.Pause(context.Background(), senderAddr))
	})
}

func TestGetUserStats(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := newGatewayService(repo, senderAddr)
	repo.token.balances[senderAddr] = 3_000_000

	_, err := svc.SendPayment(context.Background(), senderAddr, &SendRequest{
		PaymentID: "tx-1", To: recvAddr, Amount: 1_000_000,
	})
	require.NoError(t, err)
	_, err = svc.SendPayment(context.Background(), senderAddr, &SendRequest{
		PaymentID: "tx-2", To: recvAddr2, Amount: 2_000_000,
	})
	require.NoError(t, err)

	stats, err := svc.GetUserStats(context.Background(), senderAddr)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.PaymentCount)
	assert.EqualValues(t, 3_000_000, stats.TotalAmount)
	assert.True(t, stats.HasKYC)
}
