package service

import (
	"context"
	"errors"
	"testing"

	"treasury_dashboard/internal/domain/entity"
	"treasury_dashboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDeBankClient struct {
	balances    map[string]float64
	tokens      map[string][]entity.RawToken
	protocols   map[string][]entity.RawProtocol
	failAddress string
}

func (f *fakeDeBankClient) GetTotalBalance(_ context.Context, address string) (float64, error) {
	if address == f.failAddress {
		return 0, errors.New("status 429")
	}
	return f.balances[address], nil
}

func (f *fakeDeBankClient) GetTokenList(_ context.Context, address string) ([]entity.RawToken, error) {
	if address == f.failAddress {
		return nil, errors.New("status 429")
	}
	return f.tokens[address], nil
}

func (f *fakeDeBankClient) GetProtocolList(_ context.Context, address string) ([]entity.RawProtocol, error) {
	if address == f.failAddress {
		return nil, errors.New("status 429")
	}
	return f.protocols[address], nil
}

func newTestTreasuryService(client *fakeDeBankClient, wallets []entity.WalletSpec, static []entity.StaticWallet, configured bool) *TreasuryService {
	return NewTreasuryService(
		client,
		repository.NewInMemorySnapshotRepository(),
		NewRuleSet(testRulesConfig()),
		wallets,
		static,
		1000, // effectively unlimited in tests
		1,
		configured,
		zap.NewNop(),
	)
}

func TestRefreshRequiresAccessKey(t *testing.T) {
	svc := newTestTreasuryService(&fakeDeBankClient{}, nil, nil, false)

	err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, ok := svc.Latest()
	assert.False(t, ok, "no snapshot may be published without a refresh")
}

func TestRefreshPublishesSnapshot(t *testing.T) {
	wallets := []entity.WalletSpec{
		{Address: "0xa", Name: "DAO TREASURY"},
		{Address: "0xb", Name: "DAO HOT WALLET"},
	}
	client := &fakeDeBankClient{
		balances: map[string]float64{"0xa": 1000, "0xb": 500},
		tokens: map[string][]entity.RawToken{
			"0xa": {{Symbol: "USDC", Amount: 1000, Price: 1}},
			"0xb": {{Symbol: "USDC", Amount: 500, Price: 1}},
		},
	}
	svc := newTestTreasuryService(client, wallets, nil, true)

	require.NoError(t, svc.Refresh(context.Background()))

	snap, ok := svc.Latest()
	require.True(t, ok)
	assert.Equal(t, 1500.0, snap.TotalValue)
	assert.Len(t, snap.Wallets, 2)
	assert.Empty(t, snap.Errors)
	assert.False(t, snap.LastUpdated.IsZero())
}

func TestRefreshContinuesPastFailedWallet(t *testing.T) {
	wallets := []entity.WalletSpec{
		{Address: "0xa", Name: "DAO TREASURY"},
		{Address: "0xbad", Name: "BROKEN"},
		{Address: "0xc", Name: "DAO BUYBACK"},
	}
	client := &fakeDeBankClient{
		balances:    map[string]float64{"0xa": 700, "0xc": 300},
		failAddress: "0xbad",
	}
	svc := newTestTreasuryService(client, wallets, nil, true)

	require.NoError(t, svc.Refresh(context.Background()), "a failed wallet must not fail the cycle")

	snap, ok := svc.Latest()
	require.True(t, ok)
	assert.Equal(t, 1000.0, snap.TotalValue, "failed wallet contributes nothing")
	assert.Len(t, snap.Wallets, 2)
	require.Len(t, snap.Errors, 1)
	assert.Equal(t, "BROKEN", snap.Errors[0].Name)
	assert.Equal(t, "0xbad", snap.Errors[0].Address)
}

func TestRefreshIncludesStaticWallets(t *testing.T) {
	static := []entity.StaticWallet{
		{
			WalletSpec:   entity.WalletSpec{Address: "0xstatic", Name: "DAO COLLATERAL"},
			TotalBalance: 2801733,
			Tokens: []entity.RawToken{
				{Symbol: "Overcollateralization", Name: "Protocol Collateral", Amount: 1, Price: 2801733},
			},
		},
	}
	svc := newTestTreasuryService(&fakeDeBankClient{}, nil, static, true)

	require.NoError(t, svc.Refresh(context.Background()))

	snap, ok := svc.Latest()
	require.True(t, ok)
	assert.Equal(t, 2801733.0, snap.TotalValue)
	assert.Equal(t, 2801733.0, snap.Strategies.SemiLiquid.Total)
}

func TestRefreshReplacesPreviousSnapshot(t *testing.T) {
	wallets := []entity.WalletSpec{{Address: "0xa", Name: "DAO TREASURY"}}
	client := &fakeDeBankClient{balances: map[string]float64{"0xa": 100}}
	svc := newTestTreasuryService(client, wallets, nil, true)

	require.NoError(t, svc.Refresh(context.Background()))
	client.balances["0xa"] = 900
	require.NoError(t, svc.Refresh(context.Background()))

	snap, _ := svc.Latest()
	assert.Equal(t, 900.0, snap.TotalValue, "second cycle replaces the snapshot whole")
}

func TestServiceStateAccessors(t *testing.T) {
	svc := newTestTreasuryService(&fakeDeBankClient{}, nil, nil, true)

	assert.True(t, svc.Configured())
	assert.False(t, svc.Busy())
}
