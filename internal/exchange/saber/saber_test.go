package saber

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onesol-labs/onesol-go/internal/chain"
)

type stubClient struct {
	chain.Client
	accounts map[solana.PublicKey][]byte
}

func (s *stubClient) GetAccountData(_ context.Context, address solana.PublicKey) ([]byte, error) {
	data, ok := s.accounts[address]
	if !ok {
		return nil, chain.ErrAccountNotFound
	}
	return data, nil
}

func testState(t *testing.T) *State {
	t.Helper()
	return &State{
		IsInitialized:    true,
		Nonce:            252,
		InitialAmpFactor: 100,
		TargetAmpFactor:  100,
		StartRampTs:      -1,
		StopRampTs:       -1,
		AdminAccount:     solana.NewWallet().PublicKey(),
		TokenAccountA:    solana.NewWallet().PublicKey(),
		TokenAccountB:    solana.NewWallet().PublicKey(),
		TokenPool:        solana.NewWallet().PublicKey(),
		MintA:            solana.NewWallet().PublicKey(),
		MintB:            solana.NewWallet().PublicKey(),
		AdminFeeAccountA: solana.NewWallet().PublicKey(),
		AdminFeeAccountB: solana.NewWallet().PublicKey(),
		Fees: Fees{
			TradeFeeNumerator:   4,
			TradeFeeDenominator: 10000,
		},
	}
}

func TestStateRoundTrip(t *testing.T) {
	want := testState(t)
	data, err := want.Encode()
	require.NoError(t, err)
	require.Len(t, data, StateSpan)

	got, err := DecodeState(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadRejectsPausedPool(t *testing.T) {
	address := solana.NewWallet().PublicKey()
	state := testState(t)
	state.IsPaused = true
	data, err := state.Encode()
	require.NoError(t, err)

	cl := &stubClient{accounts: map[solana.PublicKey][]byte{address: data}}
	_, err = Load(context.Background(), cl, address, solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, chain.ErrAccountNotFound)
}

func TestLoadDerivesAuthority(t *testing.T) {
	programID := solana.MustPublicKeyFromBase58("SSwpkEEcbUqx4vtoEByFjSkhKdCT862DNVb52nZg1UZ")
	address := solana.NewWallet().PublicKey()

	authority, nonce, err := solana.FindProgramAddress([][]byte{address[:]}, programID)
	require.NoError(t, err)

	state := testState(t)
	state.Nonce = nonce
	data, err := state.Encode()
	require.NoError(t, err)

	cl := &stubClient{accounts: map[solana.PublicKey][]byte{address: data}}
	pool, err := Load(context.Background(), cl, address, programID)
	require.NoError(t, err)
	assert.Equal(t, authority, pool.Authority)
}

func TestKeysPicksAdminFeeByDirection(t *testing.T) {
	pool := &PoolInfo{
		ProgramID:        solana.NewWallet().PublicKey(),
		Address:          solana.NewWallet().PublicKey(),
		Authority:        solana.NewWallet().PublicKey(),
		TokenAccountA:    solana.NewWallet().PublicKey(),
		MintA:            solana.NewWallet().PublicKey(),
		AdminFeeAccountA: solana.NewWallet().PublicKey(),
		TokenAccountB:    solana.NewWallet().PublicKey(),
		MintB:            solana.NewWallet().PublicKey(),
		AdminFeeAccountB: solana.NewWallet().PublicKey(),
	}

	// selling mint A lands output on side B, so its admin fee account is used
	keys := pool.Keys(pool.MintA)
	require.Len(t, keys, 7)
	assert.Equal(t, pool.AdminFeeAccountB, keys[4].PublicKey)

	keys = pool.Keys(pool.MintB)
	assert.Equal(t, pool.AdminFeeAccountA, keys[4].PublicKey)

	assert.Equal(t, pool.Address, keys[0].PublicKey)
	assert.Equal(t, pool.Authority, keys[1].PublicKey)
	assert.Equal(t, solana.SysVarClockPubkey, keys[5].PublicKey)
	assert.Equal(t, pool.ProgramID, keys[6].PublicKey)
}
