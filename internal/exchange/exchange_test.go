package exchange

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onesol-labs/onesol-go/internal/chain"
	"github.com/onesol-labs/onesol-go/internal/exchange/tokenswap"
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

func TestParseFlag(t *testing.T) {
	cases := []struct {
		flag string
		want Kind
	}{
		{FlagSplTokenSwap, KindTokenSwap},
		{FlagOrcaSwap, KindTokenSwap},
		{FlagOneMoon, KindTokenSwap},
		{FlagSerumDex, KindSerum},
		{FlagSaberStableSwap, KindSaber},
		{FlagRaydium, KindRaydium},
	}
	for _, tc := range cases {
		kind, err := ParseFlag(tc.flag)
		require.NoError(t, err, tc.flag)
		assert.Equal(t, tc.want, kind, tc.flag)
	}

	_, err := ParseFlag("UniswapV2")
	assert.Error(t, err)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "token-swap", KindTokenSwap.String())
	assert.Equal(t, "serum", KindSerum.String())
	assert.Equal(t, "saber", KindSaber.String())
	assert.Equal(t, "raydium", KindRaydium.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}

func TestLoadTokenSwapModel(t *testing.T) {
	programID := solana.MustPublicKeyFromBase58("SwaPpA9LAaLfeLi3a68M4DjnLqgtticKg6CnyNwgAC8")
	address := solana.NewWallet().PublicKey()

	_, bump, err := solana.FindProgramAddress([][]byte{address[:]}, programID)
	require.NoError(t, err)

	data, err := (&tokenswap.State{
		Version:        1,
		IsInitialized:  true,
		BumpSeed:       bump,
		TokenProgramID: solana.TokenProgramID,
		TokenAccountA:  solana.NewWallet().PublicKey(),
		TokenAccountB:  solana.NewWallet().PublicKey(),
		TokenPool:      solana.NewWallet().PublicKey(),
		MintA:          solana.NewWallet().PublicKey(),
		MintB:          solana.NewWallet().PublicKey(),
		FeeAccount:     solana.NewWallet().PublicKey(),
	}).Encode()
	require.NoError(t, err)

	cl := &stubClient{accounts: map[solana.PublicKey][]byte{address: data}}
	model, err := Load(context.Background(), cl, KindTokenSwap, address, programID)
	require.NoError(t, err)

	assert.Equal(t, KindTokenSwap, model.Kind())
	assert.Equal(t, address, model.Address())
	assert.Len(t, model.Keys(KeyParams{}), 7)

	_, ok := Market(model)
	assert.False(t, ok)
}

func TestLoadUnknownKind(t *testing.T) {
	cl := &stubClient{}
	_, err := Load(context.Background(), cl, Kind(42), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	assert.Error(t, err)
}
