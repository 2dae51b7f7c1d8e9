package protocol

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onesol-labs/onesol-go/internal/exchange"
)

func TestRawDistributionUnmarshal(t *testing.T) {
	mintA := solana.NewWallet().PublicKey()
	mintB := solana.NewWallet().PublicKey()
	pool := solana.NewWallet().PublicKey()

	payload := fmt.Sprintf(`{
		"routes": [[{
			"source_token_mint": {"decimals": 9, "pubkey": %q},
			"destination_token_mint": {"decimals": 6, "pubkey": %q},
			"amount_in": 1000000,
			"amount_out": 990000,
			"exchanger_flag": "SplTokenSwap",
			"pubkey": %q,
			"program_id": %q
		}]],
		"split_tx": false,
		"source_token_mint": {"decimals": 9, "pubkey": %q},
		"destination_token_mint": {"decimals": 6, "pubkey": %q},
		"amount_in": 1000000,
		"amount_out": 990000,
		"exchanger_flag": "SplTokenSwap"
	}`, mintA, mintB, pool, TokenSwapProgramID, mintA, mintB)

	var d RawDistribution
	require.NoError(t, json.Unmarshal([]byte(payload), &d))

	require.Len(t, d.Routes, 1)
	require.Len(t, d.Routes[0], 1)
	leg := d.Routes[0][0]
	assert.Equal(t, uint8(9), leg.SourceTokenMint.Decimals)
	assert.Equal(t, uint64(1000000), leg.AmountIn)
	assert.Equal(t, uint64(990000), leg.AmountOut)

	kind, err := leg.Kind()
	require.NoError(t, err)
	assert.Equal(t, exchange.KindTokenSwap, kind)

	addr, err := leg.Address()
	require.NoError(t, err)
	assert.Equal(t, pool, addr)

	require.NoError(t, d.Validate())
}

func validLeg(sourceMint, destMint solana.PublicKey) RawRoute {
	return RawRoute{
		SourceTokenMint:      TokenMint{Decimals: 9, Pubkey: sourceMint.String()},
		DestinationTokenMint: TokenMint{Decimals: 6, Pubkey: destMint.String()},
		AmountIn:             100,
		AmountOut:            99,
		ExchangerFlag:        exchange.FlagSplTokenSwap,
		Pubkey:               solana.NewWallet().PublicKey().String(),
		ProgramID:            TokenSwapProgramID.String(),
	}
}

func validDistribution(sourceMint, destMint solana.PublicKey, hops ...[]RawRoute) *RawDistribution {
	return &RawDistribution{
		Routes:               hops,
		SourceTokenMint:      TokenMint{Decimals: 9, Pubkey: sourceMint.String()},
		DestinationTokenMint: TokenMint{Decimals: 6, Pubkey: destMint.String()},
		AmountIn:             100,
		AmountOut:            99,
	}
}

func TestValidateRejectsEmptyRoute(t *testing.T) {
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()

	d := validDistribution(a, b)
	assert.ErrorIs(t, d.Validate(), ErrValidation)
}

func TestValidateRejectsTooManyHops(t *testing.T) {
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()
	hop := []RawRoute{validLeg(a, b)}

	d := validDistribution(a, b, hop, hop, hop)
	assert.ErrorIs(t, d.Validate(), ErrUnsupportedRoute)
}

func TestValidateRejectsEmptyHop(t *testing.T) {
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()

	d := validDistribution(a, b, []RawRoute{})
	assert.ErrorIs(t, d.Validate(), ErrValidation)
}

func TestValidateRejectsBadLeg(t *testing.T) {
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()

	leg := validLeg(a, b)
	leg.ExchangerFlag = "Unknown"
	d := validDistribution(a, b, []RawRoute{leg})
	assert.ErrorIs(t, d.Validate(), ErrValidation)

	leg = validLeg(a, b)
	leg.AmountIn = 0
	d = validDistribution(a, b, []RawRoute{leg})
	assert.ErrorIs(t, d.Validate(), ErrValidation)
}

func TestValidateRejectsIntermediateMintMismatch(t *testing.T) {
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()
	c := solana.NewWallet().PublicKey()

	d := validDistribution(a, c,
		[]RawRoute{validLeg(a, b)},
		[]RawRoute{validLeg(solana.NewWallet().PublicKey(), c)},
	)
	assert.ErrorIs(t, d.Validate(), ErrValidation)

	d = validDistribution(a, c,
		[]RawRoute{validLeg(a, b)},
		[]RawRoute{validLeg(b, c)},
	)
	require.NoError(t, d.Validate())
}

func TestMinimumAmountOut(t *testing.T) {
	// default slippage of 0.5% rounds the bound up
	assert.Equal(t, uint64(100495000), MinimumAmountOut(101000000, DefaultSlippage))
	assert.Equal(t, uint64(100), MinimumAmountOut(100, 0))
	assert.Equal(t, uint64(100), MinimumAmountOut(100, -1))
	assert.Equal(t, uint64(99), MinimumAmountOut(100, 0.01))
	assert.Equal(t, uint64(100), MinimumAmountOut(100, 0.001))
}
