// =============================
// File: internal/exchange/raydium/raydium.go
// =============================

// Package raydium models Raydium AMM v4 liquidity pools. Every pool is
// backed by a serum market, so loading a pool also loads and resolves the
// market it trades against.
package raydium

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/onesol-labs/onesol-go/internal/chain"
	"github.com/onesol-labs/onesol-go/internal/exchange/serum"
	"github.com/onesol-labs/onesol-go/internal/layout"
)

// StateSpan is the serialized size of an AMM v4 liquidity account.
const StateSpan = 752

// authoritySeed matches raydium-sdk's getAuthority().
var authoritySeed = []byte("amm authority")

// State is the raw liquidity account record (v4).
type State struct {
	Status       uint64
	Nonce        uint64
	MaxOrder     uint64
	Depth        uint64
	BaseDecimal  uint64
	QuoteDecimal uint64
	State        uint64
	ResetFlag    uint64

	MinSize            uint64
	VolMaxCutRatio     uint64
	AmountWaveRatio    uint64
	BaseLotSize        uint64
	QuoteLotSize       uint64
	MinPriceMultiplier uint64
	MaxPriceMultiplier uint64
	SystemDecimalValue uint64

	MinSeparateNumerator   uint64
	MinSeparateDenominator uint64
	TradeFeeNumerator      uint64
	TradeFeeDenominator    uint64
	PnlNumerator           uint64
	PnlDenominator         uint64
	SwapFeeNumerator       uint64
	SwapFeeDenominator     uint64

	BaseNeedTakePnl  uint64
	QuoteNeedTakePnl uint64
	QuoteTotalPnl    uint64
	BaseTotalPnl     uint64

	QuoteTotalDeposited bin.Uint128
	BaseTotalDeposited  bin.Uint128
	SwapBaseInAmount    bin.Uint128
	SwapQuoteOutAmount  bin.Uint128
	SwapBase2QuoteFee   uint64
	SwapQuoteInAmount   bin.Uint128
	SwapBaseOutAmount   bin.Uint128
	SwapQuote2BaseFee   uint64

	BaseVault  solana.PublicKey
	QuoteVault solana.PublicKey

	BaseMint  solana.PublicKey
	QuoteMint solana.PublicKey
	LpMint    solana.PublicKey

	OpenOrders      solana.PublicKey
	MarketID        solana.PublicKey
	MarketProgramID solana.PublicKey
	TargetOrders    solana.PublicKey
	WithdrawQueue   solana.PublicKey
	TempLpVault     solana.PublicKey
	Owner           solana.PublicKey
	PnlOwner        solana.PublicKey
}

// DecodeState parses a liquidity account. The buffer must be exactly
// StateSpan bytes.
func DecodeState(data []byte) (*State, error) {
	r := layout.NewReader(data)
	r.ExpectSize(StateSpan)

	s := &State{}
	s.Status = r.U64()
	s.Nonce = r.U64()
	s.MaxOrder = r.U64()
	s.Depth = r.U64()
	s.BaseDecimal = r.U64()
	s.QuoteDecimal = r.U64()
	s.State = r.U64()
	s.ResetFlag = r.U64()
	s.MinSize = r.U64()
	s.VolMaxCutRatio = r.U64()
	s.AmountWaveRatio = r.U64()
	s.BaseLotSize = r.U64()
	s.QuoteLotSize = r.U64()
	s.MinPriceMultiplier = r.U64()
	s.MaxPriceMultiplier = r.U64()
	s.SystemDecimalValue = r.U64()
	s.MinSeparateNumerator = r.U64()
	s.MinSeparateDenominator = r.U64()
	s.TradeFeeNumerator = r.U64()
	s.TradeFeeDenominator = r.U64()
	s.PnlNumerator = r.U64()
	s.PnlDenominator = r.U64()
	s.SwapFeeNumerator = r.U64()
	s.SwapFeeDenominator = r.U64()
	s.BaseNeedTakePnl = r.U64()
	s.QuoteNeedTakePnl = r.U64()
	s.QuoteTotalPnl = r.U64()
	s.BaseTotalPnl = r.U64()
	s.QuoteTotalDeposited = r.U128()
	s.BaseTotalDeposited = r.U128()
	s.SwapBaseInAmount = r.U128()
	s.SwapQuoteOutAmount = r.U128()
	s.SwapBase2QuoteFee = r.U64()
	s.SwapQuoteInAmount = r.U128()
	s.SwapBaseOutAmount = r.U128()
	s.SwapQuote2BaseFee = r.U64()
	s.BaseVault = r.Pubkey()
	s.QuoteVault = r.Pubkey()
	s.BaseMint = r.Pubkey()
	s.QuoteMint = r.Pubkey()
	s.LpMint = r.Pubkey()
	s.OpenOrders = r.Pubkey()
	s.MarketID = r.Pubkey()
	s.MarketProgramID = r.Pubkey()
	s.TargetOrders = r.Pubkey()
	s.WithdrawQueue = r.Pubkey()
	s.TempLpVault = r.Pubkey()
	s.Owner = r.Pubkey()
	s.PnlOwner = r.Pubkey()

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("raydium liquidity state: %w", err)
	}
	return s, nil
}

// Encode serializes the record back to StateSpan bytes. The inverse of
// DecodeState, used to build fixtures and verify layouts.
func (s *State) Encode() ([]byte, error) {
	w := layout.NewWriter(StateSpan)
	w.U64(s.Status)
	w.U64(s.Nonce)
	w.U64(s.MaxOrder)
	w.U64(s.Depth)
	w.U64(s.BaseDecimal)
	w.U64(s.QuoteDecimal)
	w.U64(s.State)
	w.U64(s.ResetFlag)
	w.U64(s.MinSize)
	w.U64(s.VolMaxCutRatio)
	w.U64(s.AmountWaveRatio)
	w.U64(s.BaseLotSize)
	w.U64(s.QuoteLotSize)
	w.U64(s.MinPriceMultiplier)
	w.U64(s.MaxPriceMultiplier)
	w.U64(s.SystemDecimalValue)
	w.U64(s.MinSeparateNumerator)
	w.U64(s.MinSeparateDenominator)
	w.U64(s.TradeFeeNumerator)
	w.U64(s.TradeFeeDenominator)
	w.U64(s.PnlNumerator)
	w.U64(s.PnlDenominator)
	w.U64(s.SwapFeeNumerator)
	w.U64(s.SwapFeeDenominator)
	w.U64(s.BaseNeedTakePnl)
	w.U64(s.QuoteNeedTakePnl)
	w.U64(s.QuoteTotalPnl)
	w.U64(s.BaseTotalPnl)
	w.U128(s.QuoteTotalDeposited)
	w.U128(s.BaseTotalDeposited)
	w.U128(s.SwapBaseInAmount)
	w.U128(s.SwapQuoteOutAmount)
	w.U64(s.SwapBase2QuoteFee)
	w.U128(s.SwapQuoteInAmount)
	w.U128(s.SwapBaseOutAmount)
	w.U64(s.SwapQuote2BaseFee)
	w.Pubkey(s.BaseVault)
	w.Pubkey(s.QuoteVault)
	w.Pubkey(s.BaseMint)
	w.Pubkey(s.QuoteMint)
	w.Pubkey(s.LpMint)
	w.Pubkey(s.OpenOrders)
	w.Pubkey(s.MarketID)
	w.Pubkey(s.MarketProgramID)
	w.Pubkey(s.TargetOrders)
	w.Pubkey(s.WithdrawQueue)
	w.Pubkey(s.TempLpVault)
	w.Pubkey(s.Owner)
	w.Pubkey(s.PnlOwner)
	return w.Bytes()
}

// AmmInfo is a loaded pool with its authority and backing serum market
// resolved.
type AmmInfo struct {
	ProgramID solana.PublicKey
	Address   solana.PublicKey
	Authority solana.PublicKey

	AmmOpenOrders   solana.PublicKey
	AmmTargetOrders solana.PublicKey

	PoolCoinTokenAccount solana.PublicKey
	PoolPcTokenAccount   solana.PublicKey

	SerumProgramID   solana.PublicKey
	SerumMarket      solana.PublicKey
	SerumBids        solana.PublicKey
	SerumAsks        solana.PublicKey
	SerumEventQueue  solana.PublicKey
	SerumCoinVault   solana.PublicKey
	SerumPcVault     solana.PublicKey
	SerumVaultSigner solana.PublicKey
}

// AuthorityAddress derives the program-wide AMM authority.
func AuthorityAddress(programID solana.PublicKey) (solana.PublicKey, error) {
	authority, _, err := solana.FindProgramAddress([][]byte{authoritySeed}, programID)
	return authority, err
}

// Load fetches and decodes a liquidity account, then loads the serum
// market it trades against.
func Load(ctx context.Context, cl chain.Client, address, programID solana.PublicKey) (*AmmInfo, error) {
	data, err := cl.GetAccountData(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("load raydium amm %s: %w", address, err)
	}
	state, err := DecodeState(data)
	if err != nil {
		return nil, fmt.Errorf("load raydium amm %s: %w", address, err)
	}

	authority, err := AuthorityAddress(programID)
	if err != nil {
		return nil, fmt.Errorf("load raydium amm %s: derive authority: %w", address, err)
	}

	market, err := serum.Load(ctx, cl, state.MarketID, state.MarketProgramID)
	if err != nil {
		return nil, fmt.Errorf("load raydium amm %s: backing market: %w", address, err)
	}

	return &AmmInfo{
		ProgramID:            programID,
		Address:              address,
		Authority:            authority,
		AmmOpenOrders:        state.OpenOrders,
		AmmTargetOrders:      state.TargetOrders,
		PoolCoinTokenAccount: state.BaseVault,
		PoolPcTokenAccount:   state.QuoteVault,
		SerumProgramID:       state.MarketProgramID,
		SerumMarket:          state.MarketID,
		SerumBids:            market.Bids,
		SerumAsks:            market.Asks,
		SerumEventQueue:      market.EventQueue,
		SerumCoinVault:       market.CoinVault,
		SerumPcVault:         market.PcVault,
		SerumVaultSigner:     market.VaultSigner,
	}, nil
}

// Keys returns the pool's account metas in on-chain argument order,
// target orders included.
func (a *AmmInfo) Keys() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		solana.Meta(a.Address).WRITE(),
		solana.Meta(a.Authority),
		solana.Meta(a.AmmOpenOrders).WRITE(),
		solana.Meta(a.AmmTargetOrders).WRITE(),
		solana.Meta(a.PoolCoinTokenAccount).WRITE(),
		solana.Meta(a.PoolPcTokenAccount).WRITE(),
		solana.Meta(a.SerumProgramID),
		solana.Meta(a.SerumMarket).WRITE(),
		solana.Meta(a.SerumBids).WRITE(),
		solana.Meta(a.SerumAsks).WRITE(),
		solana.Meta(a.SerumEventQueue).WRITE(),
		solana.Meta(a.SerumCoinVault).WRITE(),
		solana.Meta(a.SerumPcVault).WRITE(),
		solana.Meta(a.SerumVaultSigner),
		solana.Meta(a.ProgramID),
	}
}

// Keys2 is the alternate shape some program builds expect, identical to
// Keys but without the target-orders account.
func (a *AmmInfo) Keys2() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		solana.Meta(a.Address).WRITE(),
		solana.Meta(a.Authority),
		solana.Meta(a.AmmOpenOrders).WRITE(),
		solana.Meta(a.PoolCoinTokenAccount).WRITE(),
		solana.Meta(a.PoolPcTokenAccount).WRITE(),
		solana.Meta(a.SerumProgramID),
		solana.Meta(a.SerumMarket).WRITE(),
		solana.Meta(a.SerumBids).WRITE(),
		solana.Meta(a.SerumAsks).WRITE(),
		solana.Meta(a.SerumEventQueue).WRITE(),
		solana.Meta(a.SerumCoinVault).WRITE(),
		solana.Meta(a.SerumPcVault).WRITE(),
		solana.Meta(a.SerumVaultSigner),
		solana.Meta(a.ProgramID),
	}
}
