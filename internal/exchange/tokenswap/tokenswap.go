// =============================
// File: internal/exchange/tokenswap/tokenswap.go
// =============================

// Package tokenswap models spl-token-swap style constant-product pools.
// Orca and OneMoon run byte-identical forks of the program, so all three
// route through this one decoder.
package tokenswap

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/onesol-labs/onesol-go/internal/chain"
	"github.com/onesol-labs/onesol-go/internal/layout"
)

// StateSpan is the serialized size of a token-swap pool account.
const StateSpan = 324

// Curve types understood by the on-chain program.
const (
	CurveConstantProduct = 0
	CurveConstantPrice   = 1
	CurveStable          = 2
	CurveOffset          = 3
)

// State is the raw pool account record.
type State struct {
	Version        uint8
	IsInitialized  bool
	BumpSeed       uint8
	TokenProgramID solana.PublicKey

	TokenAccountA solana.PublicKey
	TokenAccountB solana.PublicKey
	TokenPool     solana.PublicKey
	MintA         solana.PublicKey
	MintB         solana.PublicKey
	FeeAccount    solana.PublicKey

	TradeFeeNumerator   uint64
	TradeFeeDenominator uint64

	OwnerTradeFeeNumerator      uint64
	OwnerTradeFeeDenominator    uint64
	OwnerWithdrawFeeNumerator   uint64
	OwnerWithdrawFeeDenominator uint64
	HostFeeNumerator            uint64
	HostFeeDenominator          uint64

	CurveType       uint8
	CurveParameters [32]byte
}

// DecodeState parses a pool account. The buffer must be exactly StateSpan
// bytes.
func DecodeState(data []byte) (*State, error) {
	r := layout.NewReader(data)
	r.ExpectSize(StateSpan)

	s := &State{}
	s.Version = r.U8()
	s.IsInitialized = r.Bool()
	s.BumpSeed = r.U8()
	s.TokenProgramID = r.Pubkey()
	s.TokenAccountA = r.Pubkey()
	s.TokenAccountB = r.Pubkey()
	s.TokenPool = r.Pubkey()
	s.MintA = r.Pubkey()
	s.MintB = r.Pubkey()
	s.FeeAccount = r.Pubkey()
	s.TradeFeeNumerator = r.U64()
	s.TradeFeeDenominator = r.U64()
	s.OwnerTradeFeeNumerator = r.U64()
	s.OwnerTradeFeeDenominator = r.U64()
	s.OwnerWithdrawFeeNumerator = r.U64()
	s.OwnerWithdrawFeeDenominator = r.U64()
	s.HostFeeNumerator = r.U64()
	s.HostFeeDenominator = r.U64()
	s.CurveType = r.U8()

	for i := range s.CurveParameters {
		s.CurveParameters[i] = r.U8()
	}

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("token swap state: %w", err)
	}
	return s, nil
}

// Encode serializes the record back to StateSpan bytes. The inverse of
// DecodeState, used to build fixtures and verify layouts.
func (s *State) Encode() ([]byte, error) {
	w := layout.NewWriter(StateSpan)
	w.U8(s.Version)
	w.Bool(s.IsInitialized)
	w.U8(s.BumpSeed)
	w.Pubkey(s.TokenProgramID)
	w.Pubkey(s.TokenAccountA)
	w.Pubkey(s.TokenAccountB)
	w.Pubkey(s.TokenPool)
	w.Pubkey(s.MintA)
	w.Pubkey(s.MintB)
	w.Pubkey(s.FeeAccount)
	w.U64(s.TradeFeeNumerator)
	w.U64(s.TradeFeeDenominator)
	w.U64(s.OwnerTradeFeeNumerator)
	w.U64(s.OwnerTradeFeeDenominator)
	w.U64(s.OwnerWithdrawFeeNumerator)
	w.U64(s.OwnerWithdrawFeeDenominator)
	w.U64(s.HostFeeNumerator)
	w.U64(s.HostFeeDenominator)
	w.U8(s.CurveType)
	w.Blob(s.CurveParameters[:], len(s.CurveParameters))
	return w.Bytes()
}

// PoolInfo is a loaded pool with its swap authority resolved.
type PoolInfo struct {
	ProgramID     solana.PublicKey
	Address       solana.PublicKey
	Authority     solana.PublicKey
	TokenAccountA solana.PublicKey
	TokenAccountB solana.PublicKey
	MintA         solana.PublicKey
	MintB         solana.PublicKey
	PoolMint      solana.PublicKey
	FeeAccount    solana.PublicKey
}

// Load fetches and decodes a pool account, then derives the pool authority
// from the stored bump seed.
func Load(ctx context.Context, cl chain.Client, address, programID solana.PublicKey) (*PoolInfo, error) {
	data, err := cl.GetAccountData(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("load token swap %s: %w", address, err)
	}
	state, err := DecodeState(data)
	if err != nil {
		return nil, fmt.Errorf("load token swap %s: %w", address, err)
	}
	if !state.IsInitialized {
		return nil, fmt.Errorf("load token swap %s: %w: pool not initialized", address, layout.ErrInvalidFormat)
	}

	authority, err := solana.CreateProgramAddress(
		[][]byte{address[:], {state.BumpSeed}},
		programID,
	)
	if err != nil {
		return nil, fmt.Errorf("load token swap %s: derive authority: %w", address, err)
	}

	return &PoolInfo{
		ProgramID:     programID,
		Address:       address,
		Authority:     authority,
		TokenAccountA: state.TokenAccountA,
		TokenAccountB: state.TokenAccountB,
		MintA:         state.MintA,
		MintB:         state.MintB,
		PoolMint:      state.TokenPool,
		FeeAccount:    state.FeeAccount,
	}, nil
}

// Keys returns the pool's account metas in on-chain argument order.
func (p *PoolInfo) Keys() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		solana.Meta(p.Address),
		solana.Meta(p.Authority),
		solana.Meta(p.TokenAccountA).WRITE(),
		solana.Meta(p.TokenAccountB).WRITE(),
		solana.Meta(p.PoolMint).WRITE(),
		solana.Meta(p.FeeAccount).WRITE(),
		solana.Meta(p.ProgramID),
	}
}
