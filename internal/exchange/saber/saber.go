// =============================
// File: internal/exchange/saber/saber.go
// =============================

// Package saber models Saber StableSwap pools.
package saber

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/onesol-labs/onesol-go/internal/chain"
	"github.com/onesol-labs/onesol-go/internal/layout"
)

// StateSpan is the serialized size of a stable-swap pool account.
const StateSpan = 395

// Fees is the pool fee schedule, all expressed as numerator/denominator
// pairs.
type Fees struct {
	AdminTradeFeeNumerator      uint64
	AdminTradeFeeDenominator    uint64
	AdminWithdrawFeeNumerator   uint64
	AdminWithdrawFeeDenominator uint64
	TradeFeeNumerator           uint64
	TradeFeeDenominator         uint64
	WithdrawFeeNumerator        uint64
	WithdrawFeeDenominator      uint64
}

// State is the raw stable-swap pool account record.
type State struct {
	IsInitialized bool
	IsPaused      bool
	Nonce         uint8

	InitialAmpFactor uint64
	TargetAmpFactor  uint64
	StartRampTs      int64
	StopRampTs       int64

	FutureAdminDeadline int64
	FutureAdminAccount  solana.PublicKey
	AdminAccount        solana.PublicKey

	TokenAccountA solana.PublicKey
	TokenAccountB solana.PublicKey
	TokenPool     solana.PublicKey
	MintA         solana.PublicKey
	MintB         solana.PublicKey

	AdminFeeAccountA solana.PublicKey
	AdminFeeAccountB solana.PublicKey

	Fees Fees
}

// DecodeState parses a stable-swap pool account. The buffer must be
// exactly StateSpan bytes.
func DecodeState(data []byte) (*State, error) {
	r := layout.NewReader(data)
	r.ExpectSize(StateSpan)

	s := &State{}
	s.IsInitialized = r.Bool()
	s.IsPaused = r.Bool()
	s.Nonce = r.U8()
	s.InitialAmpFactor = r.U64()
	s.TargetAmpFactor = r.U64()
	s.StartRampTs = r.I64()
	s.StopRampTs = r.I64()
	s.FutureAdminDeadline = r.I64()
	s.FutureAdminAccount = r.Pubkey()
	s.AdminAccount = r.Pubkey()
	s.TokenAccountA = r.Pubkey()
	s.TokenAccountB = r.Pubkey()
	s.TokenPool = r.Pubkey()
	s.MintA = r.Pubkey()
	s.MintB = r.Pubkey()
	s.AdminFeeAccountA = r.Pubkey()
	s.AdminFeeAccountB = r.Pubkey()
	s.Fees.AdminTradeFeeNumerator = r.U64()
	s.Fees.AdminTradeFeeDenominator = r.U64()
	s.Fees.AdminWithdrawFeeNumerator = r.U64()
	s.Fees.AdminWithdrawFeeDenominator = r.U64()
	s.Fees.TradeFeeNumerator = r.U64()
	s.Fees.TradeFeeDenominator = r.U64()
	s.Fees.WithdrawFeeNumerator = r.U64()
	s.Fees.WithdrawFeeDenominator = r.U64()

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("stable swap state: %w", err)
	}
	return s, nil
}

// Encode serializes the record back to StateSpan bytes. The inverse of
// DecodeState, used to build fixtures and verify layouts.
func (s *State) Encode() ([]byte, error) {
	w := layout.NewWriter(StateSpan)
	w.Bool(s.IsInitialized)
	w.Bool(s.IsPaused)
	w.U8(s.Nonce)
	w.U64(s.InitialAmpFactor)
	w.U64(s.TargetAmpFactor)
	w.I64(s.StartRampTs)
	w.I64(s.StopRampTs)
	w.I64(s.FutureAdminDeadline)
	w.Pubkey(s.FutureAdminAccount)
	w.Pubkey(s.AdminAccount)
	w.Pubkey(s.TokenAccountA)
	w.Pubkey(s.TokenAccountB)
	w.Pubkey(s.TokenPool)
	w.Pubkey(s.MintA)
	w.Pubkey(s.MintB)
	w.Pubkey(s.AdminFeeAccountA)
	w.Pubkey(s.AdminFeeAccountB)
	w.U64(s.Fees.AdminTradeFeeNumerator)
	w.U64(s.Fees.AdminTradeFeeDenominator)
	w.U64(s.Fees.AdminWithdrawFeeNumerator)
	w.U64(s.Fees.AdminWithdrawFeeDenominator)
	w.U64(s.Fees.TradeFeeNumerator)
	w.U64(s.Fees.TradeFeeDenominator)
	w.U64(s.Fees.WithdrawFeeNumerator)
	w.U64(s.Fees.WithdrawFeeDenominator)
	return w.Bytes()
}

// PoolInfo is a loaded stable-swap pool with its authority resolved.
type PoolInfo struct {
	ProgramID solana.PublicKey
	Address   solana.PublicKey
	Authority solana.PublicKey

	TokenAccountA    solana.PublicKey
	MintA            solana.PublicKey
	AdminFeeAccountA solana.PublicKey

	TokenAccountB    solana.PublicKey
	MintB            solana.PublicKey
	AdminFeeAccountB solana.PublicKey
}

// Load fetches and decodes a stable-swap pool, then derives the swap
// authority from the stored nonce. Uninitialized or paused pools report
// chain.ErrAccountNotFound, matching how lookups treat missing pools.
func Load(ctx context.Context, cl chain.Client, address, programID solana.PublicKey) (*PoolInfo, error) {
	data, err := cl.GetAccountData(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("load stable swap %s: %w", address, err)
	}
	state, err := DecodeState(data)
	if err != nil {
		return nil, fmt.Errorf("load stable swap %s: %w", address, err)
	}
	if !state.IsInitialized || state.IsPaused {
		return nil, fmt.Errorf("load stable swap %s: pool uninitialized or paused: %w", address, chain.ErrAccountNotFound)
	}

	authority, err := solana.CreateProgramAddress(
		[][]byte{address[:], {state.Nonce}},
		programID,
	)
	if err != nil {
		return nil, fmt.Errorf("load stable swap %s: derive authority: %w", address, err)
	}

	return &PoolInfo{
		ProgramID:        programID,
		Address:          address,
		Authority:        authority,
		TokenAccountA:    state.TokenAccountA,
		MintA:            state.MintA,
		AdminFeeAccountA: state.AdminFeeAccountA,
		TokenAccountB:    state.TokenAccountB,
		MintB:            state.MintB,
		AdminFeeAccountB: state.AdminFeeAccountB,
	}, nil
}

// Keys returns the pool's account metas in on-chain argument order. The
// admin fee account is the one on the destination side, so it is picked by
// the mint being sold.
func (p *PoolInfo) Keys(sourceMint solana.PublicKey) []*solana.AccountMeta {
	adminFee := p.AdminFeeAccountA
	if sourceMint.Equals(p.MintA) {
		adminFee = p.AdminFeeAccountB
	}
	return []*solana.AccountMeta{
		solana.Meta(p.Address),
		solana.Meta(p.Authority),
		solana.Meta(p.TokenAccountA).WRITE(),
		solana.Meta(p.TokenAccountB).WRITE(),
		solana.Meta(adminFee).WRITE(),
		solana.Meta(solana.SysVarClockPubkey),
		solana.Meta(p.ProgramID),
	}
}
