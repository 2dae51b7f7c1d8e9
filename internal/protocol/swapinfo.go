// =============================
// File: internal/protocol/swapinfo.go
// =============================
package protocol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"go.uber.org/zap"

	"github.com/onesol-labs/onesol-go/internal/chain"
	"github.com/onesol-labs/onesol-go/internal/layout"
)

// SwapInfoSpan is the serialized size of a swap-info scratch account.
const SwapInfoSpan = 78

// Swap-info account statuses.
const (
	SwapInfoStatusActive uint8 = 1
	SwapInfoStatusClosed uint8 = 3
)

// Byte offsets used as getProgramAccounts memcmp filters.
const (
	swapInfoInitializedOffset = 0
	swapInfoStatusOffset      = 1
	swapInfoOwnerOffset       = 10
)

// SwapInfo is a decoded swap-info account: per-owner scratch state the
// program uses to pass the realized swap-in output to the swap-out half.
type SwapInfo struct {
	Address solana.PublicKey

	IsInitialized     bool
	Status            uint8
	TokenLatestAmount uint64
	Owner             solana.PublicKey
	TokenAccount      *solana.PublicKey
}

// DecodeSwapInfo parses a swap-info account. The buffer must be exactly
// SwapInfoSpan bytes.
func DecodeSwapInfo(data []byte) (*SwapInfo, error) {
	r := layout.NewReader(data)
	r.ExpectSize(SwapInfoSpan)

	s := &SwapInfo{}
	s.IsInitialized = r.Bool()
	s.Status = r.U8()
	s.TokenLatestAmount = r.U64()
	s.Owner = r.Pubkey()

	tokenAccountTag := r.U32()
	tokenAccount := r.Pubkey()
	if tokenAccountTag == 1 {
		s.TokenAccount = &tokenAccount
	}

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("swap info: %w", err)
	}
	return s, nil
}

// EncodeSwapInfo serializes the record back to SwapInfoSpan bytes.
func EncodeSwapInfo(s *SwapInfo) ([]byte, error) {
	w := layout.NewWriter(SwapInfoSpan)
	w.Bool(s.IsInitialized)
	w.U8(s.Status)
	w.U64(s.TokenLatestAmount)
	w.Pubkey(s.Owner)
	if s.TokenAccount != nil {
		w.U32(1)
		w.Pubkey(*s.TokenAccount)
	} else {
		w.U32(0)
		w.Pubkey(solana.PublicKey{})
	}
	return w.Bytes()
}

// FindSwapInfo scans the aggregator program for an initialized, active
// swap-info account owned by owner. chain.ErrAccountNotFound when none
// exists.
func FindSwapInfo(ctx context.Context, cl chain.Client, owner, programID solana.PublicKey) (*SwapInfo, error) {
	accounts, err := cl.GetProgramAccounts(ctx, programID, []chain.AccountFilter{
		{DataSize: SwapInfoSpan},
		{Memcmp: &chain.MemcmpFilter{Offset: swapInfoInitializedOffset, Bytes: []byte{1}}},
		{Memcmp: &chain.MemcmpFilter{Offset: swapInfoStatusOffset, Bytes: []byte{SwapInfoStatusActive}}},
		{Memcmp: &chain.MemcmpFilter{Offset: swapInfoOwnerOffset, Bytes: owner[:]}},
	})
	if err != nil {
		return nil, fmt.Errorf("find swap info for %s: %w", owner, err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("find swap info for %s: %w", owner, chain.ErrAccountNotFound)
	}

	acc := accounts[0]
	state, err := DecodeSwapInfo(acc.Data)
	if err != nil {
		return nil, fmt.Errorf("find swap info %s: %w", acc.Pubkey, err)
	}
	state.Address = acc.Pubkey
	return state, nil
}

// FindSwapInfoKey returns the owner's swap-info address, consulting the
// per-owner cache first. chain.ErrAccountNotFound when the owner has
// none; the miss is not cached.
func (p *Protocol) FindSwapInfoKey(ctx context.Context, owner solana.PublicKey) (solana.PublicKey, error) {
	p.mu.Lock()
	cached, ok := p.swapInfoCache[owner]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	info, err := FindSwapInfo(ctx, p.client, owner, p.programID)
	if err != nil {
		return solana.PublicKey{}, err
	}

	p.mu.Lock()
	p.swapInfoCache[owner] = info.Address
	p.mu.Unlock()
	return info.Address, nil
}

// createSwapInfo appends the create+init instruction pair for a new
// swap-info account and returns its address and keypair.
func (p *Protocol) createSwapInfo(ctx context.Context, owner solana.PublicKey, g *group) (solana.PublicKey, error) {
	rent, err := p.client.GetMinimumBalanceForRentExemption(ctx, SwapInfoSpan)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("create swap info: rent exemption: %w", err)
	}

	account := solana.NewWallet()
	address := account.PublicKey()

	g.add(system.NewCreateAccountInstruction(
		rent,
		SwapInfoSpan,
		p.programID,
		owner,
		address,
	).Build())
	g.sign(account.PrivateKey)
	g.add(NewSwapInfoInitInstruction(p.programID, address, owner))

	p.logger.Debug("creating swap info account",
		zap.Stringer("address", address),
		zap.Stringer("owner", owner))
	return address, nil
}

// findOrCreateSwapInfo resolves the owner's swap-info account, emitting
// creation instructions into g when none exists yet.
func (p *Protocol) findOrCreateSwapInfo(ctx context.Context, owner solana.PublicKey, g *group) (solana.PublicKey, error) {
	address, err := p.FindSwapInfoKey(ctx, owner)
	if err == nil {
		return address, nil
	}
	if !isNotFound(err) {
		return solana.PublicKey{}, err
	}
	return p.createSwapInfo(ctx, owner, g)
}
