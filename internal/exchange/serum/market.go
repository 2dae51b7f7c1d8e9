// =============================
// File: internal/exchange/serum/market.go
// =============================

// Package serum models Serum DEX v3 markets and open-orders accounts.
package serum

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/onesol-labs/onesol-go/internal/chain"
	"github.com/onesol-labs/onesol-go/internal/layout"
)

// Serialized account sizes. Markets and open orders carry a 5-byte
// "serum" magic prefix and a 7-byte "padding" suffix around the record.
const (
	MarketStateSpan = 388
	headPadding     = 5
	tailPadding     = 7
)

// AccountFlags is the 64-bit flag word every serum account starts with.
type AccountFlags uint64

const (
	FlagInitialized AccountFlags = 1 << iota
	FlagMarket
	FlagOpenOrders
	FlagRequestQueue
	FlagEventQueue
	FlagBids
	FlagAsks
)

func (f AccountFlags) Has(mask AccountFlags) bool { return f&mask == mask }

// MarketState is the raw market account record (layout v2).
type MarketState struct {
	AccountFlags AccountFlags
	OwnAddress   solana.PublicKey

	VaultSignerNonce uint64

	BaseMint  solana.PublicKey
	QuoteMint solana.PublicKey

	BaseVault          solana.PublicKey
	BaseDepositsTotal  uint64
	BaseFeesAccrued    uint64
	QuoteVault         solana.PublicKey
	QuoteDepositsTotal uint64
	QuoteFeesAccrued   uint64
	QuoteDustThreshold uint64

	RequestQueue solana.PublicKey
	EventQueue   solana.PublicKey
	Bids         solana.PublicKey
	Asks         solana.PublicKey

	BaseLotSize  uint64
	QuoteLotSize uint64

	FeeRateBps             uint64
	ReferrerRebatesAccrued uint64
}

// DecodeMarketState parses a market account. The buffer must be exactly
// MarketStateSpan bytes and the flag word must describe an initialized
// market.
func DecodeMarketState(data []byte) (*MarketState, error) {
	r := layout.NewReader(data)
	r.ExpectSize(MarketStateSpan)
	r.Skip(headPadding)

	s := &MarketState{}
	s.AccountFlags = AccountFlags(r.U64())
	s.OwnAddress = r.Pubkey()
	s.VaultSignerNonce = r.U64()
	s.BaseMint = r.Pubkey()
	s.QuoteMint = r.Pubkey()
	s.BaseVault = r.Pubkey()
	s.BaseDepositsTotal = r.U64()
	s.BaseFeesAccrued = r.U64()
	s.QuoteVault = r.Pubkey()
	s.QuoteDepositsTotal = r.U64()
	s.QuoteFeesAccrued = r.U64()
	s.QuoteDustThreshold = r.U64()
	s.RequestQueue = r.Pubkey()
	s.EventQueue = r.Pubkey()
	s.Bids = r.Pubkey()
	s.Asks = r.Pubkey()
	s.BaseLotSize = r.U64()
	s.QuoteLotSize = r.U64()
	s.FeeRateBps = r.U64()
	s.ReferrerRebatesAccrued = r.U64()
	r.Skip(tailPadding)

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("serum market state: %w", err)
	}
	if !s.AccountFlags.Has(FlagInitialized | FlagMarket) {
		return nil, fmt.Errorf("serum market state: %w: account flags %#x are not an initialized market",
			layout.ErrInvalidFormat, uint64(s.AccountFlags))
	}
	return s, nil
}

// EncodeMarketState serializes the record back to MarketStateSpan bytes.
func EncodeMarketState(s *MarketState) ([]byte, error) {
	w := layout.NewWriter(MarketStateSpan)
	w.Skip(headPadding)
	w.U64(uint64(s.AccountFlags))
	w.Pubkey(s.OwnAddress)
	w.U64(s.VaultSignerNonce)
	w.Pubkey(s.BaseMint)
	w.Pubkey(s.QuoteMint)
	w.Pubkey(s.BaseVault)
	w.U64(s.BaseDepositsTotal)
	w.U64(s.BaseFeesAccrued)
	w.Pubkey(s.QuoteVault)
	w.U64(s.QuoteDepositsTotal)
	w.U64(s.QuoteFeesAccrued)
	w.U64(s.QuoteDustThreshold)
	w.Pubkey(s.RequestQueue)
	w.Pubkey(s.EventQueue)
	w.Pubkey(s.Bids)
	w.Pubkey(s.Asks)
	w.U64(s.BaseLotSize)
	w.U64(s.QuoteLotSize)
	w.U64(s.FeeRateBps)
	w.U64(s.ReferrerRebatesAccrued)
	w.Skip(tailPadding)
	return w.Bytes()
}

// MarketInfo is a loaded market with its vault signer resolved.
type MarketInfo struct {
	ProgramID solana.PublicKey
	Market    solana.PublicKey

	RequestQueue solana.PublicKey
	EventQueue   solana.PublicKey
	Bids         solana.PublicKey
	Asks         solana.PublicKey

	CoinVault solana.PublicKey
	PcVault   solana.PublicKey

	VaultSigner      solana.PublicKey
	VaultSignerNonce uint64
}

// VaultSignerAddress derives the market's vault authority from its stored
// nonce.
func VaultSignerAddress(market solana.PublicKey, nonce uint64, programID solana.PublicKey) (solana.PublicKey, error) {
	var nonceLE [8]byte
	binary.LittleEndian.PutUint64(nonceLE[:], nonce)
	return solana.CreateProgramAddress([][]byte{market[:], nonceLE[:]}, programID)
}

// Load fetches and decodes a market account.
func Load(ctx context.Context, cl chain.Client, address, programID solana.PublicKey) (*MarketInfo, error) {
	data, err := cl.GetAccountData(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("load serum market %s: %w", address, err)
	}
	state, err := DecodeMarketState(data)
	if err != nil {
		return nil, fmt.Errorf("load serum market %s: %w", address, err)
	}

	vaultSigner, err := VaultSignerAddress(address, state.VaultSignerNonce, programID)
	if err != nil {
		return nil, fmt.Errorf("load serum market %s: derive vault signer: %w", address, err)
	}

	return &MarketInfo{
		ProgramID:        programID,
		Market:           address,
		RequestQueue:     state.RequestQueue,
		EventQueue:       state.EventQueue,
		Bids:             state.Bids,
		Asks:             state.Asks,
		CoinVault:        state.BaseVault,
		PcVault:          state.QuoteVault,
		VaultSigner:      vaultSigner,
		VaultSignerNonce: state.VaultSignerNonce,
	}, nil
}

// Keys returns the market's account metas in on-chain argument order. The
// caller supplies the open-orders account bound to the trade.
func (m *MarketInfo) Keys(openOrders solana.PublicKey) []*solana.AccountMeta {
	return []*solana.AccountMeta{
		solana.Meta(openOrders).WRITE(),
		solana.Meta(m.Market).WRITE(),
		solana.Meta(m.RequestQueue).WRITE(),
		solana.Meta(m.EventQueue).WRITE(),
		solana.Meta(m.Bids).WRITE(),
		solana.Meta(m.Asks).WRITE(),
		solana.Meta(m.CoinVault).WRITE(),
		solana.Meta(m.PcVault).WRITE(),
		solana.Meta(m.VaultSigner),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(m.ProgramID),
	}
}
