// =============================
// File: internal/exchange/serum/openorders.go
// =============================
package serum

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/onesol-labs/onesol-go/internal/chain"
	"github.com/onesol-labs/onesol-go/internal/layout"
)

// OpenOrdersSpan is the serialized size of an open-orders account
// (layout v2, 128 order slots).
const OpenOrdersSpan = 3228

const orderSlots = 128

// Byte offsets used as getProgramAccounts memcmp filters.
const (
	OpenOrdersMarketOffset = 13
	OpenOrdersOwnerOffset  = 45
)

// Serum DEX instruction numbers, prefixed with a version byte of zero on
// the wire.
const (
	instrCloseOpenOrders = 14
	instrInitOpenOrders  = 15
)

// OpenOrders is the raw open-orders account record (layout v2).
type OpenOrders struct {
	AccountFlags AccountFlags
	Market       solana.PublicKey
	Owner        solana.PublicKey

	BaseTokenFree   uint64
	BaseTokenTotal  uint64
	QuoteTokenFree  uint64
	QuoteTokenTotal uint64

	FreeSlotBits bin.Uint128
	IsBidBits    bin.Uint128

	Orders    [orderSlots]bin.Uint128
	ClientIDs [orderSlots]uint64

	ReferrerRebatesAccrued uint64
}

// DecodeOpenOrders parses an open-orders account. The buffer must be
// exactly OpenOrdersSpan bytes and the flag word must describe an
// initialized open-orders account.
func DecodeOpenOrders(data []byte) (*OpenOrders, error) {
	r := layout.NewReader(data)
	r.ExpectSize(OpenOrdersSpan)
	r.Skip(headPadding)

	o := &OpenOrders{}
	o.AccountFlags = AccountFlags(r.U64())
	o.Market = r.Pubkey()
	o.Owner = r.Pubkey()
	o.BaseTokenFree = r.U64()
	o.BaseTokenTotal = r.U64()
	o.QuoteTokenFree = r.U64()
	o.QuoteTokenTotal = r.U64()
	o.FreeSlotBits = r.U128()
	o.IsBidBits = r.U128()
	for i := range o.Orders {
		o.Orders[i] = r.U128()
	}
	for i := range o.ClientIDs {
		o.ClientIDs[i] = r.U64()
	}
	o.ReferrerRebatesAccrued = r.U64()
	r.Skip(tailPadding)

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("serum open orders: %w", err)
	}
	if !o.AccountFlags.Has(FlagInitialized | FlagOpenOrders) {
		return nil, fmt.Errorf("serum open orders: %w: account flags %#x are not initialized open orders",
			layout.ErrInvalidFormat, uint64(o.AccountFlags))
	}
	return o, nil
}

// EncodeOpenOrders serializes the record back to OpenOrdersSpan bytes.
func EncodeOpenOrders(o *OpenOrders) ([]byte, error) {
	w := layout.NewWriter(OpenOrdersSpan)
	w.Skip(headPadding)
	w.U64(uint64(o.AccountFlags))
	w.Pubkey(o.Market)
	w.Pubkey(o.Owner)
	w.U64(o.BaseTokenFree)
	w.U64(o.BaseTokenTotal)
	w.U64(o.QuoteTokenFree)
	w.U64(o.QuoteTokenTotal)
	w.U128(o.FreeSlotBits)
	w.U128(o.IsBidBits)
	for i := range o.Orders {
		w.U128(o.Orders[i])
	}
	for i := range o.ClientIDs {
		w.U64(o.ClientIDs[i])
	}
	w.U64(o.ReferrerRebatesAccrued)
	w.Skip(tailPadding)
	return w.Bytes()
}

// OpenOrdersAccount pairs a decoded record with its address.
type OpenOrdersAccount struct {
	Address solana.PublicKey
	State   *OpenOrders
}

// FindForMarketAndOwner scans the serum program for open-orders accounts
// bound to the given market and owner.
func FindForMarketAndOwner(ctx context.Context, cl chain.Client, market, owner, programID solana.PublicKey) ([]*OpenOrdersAccount, error) {
	accounts, err := cl.GetProgramAccounts(ctx, programID, []chain.AccountFilter{
		{DataSize: OpenOrdersSpan},
		{Memcmp: &chain.MemcmpFilter{Offset: OpenOrdersMarketOffset, Bytes: market[:]}},
		{Memcmp: &chain.MemcmpFilter{Offset: OpenOrdersOwnerOffset, Bytes: owner[:]}},
	})
	if err != nil {
		return nil, fmt.Errorf("find open orders for market %s owner %s: %w", market, owner, err)
	}

	out := make([]*OpenOrdersAccount, 0, len(accounts))
	for _, acc := range accounts {
		state, err := DecodeOpenOrders(acc.Data)
		if err != nil {
			return nil, fmt.Errorf("find open orders %s: %w", acc.Pubkey, err)
		}
		out = append(out, &OpenOrdersAccount{Address: acc.Pubkey, State: state})
	}
	return out, nil
}

// NewCreateOpenOrdersInstruction builds the system create-account
// instruction for a fresh open-orders account. The account is allocated
// and assigned to the serum program; the program initializes it lazily on
// first use.
func NewCreateOpenOrdersInstruction(ctx context.Context, cl chain.Client, payer, newAccount, programID solana.PublicKey) (solana.Instruction, error) {
	lamports, err := cl.GetMinimumBalanceForRentExemption(ctx, OpenOrdersSpan)
	if err != nil {
		return nil, fmt.Errorf("create open orders: rent exemption: %w", err)
	}
	return system.NewCreateAccountInstruction(
		lamports,
		OpenOrdersSpan,
		programID,
		payer,
		newAccount,
	).Build(), nil
}

func serumInstructionData(instruction uint32) []byte {
	data := make([]byte, layout.SpanU8+layout.SpanU32)
	// version byte stays zero
	if _, err := layout.EncodeU32(instruction, data, layout.SpanU8); err != nil {
		panic(err)
	}
	return data
}

// NewInitOpenOrdersInstruction builds the serum InitOpenOrders
// instruction binding a created account to its owner and market.
func NewInitOpenOrdersInstruction(openOrders, owner, market, programID solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(openOrders).WRITE(),
			solana.Meta(owner).SIGNER(),
			solana.Meta(market),
			solana.Meta(solana.SysVarRentPubkey),
		},
		serumInstructionData(instrInitOpenOrders),
	)
}

// NewCloseOpenOrdersInstruction builds the serum CloseOpenOrders
// instruction, refunding the account's lamports to destination.
func NewCloseOpenOrdersInstruction(openOrders, owner, destination, market, programID solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(openOrders).WRITE(),
			solana.Meta(owner).SIGNER(),
			solana.Meta(destination).WRITE(),
			solana.Meta(market),
		},
		serumInstructionData(instrCloseOpenOrders),
	)
}
