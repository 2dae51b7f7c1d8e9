// =============================
// File: internal/protocol/instructions.go
// =============================
package protocol

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/onesol-labs/onesol-go/internal/exchange"
	"github.com/onesol-labs/onesol-go/internal/layout"
)

// Aggregator program instruction numbers. Each exchange family has its
// own opcode triple for the direct, swap-in and swap-out shapes; the
// numbers are fixed by the on-chain program.
const (
	OpSwapInfoInit uint8 = 10
	OpSwapInfoBind uint8 = 11

	opTokenSwapDirect uint8 = 3
	opTokenSwapIn     uint8 = 12
	opTokenSwapOut    uint8 = 13
	opSerumDirect     uint8 = 4
	opSerumIn         uint8 = 14
	opSerumOut        uint8 = 15
	opSaberDirect     uint8 = 6
	opSaberIn         uint8 = 16
	opSaberOut        uint8 = 17
	opRaydiumDirect   uint8 = 9
	opRaydiumIn       uint8 = 18
	opRaydiumOut      uint8 = 19
	opRaydiumAltIn    uint8 = 20
	opRaydiumAltOut   uint8 = 21
)

type opcodeTriple struct {
	direct  uint8
	swapIn  uint8
	swapOut uint8
}

var opcodeTable = map[exchange.Kind]opcodeTriple{
	exchange.KindTokenSwap: {opTokenSwapDirect, opTokenSwapIn, opTokenSwapOut},
	exchange.KindSerum:     {opSerumDirect, opSerumIn, opSerumOut},
	exchange.KindSaber:     {opSaberDirect, opSaberIn, opSaberOut},
	exchange.KindRaydium:   {opRaydiumDirect, opRaydiumIn, opRaydiumOut},
}

func opcodesFor(kind exchange.Kind, alt bool) (opcodeTriple, error) {
	if alt {
		if kind != exchange.KindRaydium {
			return opcodeTriple{}, fmt.Errorf("%w: alternate key shape is raydium only", ErrUnsupportedRoute)
		}
		return opcodeTriple{swapIn: opRaydiumAltIn, swapOut: opRaydiumAltOut}, nil
	}
	ops, ok := opcodeTable[kind]
	if !ok {
		return opcodeTriple{}, fmt.Errorf("%w: no opcodes for kind %s", ErrUnsupportedRoute, kind)
	}
	return ops, nil
}

func directSwapData(op uint8, amountIn, expectAmountOut, minimumAmountOut uint64) []byte {
	data := make([]byte, layout.SpanU8+3*layout.SpanU64)
	data[0] = op
	layout.EncodeU64(amountIn, data, 1)
	layout.EncodeU64(expectAmountOut, data, 9)
	layout.EncodeU64(minimumAmountOut, data, 17)
	return data
}

func swapInData(op uint8, amountIn uint64) []byte {
	data := make([]byte, layout.SpanU8+layout.SpanU64)
	data[0] = op
	layout.EncodeU64(amountIn, data, 1)
	return data
}

func swapOutData(op uint8, expectAmountOut, minimumAmountOut uint64) []byte {
	data := make([]byte, layout.SpanU8+2*layout.SpanU64)
	data[0] = op
	layout.EncodeU64(expectAmountOut, data, 1)
	layout.EncodeU64(minimumAmountOut, data, 9)
	return data
}

// The alternate raydium swap-out carries only the minimum bound.
func raydiumAltSwapOutData(minimumAmountOut uint64) []byte {
	return swapInData(opRaydiumAltOut, minimumAmountOut)
}

// SwapParams carries everything an aggregator swap instruction needs
// beyond the exchange model itself.
type SwapParams struct {
	// Source and Destination are the trader's token accounts for the
	// leg being encoded.
	Source      solana.PublicKey
	Destination solana.PublicKey

	// Wallet signs the transaction and owns both token accounts.
	Wallet solana.PublicKey

	// FeeAccount receives the aggregator fee; direct and swap-out
	// shapes require it.
	FeeAccount solana.PublicKey

	// SwapInfo is the scratch account threading state between the
	// swap-in and swap-out halves; indirect shapes require it.
	SwapInfo solana.PublicKey

	Model     exchange.Model
	KeyParams exchange.KeyParams

	AmountIn         uint64
	ExpectAmountOut  uint64
	MinimumAmountOut uint64
}

// NewDirectSwapInstruction encodes a single-hop swap leg.
func NewDirectSwapInstruction(programID solana.PublicKey, p SwapParams) (solana.Instruction, error) {
	ops, err := opcodesFor(p.Model.Kind(), p.KeyParams.Alt)
	if err != nil {
		return nil, err
	}
	if ops.direct == 0 {
		return nil, fmt.Errorf("%w: no direct shape for kind %s", ErrUnsupportedRoute, p.Model.Kind())
	}

	keys := solana.AccountMetaSlice{
		solana.Meta(p.Source).WRITE(),
		solana.Meta(p.Destination).WRITE(),
		solana.Meta(p.Wallet).SIGNER(),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(p.FeeAccount).WRITE(),
	}
	keys = append(keys, p.Model.Keys(p.KeyParams)...)

	return solana.NewInstruction(
		programID,
		keys,
		directSwapData(ops.direct, p.AmountIn, p.ExpectAmountOut, p.MinimumAmountOut),
	), nil
}

// NewSwapInInstruction encodes the first half of a two-hop swap: source
// into the intermediate account, with the realized output recorded on the
// swap-info account.
func NewSwapInInstruction(programID solana.PublicKey, p SwapParams) (solana.Instruction, error) {
	ops, err := opcodesFor(p.Model.Kind(), p.KeyParams.Alt)
	if err != nil {
		return nil, err
	}

	keys := solana.AccountMetaSlice{
		solana.Meta(p.Source).WRITE(),
		solana.Meta(p.Destination).WRITE(),
		solana.Meta(p.Wallet).SIGNER(),
		solana.Meta(p.SwapInfo).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}
	keys = append(keys, p.Model.Keys(p.KeyParams)...)

	return solana.NewInstruction(
		programID,
		keys,
		swapInData(ops.swapIn, p.AmountIn),
	), nil
}

// NewSwapOutInstruction encodes the second half of a two-hop swap:
// intermediate into the destination account, spending whatever the
// swap-in recorded.
func NewSwapOutInstruction(programID solana.PublicKey, p SwapParams) (solana.Instruction, error) {
	ops, err := opcodesFor(p.Model.Kind(), p.KeyParams.Alt)
	if err != nil {
		return nil, err
	}

	keys := solana.AccountMetaSlice{
		solana.Meta(p.Source).WRITE(),
		solana.Meta(p.Destination).WRITE(),
		solana.Meta(p.Wallet).SIGNER(),
		solana.Meta(p.SwapInfo).WRITE(),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(p.FeeAccount).WRITE(),
	}
	keys = append(keys, p.Model.Keys(p.KeyParams)...)

	data := swapOutData(ops.swapOut, p.ExpectAmountOut, p.MinimumAmountOut)
	if p.KeyParams.Alt {
		data = raydiumAltSwapOutData(p.MinimumAmountOut)
	}

	return solana.NewInstruction(programID, keys, data), nil
}

// NewSwapInfoInitInstruction initializes a freshly created swap-info
// account. Both the account and its owner must sign.
func NewSwapInfoInitInstruction(programID, swapInfo, owner solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(swapInfo).SIGNER().WRITE(),
			solana.Meta(owner).SIGNER(),
		},
		[]byte{OpSwapInfoInit},
	)
}

// NewSwapInfoBindInstruction points a swap-info account at the
// intermediate token account for the upcoming swap pair.
func NewSwapInfoBindInstruction(programID, swapInfo, tokenAccount solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(swapInfo).WRITE(),
			solana.Meta(tokenAccount).WRITE(),
		},
		[]byte{OpSwapInfoBind},
	)
}
