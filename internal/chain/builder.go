// =============================
// File: internal/chain/builder.go
// =============================
package chain

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ComputeBudgetProgramID is the native compute-budget program.
var ComputeBudgetProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

const (
	setComputeUnitLimitOpcode uint8 = 2
	setComputeUnitPriceOpcode uint8 = 3
)

// TxBuilder assembles one transaction from an instruction group and its
// signers. Instruction order is preserved as added.
type TxBuilder struct {
	instructions []solana.Instruction
	signers      []solana.PrivateKey
	payer        solana.PublicKey
	units        uint32
	unitPrice    uint64
}

// NewTxBuilder creates a builder with the given fee payer. The payer's key
// must be among the signers added before Build.
func NewTxBuilder(payer solana.PublicKey) *TxBuilder {
	return &TxBuilder{payer: payer}
}

// SetComputeBudget prepends compute-budget instructions to the transaction.
func (b *TxBuilder) SetComputeBudget(units uint32, microLamportsPerUnit uint64) *TxBuilder {
	b.units = units
	b.unitPrice = microLamportsPerUnit
	return b
}

// AddInstructions appends instructions in order.
func (b *TxBuilder) AddInstructions(instructions ...solana.Instruction) *TxBuilder {
	b.instructions = append(b.instructions, instructions...)
	return b
}

// AddSigners appends signing keys.
func (b *TxBuilder) AddSigners(signers ...solana.PrivateKey) *TxBuilder {
	b.signers = append(b.signers, signers...)
	return b
}

func computeUnitLimitInstruction(units uint32) solana.Instruction {
	data := make([]byte, 5)
	data[0] = setComputeUnitLimitOpcode
	binary.LittleEndian.PutUint32(data[1:], units)
	return solana.NewInstruction(ComputeBudgetProgramID, nil, data)
}

func computeUnitPriceInstruction(microLamports uint64) solana.Instruction {
	data := make([]byte, 9)
	data[0] = setComputeUnitPriceOpcode
	binary.LittleEndian.PutUint64(data[1:], microLamports)
	return solana.NewInstruction(ComputeBudgetProgramID, nil, data)
}

// Build fetches a recent blockhash, assembles and signs the transaction.
func (b *TxBuilder) Build(ctx context.Context, client Client) (*solana.Transaction, error) {
	if len(b.instructions) == 0 {
		return nil, fmt.Errorf("no instructions provided")
	}
	if len(b.signers) == 0 {
		return nil, fmt.Errorf("no signers provided")
	}

	blockhash, err := client.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	instructions := make([]solana.Instruction, 0, len(b.instructions)+2)
	if b.units > 0 {
		instructions = append(instructions, computeUnitLimitInstruction(b.units))
	}
	if b.unitPrice > 0 {
		instructions = append(instructions, computeUnitPriceInstruction(b.unitPrice))
	}
	instructions = append(instructions, b.instructions...)

	tx, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(b.payer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	keyring := make(map[solana.PublicKey]solana.PrivateKey, len(b.signers))
	for _, signer := range b.signers {
		keyring[signer.PublicKey()] = signer
	}
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if pk, ok := keyring[key]; ok {
			return &pk
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	return tx, nil
}
