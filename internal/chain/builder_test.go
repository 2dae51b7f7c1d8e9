package chain

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	Client
	blockhash solana.Hash
}

func (s *stubClient) GetLatestBlockhash(context.Context) (solana.Hash, error) {
	return s.blockhash, nil
}

func memoInstruction(signer solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		solana.MemoProgramID,
		solana.AccountMetaSlice{solana.Meta(signer).SIGNER().WRITE()},
		[]byte("test"),
	)
}

func TestBuildSignsWithKeyring(t *testing.T) {
	payer := solana.NewWallet()
	cl := &stubClient{blockhash: solana.Hash{1, 2, 3}}

	tx, err := NewTxBuilder(payer.PublicKey()).
		AddInstructions(memoInstruction(payer.PublicKey())).
		AddSigners(payer.PrivateKey).
		Build(context.Background(), cl)
	require.NoError(t, err)

	assert.Equal(t, cl.blockhash, tx.Message.RecentBlockhash)
	assert.Equal(t, payer.PublicKey(), tx.Message.AccountKeys[0])
	require.Len(t, tx.Signatures, 1)
	require.NoError(t, tx.VerifySignatures())
}

func TestBuildPrependsComputeBudget(t *testing.T) {
	payer := solana.NewWallet()
	cl := &stubClient{}

	tx, err := NewTxBuilder(payer.PublicKey()).
		SetComputeBudget(400000, 1000).
		AddInstructions(memoInstruction(payer.PublicKey())).
		AddSigners(payer.PrivateKey).
		Build(context.Background(), cl)
	require.NoError(t, err)

	require.Len(t, tx.Message.Instructions, 3)

	limitIx := tx.Message.Instructions[0]
	program, err := tx.Message.Program(limitIx.ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, ComputeBudgetProgramID, program)
	assert.Equal(t, setComputeUnitLimitOpcode, limitIx.Data[0])

	priceIx := tx.Message.Instructions[1]
	assert.Equal(t, setComputeUnitPriceOpcode, priceIx.Data[0])
}

func TestBuildRequiresInstructionsAndSigners(t *testing.T) {
	payer := solana.NewWallet()
	cl := &stubClient{}

	_, err := NewTxBuilder(payer.PublicKey()).
		AddSigners(payer.PrivateKey).
		Build(context.Background(), cl)
	assert.Error(t, err)

	_, err = NewTxBuilder(payer.PublicKey()).
		AddInstructions(memoInstruction(payer.PublicKey())).
		Build(context.Background(), cl)
	assert.Error(t, err)
}
