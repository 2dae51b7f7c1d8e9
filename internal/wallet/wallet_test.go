package wallet

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onesol-labs/onesol-go/internal/token"
)

func TestNewFromBase58(t *testing.T) {
	keypair := solana.NewWallet()

	w, err := New(keypair.PrivateKey.String())
	require.NoError(t, err)
	assert.Equal(t, keypair.PublicKey(), w.PublicKey)
	assert.Equal(t, keypair.PrivateKey, w.PrivateKey)
}

func TestNewRejectsGarbage(t *testing.T) {
	_, err := New("not-a-key")
	assert.Error(t, err)

	// valid base58 but wrong length
	_, err = New(solana.NewWallet().PublicKey().String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "length")
}

func TestAssociatedTokenAddressCached(t *testing.T) {
	w, err := New(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)

	mint := solana.NewWallet().PublicKey()
	want, err := token.AssociatedAddress(w.PublicKey, mint)
	require.NoError(t, err)

	got, err := w.AssociatedTokenAddress(mint)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	again, err := w.AssociatedTokenAddress(mint)
	require.NoError(t, err)
	assert.Equal(t, want, again)
}

func TestSignTransactionWithExtraSigners(t *testing.T) {
	w, err := New(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)
	extra := solana.NewWallet()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(
			solana.MemoProgramID,
			solana.AccountMetaSlice{
				solana.Meta(w.PublicKey).SIGNER().WRITE(),
				solana.Meta(extra.PublicKey()).SIGNER(),
			},
			[]byte("test"),
		)},
		solana.Hash{},
		solana.TransactionPayer(w.PublicKey),
	)
	require.NoError(t, err)

	require.NoError(t, w.SignTransaction(tx, extra.PrivateKey))
	assert.Len(t, tx.Signatures, 2)
	require.NoError(t, tx.VerifySignatures())
}

func TestSignTransactionMissingSigner(t *testing.T) {
	w, err := New(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)
	stranger := solana.NewWallet()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(
			solana.MemoProgramID,
			solana.AccountMetaSlice{
				solana.Meta(w.PublicKey).SIGNER().WRITE(),
				solana.Meta(stranger.PublicKey()).SIGNER(),
			},
			[]byte("test"),
		)},
		solana.Hash{},
		solana.TransactionPayer(w.PublicKey),
	)
	require.NoError(t, err)

	assert.Error(t, w.SignTransaction(tx))
}
