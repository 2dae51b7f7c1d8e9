package token

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onesol-labs/onesol-go/internal/chain"
	"github.com/onesol-labs/onesol-go/internal/layout"
)

type stubClient struct {
	chain.Client
	accounts map[solana.PublicKey][]byte
	rent     uint64
}

func (s *stubClient) GetAccountData(_ context.Context, address solana.PublicKey) ([]byte, error) {
	data, ok := s.accounts[address]
	if !ok {
		return nil, chain.ErrAccountNotFound
	}
	return data, nil
}

func (s *stubClient) GetMinimumBalanceForRentExemption(context.Context, uint64) (uint64, error) {
	return s.rent, nil
}

func TestAccountRoundTrip(t *testing.T) {
	delegate := solana.NewWallet().PublicKey()
	closeAuthority := solana.NewWallet().PublicKey()
	native := uint64(2039280)

	want := &Account{
		Mint:            solana.WrappedSol,
		Owner:           solana.NewWallet().PublicKey(),
		Amount:          1_000_000,
		Delegate:        &delegate,
		State:           1,
		IsNative:        &native,
		DelegatedAmount: 55,
		CloseAuthority:  &closeAuthority,
	}

	data, err := EncodeAccount(want)
	require.NoError(t, err)
	require.Len(t, data, AccountSpan)

	got, err := DecodeAccount(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAccountRoundTripWithoutOptionals(t *testing.T) {
	want := &Account{
		Mint:   solana.NewWallet().PublicKey(),
		Owner:  solana.NewWallet().PublicKey(),
		Amount: 7,
		State:  1,
	}

	data, err := EncodeAccount(want)
	require.NoError(t, err)

	got, err := DecodeAccount(data)
	require.NoError(t, err)
	assert.Nil(t, got.Delegate)
	assert.Nil(t, got.IsNative)
	assert.Nil(t, got.CloseAuthority)
	assert.Equal(t, want, got)
}

func TestDecodeAccountWrongSize(t *testing.T) {
	_, err := DecodeAccount(make([]byte, AccountSpan+1))
	assert.ErrorIs(t, err, layout.ErrInvalidFormat)
}

func TestFetchAccount(t *testing.T) {
	address := solana.NewWallet().PublicKey()
	data, err := EncodeAccount(&Account{
		Mint:   solana.NewWallet().PublicKey(),
		Owner:  solana.NewWallet().PublicKey(),
		Amount: 3,
		State:  1,
	})
	require.NoError(t, err)

	cl := &stubClient{accounts: map[solana.PublicKey][]byte{address: data}}
	acc, err := FetchAccount(context.Background(), cl, address)
	require.NoError(t, err)
	assert.Equal(t, address, acc.Address)
	assert.Equal(t, uint64(3), acc.Amount)

	_, err = FetchAccount(context.Background(), cl, solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, chain.ErrAccountNotFound)
}

func TestCreateAssociatedAccountInstruction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	wallet := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	associated, err := AssociatedAddress(wallet, mint)
	require.NoError(t, err)

	ix := NewCreateAssociatedAccountInstruction(payer, wallet, mint, associated)
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, ix.ProgramID())

	accounts := ix.Accounts()
	require.Len(t, accounts, 7)
	assert.Equal(t, payer, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.Equal(t, associated, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsWritable)
}

func TestCloseAccountInstruction(t *testing.T) {
	account := solana.NewWallet().PublicKey()
	destination := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	ix := NewCloseAccountInstruction(account, destination, owner)
	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, data)

	accounts := ix.Accounts()
	require.Len(t, accounts, 3)
	assert.Equal(t, owner, accounts[2].PublicKey)
	assert.True(t, accounts[2].IsSigner)
}

func TestCreateWrappedNative(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	cl := &stubClient{rent: 2039280}

	wrapped, err := CreateWrappedNative(context.Background(), cl, owner, owner, 5_000_000)
	require.NoError(t, err)
	assert.Equal(t, wrapped.Address, wrapped.Signer.PublicKey())

	// create, fund, initialize
	require.Len(t, wrapped.Instructions, 3)
	assert.Equal(t, solana.SystemProgramID, wrapped.Instructions[0].ProgramID())
	assert.Equal(t, solana.SystemProgramID, wrapped.Instructions[1].ProgramID())
	assert.Equal(t, solana.TokenProgramID, wrapped.Instructions[2].ProgramID())

	initData, err := wrapped.Instructions[2].Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, initData)
	assert.Equal(t, solana.WrappedSol, wrapped.Instructions[2].Accounts()[1].PublicKey)
}

func TestCreateWrappedNativeZeroAmountSkipsTransfer(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	cl := &stubClient{rent: 2039280}

	wrapped, err := CreateWrappedNative(context.Background(), cl, owner, owner, 0)
	require.NoError(t, err)
	require.Len(t, wrapped.Instructions, 2)
}
