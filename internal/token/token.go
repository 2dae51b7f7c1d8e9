// =============================
// File: internal/token/token.go
// =============================

// Package token wraps the SPL token program pieces the swap compiler
// needs: account decoding, associated account derivation and the handful
// of instructions around wrapped SOL.
package token

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/onesol-labs/onesol-go/internal/chain"
	"github.com/onesol-labs/onesol-go/internal/layout"
)

// AccountSpan is the serialized size of an SPL token account.
const AccountSpan = 165

// SPL token program instruction numbers used here.
const (
	instrInitializeAccount = 1
	instrCloseAccount      = 9
)

// Account is a decoded SPL token account.
type Account struct {
	Address solana.PublicKey

	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64

	Delegate        *solana.PublicKey
	State           uint8
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  *solana.PublicKey
}

// DecodeAccount parses a token account record. The buffer must be exactly
// AccountSpan bytes.
func DecodeAccount(data []byte) (*Account, error) {
	r := layout.NewReader(data)
	r.ExpectSize(AccountSpan)

	a := &Account{}
	a.Mint = r.Pubkey()
	a.Owner = r.Pubkey()
	a.Amount = r.U64()

	delegateTag := r.U32()
	delegate := r.Pubkey()
	if delegateTag == 1 {
		a.Delegate = &delegate
	}

	a.State = r.U8()

	nativeTag := r.U32()
	native := r.U64()
	if nativeTag == 1 {
		a.IsNative = &native
	}

	a.DelegatedAmount = r.U64()

	closeTag := r.U32()
	closeAuthority := r.Pubkey()
	if closeTag == 1 {
		a.CloseAuthority = &closeAuthority
	}

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("token account: %w", err)
	}
	return a, nil
}

// EncodeAccount serializes the record back to AccountSpan bytes.
func EncodeAccount(a *Account) ([]byte, error) {
	w := layout.NewWriter(AccountSpan)
	w.Pubkey(a.Mint)
	w.Pubkey(a.Owner)
	w.U64(a.Amount)
	if a.Delegate != nil {
		w.U32(1)
		w.Pubkey(*a.Delegate)
	} else {
		w.U32(0)
		w.Pubkey(solana.PublicKey{})
	}
	w.U8(a.State)
	if a.IsNative != nil {
		w.U32(1)
		w.U64(*a.IsNative)
	} else {
		w.U32(0)
		w.U64(0)
	}
	w.U64(a.DelegatedAmount)
	if a.CloseAuthority != nil {
		w.U32(1)
		w.Pubkey(*a.CloseAuthority)
	} else {
		w.U32(0)
		w.Pubkey(solana.PublicKey{})
	}
	return w.Bytes()
}

// FetchAccount loads and decodes the token account at address.
func FetchAccount(ctx context.Context, cl chain.Client, address solana.PublicKey) (*Account, error) {
	data, err := cl.GetAccountData(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("fetch token account %s: %w", address, err)
	}
	acc, err := DecodeAccount(data)
	if err != nil {
		return nil, fmt.Errorf("fetch token account %s: %w", address, err)
	}
	acc.Address = address
	return acc, nil
}

// AssociatedAddress derives the associated token account for a wallet and
// mint.
func AssociatedAddress(wallet, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive associated token address: %w", err)
	}
	return addr, nil
}

// NewCreateAssociatedAccountInstruction builds the associated-token
// program's create instruction. The instruction carries no data.
func NewCreateAssociatedAccountInstruction(payer, wallet, mint, associated solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		solana.SPLAssociatedTokenAccountProgramID,
		solana.AccountMetaSlice{
			solana.Meta(payer).SIGNER().WRITE(),
			solana.Meta(associated).WRITE(),
			solana.Meta(wallet),
			solana.Meta(mint),
			solana.Meta(solana.SystemProgramID),
			solana.Meta(solana.TokenProgramID),
			solana.Meta(solana.SysVarRentPubkey),
		},
		nil,
	)
}

// NewInitAccountInstruction builds the token program's InitializeAccount
// instruction.
func NewInitAccountInstruction(mint, account, owner solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		solana.TokenProgramID,
		solana.AccountMetaSlice{
			solana.Meta(account).WRITE(),
			solana.Meta(mint),
			solana.Meta(owner),
			solana.Meta(solana.SysVarRentPubkey),
		},
		[]byte{instrInitializeAccount},
	)
}

// NewCloseAccountInstruction builds the token program's CloseAccount
// instruction, refunding the account's lamports to destination.
func NewCloseAccountInstruction(account, destination, owner solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		solana.TokenProgramID,
		solana.AccountMetaSlice{
			solana.Meta(account).WRITE(),
			solana.Meta(destination).WRITE(),
			solana.Meta(owner).SIGNER(),
		},
		[]byte{instrCloseAccount},
	)
}

// WrappedNative is a freshly allocated wrapped-SOL account with the
// instructions that create it and the keypair that must co-sign.
type WrappedNative struct {
	Address      solana.PublicKey
	Signer       solana.PrivateKey
	Instructions []solana.Instruction
}

// CreateWrappedNative allocates a throwaway wrapped-SOL account funded
// with amount lamports on top of the rent-exempt minimum. The caller is
// expected to close the account once the swap settles.
func CreateWrappedNative(ctx context.Context, cl chain.Client, owner, payer solana.PublicKey, amount uint64) (*WrappedNative, error) {
	rent, err := cl.GetMinimumBalanceForRentExemption(ctx, AccountSpan)
	if err != nil {
		return nil, fmt.Errorf("create wrapped native: rent exemption: %w", err)
	}

	account := solana.NewWallet()
	address := account.PublicKey()

	instructions := []solana.Instruction{
		system.NewCreateAccountInstruction(
			rent,
			AccountSpan,
			solana.TokenProgramID,
			payer,
			address,
		).Build(),
	}
	if amount > 0 {
		instructions = append(instructions,
			system.NewTransferInstruction(amount, payer, address).Build())
	}
	instructions = append(instructions,
		NewInitAccountInstruction(solana.WrappedSol, address, owner))

	return &WrappedNative{
		Address:      address,
		Signer:       account.PrivateKey,
		Instructions: instructions,
	}, nil
}
