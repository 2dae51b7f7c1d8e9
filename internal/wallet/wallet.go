// ==================================
// File: internal/wallet/wallet.go
// ==================================

// Package wallet holds the signing key for swap transactions.
package wallet

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/onesol-labs/onesol-go/internal/token"
)

// Wallet is a Solana keypair with a small cache of derived associated
// token addresses.
type Wallet struct {
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey

	ataCache map[solana.PublicKey]solana.PublicKey
}

// New builds a wallet from a base58-encoded 64-byte private key.
func New(privateKeyBase58 string) (*Wallet, error) {
	privateKeyBytes, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(privateKeyBytes) != 64 {
		return nil, fmt.Errorf("invalid private key length: expected 64 bytes, got %d", len(privateKeyBytes))
	}
	privateKey := solana.PrivateKey(privateKeyBytes)
	return &Wallet{
		PrivateKey: privateKey,
		PublicKey:  privateKey.PublicKey(),
		ataCache:   make(map[solana.PublicKey]solana.PublicKey),
	}, nil
}

// AssociatedTokenAddress derives and caches the wallet's associated
// account for a mint.
func (w *Wallet) AssociatedTokenAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	if addr, ok := w.ataCache[mint]; ok {
		return addr, nil
	}
	addr, err := token.AssociatedAddress(w.PublicKey, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	w.ataCache[mint] = addr
	return addr, nil
}

// SignTransaction signs tx with the wallet key and any extra signers the
// compiled instruction groups require.
func (w *Wallet) SignTransaction(tx *solana.Transaction, extra ...solana.PrivateKey) error {
	keyring := map[solana.PublicKey]solana.PrivateKey{
		w.PublicKey: w.PrivateKey,
	}
	for _, key := range extra {
		keyring[key.PublicKey()] = key
	}
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if pk, ok := keyring[key]; ok {
			return &pk
		}
		return nil
	})
	return err
}
