// =============================
// File: internal/protocol/constants.go
// =============================

// Package protocol is the heart of the SDK: it turns a route distribution
// from the routing service into the ordered on-chain instruction groups
// that execute it through the aggregator program.
package protocol

import "github.com/gagliardetto/solana-go"

// ChainID identifies mainnet in routing-service requests.
const ChainID = 101

// Well-known program addresses on mainnet.
var (
	// ProgramID is the aggregator program all swap instructions target.
	ProgramID = solana.MustPublicKeyFromBase58("1SoLTvbiicqXZ3MJmnTL2WYXKLYpuxwHpa4yYrVQaMZ")

	SerumProgramID           = solana.MustPublicKeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	SaberStableSwapProgramID = solana.MustPublicKeyFromBase58("SSwpkEEcbUqx4vtoEByFjSkhKdCT862DNVb52nZg1UZ")
	OrcaSwapProgramID        = solana.MustPublicKeyFromBase58("9W959DqEETiGZocYWCQPaJ6sBmUzgfxXfqGeTEdp3aQP")
	RaydiumV4ProgramID       = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	OneMoonSwapProgramID     = solana.MustPublicKeyFromBase58("1MooN32fuBBgApc8ujknKJw5sef3BVwPGgz3pto1BAh")
	TokenSwapProgramID       = solana.MustPublicKeyFromBase58("SwaPpA9LAaLfeLi3a68M4DjnLqgtticKg6CnyNwgAC8")
)

// SupportedProgramIDs lists the exchange programs routes may reference,
// in the order the routing service expects them.
func SupportedProgramIDs() []solana.PublicKey {
	return []solana.PublicKey{
		TokenSwapProgramID,
		SerumProgramID,
		SaberStableSwapProgramID,
		OrcaSwapProgramID,
		RaydiumV4ProgramID,
		OneMoonSwapProgramID,
	}
}
