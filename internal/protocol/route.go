// =============================
// File: internal/protocol/route.go
// =============================
package protocol

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"

	"github.com/onesol-labs/onesol-go/internal/exchange"
)

// DefaultSlippage is applied when the caller passes zero.
const DefaultSlippage = 0.005

// TokenMint identifies an asset in routing-service payloads.
type TokenMint struct {
	Decimals uint8  `json:"decimals"`
	Pubkey   string `json:"pubkey"`
}

// RawRoute is one leg of a hop: a single pool or market trade.
type RawRoute struct {
	SourceTokenMint      TokenMint `json:"source_token_mint"`
	DestinationTokenMint TokenMint `json:"destination_token_mint"`
	AmountIn             uint64    `json:"amount_in"`
	AmountOut            uint64    `json:"amount_out"`
	ExchangerFlag        string    `json:"exchanger_flag"`
	Pubkey               string    `json:"pubkey"`
	ProgramID            string    `json:"program_id"`
}

// Kind resolves the leg's exchange family from its flag.
func (r *RawRoute) Kind() (exchange.Kind, error) {
	return exchange.ParseFlag(r.ExchangerFlag)
}

// Address returns the leg's pool or market address.
func (r *RawRoute) Address() (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(r.Pubkey)
}

// Program returns the leg's exchange program.
func (r *RawRoute) Program() (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(r.ProgramID)
}

// Validate checks the leg is self-consistent before any network calls.
func (r *RawRoute) Validate() error {
	if _, err := r.Kind(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, err := r.Address(); err != nil {
		return fmt.Errorf("%w: bad leg pubkey %q: %v", ErrValidation, r.Pubkey, err)
	}
	if _, err := r.Program(); err != nil {
		return fmt.Errorf("%w: bad leg program id %q: %v", ErrValidation, r.ProgramID, err)
	}
	if r.AmountIn == 0 {
		return fmt.Errorf("%w: leg amount_in is zero", ErrValidation)
	}
	return nil
}

// RawDistribution is one routing-service proposal: an ordered list of
// hops, each hop a list of parallel legs splitting volume across pools.
type RawDistribution struct {
	Routes  [][]RawRoute `json:"routes"`
	SplitTx bool         `json:"split_tx"`

	SourceTokenMint      TokenMint `json:"source_token_mint"`
	DestinationTokenMint TokenMint `json:"destination_token_mint"`
	AmountIn             uint64    `json:"amount_in"`
	AmountOut            uint64    `json:"amount_out"`
	ExchangerFlag        string    `json:"exchanger_flag"`
}

// SourceMint returns the distribution's input mint.
func (d *RawDistribution) SourceMint() (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(d.SourceTokenMint.Pubkey)
}

// DestinationMint returns the distribution's output mint.
func (d *RawDistribution) DestinationMint() (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(d.DestinationTokenMint.Pubkey)
}

// Validate checks the route shape and every leg. One or two hops are
// expressible; anything else is ErrUnsupportedRoute.
func (d *RawDistribution) Validate() error {
	if len(d.Routes) == 0 {
		return fmt.Errorf("%w: no route found", ErrValidation)
	}
	if len(d.Routes) > 2 {
		return fmt.Errorf("%w: %d hops", ErrUnsupportedRoute, len(d.Routes))
	}
	if _, err := d.SourceMint(); err != nil {
		return fmt.Errorf("%w: bad source mint %q: %v", ErrValidation, d.SourceTokenMint.Pubkey, err)
	}
	if _, err := d.DestinationMint(); err != nil {
		return fmt.Errorf("%w: bad destination mint %q: %v", ErrValidation, d.DestinationTokenMint.Pubkey, err)
	}

	for i, hop := range d.Routes {
		if len(hop) == 0 {
			return fmt.Errorf("%w: hop %d has no legs", ErrValidation, i+1)
		}
		for j := range hop {
			if err := hop[j].Validate(); err != nil {
				return fmt.Errorf("hop %d leg %d: %w", i+1, j+1, err)
			}
		}
	}

	if len(d.Routes) == 2 {
		middle := d.Routes[0][0].DestinationTokenMint.Pubkey
		for j := range d.Routes[0] {
			if d.Routes[0][j].DestinationTokenMint.Pubkey != middle {
				return fmt.Errorf("%w: hop 1 legs disagree on intermediate mint", ErrValidation)
			}
		}
		for j := range d.Routes[1] {
			if d.Routes[1][j].SourceTokenMint.Pubkey != middle {
				return fmt.Errorf("%w: hop 2 leg does not start from intermediate mint", ErrValidation)
			}
		}
	}
	return nil
}

// MinimumAmountOut applies slippage tolerance to an expected output,
// rounding up so the bound never understates the quote.
func MinimumAmountOut(expectAmountOut uint64, slippage float64) uint64 {
	if slippage <= 0 {
		return expectAmountOut
	}
	return uint64(math.Ceil(float64(expectAmountOut) * (1 - slippage)))
}
