// =============================
// File: internal/protocol/compiler.go
// =============================
package protocol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/onesol-labs/onesol-go/internal/exchange"
	"github.com/onesol-labs/onesol-go/internal/token"
)

// group is one ordered instruction list with the signers it needs.
type group struct {
	instructions []solana.Instruction
	signers      []solana.PrivateKey
}

func (g *group) add(ixs ...solana.Instruction) {
	g.instructions = append(g.instructions, ixs...)
}

func (g *group) sign(keys ...solana.PrivateKey) {
	g.signers = append(g.signers, keys...)
}

func (g *group) merge(other *group) {
	g.add(other.instructions...)
	g.sign(other.signers...)
}

// Compiled is the full output of Compose: three ordered instruction
// groups with their signer sets. Setup must land before Swap; Cleanup is
// best-effort. A direct route fills only Setup and Cleanup.
type Compiled struct {
	Setup        []solana.Instruction
	SetupSigners []solana.PrivateKey

	Swap        []solana.Instruction
	SwapSigners []solana.PrivateKey

	Cleanup        []solana.Instruction
	CleanupSigners []solana.PrivateKey
}

// ComposeParams is the caller input to Compose.
type ComposeParams struct {
	Distribution *RawDistribution

	// Wallet owns every account the swap touches and signs the
	// resulting transactions.
	Wallet solana.PublicKey

	// SourceTokenAccount holds the input tokens. Its mint must match
	// the distribution's source mint. Ignored when the source mint is
	// wrapped SOL, where a throwaway account is synthesized instead.
	SourceTokenAccount solana.PublicKey

	// DestinationTokenAccount receives the output tokens. When zero the
	// wallet's associated account is used, created in setup if absent.
	// Ignored when the destination mint is wrapped SOL.
	DestinationTokenAccount solana.PublicKey

	// Slippage is the tolerated output shortfall; DefaultSlippage when
	// zero.
	Slippage float64

	// RaydiumAltShape selects the alternate raydium key and payload
	// shape for indirect legs.
	RaydiumAltShape bool
}

// Compose turns one route distribution into instruction groups. The
// result is all-or-nothing: on error the returned groups must be
// discarded, never submitted.
func (p *Protocol) Compose(ctx context.Context, params ComposeParams) (*Compiled, error) {
	d := params.Distribution
	if d == nil {
		return nil, fmt.Errorf("%w: distribution is required", ErrValidation)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if params.Wallet.IsZero() {
		return nil, fmt.Errorf("%w: wallet is required", ErrValidation)
	}

	slippage := params.Slippage
	if slippage == 0 {
		slippage = DefaultSlippage
	}

	sourceMint, _ := d.SourceMint()
	destinationMint, _ := d.DestinationMint()

	feeAccount, ok := p.FeeAccount(destinationMint)
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrNoFeeAccount, destinationMint)
	}

	setup := &group{}
	swap := &group{}
	cleanup := &group{}

	sourceAccount := params.SourceTokenAccount
	if sourceMint.Equals(solana.WrappedSol) {
		wrapped, err := token.CreateWrappedNative(ctx, p.client, params.Wallet, params.Wallet, d.AmountIn)
		if err != nil {
			return nil, err
		}
		setup.add(wrapped.Instructions...)
		setup.sign(wrapped.Signer)
		cleanup.add(token.NewCloseAccountInstruction(wrapped.Address, params.Wallet, params.Wallet))
		sourceAccount = wrapped.Address
	} else if sourceAccount.IsZero() {
		return nil, fmt.Errorf("%w: source token account is required", ErrValidation)
	} else {
		if err := p.checkAccountMint(ctx, "source", sourceAccount, sourceMint); err != nil {
			return nil, err
		}
	}

	destinationAccount := params.DestinationTokenAccount
	if destinationAccount.IsZero() || destinationMint.Equals(solana.WrappedSol) {
		var err error
		destinationAccount, err = p.findOrCreateTokenAccount(ctx, params.Wallet, destinationMint, setup, cleanup)
		if err != nil {
			return nil, err
		}
	} else {
		if err := p.checkAccountMint(ctx, "destination", destinationAccount, destinationMint); err != nil {
			return nil, err
		}
	}

	p.logger.Debug("composing route",
		zap.Int("hops", len(d.Routes)),
		zap.Stringer("source_mint", sourceMint),
		zap.Stringer("destination_mint", destinationMint),
		zap.Uint64("amount_in", d.AmountIn))

	var err error
	switch len(d.Routes) {
	case 1:
		if params.RaydiumAltShape {
			err = fmt.Errorf("%w: alternate raydium shape requires an indirect route", ErrUnsupportedRoute)
			break
		}
		err = p.compileDirect(ctx, d, params.Wallet, sourceAccount, destinationAccount, feeAccount, slippage, setup)
	case 2:
		err = p.compileIndirect(ctx, d, params.Wallet, sourceAccount, destinationAccount, feeAccount, slippage, params.RaydiumAltShape, setup, swap, cleanup)
	default:
		err = fmt.Errorf("%w: %d hops", ErrUnsupportedRoute, len(d.Routes))
	}
	if err != nil {
		return nil, err
	}

	return &Compiled{
		Setup:          setup.instructions,
		SetupSigners:   setup.signers,
		Swap:           swap.instructions,
		SwapSigners:    swap.signers,
		Cleanup:        cleanup.instructions,
		CleanupSigners: cleanup.signers,
	}, nil
}

// checkAccountMint fetches a caller-supplied token account and verifies
// it holds the mint the route expects.
func (p *Protocol) checkAccountMint(ctx context.Context, role string, address, mint solana.PublicKey) error {
	account, err := token.FetchAccount(ctx, p.client, address)
	if err != nil {
		return fmt.Errorf("%s token account %s: %w", role, address, err)
	}
	if !account.Mint.Equals(mint) {
		return fmt.Errorf("%w: %s token account %s holds mint %s, route expects %s",
			ErrValidation, role, address, account.Mint, mint)
	}
	return nil
}

// findOrCreateTokenAccount resolves the wallet's token account for mint.
// Wrapped SOL always gets a synthesized throwaway account with a close in
// cleanup; other mints use the associated account, created in setup when
// absent.
func (p *Protocol) findOrCreateTokenAccount(ctx context.Context, wallet, mint solana.PublicKey, setup, cleanup *group) (solana.PublicKey, error) {
	if mint.Equals(solana.WrappedSol) {
		wrapped, err := token.CreateWrappedNative(ctx, p.client, wallet, wallet, 0)
		if err != nil {
			return solana.PublicKey{}, err
		}
		setup.add(wrapped.Instructions...)
		setup.sign(wrapped.Signer)
		cleanup.add(token.NewCloseAccountInstruction(wrapped.Address, wallet, wallet))
		return wrapped.Address, nil
	}

	associated, err := token.AssociatedAddress(wallet, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}

	_, err = p.client.GetAccountData(ctx, associated)
	if err == nil {
		return associated, nil
	}
	if !isNotFound(err) {
		return solana.PublicKey{}, fmt.Errorf("resolve token account for mint %s: %w", mint, err)
	}

	setup.add(token.NewCreateAssociatedAccountInstruction(wallet, wallet, mint, associated))
	return associated, nil
}

// compileDirect fans out over the single hop's legs, loading each model
// concurrently, and appends the encoded swaps to setup in leg order.
func (p *Protocol) compileDirect(ctx context.Context, d *RawDistribution, wallet, sourceAccount, destinationAccount, feeAccount solana.PublicKey, slippage float64, setup *group) error {
	legs := d.Routes[0]
	results := make([]*group, len(legs))

	eg, egCtx := errgroup.WithContext(ctx)
	for i := range legs {
		eg.Go(func() error {
			leg := &legs[i]
			lg := &group{}
			base := SwapParams{
				Source:      sourceAccount,
				Destination: destinationAccount,
				Wallet:      wallet,
				FeeAccount:  feeAccount,
			}
			if err := p.compileLeg(egCtx, leg, shapeDirect, base, wallet, slippage, false, lg, lg); err != nil {
				return fmt.Errorf("hop 1 leg %d: %w", i+1, err)
			}
			results[i] = lg
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, lg := range results {
		setup.merge(lg)
	}
	return nil
}

// compileIndirect builds the two-hop plan: intermediate account and
// swap-info resolution in setup, then swap-in legs followed by swap-out
// legs in the swap group.
func (p *Protocol) compileIndirect(ctx context.Context, d *RawDistribution, wallet, sourceAccount, destinationAccount, feeAccount solana.PublicKey, slippage float64, raydiumAlt bool, setup, swap, cleanup *group) error {
	middleMint, err := solana.PublicKeyFromBase58(d.Routes[0][0].DestinationTokenMint.Pubkey)
	if err != nil {
		return fmt.Errorf("%w: bad intermediate mint: %v", ErrValidation, err)
	}

	middleAccount, err := p.findOrCreateTokenAccount(ctx, wallet, middleMint, setup, cleanup)
	if err != nil {
		return err
	}

	swapInfo, err := p.findOrCreateSwapInfo(ctx, wallet, setup)
	if err != nil {
		return err
	}
	setup.add(NewSwapInfoBindInstruction(p.programID, swapInfo, middleAccount))

	for i := range d.Routes[0] {
		base := SwapParams{
			Source:      sourceAccount,
			Destination: middleAccount,
			Wallet:      wallet,
			SwapInfo:    swapInfo,
		}
		if err := p.compileLeg(ctx, &d.Routes[0][i], shapeIn, base, wallet, slippage, raydiumAlt, setup, swap); err != nil {
			return fmt.Errorf("hop 1 leg %d: %w", i+1, err)
		}
	}

	for i := range d.Routes[1] {
		base := SwapParams{
			Source:      middleAccount,
			Destination: destinationAccount,
			Wallet:      wallet,
			FeeAccount:  feeAccount,
			SwapInfo:    swapInfo,
		}
		if err := p.compileLeg(ctx, &d.Routes[1][i], shapeOut, base, wallet, slippage, raydiumAlt, setup, swap); err != nil {
			return fmt.Errorf("hop 2 leg %d: %w", i+1, err)
		}
	}
	return nil
}

type legShape int

const (
	shapeDirect legShape = iota
	shapeIn
	shapeOut
)

// compileLeg loads the leg's exchange model, resolves its open-orders
// account for order-book legs (creation into setupG), and appends the
// encoded swap to outG.
func (p *Protocol) compileLeg(ctx context.Context, leg *RawRoute, shape legShape, base SwapParams, wallet solana.PublicKey, slippage float64, raydiumAlt bool, setupG, outG *group) error {
	kind, err := leg.Kind()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	address, err := leg.Address()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	programID, err := leg.Program()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	legSourceMint, err := solana.PublicKeyFromBase58(leg.SourceTokenMint.Pubkey)
	if err != nil {
		return fmt.Errorf("%w: bad leg source mint: %v", ErrValidation, err)
	}

	model, err := exchange.Load(ctx, p.client, kind, address, programID)
	if err != nil {
		return err
	}

	keyParams := exchange.KeyParams{SourceMint: legSourceMint}
	if kind == exchange.KindSerum {
		market, _ := exchange.Market(model)
		openOrders, err := p.findOrCreateOpenOrders(ctx, market, wallet, setupG)
		if err != nil {
			return err
		}
		keyParams.OpenOrders = openOrders
	}
	if kind == exchange.KindRaydium {
		keyParams.Alt = raydiumAlt
	}

	params := base
	params.Model = model
	params.KeyParams = keyParams
	params.AmountIn = leg.AmountIn
	params.ExpectAmountOut = leg.AmountOut
	params.MinimumAmountOut = MinimumAmountOut(leg.AmountOut, slippage)

	var ix solana.Instruction
	switch shape {
	case shapeDirect:
		ix, err = NewDirectSwapInstruction(p.programID, params)
	case shapeIn:
		ix, err = NewSwapInInstruction(p.programID, params)
	case shapeOut:
		ix, err = NewSwapOutInstruction(p.programID, params)
	default:
		err = fmt.Errorf("%w: unknown leg shape %d", ErrUnsupportedRoute, shape)
	}
	if err != nil {
		return err
	}

	outG.add(ix)
	return nil
}
