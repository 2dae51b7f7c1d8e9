// =============================
// File: internal/exchange/exchange.go
// =============================

// Package exchange dispatches over the exchange families the aggregator
// can route through. Each family has its own account layout and key
// order, modeled in a sub-package; this package maps router flag strings
// to the right loader and presents the loaded state behind one interface.
package exchange

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/onesol-labs/onesol-go/internal/chain"
	"github.com/onesol-labs/onesol-go/internal/exchange/raydium"
	"github.com/onesol-labs/onesol-go/internal/exchange/saber"
	"github.com/onesol-labs/onesol-go/internal/exchange/serum"
	"github.com/onesol-labs/onesol-go/internal/exchange/tokenswap"
)

// Kind identifies an exchange family.
type Kind uint8

const (
	KindTokenSwap Kind = iota + 1
	KindSerum
	KindSaber
	KindRaydium
)

// Flag strings the router uses in route legs. Orca and OneMoon are
// token-swap forks and share the token-swap family.
const (
	FlagSplTokenSwap    = "SplTokenSwap"
	FlagOrcaSwap        = "OrcaSwap"
	FlagOneMoon         = "OneMoon"
	FlagSerumDex        = "SerumDex"
	FlagSaberStableSwap = "SaberStableSwap"
	FlagRaydium         = "Raydium"
)

// ParseFlag maps a router exchanger flag to its family.
func ParseFlag(flag string) (Kind, error) {
	switch flag {
	case FlagSplTokenSwap, FlagOrcaSwap, FlagOneMoon:
		return KindTokenSwap, nil
	case FlagSerumDex:
		return KindSerum, nil
	case FlagSaberStableSwap:
		return KindSaber, nil
	case FlagRaydium:
		return KindRaydium, nil
	}
	return 0, fmt.Errorf("unknown exchanger flag %q", flag)
}

func (k Kind) String() string {
	switch k {
	case KindTokenSwap:
		return "token-swap"
	case KindSerum:
		return "serum"
	case KindSaber:
		return "saber"
	case KindRaydium:
		return "raydium"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// KeyParams carries the per-trade inputs a family may need when laying
// out its account metas. Families ignore the fields they don't use.
type KeyParams struct {
	// SourceMint is the mint being sold; saber picks its admin fee
	// account by it.
	SourceMint solana.PublicKey

	// OpenOrders is the trader's open-orders account; serum markets
	// require it.
	OpenOrders solana.PublicKey

	// Alt selects the alternate raydium key shape without target orders.
	Alt bool
}

// Model is loaded exchange state ready to emit its account metas.
type Model interface {
	Kind() Kind
	Address() solana.PublicKey
	Keys(p KeyParams) []*solana.AccountMeta
}

// Load fetches and decodes the account at address as the given family's
// pool or market state.
func Load(ctx context.Context, cl chain.Client, kind Kind, address, programID solana.PublicKey) (Model, error) {
	switch kind {
	case KindTokenSwap:
		info, err := tokenswap.Load(ctx, cl, address, programID)
		if err != nil {
			return nil, err
		}
		return tokenSwapModel{info}, nil
	case KindSerum:
		info, err := serum.Load(ctx, cl, address, programID)
		if err != nil {
			return nil, err
		}
		return serumModel{info}, nil
	case KindSaber:
		info, err := saber.Load(ctx, cl, address, programID)
		if err != nil {
			return nil, err
		}
		return saberModel{info}, nil
	case KindRaydium:
		info, err := raydium.Load(ctx, cl, address, programID)
		if err != nil {
			return nil, err
		}
		return raydiumModel{info}, nil
	}
	return nil, fmt.Errorf("load exchange %s: unknown kind %s", address, kind)
}

type tokenSwapModel struct {
	info *tokenswap.PoolInfo
}

func (m tokenSwapModel) Kind() Kind                           { return KindTokenSwap }
func (m tokenSwapModel) Address() solana.PublicKey            { return m.info.Address }
func (m tokenSwapModel) Keys(KeyParams) []*solana.AccountMeta { return m.info.Keys() }

type serumModel struct {
	info *serum.MarketInfo
}

func (m serumModel) Kind() Kind                { return KindSerum }
func (m serumModel) Address() solana.PublicKey { return m.info.Market }
func (m serumModel) Keys(p KeyParams) []*solana.AccountMeta {
	return m.info.Keys(p.OpenOrders)
}

type saberModel struct {
	info *saber.PoolInfo
}

func (m saberModel) Kind() Kind                { return KindSaber }
func (m saberModel) Address() solana.PublicKey { return m.info.Address }
func (m saberModel) Keys(p KeyParams) []*solana.AccountMeta {
	return m.info.Keys(p.SourceMint)
}

type raydiumModel struct {
	info *raydium.AmmInfo
}

func (m raydiumModel) Kind() Kind                { return KindRaydium }
func (m raydiumModel) Address() solana.PublicKey { return m.info.Address }
func (m raydiumModel) Keys(p KeyParams) []*solana.AccountMeta {
	if p.Alt {
		return m.info.Keys2()
	}
	return m.info.Keys()
}

// Market exposes the serum market behind a model when one exists: serum
// markets themselves and raydium pools, which settle through one.
func Market(m Model) (solana.PublicKey, bool) {
	switch v := m.(type) {
	case serumModel:
		return v.info.Market, true
	case raydiumModel:
		return v.info.SerumMarket, true
	}
	return solana.PublicKey{}, false
}
