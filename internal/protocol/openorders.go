// =============================
// File: internal/protocol/openorders.go
// =============================
package protocol

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/onesol-labs/onesol-go/internal/exchange/serum"
)

// OpenOrdersCacheTTL bounds how long a market+owner open-orders lookup
// is reused before hitting the chain again.
const OpenOrdersCacheTTL = 24 * time.Hour

type openOrdersKey struct {
	owner  solana.PublicKey
	market solana.PublicKey
}

type openOrdersEntry struct {
	accounts []*serum.OpenOrdersAccount
	ts       time.Time
}

// FindOpenOrdersForOwner returns the owner's open-orders accounts on a
// market, served from cache within OpenOrdersCacheTTL.
func (p *Protocol) FindOpenOrdersForOwner(ctx context.Context, market, owner solana.PublicKey) ([]*serum.OpenOrdersAccount, error) {
	key := openOrdersKey{owner: owner, market: market}
	now := p.now()

	p.mu.Lock()
	entry, ok := p.openOrdersCache[key]
	p.mu.Unlock()
	if ok && now.Sub(entry.ts) < OpenOrdersCacheTTL {
		return entry.accounts, nil
	}

	accounts, err := serum.FindForMarketAndOwner(ctx, p.client, market, owner, p.serumProgramID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.openOrdersCache[key] = &openOrdersEntry{accounts: accounts, ts: now}
	p.mu.Unlock()
	return accounts, nil
}

// createOpenOrders appends creation instructions for a fresh open-orders
// account and invalidates the cache entry so the next lookup refetches.
func (p *Protocol) createOpenOrders(ctx context.Context, market, owner solana.PublicKey, g *group) (solana.PublicKey, error) {
	account := solana.NewWallet()
	address := account.PublicKey()

	ix, err := serum.NewCreateOpenOrdersInstruction(ctx, p.client, owner, address, p.serumProgramID)
	if err != nil {
		return solana.PublicKey{}, err
	}
	g.add(ix)
	g.sign(account.PrivateKey)

	p.mu.Lock()
	key := openOrdersKey{owner: owner, market: market}
	if entry, ok := p.openOrdersCache[key]; ok {
		entry.ts = time.Time{}
	}
	p.mu.Unlock()

	p.logger.Debug("creating open orders account",
		zap.Stringer("address", address),
		zap.Stringer("market", market),
		zap.Stringer("owner", owner))
	return address, nil
}

// findOrCreateOpenOrders resolves an open-orders account for the market,
// emitting creation instructions into g when the owner has none.
func (p *Protocol) findOrCreateOpenOrders(ctx context.Context, market, owner solana.PublicKey, g *group) (solana.PublicKey, error) {
	accounts, err := p.FindOpenOrdersForOwner(ctx, market, owner)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if len(accounts) > 0 {
		return accounts[0].Address, nil
	}
	return p.createOpenOrders(ctx, market, owner, g)
}
