// =============================
// File: internal/protocol/client.go
// =============================
package protocol

import (
	"errors"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/onesol-labs/onesol-go/internal/chain"
)

// Protocol compiles route distributions into aggregator instructions.
// Safe for concurrent use; the open-orders and swap-info caches are
// shared across calls.
type Protocol struct {
	client         chain.Client
	programID      solana.PublicKey
	serumProgramID solana.PublicKey
	logger         *zap.Logger
	now            func() time.Time

	mu              sync.Mutex
	openOrdersCache map[openOrdersKey]*openOrdersEntry
	swapInfoCache   map[solana.PublicKey]solana.PublicKey
	feeAccounts     map[solana.PublicKey]solana.PublicKey
}

// Option adjusts Protocol construction.
type Option func(*Protocol)

// WithProgramID overrides the aggregator program, mainly for devnet.
func WithProgramID(id solana.PublicKey) Option {
	return func(p *Protocol) { p.programID = id }
}

// WithSerumProgramID overrides the serum DEX program.
func WithSerumProgramID(id solana.PublicKey) Option {
	return func(p *Protocol) { p.serumProgramID = id }
}

// WithLogger attaches a logger; a nop logger is used otherwise.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Protocol) { p.logger = logger.Named("protocol") }
}

// WithClock overrides the cache clock. Tests use it to control TTL
// expiry.
func WithClock(now func() time.Time) Option {
	return func(p *Protocol) { p.now = now }
}

// WithFeeAccount registers the fee token account for a destination mint.
func WithFeeAccount(mint, account solana.PublicKey) Option {
	return func(p *Protocol) { p.feeAccounts[mint] = account }
}

// New builds a Protocol over the given chain client.
func New(client chain.Client, opts ...Option) *Protocol {
	p := &Protocol{
		client:          client,
		programID:       ProgramID,
		serumProgramID:  SerumProgramID,
		logger:          zap.NewNop(),
		now:             time.Now,
		openOrdersCache: make(map[openOrdersKey]*openOrdersEntry),
		swapInfoCache:   make(map[solana.PublicKey]solana.PublicKey),
		feeAccounts:     make(map[solana.PublicKey]solana.PublicKey),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RegisterFeeAccount maps a destination mint to the token account that
// collects the aggregator fee. Typically filled from the router's token
// list.
func (p *Protocol) RegisterFeeAccount(mint, account solana.PublicKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.feeAccounts[mint] = account
}

// FeeAccount looks up the registered fee token account for a mint.
func (p *Protocol) FeeAccount(mint solana.PublicKey) (solana.PublicKey, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	account, ok := p.feeAccounts[mint]
	return account, ok
}

func isNotFound(err error) bool {
	return errors.Is(err, chain.ErrAccountNotFound)
}
