package protocol

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/onesol-labs/onesol-go/internal/chain"
)

// mockClient serves canned account data and counts calls, so tests can
// assert what actually hit the network.
type mockClient struct {
	mu sync.Mutex

	accounts        map[solana.PublicKey][]byte
	programAccounts map[solana.PublicKey][]chain.KeyedAccount
	rent            uint64

	accountCalls int
	programCalls int
}

var _ chain.Client = (*mockClient)(nil)

func newMockClient() *mockClient {
	return &mockClient{
		accounts:        make(map[solana.PublicKey][]byte),
		programAccounts: make(map[solana.PublicKey][]chain.KeyedAccount),
		rent:            2039280,
	}
}

func (m *mockClient) GetAccountData(_ context.Context, address solana.PublicKey) ([]byte, error) {
	m.mu.Lock()
	m.accountCalls++
	data, ok := m.accounts[address]
	m.mu.Unlock()
	if !ok {
		return nil, chain.ErrAccountNotFound
	}
	return data, nil
}

func (m *mockClient) GetProgramAccounts(_ context.Context, program solana.PublicKey, _ []chain.AccountFilter) ([]chain.KeyedAccount, error) {
	m.mu.Lock()
	m.programCalls++
	accounts := m.programAccounts[program]
	m.mu.Unlock()
	return accounts, nil
}

func (m *mockClient) GetMinimumBalanceForRentExemption(context.Context, uint64) (uint64, error) {
	return m.rent, nil
}

func (m *mockClient) GetLatestBlockhash(context.Context) (solana.Hash, error) {
	return solana.Hash{}, nil
}

func (m *mockClient) SendTransaction(context.Context, *solana.Transaction) (solana.Signature, error) {
	return solana.Signature{}, nil
}

func (m *mockClient) IsTransactionConfirmed(context.Context, solana.Signature) (bool, error) {
	return true, nil
}

func (m *mockClient) calls() (accounts, programs int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accountCalls, m.programCalls
}
