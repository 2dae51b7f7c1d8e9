// =============================
// File: internal/chain/client.go
// =============================

// Package chain is a thin adapter over the Solana JSON-RPC surface this SDK
// needs: raw account reads, program-account scans with byte-offset filters,
// rent queries and transaction submission. Everything else in the SDK talks
// to the chain through the Client interface so tests can substitute a mock.
package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// ErrAccountNotFound is returned when the requested account does not exist
// on chain.
var ErrAccountNotFound = errors.New("account not found")

// ErrTransactionFailed is returned when a submitted transaction landed on
// chain with an execution error. Retrying the same signature cannot succeed.
var ErrTransactionFailed = errors.New("transaction failed")

// MemcmpFilter matches accounts whose data equals Bytes at Offset.
type MemcmpFilter struct {
	Offset uint64
	Bytes  []byte
}

// AccountFilter narrows a program-account scan. DataSize of zero means no
// size constraint.
type AccountFilter struct {
	DataSize uint64
	Memcmp   *MemcmpFilter
}

// KeyedAccount is one result of a program-account scan.
type KeyedAccount struct {
	Pubkey solana.PublicKey
	Owner  solana.PublicKey
	Data   []byte
}

// Client is the chain read/write surface consumed by the SDK.
type Client interface {
	// GetAccountData returns the raw bytes of an account, or
	// ErrAccountNotFound if it does not exist.
	GetAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error)

	// GetProgramAccounts scans accounts owned by program, narrowed by
	// filters. An empty result is not an error.
	GetProgramAccounts(ctx context.Context, program solana.PublicKey, filters []AccountFilter) ([]KeyedAccount, error)

	// GetMinimumBalanceForRentExemption returns the lamports needed to
	// make an account of the given size rent exempt.
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error)

	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)

	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)

	// IsTransactionConfirmed reports whether sig reached confirmed
	// commitment without a transaction error.
	IsTransactionConfirmed(ctx context.Context, sig solana.Signature) (bool, error)
}

// RPCClient implements Client over gagliardetto/solana-go's RPC client.
type RPCClient struct {
	rpc    *rpc.Client
	logger *zap.Logger
}

var _ Client = (*RPCClient)(nil)

// NewRPCClient creates a client for the given RPC endpoint.
func NewRPCClient(rpcURL string, logger *zap.Logger) *RPCClient {
	return &RPCClient{
		rpc:    rpc.New(rpcURL),
		logger: logger.Named("chain-client"),
	}
}

func (c *RPCClient) GetAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	result, err := c.rpc.GetAccountInfo(ctx, address)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", address, ErrAccountNotFound)
		}
		c.logger.Debug("GetAccountInfo error",
			zap.String("pubkey", address.String()),
			zap.Error(err))
		return nil, err
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("%s: %w", address, ErrAccountNotFound)
	}
	return result.Value.Data.GetBinary(), nil
}

func (c *RPCClient) GetProgramAccounts(ctx context.Context, program solana.PublicKey, filters []AccountFilter) ([]KeyedAccount, error) {
	rpcFilters := make([]rpc.RPCFilter, 0, len(filters))
	for _, f := range filters {
		var rf rpc.RPCFilter
		if f.DataSize > 0 {
			rf.DataSize = f.DataSize
		}
		if f.Memcmp != nil {
			rf.Memcmp = &rpc.RPCFilterMemcmp{
				Offset: f.Memcmp.Offset,
				Bytes:  solana.Base58(f.Memcmp.Bytes),
			}
		}
		rpcFilters = append(rpcFilters, rf)
	}

	result, err := c.rpc.GetProgramAccountsWithOpts(ctx, program, &rpc.GetProgramAccountsOpts{
		Commitment: rpc.CommitmentConfirmed,
		Filters:    rpcFilters,
	})
	if err != nil {
		c.logger.Debug("GetProgramAccounts error",
			zap.String("program", program.String()),
			zap.Error(err))
		return nil, err
	}

	accounts := make([]KeyedAccount, 0, len(result))
	for _, item := range result {
		if item == nil || item.Account == nil {
			continue
		}
		accounts = append(accounts, KeyedAccount{
			Pubkey: item.Pubkey,
			Owner:  item.Account.Owner,
			Data:   item.Account.Data.GetBinary(),
		})
	}
	return accounts, nil
}

func (c *RPCClient) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, dataSize, rpc.CommitmentFinalized)
	if err != nil {
		c.logger.Debug("GetMinimumBalanceForRentExemption error",
			zap.Uint64("data_size", dataSize),
			zap.Error(err))
		return 0, err
	}
	return lamports, nil
}

func (c *RPCClient) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		c.logger.Error("GetLatestBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	return result.Value.Blockhash, nil
}

func (c *RPCClient) IsTransactionConfirmed(ctx context.Context, sig solana.Signature) (bool, error) {
	result, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		c.logger.Debug("GetSignatureStatuses error",
			zap.String("signature", sig.String()),
			zap.Error(err))
		return false, err
	}
	if result == nil || len(result.Value) == 0 || result.Value[0] == nil {
		return false, nil
	}
	status := result.Value[0]
	if status.Err != nil {
		return false, fmt.Errorf("%s: %w: %v", sig, ErrTransactionFailed, status.Err)
	}
	return status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
		status.ConfirmationStatus == rpc.ConfirmationStatusFinalized, nil
}

func (c *RPCClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		c.logger.Error("SendTransaction error", zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}
