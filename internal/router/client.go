// =============================
// File: internal/router/client.go
// =============================

// Package router is the HTTP client for the off-chain routing service:
// candidate route discovery, the token registry with per-mint fee
// accounts, and the server-side transaction compilation path.
package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/onesol-labs/onesol-go/internal/protocol"
)

// DefaultBaseURL is the hosted routing service.
const DefaultBaseURL = "https://api.1sol.io/1"

const defaultTimeout = 30 * time.Second

// Client talks to the routing service. Requests are single-shot; retry
// policy belongs to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientOption adjusts Client construction.
type ClientOption func(*Client)

// WithBaseURL points the client at a different service deployment.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger attaches a logger; a nop logger is used otherwise.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = logger.Named("router") }
}

// NewClient builds a routing-service client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RouteRequest asks the service for candidate distributions.
type RouteRequest struct {
	AmountIn                uint64   `json:"amount_in"`
	SourceTokenMintKey      string   `json:"source_token_mint_key"`
	DestinationTokenMintKey string   `json:"destination_token_mint_key"`
	Programs                []string `json:"programs"`

	Size        int      `json:"size,omitempty"`
	OnlyDirect  bool     `json:"only_direct,omitempty"`
	BridgeMints []string `json:"bridge_mints,omitempty"`
	Experiment  bool     `json:"experiment,omitempty"`
}

type routeResponse struct {
	Distributions []protocol.RawDistribution `json:"distributions"`
}

// GetRoutes fetches candidate distributions for a swap, best first.
func (c *Client) GetRoutes(ctx context.Context, req RouteRequest) ([]protocol.RawDistribution, error) {
	if req.Programs == nil {
		for _, id := range protocol.SupportedProgramIDs() {
			req.Programs = append(req.Programs, id.String())
		}
	}

	var resp routeResponse
	url := fmt.Sprintf("%s/swap/1/%d", c.baseURL, protocol.ChainID)
	if err := c.post(ctx, url, req, &resp); err != nil {
		return nil, fmt.Errorf("get routes: %w", err)
	}

	c.logger.Debug("fetched routes",
		zap.String("source", req.SourceTokenMintKey),
		zap.String("destination", req.DestinationTokenMintKey),
		zap.Int("distributions", len(resp.Distributions)))
	return resp.Distributions, nil
}

// TokenInfo is one token registry entry. FeeAccount, when set, is the
// token account collecting the aggregator fee for swaps into this mint.
type TokenInfo struct {
	ChainID    int    `json:"chainId"`
	Address    string `json:"address"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	Decimals   uint8  `json:"decimals"`
	LogoURI    string `json:"logoURI,omitempty"`
	FeeAccount string `json:"feeAccount,omitempty"`
}

type tokenListResponse struct {
	Tokens []TokenInfo `json:"tokens"`
}

// GetTokenList fetches the token registry for the configured chain.
func (c *Client) GetTokenList(ctx context.Context) ([]TokenInfo, error) {
	url := fmt.Sprintf("%s/token-list?chain_id=%d", c.baseURL, protocol.ChainID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("get token list: %w", err)
	}

	var resp tokenListResponse
	if err := c.do(httpReq, &resp); err != nil {
		return nil, fmt.Errorf("get token list: %w", err)
	}
	return resp.Tokens, nil
}

// TransactionsRequest asks the service to compile a distribution
// server-side, the alternative to local compilation.
type TransactionsRequest struct {
	Route            *protocol.RawDistribution `json:"route"`
	MinimumAmountOut uint64                    `json:"minimum_amount_out"`
	Wallet           string                    `json:"wallet"`

	SwapInfo                string            `json:"swap_info,omitempty"`
	SourceTokenAccount      string            `json:"source_token_account,omitempty"`
	DestinationTokenAccount string            `json:"destination_token_account,omitempty"`
	BridgeTokenAccount      string            `json:"bridge_token_account,omitempty"`
	OpenOrders              map[string]string `json:"open_orders,omitempty"`
}

type transactionsResponse struct {
	Transactions []string `json:"transactions"`
}

// GetTransactions fetches server-compiled transactions, decoded from
// base64 and ready to sign.
func (c *Client) GetTransactions(ctx context.Context, req TransactionsRequest) ([]*solana.Transaction, error) {
	var resp transactionsResponse
	url := c.baseURL + "/transactions"
	if err := c.post(ctx, url, req, &resp); err != nil {
		return nil, fmt.Errorf("get transactions: %w", err)
	}

	txs := make([]*solana.Transaction, 0, len(resp.Transactions))
	for i, encoded := range resp.Transactions {
		tx, err := solana.TransactionFromBase64(encoded)
		if err != nil {
			return nil, fmt.Errorf("get transactions: decode transaction %d: %w", i, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (c *Client) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
