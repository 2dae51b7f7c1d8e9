// =============================
// File: cmd/onesol-swap/main.go
// =============================

// onesol-swap fetches the best route for a swap from the routing service,
// compiles it locally and submits the resulting transactions.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/onesol-labs/onesol-go/internal/chain"
	"github.com/onesol-labs/onesol-go/internal/config"
	"github.com/onesol-labs/onesol-go/internal/logging"
	"github.com/onesol-labs/onesol-go/internal/protocol"
	"github.com/onesol-labs/onesol-go/internal/router"
	"github.com/onesol-labs/onesol-go/internal/wallet"
)

func main() {
	var (
		configPath      = flag.String("config", "config.yaml", "path to config file")
		sourceMint      = flag.String("from", "", "source token mint")
		destinationMint = flag.String("to", "", "destination token mint")
		amount          = flag.Uint64("amount", 0, "input amount in base units")
		onlyDirect      = flag.Bool("only-direct", false, "restrict routing to single-hop routes")
		serverSide      = flag.Bool("server-side", false, "let the routing service compile the transactions")
	)
	flag.Parse()

	if *sourceMint == "" || *destinationMint == "" || *amount == 0 {
		fmt.Fprintln(os.Stderr, "usage: onesol-swap -from <mint> -to <mint> -amount <n> [-config config.yaml]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(&logging.Config{
		LogFile:     cfg.LogFile,
		MaxSizeMB:   100,
		MaxAgeDays:  7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	defer logger.Sync()

	if err := run(cfg, logger, *sourceMint, *destinationMint, *amount, *onlyDirect, *serverSide); err != nil {
		logger.Fatal("swap failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger, sourceMint, destinationMint string, amount uint64, onlyDirect, serverSide bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	w, err := wallet.New(cfg.PrivateKey)
	if err != nil {
		return err
	}

	client := chain.NewRPCClient(cfg.RPCURL, logger)
	routerClient := router.NewClient(
		router.WithBaseURL(cfg.RouterURL),
		router.WithLogger(logger),
	)
	proto := protocol.New(client, protocol.WithLogger(logger))

	if err := registerFeeAccounts(ctx, routerClient, proto, logger); err != nil {
		return err
	}

	distributions, err := routerClient.GetRoutes(ctx, router.RouteRequest{
		AmountIn:                amount,
		SourceTokenMintKey:      sourceMint,
		DestinationTokenMintKey: destinationMint,
		OnlyDirect:              onlyDirect,
	})
	if err != nil {
		return err
	}
	if len(distributions) == 0 {
		return errors.New("no route found")
	}

	best := &distributions[0]
	logger.Info("selected route",
		zap.Int("hops", len(best.Routes)),
		zap.Uint64("amount_in", best.AmountIn),
		zap.Uint64("amount_out", best.AmountOut))

	if serverSide {
		return runServerSide(ctx, cfg, w, client, routerClient, best, logger)
	}

	sourceAccount, err := w.AssociatedTokenAddress(solana.MustPublicKeyFromBase58(sourceMint))
	if err != nil {
		return err
	}

	compiled, err := proto.Compose(ctx, protocol.ComposeParams{
		Distribution:       best,
		Wallet:             w.PublicKey,
		SourceTokenAccount: sourceAccount,
		Slippage:           cfg.Slippage,
	})
	if err != nil {
		return err
	}

	if err := submitGroup(ctx, cfg, client, w, "setup", compiled.Setup, compiled.SetupSigners, logger); err != nil {
		return err
	}
	if err := submitGroup(ctx, cfg, client, w, "swap", compiled.Swap, compiled.SwapSigners, logger); err != nil {
		return err
	}
	// cleanup only reclaims rent, a failure is not fatal
	if err := submitGroup(ctx, cfg, client, w, "cleanup", compiled.Cleanup, compiled.CleanupSigners, logger); err != nil {
		logger.Warn("cleanup failed", zap.Error(err))
	}
	return nil
}

func registerFeeAccounts(ctx context.Context, rc *router.Client, proto *protocol.Protocol, logger *zap.Logger) error {
	tokens, err := rc.GetTokenList(ctx)
	if err != nil {
		return err
	}
	registered := 0
	for _, t := range tokens {
		if t.FeeAccount == "" {
			continue
		}
		mint, err := solana.PublicKeyFromBase58(t.Address)
		if err != nil {
			continue
		}
		feeAccount, err := solana.PublicKeyFromBase58(t.FeeAccount)
		if err != nil {
			continue
		}
		proto.RegisterFeeAccount(mint, feeAccount)
		registered++
	}
	logger.Debug("registered fee accounts", zap.Int("count", registered))
	return nil
}

func submitGroup(ctx context.Context, cfg *config.Config, client chain.Client, w *wallet.Wallet, name string, instructions []solana.Instruction, signers []solana.PrivateKey, logger *zap.Logger) error {
	if len(instructions) == 0 {
		return nil
	}

	builder := chain.NewTxBuilder(w.PublicKey).
		AddInstructions(instructions...).
		AddSigners(w.PrivateKey).
		AddSigners(signers...)
	if cfg.ComputeUnitLimit > 0 || cfg.ComputeUnitPrice > 0 {
		builder.SetComputeBudget(cfg.ComputeUnitLimit, cfg.ComputeUnitPrice)
	}

	tx, err := builder.Build(ctx, client)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	sig, err := backoff.Retry(ctx, func() (solana.Signature, error) {
		return client.SendTransaction(ctx, tx)
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(uint(cfg.Retries)+1))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	logger.Info("transaction submitted",
		zap.String("group", name),
		zap.Stringer("signature", sig))

	return confirmTransaction(ctx, client, sig)
}

func confirmTransaction(ctx context.Context, client chain.Client, sig solana.Signature) error {
	operation := func() (bool, error) {
		confirmed, err := client.IsTransactionConfirmed(ctx, sig)
		if err != nil {
			if errors.Is(err, chain.ErrTransactionFailed) {
				return false, backoff.Permanent(err)
			}
			return false, err
		}
		if !confirmed {
			return false, fmt.Errorf("transaction %s not yet confirmed", sig)
		}
		return true, nil
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(90*time.Second),
	)
	return err
}

func runServerSide(ctx context.Context, cfg *config.Config, w *wallet.Wallet, client chain.Client, rc *router.Client, best *protocol.RawDistribution, logger *zap.Logger) error {
	txs, err := rc.GetTransactions(ctx, router.TransactionsRequest{
		Route:            best,
		MinimumAmountOut: protocol.MinimumAmountOut(best.AmountOut, cfg.Slippage),
		Wallet:           w.PublicKey.String(),
	})
	if err != nil {
		return err
	}

	for i, tx := range txs {
		blockhash, err := client.GetLatestBlockhash(ctx)
		if err != nil {
			return err
		}
		tx.Message.RecentBlockhash = blockhash

		if err := w.SignTransaction(tx); err != nil {
			return fmt.Errorf("sign transaction %d: %w", i+1, err)
		}
		sig, err := client.SendTransaction(ctx, tx)
		if err != nil {
			return fmt.Errorf("submit transaction %d of %d: %w", i+1, len(txs), err)
		}
		logger.Info("transaction submitted",
			zap.Int("index", i+1),
			zap.Int("total", len(txs)),
			zap.Stringer("signature", sig))
		if err := confirmTransaction(ctx, client, sig); err != nil {
			return err
		}
	}
	return nil
}
