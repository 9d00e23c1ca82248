// Command palletd runs a scripted chain: it loads genesis and a list of
// blocks from a TOML file, executes them through the lifecycle server
// and prints the final runtime state as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/blockberries/pallet/app"
	"github.com/blockberries/pallet/codec"
	"github.com/blockberries/pallet/internal/config"
	"github.com/blockberries/pallet/internal/observability"
	"github.com/blockberries/pallet/server"
	"github.com/blockberries/pallet/types"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "palletd: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	envCfg, err := config.LoadEnv()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		envCfg.ConfigPath = args[0]
	}

	logger, err := observability.InitLogger("palletd", observability.LoggerOptions{
		Level: envCfg.LogLevel,
		JSON:  envCfg.LogJSON,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	cfg, err := config.Load(envCfg.ConfigPath)
	if err != nil {
		return err
	}

	a := app.New(app.WithLogger(logger.With().Str("component", "app").Logger()))
	srv := server.New(a, server.WithLogger(logger.With().Str("component", "server").Logger()))
	defer srv.Close()

	if _, err := srv.Genesis(ctx, cfg.GenesisDoc()); err != nil {
		return fmt.Errorf("genesis: %w", err)
	}

	for _, b := range cfg.Blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runBlock(ctx, srv, b, logger); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a.Snapshot()); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	logger.Info().Str("app_hash", a.AppHash()).Int("blocks", len(cfg.Blocks)).Msg("done")
	return nil
}

func runBlock(ctx context.Context, srv *server.Server, b config.BlockConfig, logger zerolog.Logger) error {
	txs := make([]types.Tx, 0, len(b.Extrinsics))
	for i, ec := range b.Extrinsics {
		ext, err := ec.Extrinsic()
		if err != nil {
			return fmt.Errorf("block %d extrinsic %d: %w", b.Height, i, err)
		}
		tx, err := codec.EncodeExtrinsic(ext)
		if err != nil {
			return fmt.Errorf("block %d extrinsic %d: %w", b.Height, i, err)
		}
		txs = append(txs, tx)
	}

	outcome, err := srv.ExecuteBlock(ctx, types.FinalizedBlock{Height: b.Height, Txs: txs})
	if err != nil {
		return fmt.Errorf("execute block %d: %w", b.Height, err)
	}
	for _, txo := range outcome.Failed() {
		logger.Warn().
			Uint64("height", b.Height).
			Uint32("index", txo.Index).
			Str("reason", txo.Info).
			Msg("extrinsic rejected")
	}

	if _, err := srv.Commit(ctx); err != nil {
		return fmt.Errorf("commit block %d: %w", b.Height, err)
	}
	return nil
}
