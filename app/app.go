// Package app hosts a pallet runtime behind the Lifecycle contract.
//
// Blocks are executed against a staged clone of the committed runtime
// and only become visible to queries after Commit. Transactions are
// cramberry-encoded extrinsics (see package codec).
package app

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/blockberries/pallet"
	"github.com/blockberries/pallet/codec"
	"github.com/blockberries/pallet/runtime"
	"github.com/blockberries/pallet/types"
)

const tracerName = "github.com/blockberries/pallet/app"

// Compile-time interface checks.
var (
	_ pallet.Lifecycle = (*App)(nil)
	_ pallet.Simulator = (*App)(nil)
)

// ErrNothingStaged is returned by Commit when no executed block is
// waiting to be committed.
var ErrNothingStaged = errors.New("app: no executed block to commit")

// ErrHeightOutOfRange is the cause of the HaltError returned for a block
// height the runtime's block number cannot represent.
var ErrHeightOutOfRange = errors.New("app: block height out of range")

// App is a Lifecycle application backed by a runtime.Runtime.
type App struct {
	mu        sync.RWMutex
	chainID   string
	committed *runtime.Runtime
	staged    *runtime.Runtime

	logger zerolog.Logger
	tracer trace.Tracer
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the application logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithTracerProvider sets the provider spans are created from. The
// global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *App) { a.tracer = tp.Tracer(tracerName) }
}

// New creates an application with an empty runtime.
func New(opts ...Option) *App {
	app := &App{
		logger: zerolog.Nop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(app)
	}
	app.committed = runtime.New(runtime.WithLogger(app.logger))
	return app
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (app *App) Genesis(ctx context.Context, doc types.GenesisDoc) (types.GenesisResult, error) {
	_, span := app.tracer.Start(ctx, "Genesis", trace.WithAttributes(
		attribute.String("chain.id", doc.ChainID),
		attribute.Int("genesis.accounts", len(doc.Accounts)),
	))
	defer span.End()

	rt := runtime.New(runtime.WithLogger(app.logger))
	for _, acct := range doc.Accounts {
		rt.Balances().SetBalance(acct.Account, acct.Balance)
	}
	hash := rt.StateRoot()

	app.mu.Lock()
	app.chainID = doc.ChainID
	app.committed = rt
	app.staged = nil
	app.mu.Unlock()

	app.logger.Info().
		Str("chain_id", doc.ChainID).
		Int("accounts", len(doc.Accounts)).
		Hex("app_hash", hash[:]).
		Msg("genesis")

	return types.GenesisResult{Height: 0, AppHash: hash}, nil
}

func (app *App) CheckTx(_ context.Context, tx types.Tx) (types.GateVerdict, error) {
	ext, err := codec.DecodeExtrinsic(tx)
	if err != nil {
		return types.GateVerdict{
			Code: types.CodeMalformed,
			Info: err.Error(),
		}, nil
	}
	return types.GateVerdict{
		Code:   types.CodeOK,
		Sender: ext.Caller,
	}, nil
}

func (app *App) ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error) {
	_, span := app.tracer.Start(ctx, "ExecuteBlock", trace.WithAttributes(
		attribute.Int64("block.height", int64(block.Height)),
		attribute.Int("block.txs", len(block.Txs)),
	))
	defer span.End()

	if block.Height > math.MaxUint32 {
		err := pallet.NewHaltError(block.Height, ErrHeightOutOfRange)
		span.SetStatus(codes.Error, err.Error())
		return types.BlockOutcome{}, err
	}

	outcomes := make([]types.TxOutcome, len(block.Txs))
	exts := make([]runtime.Extrinsic, 0, len(block.Txs))
	positions := make([]int, 0, len(block.Txs))

	for i, tx := range block.Txs {
		ext, err := codec.DecodeExtrinsic(tx)
		if err != nil {
			outcomes[i] = types.TxOutcome{
				Index: uint32(i),
				Code:  types.CodeMalformed,
				Info:  err.Error(),
			}
			continue
		}
		exts = append(exts, ext)
		positions = append(positions, i)
	}

	rec := &runtime.Recorder{}
	app.mu.RLock()
	staged := app.committed.CloneWithSink(rec)
	app.mu.RUnlock()

	if err := staged.ExecuteBlock(runtime.NewBlock(types.BlockNumber(block.Height), exts...)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return types.BlockOutcome{}, pallet.NewHaltError(block.Height, err)
	}

	failures := make(map[int]error, len(rec.Failures))
	for _, f := range rec.Failures {
		failures[f.Index] = f.Err
	}

	failed := len(block.Txs) - len(exts)
	for j, ext := range exts {
		i := positions[j]
		if err, ok := failures[j]; ok {
			failed++
			outcomes[i] = types.TxOutcome{
				Index: uint32(i),
				Code:  types.CodeDispatch,
				Info:  err.Error(),
			}
			span.AddEvent("extrinsic failed", trace.WithAttributes(
				attribute.Int("tx.index", i),
				attribute.String("tx.caller", string(ext.Caller)),
				attribute.String("tx.reason", err.Error()),
			))
			app.logger.Warn().
				Uint64("height", block.Height).
				Int("index", i).
				Str("caller", string(ext.Caller)).
				Str("reason", err.Error()).
				Msg("extrinsic failed")
			continue
		}
		outcomes[i] = types.TxOutcome{
			Index:  uint32(i),
			Code:   types.CodeOK,
			Events: callEvents(ext),
		}
	}

	hash := staged.StateRoot()

	app.mu.Lock()
	app.staged = staged
	app.mu.Unlock()

	span.SetAttributes(attribute.Int("block.failed", failed))
	app.logger.Info().
		Uint64("height", block.Height).
		Int("txs", len(block.Txs)).
		Int("failed", failed).
		Hex("app_hash", hash[:]).
		Msg("block executed")

	return types.BlockOutcome{
		TxOutcomes: outcomes,
		BlockEvents: []types.Event{{
			Kind: "block",
			Attributes: []types.EventAttribute{
				{Key: "height", Value: strconv.FormatUint(block.Height, 10), Index: true},
				{Key: "txs", Value: strconv.Itoa(len(block.Txs))},
				{Key: "failed", Value: strconv.Itoa(failed)},
			},
		}},
		AppHash: hash,
	}, nil
}

func (app *App) Commit(_ context.Context) (types.CommitResult, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.staged == nil {
		return types.CommitResult{}, ErrNothingStaged
	}
	app.committed = app.staged
	app.staged = nil

	return types.CommitResult{
		Height:  uint64(app.committed.BlockNumber()),
		AppHash: app.committed.StateRoot(),
	}, nil
}

func (app *App) Query(_ context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	app.mu.RLock()
	defer app.mu.RUnlock()

	rt := app.committed
	height := uint64(rt.BlockNumber())

	switch req.Path {
	case types.QueryHeight:
		return types.StateQueryResult{
			Code:   types.CodeOK,
			Value:  encodeUint64(height),
			Height: height,
		}, nil

	case types.QueryBalance:
		who := types.AccountID(req.Data)
		return types.StateQueryResult{
			Code:   types.CodeOK,
			Key:    req.Data,
			Value:  encodeUint64(uint64(rt.Balances().Balance(who))),
			Height: height,
		}, nil

	case types.QueryNonce:
		n, ok := rt.System().Nonce(types.AccountID(req.Data))
		if !ok {
			return types.StateQueryResult{
				Code:   types.CodeNotFound,
				Key:    req.Data,
				Height: height,
				Info:   "account has no nonce",
			}, nil
		}
		return types.StateQueryResult{
			Code:   types.CodeOK,
			Key:    req.Data,
			Value:  encodeUint64(uint64(n)),
			Height: height,
		}, nil

	case types.QueryClaim:
		owner, ok := rt.Claims().Claim(types.Content(req.Data))
		if !ok {
			return types.StateQueryResult{
				Code:   types.CodeNotFound,
				Key:    req.Data,
				Height: height,
				Info:   "content is not claimed",
			}, nil
		}
		return types.StateQueryResult{
			Code:   types.CodeOK,
			Key:    req.Data,
			Value:  []byte(owner),
			Height: height,
		}, nil

	case types.QueryState:
		data, err := json.Marshal(rt.Snapshot())
		if err != nil {
			return types.StateQueryResult{}, fmt.Errorf("marshal state: %w", err)
		}
		return types.StateQueryResult{
			Code:   types.CodeOK,
			Value:  data,
			Height: height,
		}, nil

	default:
		return types.StateQueryResult{
			Code:   types.CodeUnknownPath,
			Height: height,
			Info:   fmt.Sprintf("unknown query path %q", req.Path),
		}, nil
	}
}

// ---------------------------------------------------------------------------
// Simulator
// ---------------------------------------------------------------------------

// Simulate runs tx alone in the next block on a copy of the committed
// runtime and reports what would happen.
func (app *App) Simulate(_ context.Context, tx types.Tx) (types.TxOutcome, error) {
	ext, err := codec.DecodeExtrinsic(tx)
	if err != nil {
		return types.TxOutcome{Code: types.CodeMalformed, Info: err.Error()}, nil
	}

	rec := &runtime.Recorder{}
	app.mu.RLock()
	scratch := app.committed.CloneWithSink(rec)
	app.mu.RUnlock()

	next := scratch.BlockNumber() + 1
	if err := scratch.ExecuteBlock(runtime.NewBlock(next, ext)); err != nil {
		return types.TxOutcome{}, fmt.Errorf("simulate: %w", err)
	}
	if len(rec.Failures) > 0 {
		return types.TxOutcome{Code: types.CodeDispatch, Info: rec.Failures[0].Err.Error()}, nil
	}
	return types.TxOutcome{Code: types.CodeOK, Events: callEvents(ext)}, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// ChainID returns the chain identifier set at genesis.
func (app *App) ChainID() string {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.chainID
}

// Snapshot returns the committed runtime state.
func (app *App) Snapshot() runtime.State {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.committed.Snapshot()
}

// AppHash returns the committed state root, hex encoded.
func (app *App) AppHash() string {
	app.mu.RLock()
	defer app.mu.RUnlock()
	h := app.committed.StateRoot()
	return hex.EncodeToString(h[:])
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}
