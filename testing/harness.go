// Package pallettest provides test utilities for pallet applications:
// a configurable mock, a lifecycle harness and a compliance suite.
package pallettest

import (
	"context"
	"testing"
	"time"

	"github.com/blockberries/pallet"
	"github.com/blockberries/pallet/codec"
	"github.com/blockberries/pallet/runtime"
	"github.com/blockberries/pallet/server"
	"github.com/blockberries/pallet/types"
)

// Genesis accounts seeded by DefaultGenesis.
const (
	Alice   types.AccountID = "alice"
	Bob     types.AccountID = "bob"
	Charlie types.AccountID = "charlie"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Harness drives an application through the lifecycle server and
// fails the test on any unexpected error.
type Harness struct {
	t   *testing.T
	srv *server.Server
}

// NewHarness creates a test harness wrapping the given application.
func NewHarness(t *testing.T, app pallet.Lifecycle, opts ...server.Option) *Harness {
	t.Helper()
	return &Harness{t: t, srv: server.New(app, opts...)}
}

// Server returns the underlying server for direct access.
func (h *Harness) Server() *server.Server {
	return h.srv
}

// Genesis loads the given genesis document.
func (h *Harness) Genesis(doc types.GenesisDoc) types.GenesisResult {
	h.t.Helper()
	res, err := h.srv.Genesis(context.Background(), doc)
	if err != nil {
		h.t.Fatalf("Genesis failed: %v", err)
	}
	return res
}

// GenesisDefault loads DefaultGenesis.
func (h *Harness) GenesisDefault() types.GenesisResult {
	h.t.Helper()
	return h.Genesis(DefaultGenesis())
}

// ExecuteBlock executes a block without committing.
func (h *Harness) ExecuteBlock(block types.FinalizedBlock) types.BlockOutcome {
	h.t.Helper()
	outcome, err := h.srv.ExecuteBlock(context.Background(), block)
	if err != nil {
		h.t.Fatalf("ExecuteBlock (height=%d) failed: %v", block.Height, err)
	}
	return outcome
}

// MustHalt executes a block that the application is expected to
// reject as a whole and returns the halt error.
func (h *Harness) MustHalt(block types.FinalizedBlock) *pallet.HaltError {
	h.t.Helper()
	_, err := h.srv.ExecuteBlock(context.Background(), block)
	halt, ok := pallet.IsHalt(err)
	if !ok {
		h.t.Fatalf("ExecuteBlock (height=%d): expected HaltError, got %v", block.Height, err)
	}
	return halt
}

// Commit commits the last executed block.
func (h *Harness) Commit() types.CommitResult {
	h.t.Helper()
	result, err := h.srv.Commit(context.Background())
	if err != nil {
		h.t.Fatalf("Commit failed: %v", err)
	}
	return result
}

// ExecuteAndCommit executes a block and commits it, returning the
// block outcome.
func (h *Harness) ExecuteAndCommit(block types.FinalizedBlock) types.BlockOutcome {
	h.t.Helper()
	outcome := h.ExecuteBlock(block)
	h.Commit()
	return outcome
}

// CheckTx submits a transaction for gate-checking.
func (h *Harness) CheckTx(tx types.Tx) types.GateVerdict {
	h.t.Helper()
	verdict, err := h.srv.CheckTx(context.Background(), tx)
	if err != nil {
		h.t.Fatalf("CheckTx failed: %v", err)
	}
	return verdict
}

// Query reads committed application state.
func (h *Harness) Query(path types.QueryPath, data []byte) types.StateQueryResult {
	h.t.Helper()
	result, err := h.srv.Query(context.Background(), types.StateQuery{
		Path: path,
		Data: data,
	})
	if err != nil {
		h.t.Fatalf("Query failed: %v", err)
	}
	return result
}

// MustAcceptTx asserts that a transaction is accepted.
func (h *Harness) MustAcceptTx(tx types.Tx) types.GateVerdict {
	h.t.Helper()
	v := h.CheckTx(tx)
	if !v.Accepted() {
		h.t.Fatalf("expected tx accepted, got code=%d info=%q", v.Code, v.Info)
	}
	return v
}

// MustRejectTx asserts that a transaction is rejected.
func (h *Harness) MustRejectTx(tx types.Tx) types.GateVerdict {
	h.t.Helper()
	v := h.CheckTx(tx)
	if v.Accepted() {
		h.t.Fatal("expected tx rejected, got accepted")
	}
	return v
}

// --- Helper Factories ---

// DefaultGenesis returns a genesis document funding Alice with 100.
func DefaultGenesis() types.GenesisDoc {
	return types.GenesisDoc{
		ChainID:     "test-chain",
		GenesisTime: types.TimeToTimestamp(baseTime),
		Accounts: []types.GenesisAccount{
			{Account: Alice, Balance: 100},
		},
	}
}

// MakeBlock creates a FinalizedBlock at the given height with the
// provided transactions.
func MakeBlock(height uint64, txs ...types.Tx) types.FinalizedBlock {
	return types.FinalizedBlock{
		Height: height,
		Time:   types.TimeToTimestamp(baseTime.Add(time.Duration(height) * 5 * time.Second)),
		Txs:    txs,
	}
}

// MakeEmptyBlock creates an empty FinalizedBlock at the given height.
func MakeEmptyBlock(height uint64) types.FinalizedBlock {
	return MakeBlock(height)
}

// MustEncode encodes a signed call as a transaction.
func MustEncode(t testing.TB, caller types.AccountID, call runtime.Call) types.Tx {
	t.Helper()
	tx, err := codec.EncodeExtrinsic(runtime.Signed(caller, call))
	if err != nil {
		t.Fatalf("encode extrinsic: %v", err)
	}
	return tx
}
