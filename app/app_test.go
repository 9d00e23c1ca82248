package app_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/blockberries/pallet"
	"github.com/blockberries/pallet/app"
	"github.com/blockberries/pallet/runtime"
	pallettest "github.com/blockberries/pallet/testing"
	"github.com/blockberries/pallet/types"
)

const (
	alice   = pallettest.Alice
	bob     = pallettest.Bob
	charlie = pallettest.Charlie
)

func TestCompliance(t *testing.T) {
	pallettest.RunComplianceSuite(t, func() pallet.Lifecycle { return app.New() })
}

func newHarness(t *testing.T, opts ...app.Option) (*pallettest.Harness, *app.App) {
	t.Helper()
	a := app.New(opts...)
	h := pallettest.NewHarness(t, a)
	h.GenesisDefault()
	return h, a
}

func balanceOf(t *testing.T, h *pallettest.Harness, who types.AccountID) uint64 {
	t.Helper()
	res := h.Query(types.QueryBalance, []byte(who))
	if !res.Found() {
		t.Fatalf("balance query for %q: code %d", who, res.Code)
	}
	return binary.BigEndian.Uint64(res.Value)
}

func TestTransferBlock(t *testing.T) {
	h, a := newHarness(t)

	outcome := h.ExecuteAndCommit(pallettest.MakeBlock(1,
		pallettest.MustEncode(t, alice, runtime.Transfer(bob, 30)),
		pallettest.MustEncode(t, alice, runtime.Transfer(charlie, 20)),
	))

	if failed := outcome.Failed(); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
	for who, want := range map[types.AccountID]uint64{alice: 50, bob: 30, charlie: 20} {
		if got := balanceOf(t, h, who); got != want {
			t.Errorf("balance of %s = %d, want %d", who, got, want)
		}
	}

	res := h.Query(types.QueryNonce, []byte(alice))
	if got := binary.BigEndian.Uint64(res.Value); got != 2 {
		t.Errorf("alice nonce = %d, want 2", got)
	}
	if res := h.Query(types.QueryNonce, []byte(bob)); res.Code != types.CodeNotFound {
		t.Errorf("bob never sent an extrinsic, nonce query code = %d", res.Code)
	}

	snap := a.Snapshot()
	if snap.BlockNumber != 1 {
		t.Errorf("block number = %d, want 1", snap.BlockNumber)
	}

	ev := outcome.TxOutcomes[0].Events
	if len(ev) != 1 || ev[0].Kind != app.EventTransfer {
		t.Fatalf("expected a transfer event, got %+v", ev)
	}
	if v, _ := ev[0].Attr("amount"); v != "30" {
		t.Errorf("amount attribute = %q, want 30", v)
	}
}

func TestClaimBlock(t *testing.T) {
	h, _ := newHarness(t)

	outcome := h.ExecuteAndCommit(pallettest.MakeBlock(1,
		pallettest.MustEncode(t, alice, runtime.CreateClaim("hello")),
		pallettest.MustEncode(t, bob, runtime.CreateClaim("hello")),
		pallettest.MustEncode(t, bob, runtime.RevokeClaim("hello")),
		pallettest.MustEncode(t, bob, runtime.CreateClaim("world")),
	))

	want := []struct {
		code uint32
		info string
	}{
		{types.CodeOK, ""},
		{types.CodeDispatch, "AlreadyClaimed"},
		{types.CodeDispatch, "NotOwner"},
		{types.CodeOK, ""},
	}
	for i, w := range want {
		got := outcome.TxOutcomes[i]
		if got.Code != w.code || got.Info != w.info {
			t.Errorf("tx %d: got code=%d info=%q, want code=%d info=%q", i, got.Code, got.Info, w.code, w.info)
		}
	}

	res := h.Query(types.QueryClaim, []byte("hello"))
	if string(res.Value) != string(alice) {
		t.Errorf("owner of hello = %q, want alice", res.Value)
	}
	res = h.Query(types.QueryClaim, []byte("world"))
	if string(res.Value) != string(bob) {
		t.Errorf("owner of world = %q, want bob", res.Value)
	}

	h.ExecuteAndCommit(pallettest.MakeBlock(2,
		pallettest.MustEncode(t, alice, runtime.RevokeClaim("hello")),
	))
	if res := h.Query(types.QueryClaim, []byte("hello")); res.Code != types.CodeNotFound {
		t.Errorf("revoked claim still present: code=%d", res.Code)
	}
}

func TestInsufficientFundsLeavesBalances(t *testing.T) {
	h, _ := newHarness(t)

	outcome := h.ExecuteAndCommit(pallettest.MakeBlock(1,
		pallettest.MustEncode(t, alice, runtime.Transfer(bob, 101)),
	))
	if got := outcome.TxOutcomes[0]; got.Code != types.CodeDispatch || got.Info != "InsufficientFunds" {
		t.Fatalf("got %+v, want InsufficientFunds", got)
	}
	if got := balanceOf(t, h, alice); got != 100 {
		t.Errorf("alice balance = %d, want 100", got)
	}
	if got := balanceOf(t, h, bob); got != 0 {
		t.Errorf("bob balance = %d, want 0", got)
	}
}

func TestSelfTransferIsNoop(t *testing.T) {
	h, _ := newHarness(t)

	outcome := h.ExecuteAndCommit(pallettest.MakeBlock(1,
		pallettest.MustEncode(t, alice, runtime.Transfer(alice, 60)),
		pallettest.MustEncode(t, alice, runtime.Transfer(alice, 500)),
	))
	if !outcome.TxOutcomes[0].OK() {
		t.Errorf("affordable self-transfer failed: %q", outcome.TxOutcomes[0].Info)
	}
	if outcome.TxOutcomes[1].Info != "InsufficientFunds" {
		t.Errorf("unaffordable self-transfer: info = %q", outcome.TxOutcomes[1].Info)
	}
	if got := balanceOf(t, h, alice); got != 100 {
		t.Errorf("alice balance = %d, want 100", got)
	}
}

func TestMalformedTxDoesNotCountNonce(t *testing.T) {
	h, _ := newHarness(t)

	outcome := h.ExecuteAndCommit(pallettest.MakeBlock(1, types.Tx{0xFF, 0xFF, 0xFF, 0xFF}))
	if outcome.TxOutcomes[0].Code != types.CodeMalformed {
		t.Fatalf("code = %d, want CodeMalformed", outcome.TxOutcomes[0].Code)
	}
	if v, _ := outcome.BlockEvents[0].Attr("failed"); v != "1" {
		t.Errorf("block event failed = %q, want 1", v)
	}
	var state runtime.State
	if err := json.Unmarshal(h.Query(types.QueryState, nil).Value, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(state.Nonces) != 0 {
		t.Errorf("malformed tx counted a nonce: %+v", state.Nonces)
	}
	if state.BlockNumber != 1 {
		t.Errorf("block number = %d, want 1", state.BlockNumber)
	}
}

func TestMismatchedHeightHalts(t *testing.T) {
	h, a := newHarness(t)
	before := a.AppHash()

	halt := h.MustHalt(pallettest.MakeEmptyBlock(3))
	be, ok := pallet.IsBlockMismatch(halt)
	if !ok {
		t.Fatalf("expected block mismatch cause, got %v", halt)
	}
	if be.Expected != 1 || be.Got != 3 {
		t.Fatalf("unexpected block error: %+v", be)
	}
	if halt.Height != 3 {
		t.Errorf("halt height = %d, want 3", halt.Height)
	}
	if _, err := a.Commit(context.Background()); !errors.Is(err, app.ErrNothingStaged) {
		t.Fatalf("expected ErrNothingStaged, got %v", err)
	}
	if a.AppHash() != before {
		t.Error("halted block changed committed state")
	}
}

func TestHeightOutOfRangeHalts(t *testing.T) {
	h, _ := newHarness(t)
	halt := h.MustHalt(pallettest.MakeEmptyBlock(1 << 33))
	if !errors.Is(halt, app.ErrHeightOutOfRange) {
		t.Fatalf("expected ErrHeightOutOfRange, got %v", halt)
	}
}

func TestQueries(t *testing.T) {
	h, _ := newHarness(t)
	h.ExecuteAndCommit(pallettest.MakeEmptyBlock(1))

	res := h.Query(types.QueryHeight, nil)
	if got := binary.BigEndian.Uint64(res.Value); got != 1 || res.Height != 1 {
		t.Errorf("height query = %d (result height %d), want 1", got, res.Height)
	}
	if got := balanceOf(t, h, "nobody"); got != 0 {
		t.Errorf("unknown account balance = %d, want 0", got)
	}
	if res := h.Query("/nope", nil); res.Code != types.CodeUnknownPath {
		t.Errorf("unknown path code = %d, want CodeUnknownPath", res.Code)
	}
}

func TestStagedStateIsolation(t *testing.T) {
	h, a := newHarness(t)
	committed := a.AppHash()

	outcome := h.ExecuteBlock(pallettest.MakeBlock(1,
		pallettest.MustEncode(t, alice, runtime.Transfer(bob, 10)),
	))
	if a.AppHash() != committed {
		t.Error("executing a block changed the committed hash")
	}
	res := h.Commit()
	if res.AppHash != outcome.AppHash {
		t.Errorf("commit hash %x != execute hash %x", res.AppHash, outcome.AppHash)
	}
}

func TestSimulate(t *testing.T) {
	h, a := newHarness(t)
	ctx := context.Background()

	out, err := h.Server().Simulate(ctx, pallettest.MustEncode(t, alice, runtime.Transfer(bob, 1000)))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if out.Code != types.CodeDispatch || out.Info != "InsufficientFunds" {
		t.Errorf("simulate overdraft = %+v", out)
	}

	out, err = a.Simulate(ctx, pallettest.MustEncode(t, alice, runtime.Transfer(bob, 10)))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if !out.OK() || len(out.Events) != 1 {
		t.Errorf("simulate transfer = %+v", out)
	}
	if got := balanceOf(t, h, bob); got != 0 {
		t.Errorf("simulation changed state: bob balance = %d", got)
	}

	out, _ = a.Simulate(ctx, types.Tx{0xFF, 0xFF, 0xFF, 0xFF})
	if out.Code != types.CodeMalformed {
		t.Errorf("simulate garbage code = %d, want CodeMalformed", out.Code)
	}
}

func TestExecuteBlockTracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	h, _ := newHarness(t, app.WithTracerProvider(tp))

	h.ExecuteAndCommit(pallettest.MakeBlock(1,
		pallettest.MustEncode(t, bob, runtime.Transfer(alice, 1)),
	))

	var found bool
	for _, span := range sr.Ended() {
		if span.Name() != "ExecuteBlock" {
			continue
		}
		found = true
		events := span.Events()
		if len(events) != 1 || events[0].Name != "extrinsic failed" {
			t.Fatalf("expected one extrinsic failed event, got %+v", events)
		}
	}
	if !found {
		t.Fatal("no ExecuteBlock span recorded")
	}
}

func TestFailureLogging(t *testing.T) {
	var buf bytes.Buffer
	h, _ := newHarness(t, app.WithLogger(zerolog.New(&buf)))

	h.ExecuteAndCommit(pallettest.MakeBlock(1,
		pallettest.MustEncode(t, bob, runtime.RevokeClaim("x")),
	))

	out := buf.String()
	if !strings.Contains(out, `"reason":"ClaimNotFound"`) {
		t.Errorf("expected failure reason in log, got %s", out)
	}
}

func TestGenesisChainID(t *testing.T) {
	_, a := newHarness(t)
	if a.ChainID() != "test-chain" {
		t.Errorf("chain id = %q", a.ChainID())
	}
}
