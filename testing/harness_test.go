package pallettest

import (
	"context"
	"testing"

	"github.com/blockberries/pallet"
	"github.com/blockberries/pallet/runtime"
	"github.com/blockberries/pallet/types"
)

func TestHarness_DrivesMockApp(t *testing.T) {
	mock := &MockApp{}
	h := NewHarness(t, mock)

	h.GenesisDefault()
	outcome := h.ExecuteAndCommit(MakeBlock(1, types.Tx{0x01}, types.Tx{0x02}))
	if len(outcome.TxOutcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcome.TxOutcomes))
	}
	h.MustAcceptTx(types.Tx{0x01})
	h.Query(types.QueryHeight, nil)

	if got := mock.GenesisCalls.Load(); got != 1 {
		t.Errorf("GenesisCalls = %d, want 1", got)
	}
	if got := mock.ExecuteBlockCalls.Load(); got != 1 {
		t.Errorf("ExecuteBlockCalls = %d, want 1", got)
	}
	if got := mock.CommitCalls.Load(); got != 1 {
		t.Errorf("CommitCalls = %d, want 1", got)
	}
	if got := mock.CheckTxCalls.Load(); got != 1 {
		t.Errorf("CheckTxCalls = %d, want 1", got)
	}
	if got := mock.QueryCalls.Load(); got != 1 {
		t.Errorf("QueryCalls = %d, want 1", got)
	}
}

func TestHarness_MustHalt(t *testing.T) {
	mock := &MockApp{
		ExecuteBlockFn: func(_ context.Context, b types.FinalizedBlock) (types.BlockOutcome, error) {
			return types.BlockOutcome{}, pallet.NewHaltError(b.Height, pallet.ErrBlockNumberMismatch)
		},
	}
	h := NewHarness(t, mock)
	h.GenesisDefault()

	halt := h.MustHalt(MakeEmptyBlock(9))
	if halt.Height != 9 {
		t.Errorf("halt height = %d, want 9", halt.Height)
	}
	if !h.Server().CanSimulate() {
		t.Error("MockApp should be detected as a simulator")
	}
}

func TestHarness_MustRejectTx(t *testing.T) {
	mock := &MockApp{
		CheckTxFn: func(context.Context, types.Tx) (types.GateVerdict, error) {
			return types.GateVerdict{Code: types.CodeMalformed, Info: "bad"}, nil
		},
	}
	h := NewHarness(t, mock)
	h.GenesisDefault()

	if v := h.MustRejectTx(types.Tx{0x01}); v.Info != "bad" {
		t.Errorf("unexpected verdict: %+v", v)
	}
}

func TestMakeBlock(t *testing.T) {
	b := MakeBlock(3, MustEncode(t, Alice, runtime.Transfer(Bob, 1)))
	if b.Height != 3 || len(b.Txs) != 1 {
		t.Fatalf("unexpected block: %+v", b)
	}
	if b.Time.ToTime().Sub(baseTime).Seconds() != 15 {
		t.Errorf("unexpected block time: %v", b.Time.ToTime())
	}
	if len(MakeEmptyBlock(4).Txs) != 0 {
		t.Error("empty block has txs")
	}
}
