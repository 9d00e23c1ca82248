package pallettest

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"github.com/blockberries/pallet"
	"github.com/blockberries/pallet/runtime"
	"github.com/blockberries/pallet/server"
	"github.com/blockberries/pallet/types"
)

// RunComplianceSuite checks that a pallet application follows the
// lifecycle contract and the runtime's block semantics.
//
// The factory must return a fresh application for each subtest. The
// application is expected to accept codec-encoded extrinsics and to
// serve the standard query paths.
func RunComplianceSuite(t *testing.T, factory func() pallet.Lifecycle) {
	t.Helper()

	t.Run("genesis_starts_at_height_zero", func(t *testing.T) {
		h := NewHarness(t, factory())
		res := h.GenesisDefault()
		if res.Height != 0 {
			t.Errorf("genesis height = %d, want 0", res.Height)
		}
		if res.AppHash == (types.AppHash{}) {
			t.Error("genesis should return a non-zero AppHash")
		}
		if got := queryUint(t, h, types.QueryBalance, Alice); got != 100 {
			t.Errorf("genesis balance of alice = %d, want 100", got)
		}
	})

	t.Run("execute_commit_cycle", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		for i := uint64(1); i <= 5; i++ {
			h.ExecuteBlock(MakeEmptyBlock(i))
			res := h.Commit()
			if res.Height != i {
				t.Errorf("commit height = %d, want %d", res.Height, i)
			}
		}
	})

	t.Run("deterministic_with_txs", func(t *testing.T) {
		h1 := NewHarness(t, factory())
		h1.GenesisDefault()
		h2 := NewHarness(t, factory())
		h2.GenesisDefault()

		block := MakeBlock(1,
			MustEncode(t, Alice, runtime.Transfer(Bob, 30)),
			MustEncode(t, Alice, runtime.CreateClaim("doc")),
			MustEncode(t, Bob, runtime.Transfer(Charlie, 500)),
		)

		o1 := h1.ExecuteAndCommit(block)
		o2 := h2.ExecuteAndCommit(block)

		if o1.AppHash != o2.AppHash {
			t.Errorf("non-deterministic: %x != %x", o1.AppHash, o2.AppHash)
		}
		if len(o1.TxOutcomes) != len(o2.TxOutcomes) {
			t.Fatalf("outcome count mismatch: %d != %d", len(o1.TxOutcomes), len(o2.TxOutcomes))
		}
		for i := range o1.TxOutcomes {
			if o1.TxOutcomes[i].Code != o2.TxOutcomes[i].Code {
				t.Errorf("tx %d: code %d != %d", i, o1.TxOutcomes[i].Code, o2.TxOutcomes[i].Code)
			}
		}
	})

	t.Run("failed_extrinsic_does_not_abort_block", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		outcome := h.ExecuteAndCommit(MakeBlock(1,
			MustEncode(t, Bob, runtime.Transfer(Charlie, 1)),
			MustEncode(t, Alice, runtime.Transfer(Bob, 10)),
		))
		if outcome.TxOutcomes[0].OK() {
			t.Error("transfer from an empty account should fail")
		}
		if !outcome.TxOutcomes[1].OK() {
			t.Errorf("second transfer failed: %q", outcome.TxOutcomes[1].Info)
		}
		if got := queryUint(t, h, types.QueryBalance, Bob); got != 10 {
			t.Errorf("bob balance = %d, want 10", got)
		}
		if got := queryUint(t, h, types.QueryNonce, Bob); got != 1 {
			t.Errorf("failed extrinsic should still count a nonce, got %d", got)
		}
	})

	t.Run("mismatched_height_halts", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		h.MustHalt(MakeBlock(2, MustEncode(t, Alice, runtime.Transfer(Bob, 10))))

		if _, err := h.Server().Commit(context.Background()); !errors.Is(err, server.ErrOutOfOrder) {
			t.Fatalf("commit after halt: expected ErrOutOfOrder, got %v", err)
		}
		if got := queryUint(t, h, types.QueryBalance, Bob); got != 0 {
			t.Errorf("halted block leaked state: bob balance = %d", got)
		}

		h.ExecuteAndCommit(MakeEmptyBlock(1))
		if got := queryUint(t, h, types.QueryHeight, ""); got != 1 {
			t.Errorf("height after recovery = %d, want 1", got)
		}
	})

	t.Run("uncommitted_state_is_invisible", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		h.ExecuteBlock(MakeBlock(1, MustEncode(t, Alice, runtime.Transfer(Bob, 40))))
		if got := queryUint(t, h, types.QueryBalance, Bob); got != 0 {
			t.Errorf("query saw staged state: bob balance = %d", got)
		}
		h.Commit()
		if got := queryUint(t, h, types.QueryBalance, Bob); got != 40 {
			t.Errorf("bob balance after commit = %d, want 40", got)
		}
	})

	t.Run("checktx_gates_malformed", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		v := h.MustAcceptTx(MustEncode(t, Alice, runtime.Transfer(Bob, 1)))
		if v.Sender != Alice {
			t.Errorf("sender = %q, want %q", v.Sender, Alice)
		}
		h.MustRejectTx(types.Tx{0xFF, 0xFF, 0xFF, 0xFF})
	})

	t.Run("concurrent_checktx_and_query", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()
		tx := MustEncode(t, Alice, runtime.Transfer(Bob, 1))

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				if _, err := h.Server().CheckTx(context.Background(), tx); err != nil {
					t.Errorf("concurrent CheckTx failed: %v", err)
				}
			}()
			go func() {
				defer wg.Done()
				_, err := h.Server().Query(context.Background(), types.StateQuery{Path: types.QueryHeight})
				if err != nil {
					t.Errorf("concurrent Query failed: %v", err)
				}
			}()
		}
		wg.Wait()
	})

	t.Run("tx_outcome_indices", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		block := MakeBlock(1,
			MustEncode(t, Alice, runtime.Transfer(Bob, 1)),
			types.Tx{0xde, 0xad},
			MustEncode(t, Alice, runtime.RevokeClaim("missing")),
		)
		outcome := h.ExecuteAndCommit(block)

		if len(outcome.TxOutcomes) != 3 {
			t.Fatalf("expected 3 tx outcomes, got %d", len(outcome.TxOutcomes))
		}
		for i, o := range outcome.TxOutcomes {
			if o.Index != uint32(i) {
				t.Errorf("tx %d: expected index %d, got %d", i, i, o.Index)
			}
		}
		if outcome.TxOutcomes[1].Code != types.CodeMalformed {
			t.Errorf("tx 1: code = %d, want CodeMalformed", outcome.TxOutcomes[1].Code)
		}
		if outcome.TxOutcomes[2].Info != "ClaimNotFound" {
			t.Errorf("tx 2: info = %q, want ClaimNotFound", outcome.TxOutcomes[2].Info)
		}
	})
}

// queryUint reads a big-endian uint64 value, treating not-found as 0.
func queryUint(t *testing.T, h *Harness, path types.QueryPath, key types.AccountID) uint64 {
	t.Helper()
	res := h.Query(path, []byte(key))
	if !res.Found() {
		return 0
	}
	if len(res.Value) != 8 {
		t.Fatalf("query %s %q: value has %d bytes, want 8", path, key, len(res.Value))
	}
	return binary.BigEndian.Uint64(res.Value)
}
