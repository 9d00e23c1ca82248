package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/blockberries/pallet"
	"github.com/blockberries/pallet/runtime"
)

const script = `
chain_id = "demo"

[[genesis]]
account = "alice"
balance = 100

[[blocks]]
height = 1

[[blocks.extrinsics]]
caller = "alice"
call = "transfer"
to = "bob"
amount = 30

[[blocks.extrinsics]]
caller = "alice"
call = "transfer"
to = "charlie"
amount = 20

[[blocks]]
height = 2

[[blocks.extrinsics]]
caller = "bob"
call = "create_claim"
content = "doc"

[[blocks.extrinsics]]
caller = "charlie"
call = "revoke_claim"
content = "doc"
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "palletd.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRunScript(t *testing.T) {
	t.Setenv("PALLET_LOG_LEVEL", "error")

	var out bytes.Buffer
	if err := run(context.Background(), []string{writeScript(t, script)}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	var state runtime.State
	if err := json.Unmarshal(out.Bytes(), &state); err != nil {
		t.Fatalf("decode output %q: %v", out.String(), err)
	}
	if state.BlockNumber != 2 {
		t.Fatalf("unexpected block number: %d", state.BlockNumber)
	}
	want := []runtime.BalanceEntry{
		{Account: "alice", Balance: 50},
		{Account: "bob", Balance: 30},
		{Account: "charlie", Balance: 20},
	}
	if len(state.Balances) != len(want) {
		t.Fatalf("unexpected balances: %+v", state.Balances)
	}
	for i := range want {
		if state.Balances[i] != want[i] {
			t.Fatalf("balance %d: got %+v, want %+v", i, state.Balances[i], want[i])
		}
	}
	if len(state.Claims) != 1 || state.Claims[0].Owner != "bob" {
		t.Fatalf("unexpected claims: %+v", state.Claims)
	}
	if len(state.Nonces) != 3 {
		t.Fatalf("expected nonces for alice, bob and charlie: %+v", state.Nonces)
	}
}

func TestRunHaltsOnHeightGap(t *testing.T) {
	t.Setenv("PALLET_LOG_LEVEL", "error")

	path := writeScript(t, `
[[blocks]]
height = 2
`)
	err := run(context.Background(), []string{path}, &bytes.Buffer{})
	if _, ok := pallet.IsHalt(err); !ok {
		t.Fatalf("expected halt error, got %v", err)
	}
	if !errors.Is(err, pallet.ErrBlockNumberMismatch) {
		t.Fatalf("expected block number mismatch, got %v", err)
	}
}

func TestRunMissingConfig(t *testing.T) {
	t.Setenv("PALLET_LOG_LEVEL", "error")
	if err := run(context.Background(), []string{filepath.Join(t.TempDir(), "nope.toml")}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for missing config")
	}
}
