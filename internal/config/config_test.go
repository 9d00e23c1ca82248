package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blockberries/pallet/runtime"
	"github.com/blockberries/pallet/types"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "palletd.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
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
caller = "bob"
call = "create_claim"
content = "doc"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ChainID != "demo" {
		t.Fatalf("unexpected chain id: %q", cfg.ChainID)
	}
	if len(cfg.Genesis) != 1 || cfg.Genesis[0] != (types.GenesisAccount{Account: "alice", Balance: 100}) {
		t.Fatalf("unexpected genesis: %+v", cfg.Genesis)
	}
	if len(cfg.Blocks) != 1 || len(cfg.Blocks[0].Extrinsics) != 2 {
		t.Fatalf("unexpected blocks: %+v", cfg.Blocks)
	}

	ext, err := cfg.Blocks[0].Extrinsics[0].Extrinsic()
	if err != nil {
		t.Fatalf("convert extrinsic: %v", err)
	}
	if ext.Caller != "alice" {
		t.Fatalf("unexpected caller: %q", ext.Caller)
	}
	if _, ok := ext.Call.(runtime.BalancesCall); !ok {
		t.Fatalf("expected balances call, got %T", ext.Call)
	}

	doc := cfg.GenesisDoc()
	if doc.ChainID != "demo" || len(doc.Accounts) != 1 {
		t.Fatalf("unexpected genesis doc: %+v", doc)
	}
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ChainID != DefaultChainID {
		t.Fatalf("unexpected chain id: %q", cfg.ChainID)
	}
	if cfg.Genesis == nil || cfg.Blocks == nil {
		t.Fatalf("expected non-nil defaults: %+v", cfg)
	}
}

func TestLoadRejectsBadExtrinsics(t *testing.T) {
	cases := map[string]string{
		"unknown call": `
[[blocks]]
height = 1
[[blocks.extrinsics]]
caller = "alice"
call = "mint"
`,
		"missing caller": `
[[blocks]]
height = 1
[[blocks.extrinsics]]
call = "create_claim"
content = "x"
`,
		"transfer without recipient": `
[[blocks]]
height = 1
[[blocks.extrinsics]]
caller = "alice"
call = "transfer"
amount = 1
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatal("expected load error")
			}
		})
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, `chian_id = "typo"`))
	if err == nil || !strings.Contains(err.Error(), "chian_id") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("PALLET_CONFIG", "/etc/palletd.toml")
	t.Setenv("PALLET_LOG_LEVEL", "debug")
	t.Setenv("PALLET_LOG_JSON", "true")

	e, err := LoadEnv()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if e.ConfigPath != "/etc/palletd.toml" || e.LogLevel != "debug" || !e.LogJSON {
		t.Fatalf("unexpected env: %+v", e)
	}
}

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("PALLET_CONFIG", "")
	os.Unsetenv("PALLET_CONFIG")

	e, err := LoadEnv()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if e.ConfigPath != "palletd.toml" {
		t.Fatalf("unexpected default config path: %q", e.ConfigPath)
	}
}

func TestLoadEnvBadBool(t *testing.T) {
	t.Setenv("PALLET_LOG_JSON", "maybe")
	if _, err := LoadEnv(); err == nil {
		t.Fatal("expected parse error")
	}
}
