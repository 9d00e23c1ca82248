// Package config loads palletd settings from a TOML file and the
// environment.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/blockberries/pallet/runtime"
	"github.com/blockberries/pallet/types"
)

// DefaultChainID is used when the file does not set chain_id.
const DefaultChainID = "pallet-dev"

// Call kinds accepted in [[blocks.extrinsics]].
const (
	CallTransfer    = "transfer"
	CallCreateClaim = "create_claim"
	CallRevokeClaim = "revoke_claim"
)

// Env holds the settings read from the process environment.
type Env struct {
	ConfigPath string `env:"PALLET_CONFIG" envDefault:"palletd.toml"`
	LogLevel   string `env:"PALLET_LOG_LEVEL" envDefault:"info"`
	LogJSON    bool   `env:"PALLET_LOG_JSON" envDefault:"false"`
}

// ParseEnv parses environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv returns the environment settings.
func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}

// ExtrinsicConfig is one scripted extrinsic.
type ExtrinsicConfig struct {
	Caller  string `toml:"caller"`
	Call    string `toml:"call"`
	To      string `toml:"to"`
	Amount  uint64 `toml:"amount"`
	Content string `toml:"content"`
}

// Extrinsic converts the entry to a runtime extrinsic.
func (c ExtrinsicConfig) Extrinsic() (runtime.Extrinsic, error) {
	caller := types.AccountID(strings.TrimSpace(c.Caller))
	if caller == "" {
		return runtime.Extrinsic{}, fmt.Errorf("extrinsic has no caller")
	}

	var call runtime.Call
	switch strings.TrimSpace(c.Call) {
	case CallTransfer:
		to := types.AccountID(strings.TrimSpace(c.To))
		if to == "" {
			return runtime.Extrinsic{}, fmt.Errorf("transfer from %s has no recipient", caller)
		}
		call = runtime.Transfer(to, types.Balance(c.Amount))
	case CallCreateClaim:
		call = runtime.CreateClaim(types.Content(c.Content))
	case CallRevokeClaim:
		call = runtime.RevokeClaim(types.Content(c.Content))
	default:
		return runtime.Extrinsic{}, fmt.Errorf("unknown call %q", c.Call)
	}
	return runtime.Signed(caller, call), nil
}

// BlockConfig is one scripted block.
type BlockConfig struct {
	Height     uint64            `toml:"height"`
	Extrinsics []ExtrinsicConfig `toml:"extrinsics"`
}

// Config is the palletd run description.
type Config struct {
	ChainID string
	Genesis []types.GenesisAccount
	Blocks  []BlockConfig
}

// GenesisDoc returns the genesis document described by the config.
func (c Config) GenesisDoc() types.GenesisDoc {
	return types.GenesisDoc{ChainID: c.ChainID, Accounts: c.Genesis}
}

// Default returns a config with no accounts and no blocks.
func Default() Config {
	return Config{
		ChainID: DefaultChainID,
		Genesis: []types.GenesisAccount{},
		Blocks:  []BlockConfig{},
	}
}

type fileConfig struct {
	ChainID string                 `toml:"chain_id"`
	Genesis []types.GenesisAccount `toml:"genesis"`
	Blocks  []BlockConfig          `toml:"blocks"`
}

// Load reads path and overlays the keys it defines onto Default.
// Every scripted extrinsic is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("chain_id") {
		if id := strings.TrimSpace(raw.ChainID); id != "" {
			cfg.ChainID = id
		}
	}

	if meta.IsDefined("genesis") {
		cfg.Genesis = raw.Genesis
	}

	if meta.IsDefined("blocks") {
		cfg.Blocks = raw.Blocks
	}

	for i, b := range cfg.Blocks {
		for j, ext := range b.Extrinsics {
			if _, err := ext.Extrinsic(); err != nil {
				return Config{}, fmt.Errorf("block %d extrinsic %d: %w", i, j, err)
			}
		}
	}

	return cfg, nil
}
