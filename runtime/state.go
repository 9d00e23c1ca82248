package runtime

import (
	"crypto/sha256"

	"github.com/blockberries/cramberry/pkg/cramberry"

	"github.com/blockberries/pallet/types"
)

// NonceEntry is one account's nonce in a State.
type NonceEntry struct {
	Account types.AccountID `cramberry:"1" json:"account"`
	Nonce   types.Nonce     `cramberry:"2" json:"nonce"`
}

// BalanceEntry is one account's balance in a State.
type BalanceEntry struct {
	Account types.AccountID `cramberry:"1" json:"account"`
	Balance types.Balance   `cramberry:"2" json:"balance"`
}

// ClaimEntry is one claim in a State.
type ClaimEntry struct {
	Content types.Content   `cramberry:"1" json:"content"`
	Owner   types.AccountID `cramberry:"2" json:"owner"`
}

// State is a read-only copy of the full runtime state. Every list is
// sorted by its key, so equal runtimes produce equal States.
type State struct {
	BlockNumber types.BlockNumber `cramberry:"1" json:"block_number"`
	Nonces      []NonceEntry      `cramberry:"2" json:"nonces"`
	Balances    []BalanceEntry    `cramberry:"3" json:"balances"`
	Claims      []ClaimEntry      `cramberry:"4" json:"claims"`
}

// Snapshot captures the current state.
func (rt *Runtime) Snapshot() State {
	nonces := rt.system.Nonces()
	accounts := rt.balances.Accounts()
	records := rt.claims.Claims()

	s := State{
		BlockNumber: rt.system.BlockNumber(),
		Nonces:      make([]NonceEntry, 0, len(nonces)),
		Balances:    make([]BalanceEntry, 0, len(accounts)),
		Claims:      make([]ClaimEntry, 0, len(records)),
	}
	for _, n := range nonces {
		s.Nonces = append(s.Nonces, NonceEntry{Account: n.Account, Nonce: n.Nonce})
	}
	for _, b := range accounts {
		s.Balances = append(s.Balances, BalanceEntry{Account: b.Account, Balance: b.Balance})
	}
	for _, c := range records {
		s.Claims = append(s.Claims, ClaimEntry{Content: c.Content, Owner: c.Owner})
	}
	return s
}

// Root computes a deterministic SHA256 over the cramberry encoding of
// the state.
func (s State) Root() types.AppHash {
	data, _ := cramberry.Marshal(s) // state is always serializable
	return types.AppHash(sha256.Sum256(data))
}

// StateRoot is shorthand for rt.Snapshot().Root().
func (rt *Runtime) StateRoot() types.AppHash {
	return rt.Snapshot().Root()
}
