// Package balances implements the account ledger pallet. It owns every
// account balance in the runtime; nothing else writes them.
package balances

import (
	"cmp"
	"maps"
	"slices"

	"github.com/blockberries/pallet"
	"github.com/blockberries/pallet/types"
)

// Failure reasons returned by Transfer.
const (
	ErrInsufficientFunds pallet.Error = "InsufficientFunds"
	ErrOverflow          pallet.Error = "Overflow"
)

// Account is one entry of a balance snapshot.
type Account[A cmp.Ordered] struct {
	Account A
	Balance types.Balance
}

// Pallet stores balances keyed by account.
type Pallet[A cmp.Ordered] struct {
	balances map[A]types.Balance
}

// New creates an empty ledger.
func New[A cmp.Ordered]() *Pallet[A] {
	return &Pallet[A]{balances: make(map[A]types.Balance)}
}

// SetBalance overwrites who's balance. It is a setup operation used at
// genesis and is never reachable through dispatch.
func (p *Pallet[A]) SetBalance(who A, amount types.Balance) {
	p.balances[who] = amount
}

// Balance returns who's balance, or zero if who was never recorded.
func (p *Pallet[A]) Balance(who A) types.Balance {
	return p.balances[who]
}

// Transfer moves amount from caller to to.
//
// Both balances are computed before either is written, so a failed
// transfer leaves the ledger untouched. A transfer to oneself succeeds
// without changing anything as long as caller holds at least amount.
func (p *Pallet[A]) Transfer(caller, to A, amount types.Balance) error {
	newCaller, ok := p.Balance(caller).CheckedSub(amount)
	if !ok {
		return ErrInsufficientFunds
	}
	if caller == to {
		return nil
	}
	newTo, ok := p.Balance(to).CheckedAdd(amount)
	if !ok {
		return ErrOverflow
	}
	p.balances[caller] = newCaller
	p.balances[to] = newTo
	return nil
}

// Accounts returns every recorded balance ordered by account.
func (p *Pallet[A]) Accounts() []Account[A] {
	out := make([]Account[A], 0, len(p.balances))
	for _, who := range slices.Sorted(maps.Keys(p.balances)) {
		out = append(out, Account[A]{Account: who, Balance: p.balances[who]})
	}
	return out
}

// TotalIssuance returns the sum of all balances, saturating at the
// maximum balance.
func (p *Pallet[A]) TotalIssuance() types.Balance {
	var total types.Balance
	for _, b := range p.balances {
		total = total.SaturatingAdd(b)
	}
	return total
}

// Clone returns an independent copy of the ledger.
func (p *Pallet[A]) Clone() *Pallet[A] {
	return &Pallet[A]{balances: maps.Clone(p.balances)}
}
