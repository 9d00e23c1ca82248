// Package system implements the sequencing pallet: the block height
// and the per-account nonces that order extrinsics.
package system

import (
	"cmp"
	"maps"
	"slices"

	"github.com/blockberries/pallet/types"
)

// AccountNonce is one entry of a nonce snapshot.
type AccountNonce[A cmp.Ordered] struct {
	Account A
	Nonce   types.Nonce
}

// Pallet tracks the current block number and how many extrinsics each
// account has originated.
type Pallet[A cmp.Ordered] struct {
	blockNumber types.BlockNumber
	nonces      map[A]types.Nonce
}

// New creates a system pallet at height zero with no nonces.
func New[A cmp.Ordered]() *Pallet[A] {
	return &Pallet[A]{nonces: make(map[A]types.Nonce)}
}

// BlockNumber returns the current height.
func (p *Pallet[A]) BlockNumber() types.BlockNumber {
	return p.blockNumber
}

// IncBlockNumber advances the height by one. Overflow of the height
// type is the caller's concern.
func (p *Pallet[A]) IncBlockNumber() {
	p.blockNumber++
}

// IncNonce increments who's nonce, starting from zero if who has never
// originated an extrinsic.
func (p *Pallet[A]) IncNonce(who A) {
	p.nonces[who]++
}

// Nonce returns who's nonce. The boolean is false if who has never
// originated an extrinsic, which is distinct from a nonce of zero.
func (p *Pallet[A]) Nonce(who A) (types.Nonce, bool) {
	n, ok := p.nonces[who]
	return n, ok
}

// Nonces returns every recorded nonce ordered by account.
func (p *Pallet[A]) Nonces() []AccountNonce[A] {
	out := make([]AccountNonce[A], 0, len(p.nonces))
	for _, who := range slices.Sorted(maps.Keys(p.nonces)) {
		out = append(out, AccountNonce[A]{Account: who, Nonce: p.nonces[who]})
	}
	return out
}

// Clone returns an independent copy of the pallet.
func (p *Pallet[A]) Clone() *Pallet[A] {
	return &Pallet[A]{
		blockNumber: p.blockNumber,
		nonces:      maps.Clone(p.nonces),
	}
}
