// Package claims implements the proof-of-existence pallet: a registry
// mapping each piece of content to the single account that claimed it.
package claims

import (
	"cmp"
	"maps"
	"slices"

	"github.com/blockberries/pallet"
)

// Failure reasons returned by CreateClaim and RevokeClaim.
const (
	ErrAlreadyClaimed pallet.Error = "AlreadyClaimed"
	ErrClaimNotFound  pallet.Error = "ClaimNotFound"
	ErrNotOwner       pallet.Error = "NotOwner"
)

// Record is one entry of a claim snapshot.
type Record[A comparable, C cmp.Ordered] struct {
	Content C
	Owner   A
}

// Pallet stores at most one owner per content identifier.
type Pallet[A comparable, C cmp.Ordered] struct {
	claims map[C]A
}

// New creates an empty registry.
func New[A comparable, C cmp.Ordered]() *Pallet[A, C] {
	return &Pallet[A, C]{claims: make(map[C]A)}
}

// Claim returns the owner of content, if any.
func (p *Pallet[A, C]) Claim(content C) (A, bool) {
	owner, ok := p.claims[content]
	return owner, ok
}

// CreateClaim records caller as the owner of content.
func (p *Pallet[A, C]) CreateClaim(caller A, content C) error {
	if _, ok := p.claims[content]; ok {
		return ErrAlreadyClaimed
	}
	p.claims[content] = caller
	return nil
}

// RevokeClaim removes caller's claim on content.
func (p *Pallet[A, C]) RevokeClaim(caller A, content C) error {
	owner, ok := p.claims[content]
	if !ok {
		return ErrClaimNotFound
	}
	if owner != caller {
		return ErrNotOwner
	}
	delete(p.claims, content)
	return nil
}

// Claims returns every claim ordered by content.
func (p *Pallet[A, C]) Claims() []Record[A, C] {
	out := make([]Record[A, C], 0, len(p.claims))
	for _, content := range slices.Sorted(maps.Keys(p.claims)) {
		out = append(out, Record[A, C]{Content: content, Owner: p.claims[content]})
	}
	return out
}

// Clone returns an independent copy of the registry.
func (p *Pallet[A, C]) Clone() *Pallet[A, C] {
	return &Pallet[A, C]{claims: maps.Clone(p.claims)}
}
