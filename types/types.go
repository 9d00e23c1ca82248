// Package types defines the primitive and wire types shared by the
// pallet runtime, its modules and the application boundary.
//
// Wire-facing structs carry cramberry struct tags for deterministic
// binary serialization. Primitive runtime types (accounts, balances,
// nonces, heights) are plain named integers and strings.
package types

import "math/bits"

// AccountID identifies a principal. It is opaque and totally ordered
// so it can key every per-account map in the runtime.
type AccountID string

// Content is an opaque, printable identifier for claimable content.
type Content string

// Nonce counts the extrinsics an account has originated.
type Nonce uint32

// BlockNumber is the height of a block.
type BlockNumber uint32

// Balance is a non-negative quantity of the native token.
type Balance uint64

// CheckedAdd returns b+v, or false if the sum overflows.
func (b Balance) CheckedAdd(v Balance) (Balance, bool) {
	sum, carry := bits.Add64(uint64(b), uint64(v), 0)
	if carry != 0 {
		return 0, false
	}
	return Balance(sum), true
}

// CheckedSub returns b-v, or false if the difference underflows.
func (b Balance) CheckedSub(v Balance) (Balance, bool) {
	diff, borrow := bits.Sub64(uint64(b), uint64(v), 0)
	if borrow != 0 {
		return 0, false
	}
	return Balance(diff), true
}

// SaturatingAdd returns b+v clamped to the maximum balance.
func (b Balance) SaturatingAdd(v Balance) Balance {
	sum, ok := b.CheckedAdd(v)
	if !ok {
		return MaxBalance
	}
	return sum
}

// SaturatingSub returns b-v clamped to zero.
func (b Balance) SaturatingSub(v Balance) Balance {
	diff, ok := b.CheckedSub(v)
	if !ok {
		return 0
	}
	return diff
}

// MaxBalance is the largest representable balance.
const MaxBalance = Balance(^uint64(0))

// Hash is a 32-byte cryptographic hash.
type Hash [32]byte

// AppHash is a deterministic fingerprint of the runtime state.
type AppHash [32]byte

// Tx is an encoded extrinsic. The block producer never inspects it.
type Tx []byte

// QueryPath is a structured key for state queries (e.g. "/balance").
type QueryPath string
