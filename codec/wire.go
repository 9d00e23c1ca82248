package codec

import "github.com/blockberries/pallet/types"

// Wire forms of runtime extrinsics. Each union is a struct of pointer
// variants of which exactly one must be set.

// Extrinsic is the encoded form of a runtime.Extrinsic.
type Extrinsic struct {
	Caller   types.AccountID `cramberry:"1"`
	Balances *BalancesCall   `cramberry:"2"`
	Claims   *ClaimsCall     `cramberry:"3"`
}

// BalancesCall is the encoded balances call union.
type BalancesCall struct {
	Transfer *Transfer `cramberry:"1"`
}

// Transfer is the encoded balances transfer.
type Transfer struct {
	To     types.AccountID `cramberry:"1"`
	Amount types.Balance   `cramberry:"2"`
}

// ClaimsCall is the encoded claims call union.
type ClaimsCall struct {
	CreateClaim *Claim `cramberry:"1"`
	RevokeClaim *Claim `cramberry:"2"`
}

// Claim names the content of a claims call.
type Claim struct {
	Content types.Content `cramberry:"1"`
}
