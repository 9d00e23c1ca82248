package runtime

import (
	"github.com/blockberries/pallet"
	"github.com/blockberries/pallet/balances"
	"github.com/blockberries/pallet/claims"
	"github.com/blockberries/pallet/types"
)

// Call is the closed union of every operation the runtime can route:
// one variant per pallet, each wrapping that pallet's own call union.
type Call interface {
	dispatch(rt *Runtime, caller types.AccountID) error
}

// Extrinsic is a runtime call tagged with its originating account.
type Extrinsic = pallet.Extrinsic[Call]

// Block is a block of runtime extrinsics.
type Block = pallet.Block[Call]

// BalancesCall routes to the balances pallet.
type BalancesCall struct {
	Call balances.Call[types.AccountID]
}

func (c BalancesCall) dispatch(rt *Runtime, caller types.AccountID) error {
	return rt.balances.Dispatch(caller, c.Call)
}

// ClaimsCall routes to the claims pallet.
type ClaimsCall struct {
	Call claims.Call[types.AccountID, types.Content]
}

func (c ClaimsCall) dispatch(rt *Runtime, caller types.AccountID) error {
	return rt.claims.Dispatch(caller, c.Call)
}

// Transfer builds a balances transfer call.
func Transfer(to types.AccountID, amount types.Balance) Call {
	return BalancesCall{Call: balances.Transfer[types.AccountID]{To: to, Amount: amount}}
}

// CreateClaim builds a claims create call.
func CreateClaim(content types.Content) Call {
	return ClaimsCall{Call: claims.CreateClaim[types.AccountID, types.Content]{Content: content}}
}

// RevokeClaim builds a claims revoke call.
func RevokeClaim(content types.Content) Call {
	return ClaimsCall{Call: claims.RevokeClaim[types.AccountID, types.Content]{Content: content}}
}

// NewBlock assembles a block at height from extrinsics.
func NewBlock(height types.BlockNumber, extrinsics ...Extrinsic) Block {
	return Block{
		Header:     pallet.Header{BlockNumber: height},
		Extrinsics: extrinsics,
	}
}

// Signed pairs call with caller.
func Signed(caller types.AccountID, call Call) Extrinsic {
	return Extrinsic{Caller: caller, Call: call}
}
