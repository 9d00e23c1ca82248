package app

import (
	"strconv"

	"github.com/blockberries/pallet/balances"
	"github.com/blockberries/pallet/claims"
	"github.com/blockberries/pallet/runtime"
	"github.com/blockberries/pallet/types"
)

// Event kinds emitted for successful extrinsics.
const (
	EventTransfer     = "transfer"
	EventClaimCreated = "claim_created"
	EventClaimRevoked = "claim_revoked"
)

// callEvents describes the effect of an extrinsic that dispatched
// successfully.
func callEvents(ext runtime.Extrinsic) []types.Event {
	caller := string(ext.Caller)

	switch c := ext.Call.(type) {
	case runtime.BalancesCall:
		if t, ok := c.Call.(balances.Transfer[types.AccountID]); ok {
			return []types.Event{{
				Kind: EventTransfer,
				Attributes: []types.EventAttribute{
					{Key: "from", Value: caller, Index: true},
					{Key: "to", Value: string(t.To), Index: true},
					{Key: "amount", Value: strconv.FormatUint(uint64(t.Amount), 10)},
				},
			}}
		}
	case runtime.ClaimsCall:
		switch cc := c.Call.(type) {
		case claims.CreateClaim[types.AccountID, types.Content]:
			return []types.Event{claimEvent(EventClaimCreated, caller, cc.Content)}
		case claims.RevokeClaim[types.AccountID, types.Content]:
			return []types.Event{claimEvent(EventClaimRevoked, caller, cc.Content)}
		}
	}
	return nil
}

func claimEvent(kind, owner string, content types.Content) types.Event {
	return types.Event{
		Kind: kind,
		Attributes: []types.EventAttribute{
			{Key: "owner", Value: owner, Index: true},
			{Key: "content", Value: string(content), Index: true},
		},
	}
}
