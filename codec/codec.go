// Package codec converts runtime extrinsics to and from the opaque
// transaction bytes carried in blocks, using cramberry for
// deterministic binary serialization.
package codec

import (
	"errors"
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"

	"github.com/blockberries/pallet/balances"
	"github.com/blockberries/pallet/claims"
	"github.com/blockberries/pallet/runtime"
	"github.com/blockberries/pallet/types"
)

var (
	// ErrMalformed is returned when bytes do not decode to an extrinsic.
	ErrMalformed = errors.New("codec: malformed extrinsic")
	// ErrEmptyCall is returned when no call variant is set.
	ErrEmptyCall = errors.New("codec: no call variant set")
	// ErrAmbiguousCall is returned when more than one variant is set.
	ErrAmbiguousCall = errors.New("codec: more than one call variant set")
	// ErrUnsupportedCall is returned when a call has no wire form.
	ErrUnsupportedCall = errors.New("codec: unsupported call")
)

// EncodeExtrinsic encodes ext as a transaction.
func EncodeExtrinsic(ext runtime.Extrinsic) (types.Tx, error) {
	w, err := toWire(ext)
	if err != nil {
		return nil, err
	}
	data, err := cramberry.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("cramberry marshal: %w", err)
	}
	return data, nil
}

// DecodeExtrinsic decodes a transaction into a runtime extrinsic.
func DecodeExtrinsic(tx types.Tx) (runtime.Extrinsic, error) {
	if len(tx) == 0 {
		return runtime.Extrinsic{}, fmt.Errorf("%w: empty transaction", ErrMalformed)
	}
	var w Extrinsic
	if err := cramberry.Unmarshal(tx, &w); err != nil {
		return runtime.Extrinsic{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return fromWire(w)
}

func toWire(ext runtime.Extrinsic) (Extrinsic, error) {
	w := Extrinsic{Caller: ext.Caller}
	switch c := ext.Call.(type) {
	case runtime.BalancesCall:
		switch bc := c.Call.(type) {
		case balances.Transfer[types.AccountID]:
			w.Balances = &BalancesCall{Transfer: &Transfer{To: bc.To, Amount: bc.Amount}}
		default:
			return Extrinsic{}, fmt.Errorf("%w: balances %T", ErrUnsupportedCall, c.Call)
		}
	case runtime.ClaimsCall:
		switch cc := c.Call.(type) {
		case claims.CreateClaim[types.AccountID, types.Content]:
			w.Claims = &ClaimsCall{CreateClaim: &Claim{Content: cc.Content}}
		case claims.RevokeClaim[types.AccountID, types.Content]:
			w.Claims = &ClaimsCall{RevokeClaim: &Claim{Content: cc.Content}}
		default:
			return Extrinsic{}, fmt.Errorf("%w: claims %T", ErrUnsupportedCall, c.Call)
		}
	default:
		return Extrinsic{}, fmt.Errorf("%w: %T", ErrUnsupportedCall, ext.Call)
	}
	return w, nil
}

func fromWire(w Extrinsic) (runtime.Extrinsic, error) {
	var calls []runtime.Call

	if b := w.Balances; b != nil {
		if b.Transfer == nil {
			return runtime.Extrinsic{}, fmt.Errorf("%w: balances", ErrEmptyCall)
		}
		calls = append(calls, runtime.Transfer(b.Transfer.To, b.Transfer.Amount))
	}
	if c := w.Claims; c != nil {
		switch {
		case c.CreateClaim != nil && c.RevokeClaim != nil:
			return runtime.Extrinsic{}, fmt.Errorf("%w: claims", ErrAmbiguousCall)
		case c.CreateClaim != nil:
			calls = append(calls, runtime.CreateClaim(c.CreateClaim.Content))
		case c.RevokeClaim != nil:
			calls = append(calls, runtime.RevokeClaim(c.RevokeClaim.Content))
		default:
			return runtime.Extrinsic{}, fmt.Errorf("%w: claims", ErrEmptyCall)
		}
	}

	switch len(calls) {
	case 0:
		return runtime.Extrinsic{}, ErrEmptyCall
	case 1:
		return runtime.Signed(w.Caller, calls[0]), nil
	default:
		return runtime.Extrinsic{}, ErrAmbiguousCall
	}
}
