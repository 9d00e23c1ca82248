package balances

import (
	"cmp"

	"github.com/blockberries/pallet"
	"github.com/blockberries/pallet/types"
)

// Compile-time interface check.
var _ pallet.Dispatcher[string, Call[string]] = (*Pallet[string])(nil)

// Call is the closed set of operations routable to the ledger. Every
// variant routes itself, so a variant without a route does not compile.
type Call[A cmp.Ordered] interface {
	dispatch(p *Pallet[A], caller A) error
}

// Transfer moves Amount from the caller to To.
type Transfer[A cmp.Ordered] struct {
	To     A
	Amount types.Balance
}

func (c Transfer[A]) dispatch(p *Pallet[A], caller A) error {
	return p.Transfer(caller, c.To, c.Amount)
}

// Dispatch applies call on behalf of caller.
func (p *Pallet[A]) Dispatch(caller A, call Call[A]) error {
	if call == nil {
		return pallet.ErrNilCall
	}
	return call.dispatch(p, caller)
}
