package claims

import (
	"cmp"

	"github.com/blockberries/pallet"
)

// Compile-time interface check.
var _ pallet.Dispatcher[string, Call[string, string]] = (*Pallet[string, string])(nil)

// Call is the closed set of operations routable to the registry.
type Call[A comparable, C cmp.Ordered] interface {
	dispatch(p *Pallet[A, C], caller A) error
}

// CreateClaim claims Content for the caller.
type CreateClaim[A comparable, C cmp.Ordered] struct {
	Content C
}

func (c CreateClaim[A, C]) dispatch(p *Pallet[A, C], caller A) error {
	return p.CreateClaim(caller, c.Content)
}

// RevokeClaim releases the caller's claim on Content.
type RevokeClaim[A comparable, C cmp.Ordered] struct {
	Content C
}

func (c RevokeClaim[A, C]) dispatch(p *Pallet[A, C], caller A) error {
	return p.RevokeClaim(caller, c.Content)
}

// Dispatch applies call on behalf of caller.
func (p *Pallet[A, C]) Dispatch(caller A, call Call[A, C]) error {
	if call == nil {
		return pallet.ErrNilCall
	}
	return call.dispatch(p, caller)
}
