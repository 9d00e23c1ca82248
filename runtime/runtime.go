// Package runtime composes the system, balances and claims pallets into
// one state value and executes blocks against it.
//
// A Runtime is a plain value owned by whoever drives it. It performs no
// locking: concurrent block submission must be serialized by the
// caller.
package runtime

import (
	"github.com/rs/zerolog"

	"github.com/blockberries/pallet"
	"github.com/blockberries/pallet/balances"
	"github.com/blockberries/pallet/claims"
	"github.com/blockberries/pallet/system"
	"github.com/blockberries/pallet/types"
)

// Compile-time interface check.
var _ pallet.Dispatcher[types.AccountID, Call] = (*Runtime)(nil)

// Runtime is the aggregate runtime state.
type Runtime struct {
	system   *system.Pallet[types.AccountID]
	balances *balances.Pallet[types.AccountID]
	claims   *claims.Pallet[types.AccountID, types.Content]

	sink   Sink
	logger zerolog.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for block-level messages and, unless
// WithSink is also given, for extrinsic failures.
func WithLogger(l zerolog.Logger) Option {
	return func(rt *Runtime) { rt.logger = l }
}

// WithSink sets where extrinsic failures are reported.
func WithSink(s Sink) Option {
	return func(rt *Runtime) { rt.sink = s }
}

// New creates a runtime with every pallet at its empty state.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		system:   system.New[types.AccountID](),
		balances: balances.New[types.AccountID](),
		claims:   claims.New[types.AccountID, types.Content](),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.sink == nil {
		rt.sink = LogSink{Logger: rt.logger}
	}
	return rt
}

// System returns the sequencing pallet.
func (rt *Runtime) System() *system.Pallet[types.AccountID] { return rt.system }

// Balances returns the ledger pallet. Direct writes through it are a
// setup operation, not dispatch.
func (rt *Runtime) Balances() *balances.Pallet[types.AccountID] { return rt.balances }

// Claims returns the claim registry pallet.
func (rt *Runtime) Claims() *claims.Pallet[types.AccountID, types.Content] { return rt.claims }

// BlockNumber returns the current height.
func (rt *Runtime) BlockNumber() types.BlockNumber { return rt.system.BlockNumber() }

// Dispatch routes call to the pallet that owns it. Pallet failures are
// returned unmodified.
func (rt *Runtime) Dispatch(caller types.AccountID, call Call) error {
	if call == nil {
		return pallet.ErrNilCall
	}
	return call.dispatch(rt, caller)
}

// ExecuteBlock advances the runtime by one block.
//
// The height is incremented first. If the block's header does not carry
// the new height, a *pallet.BlockError is returned and no extrinsic is
// applied; the height stays incremented. Otherwise every extrinsic is
// applied in order: the caller's nonce is bumped whether or not the call
// succeeds, and a failed call is reported to the sink without affecting
// the remaining extrinsics.
func (rt *Runtime) ExecuteBlock(block Block) error {
	rt.system.IncBlockNumber()
	height := rt.system.BlockNumber()

	if block.Header.BlockNumber != height {
		err := &pallet.BlockError{Expected: height, Got: block.Header.BlockNumber}
		rt.logger.Error().
			Uint32("height", uint32(height)).
			Uint32("got", uint32(block.Header.BlockNumber)).
			Msg("block rejected")
		return err
	}

	failed := 0
	for i, ext := range block.Extrinsics {
		rt.system.IncNonce(ext.Caller)
		if err := rt.Dispatch(ext.Caller, ext.Call); err != nil {
			failed++
			rt.sink.ExtrinsicFailed(ExtrinsicFailure{
				Height: height,
				Index:  i,
				Caller: ext.Caller,
				Err:    err,
			})
		}
	}

	rt.logger.Debug().
		Uint32("height", uint32(height)).
		Int("extrinsics", len(block.Extrinsics)).
		Int("failed", failed).
		Msg("block executed")
	return nil
}

// Clone returns a deep copy of the runtime state. The copy shares the
// original's sink and logger.
func (rt *Runtime) Clone() *Runtime {
	return &Runtime{
		system:   rt.system.Clone(),
		balances: rt.balances.Clone(),
		claims:   rt.claims.Clone(),
		sink:     rt.sink,
		logger:   rt.logger,
	}
}

// CloneWithSink is Clone with failures reported to sink instead.
func (rt *Runtime) CloneWithSink(sink Sink) *Runtime {
	c := rt.Clone()
	c.sink = sink
	return c
}
