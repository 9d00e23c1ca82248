// Package pallet defines the dispatch contract shared by every runtime
// module, the block and extrinsic shapes the runtime executes, and the
// Lifecycle contract an engine drives.
//
// A pallet owns one slice of runtime state and exposes a closed set of
// calls on it. The runtime composes pallets and routes each extrinsic
// to the pallet that owns its call. Both levels satisfy [Dispatcher].
package pallet

import (
	"context"

	"github.com/blockberries/pallet/types"
)

// Dispatcher applies a call on behalf of a caller.
//
// A nil error means the call was applied. A non-nil error means the
// dispatcher left its state unchanged; module failures are returned as
// an [Error] tag and must be passed through unmodified by every layer
// above the module.
type Dispatcher[Caller, Call any] interface {
	Dispatch(caller Caller, call Call) error
}

// Header carries the metadata of a block.
type Header struct {
	BlockNumber types.BlockNumber
}

// Extrinsic is an externally supplied call together with the account
// that originated it.
type Extrinsic[Call any] struct {
	Caller types.AccountID
	Call   Call
}

// Block is a header plus an ordered list of extrinsics.
type Block[Call any] struct {
	Header     Header
	Extrinsics []Extrinsic[Call]
}

// Lifecycle is the contract between a block-producing engine and an
// application hosting a runtime.
//
// The engine guarantees the following call order:
//  1. Genesis is called exactly once, before anything else.
//  2. ExecuteBlock(h) is called once per height h, in increasing order.
//  3. Commit is called exactly once after each successful ExecuteBlock.
//  4. CheckTx and Query may be called concurrently at any time after
//     Genesis.
type Lifecycle interface {
	// Genesis seeds the initial state. Balances listed in the document
	// are written directly, bypassing dispatch.
	Genesis(ctx context.Context, doc types.GenesisDoc) (types.GenesisResult, error)

	// CheckTx reports whether tx decodes to a routable extrinsic. It
	// does not touch state and MUST be safe for concurrent use.
	CheckTx(ctx context.Context, tx types.Tx) (types.GateVerdict, error)

	// ExecuteBlock executes every transaction of the block in order
	// against a staged copy of the committed state.
	//
	// Individual transaction failures are reported in the outcome. A
	// returned error means the block as a whole was rejected and
	// nothing was staged.
	ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error)

	// Commit promotes the state staged by the last ExecuteBlock.
	Commit(ctx context.Context) (types.CommitResult, error)

	// Query reads committed state. MUST be safe for concurrent use.
	Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error)
}

// Simulator dry-runs a single transaction against the committed state
// without keeping any of its effects. Applications may implement it in
// addition to Lifecycle.
type Simulator interface {
	Simulate(ctx context.Context, tx types.Tx) (types.TxOutcome, error)
}
