package pallettest

import (
	"context"
	"sync/atomic"

	"github.com/blockberries/pallet"
	"github.com/blockberries/pallet/types"
)

var (
	_ pallet.Lifecycle = (*MockApp)(nil)
	_ pallet.Simulator = (*MockApp)(nil)
)

// MockApp is a configurable Lifecycle for exercising block producers
// and the lifecycle server. Unset handlers return zero values, except
// ExecuteBlock which reports every transaction as successful.
type MockApp struct {
	GenesisFn      func(context.Context, types.GenesisDoc) (types.GenesisResult, error)
	CheckTxFn      func(context.Context, types.Tx) (types.GateVerdict, error)
	ExecuteBlockFn func(context.Context, types.FinalizedBlock) (types.BlockOutcome, error)
	CommitFn       func(context.Context) (types.CommitResult, error)
	QueryFn        func(context.Context, types.StateQuery) (types.StateQueryResult, error)
	SimulateFn     func(context.Context, types.Tx) (types.TxOutcome, error)

	GenesisCalls      atomic.Int64
	CheckTxCalls      atomic.Int64
	ExecuteBlockCalls atomic.Int64
	CommitCalls       atomic.Int64
	QueryCalls        atomic.Int64
	SimulateCalls     atomic.Int64
}

func (m *MockApp) Genesis(ctx context.Context, doc types.GenesisDoc) (types.GenesisResult, error) {
	m.GenesisCalls.Add(1)
	if m.GenesisFn != nil {
		return m.GenesisFn(ctx, doc)
	}
	return types.GenesisResult{}, nil
}

func (m *MockApp) CheckTx(ctx context.Context, tx types.Tx) (types.GateVerdict, error) {
	m.CheckTxCalls.Add(1)
	if m.CheckTxFn != nil {
		return m.CheckTxFn(ctx, tx)
	}
	return types.GateVerdict{Code: types.CodeOK}, nil
}

func (m *MockApp) ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error) {
	m.ExecuteBlockCalls.Add(1)
	if m.ExecuteBlockFn != nil {
		return m.ExecuteBlockFn(ctx, block)
	}
	outcomes := make([]types.TxOutcome, len(block.Txs))
	for i := range block.Txs {
		outcomes[i] = types.TxOutcome{Index: uint32(i), Code: types.CodeOK}
	}
	return types.BlockOutcome{TxOutcomes: outcomes}, nil
}

func (m *MockApp) Commit(ctx context.Context) (types.CommitResult, error) {
	m.CommitCalls.Add(1)
	if m.CommitFn != nil {
		return m.CommitFn(ctx)
	}
	return types.CommitResult{}, nil
}

func (m *MockApp) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	m.QueryCalls.Add(1)
	if m.QueryFn != nil {
		return m.QueryFn(ctx, req)
	}
	return types.StateQueryResult{Code: types.CodeUnknownPath}, nil
}

func (m *MockApp) Simulate(ctx context.Context, tx types.Tx) (types.TxOutcome, error) {
	m.SimulateCalls.Add(1)
	if m.SimulateFn != nil {
		return m.SimulateFn(ctx, tx)
	}
	return types.TxOutcome{Code: types.CodeOK}, nil
}
