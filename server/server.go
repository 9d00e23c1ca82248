package server

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/blockberries/pallet"
	"github.com/blockberries/pallet/types"
)

// ErrSimulationUnsupported is returned by Simulate when the wrapped
// application does not implement pallet.Simulator.
var ErrSimulationUnsupported = errors.New("pallet: application does not support simulation")

// Server wraps a pallet application with lifecycle enforcement. The
// block producer drives the application exclusively through this
// server.
type Server struct {
	app       pallet.Lifecycle
	simulator pallet.Simulator
	guard     *LifecycleGuard
	logger    zerolog.Logger

	// Held between ExecuteBlock and Commit.
	mu          sync.Mutex
	lastOutcome *types.BlockOutcome
	lastHeight  uint64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for lifecycle transitions.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a new Server wrapping the given application.
func New(app pallet.Lifecycle, opts ...Option) *Server {
	s := &Server{
		app:    app,
		guard:  NewLifecycleGuard(),
		logger: zerolog.Nop(),
	}
	s.simulator, _ = app.(pallet.Simulator)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Genesis loads the initial state and transitions the server to Ready.
func (s *Server) Genesis(ctx context.Context, doc types.GenesisDoc) (types.GenesisResult, error) {
	if err := s.guard.AcquireGenesis(); err != nil {
		return types.GenesisResult{}, err
	}

	res, err := s.app.Genesis(ctx, doc)
	if err != nil {
		s.guard.FailGenesis()
		s.logger.Error().Err(err).Str("chain_id", doc.ChainID).Msg("genesis failed")
		return res, err
	}

	s.guard.CompleteGenesis()
	s.logger.Info().
		Str("chain_id", doc.ChainID).
		Int("accounts", len(doc.Accounts)).
		Msg("genesis loaded")
	return res, nil
}

// CheckTx gate-checks a transaction. Safe for concurrent use.
func (s *Server) CheckTx(ctx context.Context, tx types.Tx) (types.GateVerdict, error) {
	if err := s.guard.CheckConcurrent("CheckTx"); err != nil {
		return types.GateVerdict{}, err
	}
	return s.app.CheckTx(ctx, tx)
}

// ExecuteBlock deterministically executes a finalized block. On error
// the server returns to Ready so the block can be retried or the
// process halted by the caller.
func (s *Server) ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error) {
	if err := s.guard.AcquireExecute(); err != nil {
		return types.BlockOutcome{}, err
	}

	outcome, err := s.app.ExecuteBlock(ctx, block)
	if err != nil {
		s.guard.FailExecute()
		ev := s.logger.Error().Err(err).Uint64("height", block.Height)
		if halt, ok := pallet.IsHalt(err); ok {
			ev = ev.Str("halt_reason", halt.Reason)
		}
		ev.Msg("execute block failed")
		return outcome, err
	}

	s.mu.Lock()
	s.lastOutcome = &outcome
	s.lastHeight = block.Height
	s.mu.Unlock()

	s.guard.CompleteExecute()
	s.logger.Debug().
		Uint64("height", block.Height).
		Int("txs", len(block.Txs)).
		Int("failed", len(outcome.Failed())).
		Msg("block executed")
	return outcome, nil
}

// Commit promotes the state produced by the last ExecuteBlock.
func (s *Server) Commit(ctx context.Context) (types.CommitResult, error) {
	if err := s.guard.AcquireCommit(); err != nil {
		return types.CommitResult{}, err
	}

	result, err := s.app.Commit(ctx)
	if err != nil {
		s.guard.FailCommit()
		s.logger.Error().Err(err).Msg("commit failed")
		return result, err
	}

	s.mu.Lock()
	s.lastOutcome = nil
	s.mu.Unlock()

	s.guard.CompleteCommit()
	s.logger.Info().
		Uint64("height", result.Height).
		Hex("app_hash", result.AppHash[:]).
		Msg("committed")
	return result, nil
}

// Query reads committed state. Safe for concurrent use.
func (s *Server) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	if err := s.guard.CheckConcurrent("Query"); err != nil {
		return types.StateQueryResult{}, err
	}
	return s.app.Query(ctx, req)
}

// Simulate delegates to the application's Simulator if it has one.
// Safe for concurrent use.
func (s *Server) Simulate(ctx context.Context, tx types.Tx) (types.TxOutcome, error) {
	if s.simulator == nil {
		return types.TxOutcome{}, ErrSimulationUnsupported
	}
	if err := s.guard.CheckConcurrent("Simulate"); err != nil {
		return types.TxOutcome{}, err
	}
	return s.simulator.Simulate(ctx, tx)
}

// CanSimulate reports whether the wrapped application supports Simulate.
func (s *Server) CanSimulate() bool { return s.simulator != nil }

// LastOutcome returns the outcome pending commit, or nil.
func (s *Server) LastOutcome() *types.BlockOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOutcome
}

// State returns the current lifecycle state name.
func (s *Server) State() string { return s.guard.State() }

// Close is a no-op for the server wrapper.
func (s *Server) Close() error { return nil }
