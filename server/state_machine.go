// Package server provides the engine-side wrapper that enforces the
// application lifecycle state machine.
package server

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrOutOfOrder is matched by every lifecycle ordering violation.
var ErrOutOfOrder = errors.New("lifecycle call out of order")

// lifecycleState represents a state in the lifecycle state machine.
type lifecycleState uint32

const (
	// stateInit: waiting for Genesis. No other calls allowed.
	stateInit lifecycleState = iota
	// stateReady: idle at the last committed height. CheckTx, Query
	// and Simulate may run concurrently; ExecuteBlock is the only
	// valid sequential call.
	stateReady
	// stateExecuting: ExecuteBlock is running.
	stateExecuting
	// stateExecuted: ExecuteBlock returned; Commit is the only valid
	// next sequential call.
	stateExecuted
	// stateCommitting: Commit is running.
	stateCommitting
)

func (s lifecycleState) String() string {
	switch s {
	case stateInit:
		return "Init"
	case stateReady:
		return "Ready"
	case stateExecuting:
		return "Executing"
	case stateExecuted:
		return "Executed"
	case stateCommitting:
		return "Committing"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// orderError reports a call made in the wrong state.
func orderError(call string, got, want lifecycleState) error {
	return fmt.Errorf("%w: %s called in state %s (expected %s)", ErrOutOfOrder, call, got, want)
}

// LifecycleGuard enforces the lifecycle state machine. Sequential
// calls (Genesis, ExecuteBlock, Commit) are serialized by seqMu; the
// guard only ever holds seqMu between a successful Acquire and the
// matching Complete or Fail.
type LifecycleGuard struct {
	state atomic.Uint32
	seqMu sync.Mutex
	// Set once Genesis has completed, gating concurrent calls.
	genesisDone atomic.Bool
}

// NewLifecycleGuard creates a guard in the Init state.
func NewLifecycleGuard() *LifecycleGuard {
	g := &LifecycleGuard{}
	g.state.Store(uint32(stateInit))
	return g
}

// State returns the current lifecycle state.
func (g *LifecycleGuard) State() string {
	return lifecycleState(g.state.Load()).String()
}

func (g *LifecycleGuard) acquire(call string, from, to lifecycleState) error {
	g.seqMu.Lock()
	if state := lifecycleState(g.state.Load()); state != from {
		g.seqMu.Unlock()
		return orderError(call, state, from)
	}
	g.state.Store(uint32(to))
	return nil
}

func (g *LifecycleGuard) release(to lifecycleState) {
	g.state.Store(uint32(to))
	g.seqMu.Unlock()
}

// AcquireGenesis transitions Init → Ready.
func (g *LifecycleGuard) AcquireGenesis() error {
	return g.acquire("Genesis", stateInit, stateReady)
}

// CompleteGenesis marks genesis as done, enabling concurrent calls.
func (g *LifecycleGuard) CompleteGenesis() {
	g.genesisDone.Store(true)
	g.release(stateReady)
}

// FailGenesis rolls back to Init so genesis can be retried.
func (g *LifecycleGuard) FailGenesis() {
	g.release(stateInit)
}

// AcquireExecute transitions Ready → Executing.
func (g *LifecycleGuard) AcquireExecute() error {
	return g.acquire("ExecuteBlock", stateReady, stateExecuting)
}

// CompleteExecute transitions Executing → Executed.
func (g *LifecycleGuard) CompleteExecute() {
	g.release(stateExecuted)
}

// FailExecute transitions Executing → Ready, allowing retry.
func (g *LifecycleGuard) FailExecute() {
	g.release(stateReady)
}

// AcquireCommit transitions Executed → Committing.
func (g *LifecycleGuard) AcquireCommit() error {
	return g.acquire("Commit", stateExecuted, stateCommitting)
}

// CompleteCommit transitions Committing → Ready.
func (g *LifecycleGuard) CompleteCommit() {
	g.release(stateReady)
}

// FailCommit transitions Committing → Executed so Commit can be retried.
func (g *LifecycleGuard) FailCommit() {
	g.release(stateExecuted)
}

// CheckConcurrent verifies that concurrent calls are allowed, which is
// any time after Genesis has completed.
func (g *LifecycleGuard) CheckConcurrent(call string) error {
	if !g.genesisDone.Load() {
		return fmt.Errorf("%w: %s called before Genesis completed", ErrOutOfOrder, call)
	}
	return nil
}

// IsReady returns true if the guard is in the Ready state.
func (g *LifecycleGuard) IsReady() bool {
	return lifecycleState(g.state.Load()) == stateReady
}
