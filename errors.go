package pallet

import (
	"errors"
	"fmt"

	"github.com/blockberries/pallet/types"
)

// Error is a short, machine-readable failure reason returned by a
// pallet when it rejects a call. Values compare with == and errors.Is.
type Error string

func (e Error) Error() string { return string(e) }

// ErrNilCall is returned when a dispatcher is handed a nil call.
const ErrNilCall Error = "NilCall"

// ErrBlockNumberMismatch is the sentinel matched by every *BlockError.
var ErrBlockNumberMismatch = errors.New("block number mismatch")

// BlockError aborts a block whose header height is not the runtime's
// next height. It is the only failure that stops block execution.
type BlockError struct {
	Expected types.BlockNumber
	Got      types.BlockNumber
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block number mismatch: expected %d, got %d", e.Expected, e.Got)
}

// Is makes errors.Is(err, ErrBlockNumberMismatch) hold.
func (e *BlockError) Is(target error) bool {
	return target == ErrBlockNumberMismatch
}

// IsBlockMismatch checks whether err is a BlockError and returns it.
func IsBlockMismatch(err error) (*BlockError, bool) {
	var b *BlockError
	if errors.As(err, &b) {
		return b, true
	}
	return nil, false
}

// HaltError signals that the application rejected a whole block.
//
// When the engine receives a HaltError from ExecuteBlock it must not
// call Commit; it decides whether to retry, skip or stop.
type HaltError struct {
	Reason string
	Height uint64
	Err    error
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("HALT at height %d: %s", e.Height, e.Reason)
}

func (e *HaltError) Unwrap() error { return e.Err }

// NewHaltError creates a new HaltError caused by err.
func NewHaltError(height uint64, err error) *HaltError {
	return &HaltError{Height: height, Reason: err.Error(), Err: err}
}

// IsHalt checks whether an error is a HaltError and returns it.
func IsHalt(err error) (*HaltError, bool) {
	var h *HaltError
	if errors.As(err, &h) {
		return h, true
	}
	return nil, false
}
