package runtime

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/blockberries/pallet/types"
)

// ExtrinsicFailure describes an extrinsic its pallet rejected.
type ExtrinsicFailure struct {
	Height types.BlockNumber
	Index  int
	Caller types.AccountID
	Err    error
}

func (f ExtrinsicFailure) Error() string {
	return fmt.Sprintf("block %d extrinsic %d (%s): %v", f.Height, f.Index, f.Caller, f.Err)
}

func (f ExtrinsicFailure) Unwrap() error { return f.Err }

// Sink receives every extrinsic failure in execution order. It must not
// call back into the runtime.
type Sink interface {
	ExtrinsicFailed(f ExtrinsicFailure)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(f ExtrinsicFailure)

func (fn SinkFunc) ExtrinsicFailed(f ExtrinsicFailure) { fn(f) }

// LogSink writes failures to a zerolog logger at warn level.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) ExtrinsicFailed(f ExtrinsicFailure) {
	s.Logger.Warn().
		Uint32("height", uint32(f.Height)).
		Int("index", f.Index).
		Str("caller", string(f.Caller)).
		Str("reason", f.Err.Error()).
		Msg("extrinsic failed")
}

// Recorder collects failures in memory.
type Recorder struct {
	Failures []ExtrinsicFailure
}

func (r *Recorder) ExtrinsicFailed(f ExtrinsicFailure) {
	r.Failures = append(r.Failures, f)
}

// Reset drops all recorded failures.
func (r *Recorder) Reset() { r.Failures = r.Failures[:0] }

// Tee fans each failure out to every sink in order.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(f ExtrinsicFailure) {
		for _, s := range sinks {
			s.ExtrinsicFailed(f)
		}
	})
}
