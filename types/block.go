package types

// Result codes carried in TxOutcome.Code and GateVerdict.Code.
const (
	// CodeOK means the extrinsic decoded and dispatched successfully.
	CodeOK uint32 = 0
	// CodeMalformed means the transaction bytes are not a valid extrinsic.
	CodeMalformed uint32 = 1
	// CodeDispatch means the owning pallet rejected the call. The
	// pallet's reason tag is carried in Info.
	CodeDispatch uint32 = 2
)

// TxOutcome is the result of executing a single transaction.
type TxOutcome struct {
	// Position of this tx in the block (0-indexed).
	Index uint32 `cramberry:"1"`
	// Result code. 0 = success.
	Code uint32 `cramberry:"2"`
	// Failure reason tag, e.g. "InsufficientFunds".
	Info string `cramberry:"3"`
	// Events emitted by this transaction.
	Events []Event `cramberry:"4"`
}

// OK returns true if the transaction executed successfully.
func (t TxOutcome) OK() bool { return t.Code == CodeOK }

// BlockOutcome is the output of executing a finalized block.
type BlockOutcome struct {
	// Per-transaction results, in block order.
	TxOutcomes []TxOutcome `cramberry:"1"`
	// Block-level events.
	BlockEvents []Event `cramberry:"2"`
	// State root after this block.
	AppHash AppHash `cramberry:"3"`
}

// Failed returns the outcomes that did not succeed.
func (o BlockOutcome) Failed() []TxOutcome {
	var failed []TxOutcome
	for _, txo := range o.TxOutcomes {
		if !txo.OK() {
			failed = append(failed, txo)
		}
	}
	return failed
}

// FinalizedBlock is a decided block delivered to the application
// for execution.
type FinalizedBlock struct {
	Height        uint64    `cramberry:"1"`
	Time          Timestamp `cramberry:"2"`
	Txs           []Tx      `cramberry:"3"`
	LastBlockHash Hash      `cramberry:"4"`
}

// CommitResult is returned after the application promotes staged
// state to committed state.
type CommitResult struct {
	// Height of the state that is now committed.
	Height uint64 `cramberry:"1"`
	// State root of the committed state.
	AppHash AppHash `cramberry:"2"`
}
