package types

// GateVerdict is the application's decision on whether a
// transaction is well-formed enough to enter a block.
type GateVerdict struct {
	// 0 = accepted. Non-zero = rejected.
	Code uint32 `cramberry:"1"`
	// Rejection reason (debugging only).
	Info string `cramberry:"2"`
	// Originating account of the decoded extrinsic.
	Sender AccountID `cramberry:"3"`
}

// Accepted returns true if the transaction was admitted.
func (v GateVerdict) Accepted() bool { return v.Code == CodeOK }
