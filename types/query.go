package types

// Query paths understood by the application.
const (
	QueryHeight  QueryPath = "/height"
	QueryBalance QueryPath = "/balance"
	QueryNonce   QueryPath = "/nonce"
	QueryClaim   QueryPath = "/claim"
	QueryState   QueryPath = "/state"
)

// Query result codes, in addition to CodeOK.
const (
	// CodeNotFound means the key has no value, e.g. an account that
	// never originated an extrinsic has no nonce.
	CodeNotFound uint32 = 3
	// CodeUnknownPath means the query path is not served.
	CodeUnknownPath uint32 = 4
)

// StateQuery is a request to read committed runtime state.
type StateQuery struct {
	Path QueryPath `cramberry:"1"`
	// Path argument: an account for /balance and /nonce, a content
	// identifier for /claim, empty otherwise.
	Data []byte `cramberry:"2"`
}

// StateQueryResult is the application's response to a state query.
type StateQueryResult struct {
	Code   uint32 `cramberry:"1"`
	Key    []byte `cramberry:"2"`
	Value  []byte `cramberry:"3"`
	Height uint64 `cramberry:"4"`
	Info   string `cramberry:"5"`
}

// Found returns true if the query resolved to a value.
func (r StateQueryResult) Found() bool { return r.Code == CodeOK }
