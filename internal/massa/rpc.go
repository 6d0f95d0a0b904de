package massa

import "context"

// Reader defines the read-only contract call interface.
type Reader interface {
	// ReadCall executes a read-only call against the configured contract
	// and returns the raw serialized return value.
	ReadCall(ctx context.Context, function string, parameter []byte) ([]byte, error)
}

// Caller defines the state-changing contract call interface.
type Caller interface {
	// Call signs and submits a contract call operation. Returns the
	// operation identifier assigned by the node.
	Call(ctx context.Context, params CallParams) (string, error)
}

// CallParams describes one contract call operation.
type CallParams struct {
	Function  string
	Parameter []byte
	// Coins transferred along with the call, in base units.
	Coins uint64
	// Fee paid to the block producer, in base units.
	Fee uint64
	// MaxGas caps execution gas for the call.
	MaxGas uint64
}

// NodeStatus is the subset of get_status the client needs.
type NodeStatus struct {
	NodeID  string
	Version string
	// FinalPeriod is the period of the last final slot; operation expiry
	// is anchored to it.
	FinalPeriod uint64
	ChainID     uint64
}
