package stub

import (
	"context"
	"errors"
	"sync"

	"massa-adnet/internal/massa"
)

// ErrNoResponse is returned when no response is scripted for a function.
var ErrNoResponse = errors.New("no scripted response")

// RPCClient implements massa.Reader and massa.Caller for testing.
// Responses are scripted per function name; every call is recorded.
type RPCClient struct {
	mu sync.Mutex

	// Responses maps function name to the raw bytes ReadCall returns.
	Responses map[string][]byte
	// ReadErrs maps function name to an injected ReadCall error.
	ReadErrs map[string]error
	// CallErrs maps function name to an injected Call error.
	CallErrs map[string]error
	// NextOpID is returned by Call; defaults to "O1stub".
	NextOpID string

	reads []string
	calls []massa.CallParams
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Responses: make(map[string][]byte),
		ReadErrs:  make(map[string]error),
		CallErrs:  make(map[string]error),
		NextOpID:  "O1stub",
	}
}

// Compile-time interface checks.
var (
	_ massa.Reader = (*RPCClient)(nil)
	_ massa.Caller = (*RPCClient)(nil)
)

// ReadCall returns the scripted response for the function.
func (c *RPCClient) ReadCall(_ context.Context, function string, _ []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reads = append(c.reads, function)

	if err, ok := c.ReadErrs[function]; ok {
		return nil, err
	}
	resp, ok := c.Responses[function]
	if !ok {
		return nil, ErrNoResponse
	}
	return resp, nil
}

// Call records the parameters and returns the scripted operation ID.
func (c *RPCClient) Call(_ context.Context, params massa.CallParams) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, params)

	if err, ok := c.CallErrs[params.Function]; ok {
		return "", err
	}
	return c.NextOpID, nil
}

// SetResponse scripts the bytes ReadCall returns for a function.
func (c *RPCClient) SetResponse(function string, resp []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Responses[function] = resp
}

// Reads returns the function names ReadCall was invoked with, in order.
func (c *RPCClient) Reads() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.reads))
	copy(out, c.reads)
	return out
}

// Calls returns the recorded Call parameters, in order.
func (c *RPCClient) Calls() []massa.CallParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]massa.CallParams, len(c.calls))
	copy(out, c.calls)
	return out
}

// LastCall returns the most recent Call parameters, or nil.
func (c *RPCClient) LastCall() *massa.CallParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.calls) == 0 {
		return nil
	}
	p := c.calls[len(c.calls)-1]
	return &p
}
