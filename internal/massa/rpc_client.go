package massa

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0

	// DefaultReadMaxGas caps gas for read-only calls.
	DefaultReadMaxGas = 100_000_000

	// DefaultExpiryPeriods is how many periods past the final slot a
	// submitted operation stays valid.
	DefaultExpiryPeriods = 10
)

// ErrExecutionFailed is returned when the node executed the call and the
// contract rejected it. The rejection message is attached via %w wrapping.
var ErrExecutionFailed = errors.New("execution failed")

// ErrNoWallet is returned by Call when no signing wallet is configured.
var ErrNoWallet = errors.New("no wallet configured")

// HTTPClient implements Reader and Caller using HTTP JSON-RPC 2.0
// against a Massa public API node.
type HTTPClient struct {
	endpoint    string
	contract    string
	wallet      *Wallet
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.maxDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithWallet sets the signing wallet used by Call.
func WithWallet(w *Wallet) ClientOption {
	return func(c *HTTPClient) {
		c.wallet = w
	}
}

// NewHTTPClient creates a new Massa RPC HTTP client bound to one
// contract address.
func NewHTTPClient(endpoint, contract string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:    endpoint,
		contract:    contract,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface checks.
var (
	_ Reader = (*HTTPClient)(nil)
	_ Caller = (*HTTPClient)(nil)
)

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// byteList marshals as a JSON array of numbers, the form the node expects
// for binary payloads.
type byteList []byte

func (b byteList) MarshalJSON() ([]byte, error) {
	nums := make([]uint16, len(b))
	for i, v := range b {
		nums[i] = uint16(v)
	}
	return json.Marshal(nums)
}

func (b *byteList) UnmarshalJSON(data []byte) error {
	var nums []uint16
	if err := json.Unmarshal(data, &nums); err != nil {
		return err
	}
	out := make([]byte, len(nums))
	for i, v := range nums {
		if v > 0xff {
			return fmt.Errorf("byte value out of range: %d", v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// call performs a JSON-RPC call with retries and exponential backoff.
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqID := c.requestID.Add(1)
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			// RPC errors are not retried
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// readOnlyCallRequest is one entry of execute_read_only_call params.
type readOnlyCallRequest struct {
	MaxGas         uint64   `json:"max_gas"`
	TargetAddress  string   `json:"target_address"`
	TargetFunction string   `json:"target_function"`
	Parameter      byteList `json:"parameter"`
	CallerAddress  *string  `json:"caller_address,omitempty"`
}

// readOnlyCallResult is one entry of the execute_read_only_call response.
type readOnlyCallResult struct {
	Result struct {
		Ok    byteList `json:"Ok,omitempty"`
		Error *string  `json:"Error,omitempty"`
	} `json:"result"`
	GasCost uint64 `json:"gas_cost"`
}

// ReadCall executes a read-only call against the configured contract.
func (c *HTTPClient) ReadCall(ctx context.Context, function string, parameter []byte) ([]byte, error) {
	entry := readOnlyCallRequest{
		MaxGas:         DefaultReadMaxGas,
		TargetAddress:  c.contract,
		TargetFunction: function,
		Parameter:      byteList(parameter),
	}
	if c.wallet != nil {
		addr := c.wallet.Address()
		entry.CallerAddress = &addr
	}

	var results []readOnlyCallResult
	if err := c.call(ctx, "execute_read_only_call", []interface{}{[]readOnlyCallRequest{entry}}, &results); err != nil {
		return nil, fmt.Errorf("read call %s: %w", function, err)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("read call %s: empty result set", function)
	}

	if results[0].Result.Error != nil {
		return nil, fmt.Errorf("read call %s: %w: %s", function, ErrExecutionFailed, *results[0].Result.Error)
	}

	return []byte(results[0].Result.Ok), nil
}

// GetStatus retrieves node status. Operation expiry is anchored to the
// reported final period.
func (c *HTTPClient) GetStatus(ctx context.Context) (*NodeStatus, error) {
	var result struct {
		NodeID   string `json:"node_id"`
		Version  string `json:"version"`
		ChainID  uint64 `json:"chain_id"`
		LastSlot *struct {
			Period uint64 `json:"period"`
			Thread uint8  `json:"thread"`
		} `json:"last_slot"`
	}

	if err := c.call(ctx, "get_status", nil, &result); err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	status := &NodeStatus{
		NodeID:  result.NodeID,
		Version: result.Version,
		ChainID: result.ChainID,
	}
	if result.LastSlot != nil {
		status.FinalPeriod = result.LastSlot.Period
	}
	return status, nil
}

// sendOperationEntry is one entry of send_operations params.
type sendOperationEntry struct {
	SerializedContent byteList `json:"serialized_content"`
	CreatorPublicKey  string   `json:"creator_public_key"`
	Signature         string   `json:"signature"`
}

// Call signs and submits a contract call operation.
func (c *HTTPClient) Call(ctx context.Context, params CallParams) (string, error) {
	if c.wallet == nil {
		return "", ErrNoWallet
	}

	status, err := c.GetStatus(ctx)
	if err != nil {
		return "", err
	}
	expirePeriod := status.FinalPeriod + DefaultExpiryPeriods

	content, err := serializeCallOperation(params, c.contract, expirePeriod)
	if err != nil {
		return "", fmt.Errorf("serialize operation: %w", err)
	}

	entry := sendOperationEntry{
		SerializedContent: byteList(content),
		CreatorPublicKey:  c.wallet.PublicKey(),
		Signature:         c.wallet.SignOperation(content),
	}

	var opIDs []string
	if err := c.call(ctx, "send_operations", []interface{}{[]sendOperationEntry{entry}}, &opIDs); err != nil {
		return "", fmt.Errorf("send operation %s: %w", params.Function, err)
	}

	if len(opIDs) == 0 {
		return "", fmt.Errorf("send operation %s: no operation id returned", params.Function)
	}

	return opIDs[0], nil
}

// callOperationTypeID tags a contract call in the operation envelope.
const callOperationTypeID = 4

// serializeCallOperation encodes a contract call operation into the
// node's compact varint form: fee, expiry period, type tag, gas, coins,
// then the decoded target address and length-prefixed function name and
// parameter bytes.
func serializeCallOperation(params CallParams, contract string, expirePeriod uint64) ([]byte, error) {
	target, err := decodeAddress(contract)
	if err != nil {
		return nil, fmt.Errorf("target address: %w", err)
	}

	buf := binary.AppendUvarint(nil, params.Fee)
	buf = binary.AppendUvarint(buf, expirePeriod)
	buf = binary.AppendUvarint(buf, callOperationTypeID)
	buf = binary.AppendUvarint(buf, params.MaxGas)
	buf = binary.AppendUvarint(buf, params.Coins)
	buf = append(buf, target...)
	buf = binary.AppendUvarint(buf, uint64(len(params.Function)))
	buf = append(buf, params.Function...)
	buf = binary.AppendUvarint(buf, uint64(len(params.Parameter)))
	buf = append(buf, params.Parameter...)
	return buf, nil
}
