package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	xrplrpc "github.com/Peersyst/xrpl-go/xrpl/rpc"
	"github.com/xrpl-commons/dapp-wallet/types"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPStatusError is a non-2xx answer from a JSON-RPC endpoint
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
}

// RemoteCode maps the HTTP status onto the remote error vocabulary
func (e *HTTPStatusError) RemoteCode() string {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "notFound"
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return "requestTimeout"
	case http.StatusBadRequest:
		return "invalidRequest"
	}
	return "responseError"
}

// rpcResult carries the status fields rippled puts next to every result
type rpcResult struct {
	Status       string `json:"status"`
	Error        string `json:"error"`
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	Request      any    `json:"request"`
}

// HTTPConn speaks JSON-RPC over HTTP. It is used by the command line tools
// and as a fallback when no WebSocket endpoint is available.
type HTTPConn struct {
	endpoint   string
	opts       Options
	limiter    *rate.Limiter
	client     *xrplrpc.Client
	httpClient *http.Client
	status     *status
	logger     *zap.Logger
}

var _ Conn = (*HTTPConn)(nil)

// NewHTTPConn creates a JSON-RPC connection to endpoint
func NewHTTPConn(endpoint string, logger *zap.Logger, opts ...Option) (*HTTPConn, error) {
	o := newOptions(opts)
	cfg, err := xrplrpc.NewClientConfig(endpoint,
		xrplrpc.WithTimeout(o.RequestTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client config: %w", err)
	}

	return &HTTPConn{
		endpoint:   endpoint,
		opts:       o,
		limiter:    o.limiter(),
		client:     xrplrpc.NewClient(cfg),
		httpClient: &http.Client{Timeout: o.RequestTimeout},
		status:     newStatus(),
		logger:     logger,
	}, nil
}

// Connect checks that the server answers with a validated ledger index
func (c *HTTPConn) Connect(ctx context.Context) error {
	ledgerIndex, err := c.client.GetLedgerIndex()
	if err != nil {
		c.status.set(false)
		return fmt.Errorf("server check failed: %w", err)
	}

	c.status.set(true)
	c.logger.Info("connected to ledger",
		zap.String("endpoint", c.endpoint),
		zap.Uint64("ledger_index", uint64(ledgerIndex)))
	return nil
}

func (c *HTTPConn) IsConnected() bool {
	return c.status.get()
}

func (c *HTTPConn) Subscribe() (<-chan bool, func()) {
	return c.status.subscribe()
}

func (c *HTTPConn) Close() error {
	c.status.set(false)
	return nil
}

func (c *HTTPConn) Request(ctx context.Context, command string, params any, result any) error {
	ctx, cancel := c.opts.withTimeout(ctx)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", command, ctx.Err())
		}
		return fmt.Errorf("%s: rate limited: %w", command, context.DeadlineExceeded)
	}

	reqBody, err := json.Marshal(types.NewJSONRPCRequest(command, params))
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", command, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.status.set(false)
		return fmt.Errorf("%s request failed: %w", command, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	c.status.set(true)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: %w", command, &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	var status rpcResult
	if err := json.Unmarshal(envelope.Result, &status); err != nil {
		return fmt.Errorf("failed to parse %s result: %w", command, err)
	}
	if status.Status == "error" || status.Error != "" {
		return &types.RPCError{
			Code:         status.Error,
			ErrorCode:    status.ErrorCode,
			ErrorMessage: status.ErrorMessage,
			Status:       status.Status,
			Request:      status.Request,
		}
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return fmt.Errorf("decoding %s result: %w", command, err)
	}
	return nil
}
