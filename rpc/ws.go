package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xrpl-commons/dapp-wallet/types"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNotConnected is returned by requests issued while the connection is down
var ErrNotConnected = fmt.Errorf("not connected to ledger: %w", net.ErrClosed)

// wsResponse is a rippled WebSocket message. Responses carry the id of the
// request; stream messages (ledgerClosed, transaction, ...) carry none.
type wsResponse struct {
	ID           uint64          `json:"id"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result"`
	Error        string          `json:"error"`
	ErrorCode    int             `json:"error_code"`
	ErrorMessage string          `json:"error_message"`

	err error
}

// WSConn is the streaming ledger connection. It correlates responses by
// request id and reconnects with backoff when the socket drops.
type WSConn struct {
	endpoint string
	opts     Options
	limiter  *rate.Limiter
	dialer   *websocket.Dialer
	status   *status
	logger   *zap.Logger

	connectMu sync.Mutex
	writeMu   sync.Mutex

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[uint64]chan wsResponse
	closed  bool
	done    chan struct{}

	nextID atomic.Uint64
}

var _ Conn = (*WSConn)(nil)

// NewWSConn creates a connection to a ws:// or wss:// endpoint. Connect must
// be called before issuing requests.
func NewWSConn(endpoint string, logger *zap.Logger, opts ...Option) *WSConn {
	o := newOptions(opts)
	return &WSConn{
		endpoint: endpoint,
		opts:     o,
		limiter:  o.limiter(),
		dialer:   &websocket.Dialer{HandshakeTimeout: o.RequestTimeout},
		status:   newStatus(),
		logger:   logger,
		pending:  make(map[uint64]chan wsResponse),
		done:     make(chan struct{}),
	}
}

func (c *WSConn) Connect(ctx context.Context) error {
	c.mu.Lock()
	closed, connected := c.closed, c.conn != nil
	c.mu.Unlock()
	if closed {
		return ErrNotConnected
	}
	if connected {
		return nil
	}
	return c.dial(ctx)
}

func (c *WSConn) dial(ctx context.Context) error {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", c.endpoint, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return ErrNotConnected
	}
	c.conn = conn
	c.mu.Unlock()

	c.status.set(true)
	c.logger.Info("connected to ledger", zap.String("endpoint", c.endpoint))

	go c.readLoop(conn)
	return nil
}

func (c *WSConn) IsConnected() bool {
	return c.status.get()
}

func (c *WSConn) Subscribe() (<-chan bool, func()) {
	return c.status.subscribe()
}

func (c *WSConn) Request(ctx context.Context, command string, params any, result any) error {
	ctx, cancel := c.opts.withTimeout(ctx)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", command, ctx.Err())
		}
		return fmt.Errorf("%s: rate limited: %w", command, context.DeadlineExceeded)
	}

	id := c.nextID.Add(1)
	msg, err := requestObject(id, command, params)
	if err != nil {
		return err
	}

	ch := make(chan wsResponse, 1)
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", command, ErrNotConnected)
	}
	c.pending[id] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	err = conn.WriteMessage(websocket.TextMessage, msg)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return fmt.Errorf("sending %s: %w", command, err)
	}

	select {
	case resp := <-ch:
		if resp.err != nil {
			return fmt.Errorf("%s: %w", command, resp.err)
		}
		return decodeResponse(command, resp, result)
	case <-ctx.Done():
		c.forget(id)
		return fmt.Errorf("%s: %w", command, ctx.Err())
	}
}

func (c *WSConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return conn.Close()
}

func (c *WSConn) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.drop(conn, err)
			return
		}

		var resp wsResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			c.logger.Debug("ignoring unparsable message", zap.Error(err))
			continue
		}
		if resp.Type != "response" {
			c.logger.Debug("ignoring stream message", zap.String("type", resp.Type))
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

// drop fails every pending request and reconnects unless closed
func (c *WSConn) drop(conn *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	for id, ch := range c.pending {
		ch <- wsResponse{err: fmt.Errorf("%w: %v", ErrNotConnected, cause)}
		delete(c.pending, id)
	}
	closed := c.closed
	c.mu.Unlock()

	_ = conn.Close()
	c.status.set(false)

	if closed {
		c.logger.Info("ledger connection closed", zap.String("endpoint", c.endpoint))
		return
	}
	c.logger.Warn("ledger connection lost", zap.String("endpoint", c.endpoint), zap.Error(cause))
	go c.reconnect()
}

func (c *WSConn) reconnect() {
	backoff := c.opts.ReconnectMinBackoff
	for {
		select {
		case <-c.done:
			return
		case <-time.After(backoff):
		}

		ctx, cancel := c.opts.withTimeout(context.Background())
		err := c.dial(ctx)
		cancel()
		if err == nil || errors.Is(err, ErrNotConnected) {
			return
		}

		c.logger.Warn("reconnect failed", zap.Duration("backoff", backoff), zap.Error(err))
		backoff *= 2
		if backoff > c.opts.ReconnectMaxBackoff {
			backoff = c.opts.ReconnectMaxBackoff
		}
	}
}

func (c *WSConn) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// requestObject merges params into a {"id", "command"} request object
func requestObject(id uint64, command string, params any) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encoding %s params: %w", command, err)
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("%s params must be an object: %w", command, err)
		}
	}

	fields["id"], _ = json.Marshal(id)
	fields["command"], _ = json.Marshal(command)
	return json.Marshal(fields)
}

func decodeResponse(command string, resp wsResponse, result any) error {
	if resp.Status == "error" || resp.Error != "" {
		return &types.RPCError{
			Code:         resp.Error,
			ErrorCode:    resp.ErrorCode,
			ErrorMessage: resp.ErrorMessage,
			Status:       resp.Status,
		}
	}
	if result == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("decoding %s result: %w", command, err)
	}
	return nil
}
