package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrClosed is returned by Receive after Close.
var ErrClosed = errors.New("solana: client closed")

const (
	writeTimeout     = 10 * time.Second
	handshakeTimeout = 15 * time.Second
	readTimeout      = 60 * time.Second
	pingInterval     = 30 * time.Second
)

// Client speaks the Solana JSON-RPC WebSocket protocol for log
// subscriptions. It is not safe for concurrent use; the ingest loop owns
// it from Dial to Close. Liveness is kept with a ping keepalive; any read
// error ends the session and the owner redials.
type Client struct {
	endpoint string
	log      *zap.Logger

	conn     *websocket.Conn
	nextID   uint64
	subID    int64
	pingStop chan struct{}

	// Notifications that arrived while waiting for a request ack.
	pending []*RawLogEvent

	mu     sync.Mutex
	closed bool
}

func NewClient(endpoint string, log *zap.Logger) *Client {
	return &Client{endpoint: endpoint, log: log}
}

// Dial establishes the WebSocket connection. Any previous connection is
// discarded first.
func (c *Client) Dial(ctx context.Context) error {
	if c.pingStop != nil {
		close(c.pingStop)
		c.pingStop = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.endpoint, err)
	}

	// The pong handler extends the read deadline, so a healthy but quiet
	// stream stays alive as long as the server answers pings.
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	c.conn = conn
	c.subID = 0
	c.pending = c.pending[:0]
	c.pingStop = make(chan struct{})
	go c.pingLoop(conn, c.pingStop)

	c.log.Info("websocket connected", zap.String("endpoint", c.endpoint))
	return nil
}

// SubscribeLogs issues logsSubscribe with a mentions filter for programID
// at the given commitment level and waits for the subscription ack.
// Notifications that race the ack are buffered for Receive.
func (c *Client) SubscribeLogs(ctx context.Context, programID, commitment string) error {
	if c.conn == nil {
		return errors.New("solana: not connected")
	}

	c.nextID++
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      c.nextID,
		Method:  "logsSubscribe",
		Params: []interface{}{
			map[string]interface{}{"mentions": []string{programID}},
			map[string]interface{}{"commitment": commitment},
		},
	}

	if err := c.writeJSON(req); err != nil {
		return fmt.Errorf("logsSubscribe: %w", err)
	}

	for {
		raw, err := c.readMessage(ctx)
		if err != nil {
			return fmt.Errorf("logsSubscribe ack: %w", err)
		}

		var resp wsResponse
		if err := json.Unmarshal(raw, &resp); err == nil && resp.ID == req.ID {
			if resp.Error != nil {
				return fmt.Errorf("logsSubscribe rejected: %s (code %d)",
					resp.Error.Message, resp.Error.Code)
			}
			var subID int64
			if err := json.Unmarshal(resp.Result, &subID); err != nil {
				return fmt.Errorf("logsSubscribe result: %w", err)
			}
			c.subID = subID
			c.log.Info("logs subscription active",
				zap.Int64("subscription", subID),
				zap.String("program", programID),
				zap.String("commitment", commitment))
			return nil
		}

		if ev, ok := NormalizeMessage(raw); ok {
			c.pending = append(c.pending, ev)
		}
	}
}

// Receive blocks until the next log event, draining buffered notifications
// first. Messages that do not normalize to a log event are skipped.
func (c *Client) Receive(ctx context.Context) (*RawLogEvent, error) {
	if len(c.pending) > 0 {
		ev := c.pending[0]
		c.pending = c.pending[1:]
		return ev, nil
	}

	for {
		raw, err := c.readMessage(ctx)
		if err != nil {
			return nil, err
		}
		if ev, ok := NormalizeMessage(raw); ok {
			return ev, nil
		}
	}
}

// Unsubscribe cancels the active subscription. Best effort; connection
// teardown covers the rest.
func (c *Client) Unsubscribe() error {
	if c.conn == nil || c.subID == 0 {
		return nil
	}

	c.nextID++
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      c.nextID,
		Method:  "logsUnsubscribe",
		Params:  []interface{}{c.subID},
	}
	c.subID = 0
	return c.writeJSON(req)
}

// Close tears down the connection. Subsequent Receive calls fail with
// ErrClosed. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	if c.pingStop != nil {
		close(c.pingStop)
		c.pingStop = nil
	}
	if c.conn != nil {
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) writeJSON(v interface{}) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// readMessage reads one frame. Read errors are connection-fatal and
// surface to the owner, which redials; cancellation unblocks the read by
// closing the connection.
func (c *Client) readMessage(ctx context.Context) ([]byte, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn := c.conn
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	_, raw, err := conn.ReadMessage()
	close(done)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if c.isClosed() {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("read: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	return raw, nil
}

// pingLoop keeps the connection alive until stop closes or a control
// write fails.
func (c *Client) pingLoop(conn *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}
