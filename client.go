package vkmax

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/antirek/vkmax-go/logger"
	"github.com/antirek/vkmax-go/protocol"
	"github.com/antirek/vkmax-go/upload"
	"github.com/antirek/vkmax-go/websocket"
)

// --------------------------------------------------------------------------------
// Constants

// eventQueueSize bounds the ordered delivery queue between the receive loop
// and the event handler.
const eventQueueSize = 128

// --------------------------------------------------------------------------------
// Types

// Option defines a function that configures a Client and returns an error if
// configuration fails.
type Option func(*Client) error

// EventHandler receives unsolicited server frames.
type EventHandler func(*protocol.Envelope)

// invokeResult settles a pending request with either its response frame or
// an error.
type invokeResult struct {
	env *protocol.Envelope
	err error
}

// Client is a Max messenger RPC client over a single WebSocket connection.
//
// It owns the connection lifecycle, assigns sequence numbers, tracks pending
// requests, and demultiplexes inbound frames between RPC replies and
// unsolicited events. It is safe for concurrent use.
type Client struct {
	endpoint          string
	requestTimeout    time.Duration
	keepaliveInterval time.Duration
	logger            logger.Interface
	transportOpts     []websocket.Option

	ws         *websocket.Client
	uploader   *upload.Client
	uploadOpts []upload.Option

	seq       atomic.Uint32
	pendingMu sync.Mutex // Protects pending.
	pending   map[uint32]chan invokeResult

	handlerMu sync.RWMutex
	onEvent   EventHandler

	queue    chan *protocol.Envelope // Ordered delivery to the event handler.
	eventsCh chan *protocol.Envelope // Optional broadcast channel.

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	sessionMu     sync.Mutex // Protects loggedIn and keepaliveStop.
	loggedIn      bool
	keepaliveStop chan struct{}
}

// --------------------------------------------------------------------------------
// Initialization

// New creates a client for the production endpoint and applies the provided
// options. The client is not connected until Connect is called.
func New(opts ...Option) (*Client, error) {
	l, err := logger.New("info", os.Stdout)
	if err != nil {
		return nil, err
	}

	c := &Client{
		endpoint:          DefaultEndpoint,
		requestTimeout:    DefaultRequestTimeout,
		keepaliveInterval: DefaultKeepaliveInterval,
		logger:            l,
		pending:           make(map[uint32]chan invokeResult),
		queue:             make(chan *protocol.Envelope, eventQueueSize),
		done:              make(chan struct{}),
	}

	if _, err := c.With(opts...); err != nil {
		return nil, err
	}

	wsOpts := append([]websocket.Option{
		websocket.WithLogger(c.logger),
		websocket.OnFrame(c.handleFrame),
		websocket.OnClose(c.handleClose),
	}, c.transportOpts...)

	c.ws, err = websocket.New(c.endpoint, wsOpts...)
	if err != nil {
		return nil, err
	}

	c.uploader, err = upload.New(c.uploadOpts...)
	if err != nil {
		return nil, err
	}

	c.wg.Add(1)

	go c.eventLoop()

	return c, nil
}

// With applies a list of options to the Client and returns the modified
// instance along with any error.
func (c *Client) With(opts ...Option) (*Client, error) {
	for i, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(c); err != nil {
			return c, fmt.Errorf("failed to apply option at index %d: %w", i, err)
		}
	}

	return c, nil
}

// --------------------------------------------------------------------------------
// Connection Management

// Connect opens the WebSocket connection and starts the receive loop.
//
// It fails with ErrAlreadyConnected when a connection already exists.
func (c *Client) Connect(ctx context.Context) error {
	return c.ws.Connect(ctx)
}

// Disconnect stops the keepalive task, closes the connection, and clears the
// session state.
//
// It fails with ErrNotConnected when no connection exists. Requests still in
// flight are rejected with ErrConnectionClosed.
func (c *Client) Disconnect() error {
	c.clearSession()

	return c.ws.Close()
}

// Close shuts the client down for good: it disconnects if needed and stops
// the event delivery goroutine. The client cannot be reused afterwards.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if err := c.Disconnect(); err != nil && !errors.Is(err, ErrNotConnected) {
			c.logger.Warn("Disconnect during close: %v", err)
		}

		close(c.done)
		c.wg.Wait()
	})
}

// Connected reports whether the client currently holds an open connection.
func (c *Client) Connected() bool {
	return c.ws.Connected()
}

// LoggedIn reports whether a login flow completed on this connection.
func (c *Client) LoggedIn() bool {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	return c.loggedIn
}

// --------------------------------------------------------------------------------
// RPC Correlation

// Invoke sends a request envelope for the given opcode and waits for the
// response frame with the matching sequence number.
//
// It fails with ErrNotConnected when no connection is open, with
// ErrRequestTimeout when no response arrives within the request timeout, with
// ErrConnectionClosed when the connection drops while waiting, or with
// ctx.Err() on cancellation. Whichever happens first wins; the pending entry
// is settled exactly once.
//
// Application-level error fields inside the response payload are not
// inspected here; see CheckResponse.
func (c *Client) Invoke(ctx context.Context, op protocol.Opcode, payload any) (*protocol.Envelope, error) {
	if !c.ws.Connected() {
		return nil, ErrNotConnected
	}

	seq := c.seq.Add(1)

	env, err := protocol.NewRequest(seq, op, payload)
	if err != nil {
		return nil, err
	}

	data, err := env.Encode()
	if err != nil {
		return nil, err
	}

	ch := make(chan invokeResult, 1)

	c.pendingMu.Lock()
	c.pending[seq] = ch
	c.pendingMu.Unlock()

	if err := c.ws.Send(data); err != nil {
		c.discard(seq)

		return nil, err
	}

	c.logger.Debug("Request sent [seq=%d, opcode=%s]", seq, op)

	timer := time.NewTimer(c.requestTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.env, res.err
	case <-timer.C:
		c.discard(seq)

		return nil, fmt.Errorf("%w: %s after %s", ErrRequestTimeout, op, c.requestTimeout)
	case <-ctx.Done():
		c.discard(seq)

		return nil, ctx.Err()
	}
}

// OnEvent registers the handler for unsolicited server frames. The last
// registration wins.
//
// It fails with ErrNilHandler when fn is nil.
func (c *Client) OnEvent(fn EventHandler) error {
	if fn == nil {
		return ErrNilHandler
	}

	c.handlerMu.Lock()
	c.onEvent = fn
	c.handlerMu.Unlock()

	return nil
}

// Events returns the broadcast channel for unsolicited frames, if enabled
// via WithEvents.
func (c *Client) Events() <-chan *protocol.Envelope {
	if c.eventsCh == nil {
		c.logger.Warn("Events channel not enabled; use WithEvents")
	}

	return c.eventsCh
}

// --------------------------------------------------------------------------------
// Demultiplexing (Private)

// handleFrame parses an inbound frame. Malformed frames are logged and
// dropped; the connection stays up.
func (c *Client) handleFrame(data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		c.logger.Warn("Dropping malformed frame: %v", err)

		return
	}

	c.dispatch(env)
}

// dispatch routes a frame to its pending request, or to the event path when
// no request claims its sequence number.
//
// A frame whose seq matches an already-settled request is indistinguishable
// from an unsolicited event and is routed accordingly.
func (c *Client) dispatch(env *protocol.Envelope) {
	c.pendingMu.Lock()
	ch, ok := c.pending[env.Seq]
	if ok {
		delete(c.pending, env.Seq)
	}
	c.pendingMu.Unlock()

	if ok {
		ch <- invokeResult{env: env}

		return
	}

	c.forwardEvent(env)
}

// forwardEvent hands an unsolicited frame to the broadcast channel and the
// ordered handler queue.
func (c *Client) forwardEvent(env *protocol.Envelope) {
	if c.eventsCh != nil {
		select {
		case c.eventsCh <- env:
		default:
			c.logger.Warn("Event dropped from broadcast channel [opcode=%s]", env.Opcode)
		}
	}

	select {
	case c.queue <- env:
	case <-c.done:
	}
}

// eventLoop delivers queued frames to the registered handler in arrival
// order, off the receive loop's goroutine.
func (c *Client) eventLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return
		case env := <-c.queue:
			c.handlerMu.RLock()
			fn := c.onEvent
			c.handlerMu.RUnlock()

			if fn != nil {
				fn(env)
			}
		}
	}
}

// discard removes a pending entry if it is still present. Safe to call after
// the entry was settled by dispatch.
func (c *Client) discard(seq uint32) {
	c.pendingMu.Lock()
	delete(c.pending, seq)
	c.pendingMu.Unlock()
}

// handleClose runs when the receive loop exits. Outstanding requests are
// rejected immediately rather than left to time out, and the session state
// is cleared.
func (c *Client) handleClose(cause error) {
	err := ErrConnectionClosed
	if cause != nil {
		err = fmt.Errorf("%w: %v", ErrConnectionClosed, cause)
	}

	c.failPending(err)
	c.clearSession()
}

// failPending settles every pending entry with err.
func (c *Client) failPending(err error) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	for seq, ch := range c.pending {
		delete(c.pending, seq)
		ch <- invokeResult{err: err}
	}
}

// clearSession stops the keepalive task and drops the logged-in flag.
func (c *Client) clearSession() {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	if c.keepaliveStop != nil {
		close(c.keepaliveStop)
		c.keepaliveStop = nil
	}

	c.loggedIn = false
}

// --------------------------------------------------------------------------------
// Option Functions

// WithEndpoint overrides the WebSocket API endpoint.
//
// Returns an error if the endpoint is empty.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) error {
		if endpoint == "" {
			return errors.New("endpoint cannot be empty")
		}

		c.endpoint = endpoint

		return nil
	}
}

// WithLogger sets a custom logger for the client and its transport.
//
// Returns an error if the logger is nil.
func WithLogger(l logger.Interface) Option {
	return func(c *Client) error {
		if l == nil {
			return errors.New("logger cannot be nil")
		}

		c.logger = l

		return nil
	}
}

// WithRequestTimeout overrides how long Invoke waits for a response.
//
// Returns an error if the timeout is not positive.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout <= 0 {
			return fmt.Errorf("request timeout must be positive: %v", timeout)
		}

		c.requestTimeout = timeout

		return nil
	}
}

// WithKeepaliveInterval overrides the pause between keepalive requests.
//
// Returns an error if the interval is not positive.
func WithKeepaliveInterval(interval time.Duration) Option {
	return func(c *Client) error {
		if interval <= 0 {
			return fmt.Errorf("keepalive interval must be positive: %v", interval)
		}

		c.keepaliveInterval = interval

		return nil
	}
}

// WithEvents enables a buffered broadcast channel for unsolicited frames,
// alongside the OnEvent handler. Frames are dropped from the channel when it
// is full.
//
// Returns an error if capacity is not positive.
func WithEvents(capacity int) Option {
	return func(c *Client) error {
		if capacity <= 0 {
			return fmt.Errorf("events channel capacity must be positive: %d", capacity)
		}

		if c.eventsCh == nil {
			c.eventsCh = make(chan *protocol.Envelope, capacity)
		}

		return nil
	}
}

// WithTransportOptions appends options forwarded to the underlying WebSocket
// transport, such as websocket.WithProxy or websocket.WithTLS.
func WithTransportOptions(opts ...websocket.Option) Option {
	return func(c *Client) error {
		c.transportOpts = append(c.transportOpts, opts...)

		return nil
	}
}

// WithUploadOptions appends options forwarded to the HTTP upload client,
// such as upload.WithRetries or upload.WithDebug.
func WithUploadOptions(opts ...upload.Option) Option {
	return func(c *Client) error {
		c.uploadOpts = append(c.uploadOpts, opts...)

		return nil
	}
}
