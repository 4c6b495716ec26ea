// Package websocket wraps gorilla/websocket with the connection surface the
// RPC layer needs: a single dial, one receive loop delivering raw frames,
// serialized writes, and an explicit close. Reconnection is intentionally
// out of scope; the owner decides what happens after a connection drops.
package websocket

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/antirek/vkmax-go/logger"
)

// --------------------------------------------------------------------------------
// Constants

const (
	// DefaultTimeout bounds the handshake and every write.
	DefaultTimeout = 30 * time.Second
)

// --------------------------------------------------------------------------------
// Errors

var (
	// ErrAlreadyConnected indicates Connect was called while a connection exists.
	ErrAlreadyConnected = errors.New("vkmax/websocket: already connected")
	// ErrNotConnected indicates an operation that requires an open connection.
	ErrNotConnected = errors.New("vkmax/websocket: not connected")
)

// --------------------------------------------------------------------------------
// Types

// Option defines a function that configures a Client and returns an error if
// configuration fails.
type Option func(*Client) error

// Config encapsulates transport settings. All fields are optional; unset
// values fall back to the defaults above.
type Config struct {
	Proxy             func(*http.Request) (*url.URL, error) // Proxy routing function; nil disables proxy.
	TLSClientConfig   *tls.Config                           // TLS settings for wss://; nil uses system defaults.
	Timeout           time.Duration                         // Timeout for handshake and writes.
	ReadBufferSize    int                                   // Read buffer size in bytes; 0 for default.
	WriteBufferSize   int                                   // Write buffer size in bytes; 0 for default.
	Subprotocols      []string                              // Supported subprotocols; nil for none.
	EnableCompression bool                                  // Enables RFC 7692 per-message compression if true.
	ReadLimit         int64                                 // Max message size in bytes; 0 for no limit.
}

// Client manages a single WebSocket connection.
//
// At most one connection exists per Client. It is safe for concurrent use
// when sending or inspecting state; the receive loop is the only reader.
type Client struct {
	config Config
	url    string
	header http.Header
	logger logger.Interface

	connMu    sync.RWMutex // Protects conn and connected.
	conn      *websocket.Conn
	connected bool
	sendMu    sync.Mutex     // Serializes writes to the socket.
	wg        sync.WaitGroup // Tracks the receive loop for clean shutdown.

	onFrame func([]byte)    // Invoked from the receive loop for every text frame.
	onClose func(err error) // Invoked once when the receive loop exits.
}

// --------------------------------------------------------------------------------
// Initialization

// New creates a transport client for the given endpoint. The client is not
// connected until Connect is called.
func New(endpoint string, opts ...Option) (*Client, error) {
	l, err := logger.New("info", os.Stdout)
	if err != nil {
		return nil, err
	}

	c := &Client{
		config: Config{Timeout: DefaultTimeout},
		url:    endpoint,
		header: make(http.Header),
		logger: l,
	}

	return c.With(opts...)
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

// Connect dials the endpoint and starts the receive loop.
//
// It fails with ErrAlreadyConnected if a connection already exists, and with
// the dial error if the handshake does not complete.
func (c *Client) Connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		return ErrAlreadyConnected
	}

	dialer := &websocket.Dialer{
		Proxy:             c.config.Proxy,
		TLSClientConfig:   c.config.TLSClientConfig,
		HandshakeTimeout:  c.config.Timeout,
		ReadBufferSize:    c.config.ReadBufferSize,
		WriteBufferSize:   c.config.WriteBufferSize,
		Subprotocols:      c.config.Subprotocols,
		EnableCompression: c.config.EnableCompression,
	}

	conn, resp, err := dialer.DialContext(ctx, c.url, c.header)
	if err != nil {
		if resp != nil {
			c.logger.Error("Handshake rejected: %d %s", resp.StatusCode, resp.Status)
		}

		return fmt.Errorf("dial failed: %w", err)
	}

	conn.SetReadLimit(c.config.ReadLimit)

	c.conn = conn
	c.connected = true

	c.logger.Info("Connected to %s", c.url)

	c.wg.Add(1)

	go c.readLoop(conn)

	return nil
}

// Close terminates the connection and waits for the receive loop to exit.
//
// It fails with ErrNotConnected when no connection exists.
func (c *Client) Close() error {
	c.connMu.Lock()

	if c.conn == nil {
		c.connMu.Unlock()

		return ErrNotConnected
	}

	conn := c.conn
	c.conn = nil
	c.connected = false
	c.connMu.Unlock()

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second)); err != nil {
		c.logger.Debug("Failed to send close message: %v", err)
	}

	err := conn.Close()

	c.wg.Wait()

	c.logger.Info("Disconnected from %s", c.url)

	return err
}

// Connected reports whether the client currently holds an open connection.
func (c *Client) Connected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()

	return c.connected
}

// --------------------------------------------------------------------------------
// Message Handling

// Send writes a text frame to the socket. It is safe for concurrent use and
// sets a write deadline based on the configured timeout.
func (c *Client) Send(data []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	conn := c.connection()
	if conn == nil {
		return ErrNotConnected
	}

	if err := conn.SetWriteDeadline(time.Now().Add(c.config.Timeout)); err != nil {
		return fmt.Errorf("set write deadline failed: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	return nil
}

// --------------------------------------------------------------------------------
// Lifecycle (Private)

// readLoop delivers every inbound text frame to the onFrame hook until the
// connection fails or is closed, then fires onClose exactly once.
func (c *Client) readLoop(conn *websocket.Conn) {
	defer c.wg.Done()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			c.teardown(err)

			return
		}

		if msgType != websocket.TextMessage {
			c.logger.Debug("Ignoring non-text frame [type=%d, size=%d]", msgType, len(data))

			continue
		}

		if c.onFrame != nil {
			c.onFrame(data)
		}
	}
}

// teardown clears connection state after the receive loop exits and
// notifies the owner.
func (c *Client) teardown(err error) {
	c.connMu.Lock()
	wasOpen := c.conn != nil
	c.conn = nil
	c.connected = false
	c.connMu.Unlock()

	if wasOpen {
		c.logger.Warn("Connection lost: %v", err)
	}

	if c.onClose != nil {
		c.onClose(err)
	}
}

// connection returns the current WebSocket connection with read safety.
func (c *Client) connection() *websocket.Conn {
	c.connMu.RLock()
	defer c.connMu.RUnlock()

	return c.conn
}

// --------------------------------------------------------------------------------
// Option Functions

// WithProxy configures an HTTP proxy from a URL string. An empty string
// disables the proxy.
func WithProxy(proxy string) Option {
	return func(c *Client) error {
		if proxy == "" {
			c.config.Proxy = nil

			return nil
		}

		u, err := url.Parse(proxy)
		if err != nil {
			return fmt.Errorf("invalid proxy URL %q: %w", proxy, err)
		}

		c.config.Proxy = http.ProxyURL(u)

		return nil
	}
}

// WithTLS sets the TLS configuration for secure connections.
func WithTLS(cfg *tls.Config) Option {
	return func(c *Client) error {
		c.config.TLSClientConfig = cfg

		return nil
	}
}

// WithTimeout sets the timeout for the handshake and write operations.
//
// Returns an error if the timeout is negative.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout < 0 {
			return fmt.Errorf("timeout cannot be negative: %v", timeout)
		}

		c.config.Timeout = timeout

		return nil
	}
}

// WithBuffers configures the read and write buffer sizes in bytes.
//
// Returns an error if either buffer size is negative.
func WithBuffers(read, write int) Option {
	return func(c *Client) error {
		if read < 0 || write < 0 {
			return fmt.Errorf("buffer sizes cannot be negative: read=%d, write=%d", read, write)
		}

		c.config.ReadBufferSize = read
		c.config.WriteBufferSize = write

		return nil
	}
}

// WithSubprotocols specifies supported WebSocket subprotocols.
func WithSubprotocols(protos ...string) Option {
	return func(c *Client) error {
		c.config.Subprotocols = protos

		return nil
	}
}

// WithCompression enables or disables RFC 7692 per-message compression.
func WithCompression(enable bool) Option {
	return func(c *Client) error {
		c.config.EnableCompression = enable

		return nil
	}
}

// WithReadLimit sets the maximum allowed message size in bytes.
//
// Returns an error if the limit is negative.
func WithReadLimit(limit int64) Option {
	return func(c *Client) error {
		if limit < 0 {
			return fmt.Errorf("read limit cannot be negative: %d", limit)
		}

		c.config.ReadLimit = limit

		return nil
	}
}

// WithHeader adds a single key-value pair to the handshake headers.
//
// Returns an error if the key is empty.
func WithHeader(key, value string) Option {
	return func(c *Client) error {
		if key == "" {
			return errors.New("header key cannot be empty")
		}

		c.header.Set(key, value)

		return nil
	}
}

// WithLogger sets a custom logger for the client.
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

// OnFrame registers the hook invoked from the receive loop for every inbound
// text frame.
func OnFrame(fn func([]byte)) Option {
	return func(c *Client) error {
		c.onFrame = fn

		return nil
	}
}

// OnClose registers the hook invoked once when the receive loop exits,
// whether from a local Close or a transport failure.
func OnClose(fn func(error)) Option {
	return func(c *Client) error {
		c.onClose = fn

		return nil
	}
}
