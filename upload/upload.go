// Package upload posts media blobs to the upload endpoints handed out by
// the RPC side of the protocol. Uploads are plain multipart HTTP POSTs
// outside the WebSocket envelope.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/antirek/vkmax-go/util"
)

// --------------------------------------------------------------------------------
// Constants

const (
	// DefaultTimeout bounds a single upload attempt.
	DefaultTimeout = 60 * time.Second
	// DefaultRetryCount is the default number of retries for failed uploads.
	DefaultRetryCount = 0
	// DefaultRetryWaitTime is the initial wait time between retries.
	DefaultRetryWaitTime = 500 * time.Millisecond
	// DefaultRetryMaxWaitTime is the maximum wait time between retries.
	DefaultRetryMaxWaitTime = 5 * time.Second

	// fieldName is the multipart form field the upload service expects.
	fieldName = "file"
)

// --------------------------------------------------------------------------------
// Errors

var (
	// ErrEmptyURL indicates that no upload URL was provided.
	ErrEmptyURL = errors.New("vkmax/upload: upload URL cannot be empty")
	// ErrNilReader indicates that no blob reader was provided.
	ErrNilReader = errors.New("vkmax/upload: reader cannot be nil")
)

// --------------------------------------------------------------------------------
// Types

// Option defines a function to configure a Client instance.
type Option func(*Client) error

// Client posts blobs to server-provided upload URLs with optional retries.
type Client struct {
	httpClient       *http.Client
	debug            bool
	retryCount       uint
	retryWaitTime    time.Duration
	retryMaxWaitTime time.Duration
}

// Result is the upload service's JSON reply. Photo uploads return a token
// per photo id; file and video uploads return a single id and token.
type Result struct {
	Photos  map[string]PhotoToken `json:"photos,omitempty"`
	FileID  int64                 `json:"fileId,omitempty"`
	VideoID int64                 `json:"videoId,omitempty"`
	Token   string                `json:"token,omitempty"`

	// Body is the raw response for payload shapes the client doesn't model.
	Body []byte `json:"-"`
}

// PhotoToken carries the attach token for a single uploaded photo.
type PhotoToken struct {
	Token string `json:"token"`
}

// --------------------------------------------------------------------------------
// Constructors

// New creates an upload client with default settings and applies the
// provided options.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		httpClient:       &http.Client{Timeout: DefaultTimeout},
		retryCount:       DefaultRetryCount,
		retryWaitTime:    DefaultRetryWaitTime,
		retryMaxWaitTime: DefaultRetryMaxWaitTime,
	}

	return c.With(opts...)
}

// With applies a list of options to an existing Client and returns the
// modified instance.
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
// Public Methods

// Upload posts the blob read from r as a multipart form file to the given
// URL and decodes the JSON reply.
//
// Attempts beyond the first happen only when retries are configured; any
// transport failure or error status is retried with backoff.
func (c *Client) Upload(ctx context.Context, uploadURL, filename string, r io.Reader) (*Result, error) {
	if uploadURL == "" {
		return nil, ErrEmptyURL
	}

	if r == nil {
		return nil, ErrNilReader
	}

	// The blob is buffered once so retries can replay it.
	body, contentType, err := multipartBody(filename, r)
	if err != nil {
		return nil, err
	}

	var attempt uint

	for {
		res, err := c.do(ctx, uploadURL, contentType, bytes.NewReader(body))
		attempt++

		if err == nil {
			return res, nil
		}

		if attempt > c.retryCount || ctx.Err() != nil {
			return nil, err
		}

		if werr := util.Wait(ctx, attempt, c.retryWaitTime, c.retryMaxWaitTime, util.DefaultJitterFactor); werr != nil {
			return nil, werr
		}
	}
}

// --------------------------------------------------------------------------------
// Private Methods

// do performs a single upload attempt.
func (c *Client) do(ctx context.Context, uploadURL, contentType string, body io.Reader) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)

	if c.debug {
		printRequest(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload response: %w", err)
	}

	if c.debug {
		printResponse(resp, data)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("upload failed: %s: %s", resp.Status, data)
	}

	res := &Result{Body: data}

	if len(data) > 0 {
		if err := sonic.Unmarshal(data, res); err != nil {
			return nil, fmt.Errorf("failed to decode upload response: %w", err)
		}
	}

	return res, nil
}

// multipartBody builds the multipart form body for a single file field.
func multipartBody(filename string, r io.Reader) ([]byte, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := io.Copy(part, r); err != nil {
		return nil, "", fmt.Errorf("failed to copy blob: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

// jsonIndent pretty-prints JSON for the debug dump, falling back to the raw
// bytes when the body is not JSON.
func jsonIndent(data []byte) string {
	var pretty bytes.Buffer
	if json.Indent(&pretty, data, "  ", "  ") != nil {
		return string(data)
	}

	return pretty.String()
}

// --------------------------------------------------------------------------------
// Configuration Options

// WithTimeout sets the timeout for a single upload attempt.
//
// Returns an error if the timeout is negative.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout < 0 {
			return fmt.Errorf("timeout cannot be negative: %v", timeout)
		}

		c.httpClient.Timeout = timeout

		return nil
	}
}

// WithHTTPClient replaces the underlying HTTP client.
//
// Returns an error if the client is nil.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client cannot be nil")
		}

		c.httpClient = hc

		return nil
	}
}

// WithRetries configures retry settings for failed uploads.
//
// Returns an error if either wait time is negative.
func WithRetries(count uint, waitTime, maxWaitTime time.Duration) Option {
	return func(c *Client) error {
		if waitTime < 0 || maxWaitTime < 0 {
			return errors.New("retry wait times must be non-negative")
		}

		c.retryCount = count
		c.retryWaitTime = waitTime
		c.retryMaxWaitTime = maxWaitTime

		return nil
	}
}

// WithDebug enables colorized dumps of upload requests and responses.
func WithDebug(enable bool) Option {
	return func(c *Client) error {
		c.debug = enable

		return nil
	}
}
