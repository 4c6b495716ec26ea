package vkmax

import (
	"errors"

	"github.com/antirek/vkmax-go/protocol"
	"github.com/antirek/vkmax-go/websocket"
)

// --------------------------------------------------------------------------------
// Errors

var (
	// ErrAlreadyConnected indicates Connect was called while connected.
	ErrAlreadyConnected = websocket.ErrAlreadyConnected
	// ErrNotConnected indicates an operation that requires an open connection.
	ErrNotConnected = websocket.ErrNotConnected

	// ErrRequestTimeout indicates no response arrived within the request
	// timeout; the pending entry is discarded.
	ErrRequestTimeout = errors.New("vkmax: request timed out")
	// ErrConnectionClosed indicates the connection dropped while a request
	// was in flight.
	ErrConnectionClosed = errors.New("vkmax: connection closed")
	// ErrKeepaliveStarted indicates a login path tried to start the
	// keepalive task twice without an intervening disconnect.
	ErrKeepaliveStarted = errors.New("vkmax: keepalive already started")
	// ErrNilHandler indicates a nil event handler was registered.
	ErrNilHandler = errors.New("vkmax: event handler cannot be nil")
)

// --------------------------------------------------------------------------------
// Types

// AuthError reports a failed authentication exchange, carrying the server's
// error message.
type AuthError struct {
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return "vkmax: authentication failed: " + e.Message
}

// APIError reports an application-level error field inside an otherwise
// well-formed response payload.
type APIError struct {
	Opcode  protocol.Opcode
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return "vkmax: " + e.Opcode.String() + " failed: " + e.Message
}

// CheckResponse inspects a response envelope for an application-level error
// field and converts it into an *APIError.
//
// The correlator itself never performs this check; callers that want typed
// server errors run their envelopes through it.
func CheckResponse(env *protocol.Envelope) error {
	if msg := env.PayloadError(); msg != "" {
		return &APIError{Opcode: env.Opcode, Message: msg}
	}

	return nil
}
