package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// --------------------------------------------------------------------------------
// Constants

const (
	// Version is the protocol version stamped into every envelope.
	Version = 11

	// CmdRequest marks a client-originated request envelope.
	CmdRequest = 0
	// CmdResponse marks a server reply to a request with the same seq.
	CmdResponse = 1
)

// --------------------------------------------------------------------------------
// Types

// Envelope is the frame exchanged over the socket in both directions.
//
// A frame whose seq matches an in-flight request is that request's response;
// any other frame is an unsolicited server event.
type Envelope struct {
	Ver     int             `json:"ver"`
	Cmd     int             `json:"cmd"`
	Seq     uint32          `json:"seq"`
	Opcode  Opcode          `json:"opcode"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// payloadError is the error shape servers embed inside response payloads.
type payloadError struct {
	Error            string `json:"error"`
	LocalizedMessage string `json:"localizedMessage"`
}

// --------------------------------------------------------------------------------
// Constructors

// NewRequest builds a request envelope for the given opcode, marshaling
// payload to JSON. A nil payload produces an empty JSON object.
func NewRequest(seq uint32, op Opcode, payload any) (*Envelope, error) {
	raw := json.RawMessage("{}")

	if payload != nil {
		data, err := sonic.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", op, err)
		}

		raw = data
	}

	return &Envelope{
		Ver:     Version,
		Cmd:     CmdRequest,
		Seq:     seq,
		Opcode:  op,
		Payload: raw,
	}, nil
}

// Decode parses a wire frame into an Envelope.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	return &env, nil
}

// --------------------------------------------------------------------------------
// Public Methods

// Encode serializes the envelope to its wire form.
func (e *Envelope) Encode() ([]byte, error) {
	data, err := sonic.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", e.Opcode, err)
	}

	return data, nil
}

// DecodePayload unmarshals the envelope's payload into v.
func (e *Envelope) DecodePayload(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%s envelope has no payload", e.Opcode)
	}

	if err := sonic.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Opcode, err)
	}

	return nil
}

// PayloadError extracts the application-level error carried by the envelope,
// checking the top-level error field first and then the payload's error
// field. It returns "" when the envelope carries no error.
//
// The response correlator never calls this: interpreting the error field is
// the caller's responsibility.
func (e *Envelope) PayloadError() string {
	if e.Error != "" {
		return e.Error
	}

	if len(e.Payload) == 0 {
		return ""
	}

	var pe payloadError
	if err := sonic.Unmarshal(e.Payload, &pe); err != nil {
		return ""
	}

	if pe.Error != "" && pe.LocalizedMessage != "" {
		return pe.Error + ": " + pe.LocalizedMessage
	}

	if pe.Error != "" {
		return pe.Error
	}

	return pe.LocalizedMessage
}
