package vkmax

import (
	"context"
	"time"

	"github.com/antirek/vkmax-go/protocol"
)

// --------------------------------------------------------------------------------
// Constants

// defaultChatsPageSize is the chat page size requested during token login.
const defaultChatsPageSize = 40

// --------------------------------------------------------------------------------
// Types

// helloPayload announces the client to the server before any auth opcode.
type helloPayload struct {
	UserAgent protocol.UserAgent `json:"userAgent"`
	DeviceID  string             `json:"deviceId"`
}

// startAuthPayload requests a verification code for a phone number.
type startAuthPayload struct {
	Phone    string `json:"phone"`
	Type     string `json:"type"`
	Language string `json:"language"`
}

// verifyCodePayload confirms a verification code against its token.
type verifyCodePayload struct {
	Token         string `json:"token"`
	VerifyCode    string `json:"verifyCode"`
	AuthTokenType string `json:"authTokenType"`
}

// loginByTokenPayload restores a session from a long-lived auth token. The
// sync cursors are fixed at zero: the client always requests a full state.
type loginByTokenPayload struct {
	Interactive  bool   `json:"interactive"`
	Token        string `json:"token"`
	ChatsSync    int64  `json:"chatsSync"`
	ContactsSync int64  `json:"contactsSync"`
	PresenceSync int64  `json:"presenceSync"`
	DraftsSync   int64  `json:"draftsSync"`
	ChatsCount   int    `json:"chatsCount"`
}

// keepalivePayload is the periodic no-op request keeping the session alive.
type keepalivePayload struct {
	Interactive bool `json:"interactive"`
}

// --------------------------------------------------------------------------------
// Authentication

// SendHello announces the client's user agent and a freshly generated device
// identifier. It must precede any auth opcode; the login helpers below call
// it themselves.
func (c *Client) SendHello(ctx context.Context) (*protocol.Envelope, error) {
	return c.Invoke(ctx, protocol.OpHello, helloPayload{
		UserAgent: protocol.DefaultUserAgent(),
		DeviceID:  protocol.NewDeviceID(),
	})
}

// SendCodeToPhone starts phone authentication and returns the verification
// token the server expects back together with the SMS code.
func (c *Client) SendCodeToPhone(ctx context.Context, phone string) (string, error) {
	if _, err := c.SendHello(ctx); err != nil {
		return "", err
	}

	resp, err := c.Invoke(ctx, protocol.OpStartAuth, startAuthPayload{
		Phone:    phone,
		Type:     "START_AUTH",
		Language: "ru",
	})
	if err != nil {
		return "", err
	}

	var out struct {
		Token string `json:"token"`
	}

	if err := resp.DecodePayload(&out); err != nil {
		return "", err
	}

	if out.Token == "" {
		return "", &AuthError{Message: "no verification token in response"}
	}

	return out.Token, nil
}

// SignInWithCode completes phone authentication with the SMS code.
//
// A server-side error field in the response becomes an *AuthError; on
// success the session is marked logged-in and the keepalive task starts.
// It fails with ErrKeepaliveStarted when called twice without an
// intervening disconnect.
func (c *Client) SignInWithCode(ctx context.Context, token, code string) (*protocol.Envelope, error) {
	resp, err := c.Invoke(ctx, protocol.OpVerifyCode, verifyCodePayload{
		Token:         token,
		VerifyCode:    code,
		AuthTokenType: "CHECK_CODE",
	})
	if err != nil {
		return nil, err
	}

	return c.completeLogin(resp)
}

// LoginByToken restores a session from a long-lived auth token, with zero
// sync cursors and the default chat page size. Error and keepalive
// semantics match SignInWithCode.
func (c *Client) LoginByToken(ctx context.Context, token string) (*protocol.Envelope, error) {
	if _, err := c.SendHello(ctx); err != nil {
		return nil, err
	}

	resp, err := c.Invoke(ctx, protocol.OpLoginByToken, loginByTokenPayload{
		Interactive: true,
		Token:       token,
		ChatsCount:  defaultChatsPageSize,
	})
	if err != nil {
		return nil, err
	}

	return c.completeLogin(resp)
}

// --------------------------------------------------------------------------------
// Session (Private)

// completeLogin flips the session to logged-in exactly once and starts the
// keepalive task. The logged-in flag stays false when the server rejected
// the login.
func (c *Client) completeLogin(resp *protocol.Envelope) (*protocol.Envelope, error) {
	if msg := resp.PayloadError(); msg != "" {
		return nil, &AuthError{Message: msg}
	}

	if err := c.startKeepalive(); err != nil {
		return nil, err
	}

	c.sessionMu.Lock()
	c.loggedIn = true
	c.sessionMu.Unlock()

	c.logger.Info("Logged in")

	return resp, nil
}

// startKeepalive launches the periodic keepalive task. It fails with
// ErrKeepaliveStarted when the task is already running.
func (c *Client) startKeepalive() error {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	if c.keepaliveStop != nil {
		return ErrKeepaliveStarted
	}

	stop := make(chan struct{})
	c.keepaliveStop = stop

	c.wg.Add(1)

	go c.keepaliveLoop(stop)

	return nil
}

// keepaliveLoop sends a keepalive request on every tick until stopped. A
// failed tick is logged and the next tick proceeds as usual.
func (c *Client) keepaliveLoop(stop chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), c.requestTimeout)

			if _, err := c.Invoke(ctx, protocol.OpKeepalive, keepalivePayload{Interactive: false}); err != nil {
				c.logger.Warn("Keepalive tick failed: %v", err)
			}

			cancel()
		}
	}
}
