// Package vkmax is a client library for the Max messenger's WebSocket RPC
// protocol.
//
// The client opens a single secure WebSocket to the API host, frames every
// request as a JSON envelope with a per-connection sequence number, and
// correlates server replies back to their requests by that number. Frames
// whose sequence number matches no in-flight request are unsolicited server
// events and are delivered to the registered event handler in arrival order.
//
// A typical session:
//
//	client, err := vkmax.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := client.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Disconnect()
//
//	if _, err := client.LoginByToken(ctx, token); err != nil {
//	    log.Fatal(err)
//	}
//
//	_ = client.OnEvent(func(env *protocol.Envelope) {
//	    if env.Opcode == protocol.OpMessageReceived {
//	        fmt.Println("new message:", string(env.Payload))
//	    }
//	})
//
//	if _, err := client.SendMessage(ctx, chatID, "hello", true); err != nil {
//	    log.Fatal(err)
//	}
//
// After a successful login the client sends a keepalive request every
// 30 seconds until Disconnect. Every public operation either returns the raw
// response envelope or a typed error; application-level error fields inside
// response payloads are left for the caller to inspect, except in the auth
// paths where they become an *AuthError.
package vkmax

import "time"

// --------------------------------------------------------------------------------
// Constants

const (
	// DefaultEndpoint is the production WebSocket API host.
	DefaultEndpoint = "wss://ws-api.oneme.ru/websocket"

	// DefaultRequestTimeout bounds how long an Invoke waits for its response.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultKeepaliveInterval is the pause between keepalive requests after
	// login.
	DefaultKeepaliveInterval = 30 * time.Second
)
