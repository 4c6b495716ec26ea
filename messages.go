package vkmax

import (
	"context"
	"time"

	"github.com/antirek/vkmax-go/protocol"
)

// Message operation helpers. Each builds the opcode's payload and hands it
// to Invoke; the raw response envelope comes back for the caller to
// interpret, including any application-level error field.

// --------------------------------------------------------------------------------
// Types

// outgoingMessage is the message object embedded in send requests.
type outgoingMessage struct {
	Text     string `json:"text"`
	Cid      int64  `json:"cid"`
	Elements []any  `json:"elements"`
	Attaches []any  `json:"attaches"`
}

// --------------------------------------------------------------------------------
// Sending

// SendMessage posts a text message to a chat. A fresh client message id is
// generated for deduplication on the server side.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, notify bool) (*protocol.Envelope, error) {
	return c.Invoke(ctx, protocol.OpSendMessage, map[string]any{
		"chatId": chatID,
		"message": outgoingMessage{
			Text:     text,
			Cid:      protocol.NewCid(),
			Elements: []any{},
			Attaches: []any{},
		},
		"notify": notify,
	})
}

// EditMessage replaces the text of an existing message.
func (c *Client) EditMessage(ctx context.Context, chatID int64, messageID, text string) (*protocol.Envelope, error) {
	return c.Invoke(ctx, protocol.OpEditMessage, map[string]any{
		"chatId":    chatID,
		"messageId": messageID,
		"text":      text,
		"elements":  []any{},
		"attaches":  []any{},
	})
}

// DeleteMessages removes messages from a chat. With forMe set the messages
// disappear only for the current account.
func (c *Client) DeleteMessages(ctx context.Context, chatID int64, messageIDs []string, forMe bool) (*protocol.Envelope, error) {
	return c.Invoke(ctx, protocol.OpDeleteMessage, map[string]any{
		"chatId":     chatID,
		"messageIds": messageIDs,
		"forMe":      forMe,
	})
}

// --------------------------------------------------------------------------------
// Reading

// MarkAsRead reports the given message as the chat's read marker.
func (c *Client) MarkAsRead(ctx context.Context, chatID int64, messageID string) (*protocol.Envelope, error) {
	return c.Invoke(ctx, protocol.OpReadMessage, map[string]any{
		"type":      "READ_MESSAGE",
		"chatId":    chatID,
		"messageId": messageID,
		"mark":      time.Now().UnixMilli(),
	})
}

// FetchHistory loads up to count messages sent before the from timestamp
// (milliseconds; zero means from the latest message).
func (c *Client) FetchHistory(ctx context.Context, chatID int64, from int64, count int) (*protocol.Envelope, error) {
	if from == 0 {
		from = time.Now().UnixMilli()
	}

	return c.Invoke(ctx, protocol.OpGetMessages, map[string]any{
		"chatId":   chatID,
		"from":     from,
		"forward":  0,
		"backward": count,
	})
}

// --------------------------------------------------------------------------------
// Reactions

// AddReaction puts an emoji reaction on a message.
func (c *Client) AddReaction(ctx context.Context, chatID int64, messageID, emoji string) (*protocol.Envelope, error) {
	return c.Invoke(ctx, protocol.OpAddReaction, map[string]any{
		"chatId":    chatID,
		"messageId": messageID,
		"reaction": map[string]any{
			"reactionType": "EMOJI",
			"id":           emoji,
		},
	})
}

// GetReactions lists the reactions on the given messages.
func (c *Client) GetReactions(ctx context.Context, chatID int64, messageIDs []string) (*protocol.Envelope, error) {
	return c.Invoke(ctx, protocol.OpGetReactions, map[string]any{
		"chatId":     chatID,
		"messageIds": messageIDs,
	})
}
