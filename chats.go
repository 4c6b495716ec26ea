package vkmax

import (
	"context"
	"errors"

	"github.com/antirek/vkmax-go/protocol"
)

// Group and channel operation helpers. Channels reuse the group opcodes; the
// server tells them apart by chat type.

// --------------------------------------------------------------------------------
// Types

// GroupSettings holds the mutable attributes of a group chat or channel.
// Zero-valued fields are left unchanged.
type GroupSettings struct {
	Theme       string          `json:"theme,omitempty"`
	Description string          `json:"description,omitempty"`
	Options     map[string]bool `json:"options,omitempty"`
}

// --------------------------------------------------------------------------------
// Membership

// JoinByLink enters a group, channel, or dialog through an invite link.
func (c *Client) JoinByLink(ctx context.Context, link string) (*protocol.Envelope, error) {
	if link == "" {
		return nil, errors.New("vkmax: link cannot be empty")
	}

	return c.Invoke(ctx, protocol.OpJoinByLink, map[string]any{"link": link})
}

// ResolveLink looks up what an invite or profile link points to without
// joining.
func (c *Client) ResolveLink(ctx context.Context, link string) (*protocol.Envelope, error) {
	if link == "" {
		return nil, errors.New("vkmax: link cannot be empty")
	}

	return c.Invoke(ctx, protocol.OpResolveLink, map[string]any{"link": link})
}

// GetGroupMembers pages through a chat's member list starting at marker
// (zero for the first page).
func (c *Client) GetGroupMembers(ctx context.Context, chatID int64, marker int64, count int) (*protocol.Envelope, error) {
	return c.Invoke(ctx, protocol.OpGetGroupMembers, map[string]any{
		"chatId": chatID,
		"type":   "MEMBER",
		"marker": marker,
		"count":  count,
	})
}

// AddChatMembers invites users into a group chat. With showHistory the new
// members see messages sent before they joined.
func (c *Client) AddChatMembers(ctx context.Context, chatID int64, userIDs []int64, showHistory bool) (*protocol.Envelope, error) {
	return c.Invoke(ctx, protocol.OpManageUsers, map[string]any{
		"chatId":      chatID,
		"userIds":     userIDs,
		"operation":   "add",
		"showHistory": showHistory,
	})
}

// RemoveChatMember expels a user from a group chat, optionally wiping their
// messages for the last cleanPeriod milliseconds.
func (c *Client) RemoveChatMember(ctx context.Context, chatID, userID int64, cleanPeriod int64) (*protocol.Envelope, error) {
	return c.Invoke(ctx, protocol.OpManageUsers, map[string]any{
		"chatId":         chatID,
		"userIds":        []int64{userID},
		"operation":      "remove",
		"cleanMsgPeriod": cleanPeriod,
	})
}

// --------------------------------------------------------------------------------
// Settings

// ChangeGroupSettings updates a group chat's or channel's attributes.
func (c *Client) ChangeGroupSettings(ctx context.Context, chatID int64, settings GroupSettings) (*protocol.Envelope, error) {
	payload := map[string]any{"chatId": chatID}

	if settings.Theme != "" {
		payload["theme"] = settings.Theme
	}

	if settings.Description != "" {
		payload["description"] = settings.Description
	}

	if len(settings.Options) > 0 {
		payload["options"] = settings.Options
	}

	return c.Invoke(ctx, protocol.OpChangeGroupSettings, payload)
}
