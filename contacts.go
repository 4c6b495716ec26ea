package vkmax

import (
	"context"
	"errors"

	"github.com/antirek/vkmax-go/protocol"
)

// Contact operation helpers.

// GetContacts fetches profile information for the given user ids.
func (c *Client) GetContacts(ctx context.Context, userIDs []int64) (*protocol.Envelope, error) {
	if len(userIDs) == 0 {
		return nil, errors.New("vkmax: user ids cannot be empty")
	}

	return c.Invoke(ctx, protocol.OpGetContacts, map[string]any{"contactIds": userIDs})
}

// AddContact saves a user to the contact list.
func (c *Client) AddContact(ctx context.Context, userID int64) (*protocol.Envelope, error) {
	return c.Invoke(ctx, protocol.OpAddContact, map[string]any{
		"contactId": userID,
		"action":    "ADD",
	})
}
