package vkmax

import (
	"context"
	"errors"

	"github.com/antirek/vkmax-go/protocol"
)

// Profile and settings helpers.

// UpdateSettings pushes profile or notification settings to the server, for
// example {"HIDDEN": true} or notification preferences.
func (c *Client) UpdateSettings(ctx context.Context, settings map[string]any) (*protocol.Envelope, error) {
	if len(settings) == 0 {
		return nil, errors.New("vkmax: settings cannot be empty")
	}

	return c.Invoke(ctx, protocol.OpUpdateSettings, map[string]any{"settings": settings})
}
