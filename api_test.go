package vkmax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antirek/vkmax-go/protocol"
)

// Payload-shape tests for the operation helpers: each helper must put the
// documented fields on the wire for its opcode.

func TestMarkAsReadPayload(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, replyOK)
	c := newTestClient(t, ts)

	_, err := c.MarkAsRead(t.Context(), 5, "msg-9")
	require.NoError(t, err)

	req := ts.waitFor(protocol.OpReadMessage)

	var body struct {
		Type      string `json:"type"`
		ChatID    int64  `json:"chatId"`
		MessageID string `json:"messageId"`
		Mark      int64  `json:"mark"`
	}
	require.NoError(t, req.DecodePayload(&body))
	assert.Equal(t, "READ_MESSAGE", body.Type)
	assert.Equal(t, int64(5), body.ChatID)
	assert.Equal(t, "msg-9", body.MessageID)
	assert.Positive(t, body.Mark)
}

func TestAddReactionPayload(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, replyOK)
	c := newTestClient(t, ts)

	_, err := c.AddReaction(t.Context(), 5, "msg-9", "👍")
	require.NoError(t, err)

	req := ts.waitFor(protocol.OpAddReaction)

	var body struct {
		Reaction struct {
			ReactionType string `json:"reactionType"`
			ID           string `json:"id"`
		} `json:"reaction"`
	}
	require.NoError(t, req.DecodePayload(&body))
	assert.Equal(t, "EMOJI", body.Reaction.ReactionType)
	assert.Equal(t, "👍", body.Reaction.ID)
}

func TestManageUsersPayloads(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, replyOK)
	c := newTestClient(t, ts)

	_, err := c.AddChatMembers(t.Context(), 5, []int64{10, 11}, true)
	require.NoError(t, err)

	add := ts.waitFor(protocol.OpManageUsers)

	var addBody struct {
		Operation   string  `json:"operation"`
		UserIDs     []int64 `json:"userIds"`
		ShowHistory bool    `json:"showHistory"`
	}
	require.NoError(t, add.DecodePayload(&addBody))
	assert.Equal(t, "add", addBody.Operation)
	assert.Equal(t, []int64{10, 11}, addBody.UserIDs)
	assert.True(t, addBody.ShowHistory)

	_, err = c.RemoveChatMember(t.Context(), 5, 10, 0)
	require.NoError(t, err)

	remove := ts.waitFor(protocol.OpManageUsers)

	var removeBody struct {
		Operation string  `json:"operation"`
		UserIDs   []int64 `json:"userIds"`
	}
	require.NoError(t, remove.DecodePayload(&removeBody))
	assert.Equal(t, "remove", removeBody.Operation)
	assert.Equal(t, []int64{10}, removeBody.UserIDs)
}

func TestChangeGroupSettingsPayload(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, replyOK)
	c := newTestClient(t, ts)

	_, err := c.ChangeGroupSettings(t.Context(), 5, GroupSettings{
		Theme:   "team chat",
		Options: map[string]bool{"ONLY_OWNER_CAN_CHANGE_ICON_TITLE": true},
	})
	require.NoError(t, err)

	req := ts.waitFor(protocol.OpChangeGroupSettings)

	var body struct {
		ChatID      int64           `json:"chatId"`
		Theme       string          `json:"theme"`
		Description string          `json:"description"`
		Options     map[string]bool `json:"options"`
	}
	require.NoError(t, req.DecodePayload(&body))
	assert.Equal(t, "team chat", body.Theme)
	assert.Empty(t, body.Description, "unset fields must stay off the wire")
	assert.True(t, body.Options["ONLY_OWNER_CAN_CHANGE_ICON_TITLE"])
}

func TestLocalValidation(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, replyOK)
	c := newTestClient(t, ts)

	_, err := c.GetContacts(t.Context(), nil)
	require.Error(t, err)

	_, err = c.JoinByLink(t.Context(), "")
	require.Error(t, err)

	_, err = c.ResolveLink(t.Context(), "")
	require.Error(t, err)

	_, err = c.UpdateSettings(t.Context(), nil)
	require.Error(t, err)
}

func TestCheckResponse(t *testing.T) {
	t.Parallel()

	clean := &protocol.Envelope{Opcode: protocol.OpSendMessage, Payload: []byte(`{"ok":true}`)}
	require.NoError(t, CheckResponse(clean))

	failed := &protocol.Envelope{Opcode: protocol.OpSendMessage, Payload: []byte(`{"error":"chat.denied"}`)}
	err := CheckResponse(failed)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, protocol.OpSendMessage, apiErr.Opcode)
	assert.Equal(t, "chat.denied", apiErr.Message)
}
