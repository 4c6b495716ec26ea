package vkmax

import (
	"context"
	"errors"
	"io"

	"github.com/antirek/vkmax-go/protocol"
	"github.com/antirek/vkmax-go/upload"
)

// Media helpers. Uploading is a two-step flow: an RPC request hands out a
// short-lived HTTP upload URL, the blob goes there as a plain multipart
// POST, and the returned token is attached to a message.

// --------------------------------------------------------------------------------
// Types

// UploadKind selects the media pipeline an attachment goes through.
type UploadKind int

const (
	UploadPhoto UploadKind = iota
	UploadFile
	UploadVideo
)

// opcode maps the kind to its upload-URL request opcode.
func (k UploadKind) opcode() protocol.Opcode {
	switch k {
	case UploadFile:
		return protocol.OpFileUpload
	case UploadVideo:
		return protocol.OpVideoUpload
	default:
		return protocol.OpPhotoUpload
	}
}

// UploadTarget is the server's reply to an upload-URL request.
type UploadTarget struct {
	URL   string `json:"url"`
	Token string `json:"token,omitempty"`
}

// --------------------------------------------------------------------------------
// Uploading

// RequestUploadURL asks the server for an HTTP upload endpoint for the given
// media kind.
func (c *Client) RequestUploadURL(ctx context.Context, kind UploadKind, count int) (*protocol.Envelope, error) {
	return c.Invoke(ctx, kind.opcode(), map[string]any{"count": count})
}

// UploadMedia runs the full upload flow: request an upload URL over RPC,
// then POST the blob read from r to it. The result carries the attach
// token(s) for the uploaded media.
func (c *Client) UploadMedia(ctx context.Context, kind UploadKind, filename string, r io.Reader) (*upload.Result, error) {
	resp, err := c.RequestUploadURL(ctx, kind, 1)
	if err != nil {
		return nil, err
	}

	if err := CheckResponse(resp); err != nil {
		return nil, err
	}

	var target UploadTarget
	if err := resp.DecodePayload(&target); err != nil {
		return nil, err
	}

	if target.URL == "" {
		return nil, errors.New("vkmax: no upload URL in response")
	}

	return c.uploader.Upload(ctx, target.URL, filename, r)
}

// AttachMedia binds uploaded media to a message in the given chat. The
// attaches are the attachment objects built from upload tokens.
func (c *Client) AttachMedia(ctx context.Context, chatID int64, text string, attaches []any, notify bool) (*protocol.Envelope, error) {
	if len(attaches) == 0 {
		return nil, errors.New("vkmax: attaches cannot be empty")
	}

	return c.Invoke(ctx, protocol.OpAttachMedia, map[string]any{
		"chatId": chatID,
		"message": outgoingMessage{
			Text:     text,
			Cid:      protocol.NewCid(),
			Elements: []any{},
			Attaches: attaches,
		},
		"notify": notify,
	})
}

// VideoInfo fetches playback info for an uploaded video.
func (c *Client) VideoInfo(ctx context.Context, videoID int64) (*protocol.Envelope, error) {
	return c.Invoke(ctx, protocol.OpVideoInfo, map[string]any{"videoId": videoID})
}
