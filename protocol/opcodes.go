// Package protocol defines the Max messenger wire protocol: the JSON RPC
// envelope, the opcode table, and client-side identifier generation.
package protocol

import "fmt"

// --------------------------------------------------------------------------------
// Types

// Opcode identifies the server operation requested by an envelope.
type Opcode uint

// --------------------------------------------------------------------------------
// Constants

// Opcode values used by the web client protocol (ver 11).
const (
	OpKeepalive           Opcode = 1
	OpHello               Opcode = 6
	OpStartAuth           Opcode = 17
	OpVerifyCode          Opcode = 18
	OpLoginByToken        Opcode = 19
	OpUpdateSettings      Opcode = 22
	OpGetContacts         Opcode = 32
	OpAddContact          Opcode = 34
	OpGetMessages         Opcode = 49
	OpReadMessage         Opcode = 50
	OpChangeGroupSettings Opcode = 55
	OpJoinByLink          Opcode = 57
	OpGetGroupMembers     Opcode = 59
	OpSendMessage         Opcode = 64
	OpAttachMedia         Opcode = 65
	OpDeleteMessage       Opcode = 66
	OpEditMessage         Opcode = 67
	OpManageUsers         Opcode = 77
	OpPhotoUpload         Opcode = 80
	OpFileUpload          Opcode = 82
	OpVideoUpload         Opcode = 87
	OpResolveLink         Opcode = 89
	OpMessageReceived     Opcode = 128
	OpVideoInfo           Opcode = 136
	OpAddReaction         Opcode = 178
	OpGetReactions        Opcode = 181
)

// OpcodeNames maps opcodes to human-readable names for logging and diagnostics.
var OpcodeNames = map[Opcode]string{
	OpKeepalive:           "KEEPALIVE",
	OpHello:               "HELLO",
	OpStartAuth:           "START_AUTH",
	OpVerifyCode:          "VERIFY_CODE",
	OpLoginByToken:        "LOGIN_BY_TOKEN",
	OpUpdateSettings:      "UPDATE_SETTINGS",
	OpGetContacts:         "GET_CONTACTS",
	OpAddContact:          "ADD_CONTACT",
	OpGetMessages:         "GET_MESSAGES",
	OpReadMessage:         "READ_MESSAGE",
	OpChangeGroupSettings: "CHANGE_GROUP_SETTINGS",
	OpJoinByLink:          "JOIN_BY_LINK",
	OpGetGroupMembers:     "GET_GROUP_MEMBERS",
	OpSendMessage:         "SEND_MESSAGE",
	OpAttachMedia:         "ATTACH_MEDIA",
	OpDeleteMessage:       "DELETE_MESSAGE",
	OpEditMessage:         "EDIT_MESSAGE",
	OpManageUsers:         "MANAGE_USERS",
	OpPhotoUpload:         "PHOTO_UPLOAD",
	OpFileUpload:          "FILE_UPLOAD",
	OpVideoUpload:         "VIDEO_UPLOAD",
	OpResolveLink:         "RESOLVE_LINK",
	OpMessageReceived:     "MESSAGE_RECEIVED",
	OpVideoInfo:           "VIDEO_INFO",
	OpAddReaction:         "ADD_REACTION",
	OpGetReactions:        "GET_REACTIONS",
}

// String returns the opcode's wire name, or a numeric fallback for
// opcodes the client does not know about.
func (op Opcode) String() string {
	if name, ok := OpcodeNames[op]; ok {
		return name
	}

	return fmt.Sprintf("OPCODE_%d", uint(op))
}
