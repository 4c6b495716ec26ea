package protocol

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// --------------------------------------------------------------------------------
// Constants

const (
	// CidMin and CidMax bound the random client message id range used for
	// outgoing messages.
	CidMin int64 = 1_750_000_000_000
	CidMax int64 = 1_800_000_000_000
)

// --------------------------------------------------------------------------------
// Types

// UserAgent describes the client to the server during the hello exchange.
type UserAgent struct {
	DeviceType      string `json:"deviceType"`
	Locale          string `json:"locale"`
	OSVersion       string `json:"osVersion"`
	DeviceName      string `json:"deviceName"`
	HeaderUserAgent string `json:"headerUserAgent"`
	AppVersion      string `json:"appVersion"`
	Screen          string `json:"screen"`
	Timezone        string `json:"timezone"`
}

// --------------------------------------------------------------------------------
// Functions

// NewCid returns a fresh client message id in [CidMin, CidMax).
func NewCid() int64 {
	return CidMin + rand.Int64N(CidMax-CidMin)
}

// NewDeviceID returns a fresh device identifier for hello payloads.
func NewDeviceID() string {
	return uuid.NewString()
}

// DefaultUserAgent mirrors the metadata the web client announces at hello.
func DefaultUserAgent() UserAgent {
	return UserAgent{
		DeviceType:      "WEB",
		Locale:          "ru",
		OSVersion:       "macOS",
		DeviceName:      "vkmax-go",
		HeaderUserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
		AppVersion:      "25.7.5",
		Screen:          "1080x1920 1.0x",
		Timezone:        "Europe/Moscow",
	}
}
