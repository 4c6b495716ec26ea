package protocol_test

import (
	"testing"

	"github.com/antirek/vkmax-go/protocol"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewCid verifies generated client message ids stay inside the
// documented bounds.
func TestNewCid(t *testing.T) {
	t.Parallel()

	for range 100 {
		cid := protocol.NewCid()
		assert.GreaterOrEqual(t, cid, protocol.CidMin)
		assert.Less(t, cid, protocol.CidMax)
	}
}

// TestNewDeviceID verifies device ids are well-formed UUIDs and unique.
func TestNewDeviceID(t *testing.T) {
	t.Parallel()

	a := protocol.NewDeviceID()
	b := protocol.NewDeviceID()

	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
