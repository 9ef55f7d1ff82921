package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe(t *testing.T) {
	// An ephemeral port binds fine.
	require.NoError(t, Serve("127.0.0.1:0"))
}

func TestServeRejectsBadAddr(t *testing.T) {
	err := Serve("not-an-address")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics listen")
}
