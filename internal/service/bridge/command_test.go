package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestResolveListenAddress covers override, port extraction and missing configuration.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	address, err := resolveListenAddress("bridge.local:50051", "")
	require.NoError(t, err)
	require.Equal(t, ":50051", address)

	address, err = resolveListenAddress("bridge.local:50051", "127.0.0.1:6000")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:6000", address)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoServerAddress)

	_, err = resolveListenAddress("bridge.local", "")
	require.Error(t, err)
}
