package udpsock

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndRoundTrip(t *testing.T) {
	recv, err := Open(Options{ListenPort: 0})
	require.NoError(t, err)
	defer recv.Close()

	send, err := Open(Options{ListenPort: 0})
	require.NoError(t, err)
	defer send.Close()

	dst := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: recv.LocalPort()}
	_, err = send.WriteTo([]byte("hello"), dst)
	require.NoError(t, err)

	buf := make([]byte, 32)
	n, _, err := recv.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}
