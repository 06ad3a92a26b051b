// SPDX-License-Identifier: Apache-2.0
package pgw

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omec-project/mini-pgw/pkg/imsi"
)

// loopbackPacketPipe opens two UDP sockets on 127.0.0.1 so handlePacket's
// replies can be read back on the client side.
func loopbackPacketPipe(t *testing.T) (serverSide, clientSide net.PacketConn) {
	t.Helper()

	server, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { server.Close() })

	client, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return server, client
}

func TestHandlePacketCreatesSessionAndReplies(t *testing.T) {
	m, _ := newTestManager()
	server, client := loopbackPacketPipe(t)

	u := NewUDPFrontEnd(server.LocalAddr().String(), m, nil)
	u.conn = server

	const subscriber = "123456789012345"

	packet, err := imsi.Encode(subscriber)
	require.NoError(t, err)

	u.handlePacket(packet, client.LocalAddr())

	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))

	buf := make([]byte, 64)
	n, _, err := client.ReadFrom(buf)
	require.NoError(t, err)

	assert.Equal(t, imsi.ResponseCreated, string(buf[:n]))
	assert.True(t, m.IsSessionActive(subscriber))
}

func TestHandlePacketRejectsMalformedPacket(t *testing.T) {
	m, _ := newTestManager()
	server, client := loopbackPacketPipe(t)

	u := NewUDPFrontEnd(server.LocalAddr().String(), m, nil)
	u.conn = server

	// Too short to contain the 4-byte header plus any BCD payload.
	malformed := []byte{0x01, 0x00}

	u.handlePacket(malformed, client.LocalAddr())

	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))

	buf := make([]byte, 64)
	n, _, err := client.ReadFrom(buf)
	require.NoError(t, err)

	assert.Equal(t, imsi.ResponseRejected, string(buf[:n]))
}

func TestHandlePacketRejectsBlacklistedIMSI(t *testing.T) {
	const subscriber = "987654321098765"

	m := NewManager(NewSessionStore(), NewRateLimiter(6000), NewBlacklist([]string{subscriber}), &recordingCDR{}, nil)
	server, client := loopbackPacketPipe(t)

	u := NewUDPFrontEnd(server.LocalAddr().String(), m, nil)
	u.conn = server

	packet, err := imsi.Encode(subscriber)
	require.NoError(t, err)

	u.handlePacket(packet, client.LocalAddr())

	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))

	buf := make([]byte, 64)
	n, _, err := client.ReadFrom(buf)
	require.NoError(t, err)

	assert.Equal(t, imsi.ResponseRejected, string(buf[:n]))
	assert.False(t, m.IsSessionActive(subscriber))
}
