// SPDX-License-Identifier: Apache-2.0

// Package pgwclient is the UDP control-channel client shared by
// cmd/pgw-client and cmd/pgw-flood-client (§6.7).
package pgwclient

import (
	"fmt"
	"net"
	"time"

	"github.com/omec-project/mini-pgw/pkg/imsi"
)

// DefaultReceiveTimeout is the §5 client-side default receive budget.
const DefaultReceiveTimeout = 5000 * time.Millisecond

// Client sends single IMSI requests to a Mini-PGW server over UDP and
// waits for the "created"/"rejected" reply.
type Client struct {
	ServerAddr     string
	ReceiveTimeout time.Duration
}

// New constructs a Client targeting addr ("host:port"). A zero timeout
// is replaced with DefaultReceiveTimeout.
func New(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultReceiveTimeout
	}

	return &Client{ServerAddr: addr, ReceiveTimeout: timeout}
}

// SendRequest encodes imsiStr, sends it, and waits for the reply. It
// returns the literal response string ("created"/"rejected") or an
// error on invalid input, a send failure, or a receive timeout.
func (c *Client) SendRequest(imsiStr string) (string, error) {
	if !imsi.Valid(imsiStr) {
		return "", imsi.ErrInvalidIMSI
	}

	packet, err := imsi.Encode(imsiStr)
	if err != nil {
		return "", err
	}

	conn, err := net.Dial("udp", c.ServerAddr)
	if err != nil {
		return "", fmt.Errorf("dialing %s: %w", c.ServerAddr, err)
	}
	defer conn.Close()

	if _, err := conn.Write(packet); err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(c.ReceiveTimeout)); err != nil {
		return "", fmt.Errorf("setting read deadline: %w", err)
	}

	buf := make([]byte, 64)

	n, err := conn.Read(buf)
	if err != nil {
		return "", fmt.Errorf("receiving response: %w", err)
	}

	return string(buf[:n]), nil
}
