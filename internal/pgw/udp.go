// SPDX-License-Identifier: Apache-2.0
package pgw

import (
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/libp2p/go-reuseport"
	log "github.com/sirupsen/logrus"

	"github.com/omec-project/mini-pgw/pkg/imsi"
)

// readinessQuantum bounds how long the receive loop blocks before
// re-checking its running flag (§4.8, §5).
const readinessQuantum = 30 * time.Millisecond

// recvBufSize is the fixed per-datagram buffer; 8 KiB comfortably
// exceeds any Mini-PGW request packet.
const recvBufSize = 8 * 1024

// UDPFrontEnd is the non-blocking control-channel socket of §4.8 (C8):
// it decodes each datagram's IMSI and dispatches synchronously to the
// Manager on the receiving goroutine, since there is no per-request
// worker pool in the reference design.
type UDPFrontEnd struct {
	addr    string
	manager *Manager
	log     log.FieldLogger

	running atomic.Bool
	conn    net.PacketConn
	done    chan struct{}
}

// NewUDPFrontEnd constructs the front end bound to addr ("ip:port").
func NewUDPFrontEnd(addr string, manager *Manager, logger log.FieldLogger) *UDPFrontEnd {
	if logger == nil {
		logger = log.StandardLogger()
	}

	return &UDPFrontEnd{addr: addr, manager: manager, log: logger}
}

// Start binds the socket and launches the receive loop. Idempotent-safe:
// a second call while already running returns an error.
func (u *UDPFrontEnd) Start() error {
	if !u.running.CompareAndSwap(false, true) {
		return errors.New("udp front end already running")
	}

	conn, err := reuseport.ListenPacket("udp", u.addr)
	if err != nil {
		u.running.Store(false)
		return err
	}

	u.conn = conn
	u.done = make(chan struct{})

	go u.loop()

	u.log.WithField("addr", u.addr).Info("udp front end started")

	return nil
}

// Stop halts the receive loop and closes the socket. A no-op if not
// running.
func (u *UDPFrontEnd) Stop() {
	if !u.running.CompareAndSwap(true, false) {
		return
	}

	u.conn.Close()
	<-u.done
}

func (u *UDPFrontEnd) loop() {
	defer close(u.done)
	defer u.conn.Close()

	buf := make([]byte, recvBufSize)

	for u.running.Load() {
		if err := u.conn.SetReadDeadline(time.Now().Add(readinessQuantum)); err != nil {
			u.log.WithError(err).Error("failed to set read deadline")
			return
		}

		n, addr, err := u.conn.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			if !u.running.Load() {
				// Expected: Stop() closed the socket out from under us.
				return
			}

			u.log.WithError(err).Warn("udp read error")

			continue
		}

		u.handlePacket(buf[:n], addr)
	}
}

func (u *UDPFrontEnd) handlePacket(packet []byte, addr net.Addr) {
	decoded, err := imsi.Decode(packet)
	if err != nil {
		u.log.WithFields(log.Fields{"from": addr, "err": err}).Warn("rejecting malformed request")
		u.reply(addr, imsi.ResponseRejected)

		return
	}

	result := u.manager.CreateSession(decoded)

	switch result {
	case Created:
		u.reply(addr, imsi.ResponseCreated)
	default:
		u.reply(addr, imsi.ResponseRejected)
	}
}

func (u *UDPFrontEnd) reply(addr net.Addr, response string) {
	if _, err := u.conn.WriteTo([]byte(response), addr); err != nil {
		u.log.WithError(err).Warn("failed to send udp response")
	}
}
