// SPDX-License-Identifier: Apache-2.0
package pgw

import (
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// Drainer removes every active session at a bounded rate on shutdown
// (§4.7, C7). It is a one-shot sequence guarded by an inProgress flag.
type Drainer struct {
	manager *Manager
	rate    uint32 // sessions/second
	log     log.FieldLogger

	inProgress atomic.Bool

	mu       sync.Mutex
	stop     chan struct{}
	complete chan struct{}
}

// NewDrainer constructs a drainer that removes sessions at the given
// rate (sessions/second).
func NewDrainer(manager *Manager, rate uint32, logger log.FieldLogger) *Drainer {
	if logger == nil {
		logger = log.StandardLogger()
	}

	if rate == 0 {
		rate = 1
	}

	return &Drainer{
		manager:  manager,
		rate:     rate,
		log:      logger,
		stop:     make(chan struct{}),
		complete: make(chan struct{}),
	}
}

// InitiateShutdown launches the drain worker. Returns false if a drain
// is already in progress.
func (d *Drainer) InitiateShutdown() bool {
	if !d.inProgress.CompareAndSwap(false, true) {
		return false
	}

	go d.drain()

	return true
}

// WaitForCompletion blocks until the drain completes or timeout elapses
// (timeout <= 0 waits forever). Returns whether completion was observed.
func (d *Drainer) WaitForCompletion(timeout time.Duration) bool {
	if timeout <= 0 {
		<-d.complete
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-d.complete:
		return true
	case <-timer.C:
		return false
	}
}

// Stop requests early termination of an in-progress drain; the drain
// worker still marks completion before exiting, so any WaitForCompletion
// caller unblocks.
func (d *Drainer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	select {
	case <-d.stop:
	default:
		close(d.stop)
	}
}

func (d *Drainer) drain() {
	defer close(d.complete)

	imsis := d.manager.GetAllActiveIMSIs()
	if len(imsis) == 0 {
		d.log.Info("no active sessions, shutdown drain complete immediately")
		return
	}

	interval := time.Duration(1000/d.rate) * time.Millisecond

	d.log.WithFields(log.Fields{"sessions": len(imsis), "rate": d.rate}).Info("beginning graceful shutdown drain")

	removed := 0

	for _, imsi := range imsis {
		select {
		case <-d.stop:
			d.log.Info("graceful shutdown drain interrupted by stop request")
			return
		default:
		}

		if d.manager.IsSessionActive(imsi) {
			if d.manager.RemoveSession(imsi, ActionGracefulShutdown) {
				removed++
			}
		}

		if d.manager.GetActiveSessionsCount() == 0 {
			d.log.Info("all sessions removed, shutdown drain complete early")
			return
		}

		select {
		case <-d.stop:
			return
		case <-time.After(interval):
		}
	}

	d.log.WithField("removed", removed).Info("graceful shutdown drain finished")
}
