// SPDX-License-Identifier: Apache-2.0
package pgw

import (
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// Cleaner periodically removes expired sessions (§4.6, C6). It has a
// single worker goroutine with lifecycle idle -> running -> stopped.
type Cleaner struct {
	manager  *Manager
	timeout  time.Duration
	interval time.Duration
	log      log.FieldLogger

	running atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

// NewCleaner constructs a cleaner that removes sessions older than
// timeout, waking up every interval.
func NewCleaner(manager *Manager, timeout, interval time.Duration, logger log.FieldLogger) *Cleaner {
	if logger == nil {
		logger = log.StandardLogger()
	}

	return &Cleaner{
		manager:  manager,
		timeout:  timeout,
		interval: interval,
		log:      logger,
	}
}

// Start launches the worker goroutine. It is idempotent-safe: a second
// call while already running returns false without starting another
// worker.
func (c *Cleaner) Start() bool {
	if !c.running.CompareAndSwap(false, true) {
		return false
	}

	c.stop = make(chan struct{})
	c.done = make(chan struct{})

	go c.loop()

	return true
}

// Stop signals the worker to exit and waits for it to join. Calling
// Stop when not running is a no-op.
func (c *Cleaner) Stop() {
	if !c.running.CompareAndSwap(true, false) {
		return
	}

	close(c.stop)
	<-c.done
}

func (c *Cleaner) loop() {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		removed := c.manager.CleanExpiredSessions(c.timeout)
		if removed > 0 {
			c.log.WithField("removed", removed).Debug("session cleaner pass")
		}

		select {
		case <-c.stop:
			return
		case <-ticker.C:
		}
	}
}
