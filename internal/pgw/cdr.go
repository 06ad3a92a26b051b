// SPDX-License-Identifier: Apache-2.0
package pgw

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

const cdrTimestampLayout = "2006-01-02 15:04:05"

// Standard CDR actions (§3). removeSession callers may also supply any
// other opaque string; the journal writes it verbatim.
const (
	ActionCreate            = "create"
	ActionRejectedBlacklist = "rejected_blacklist"
	ActionRejectedRateLimit = "rejected_rate_limit"
	ActionTimeout           = "timeout"
	ActionGracefulShutdown  = "graceful_shutdown"
)

// CDRJournal appends timestamped action records for IMSIs (§4.1, C1).
type CDRJournal interface {
	WriteCDR(imsi, action string) bool
	Healthy() bool
	Close() error
}

// FileCDRJournal is the append-only file-backed CDRJournal. If the open
// at construction fails, the journal is marked unhealthy up front and
// every subsequent write returns false without raising.
type FileCDRJournal struct {
	mu        sync.Mutex
	file      *os.File
	unhealthy atomic.Bool
}

// NewFileCDRJournal opens path for appending. On failure it still
// returns a usable (permanently unhealthy) journal rather than nil, so
// callers need not special-case construction errors on the hot path.
func NewFileCDRJournal(path string) (*FileCDRJournal, error) {
	j := &FileCDRJournal{}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		j.unhealthy.Store(true)
		return j, err
	}

	j.file = f

	return j, nil
}

// WriteCDR appends one "timestamp,imsi,action" line. A partial failure
// flips the unhealthy flag permanently; the journal is not self-healing
// within one process lifetime (§4.1).
func (j *FileCDRJournal) WriteCDR(imsi, action string) bool {
	return j.writeCDRAt(imsi, action, time.Now())
}

func (j *FileCDRJournal) writeCDRAt(imsi, action string, ts time.Time) bool {
	if j.unhealthy.Load() {
		return false
	}

	line := fmt.Sprintf("%s,%s,%s\n", ts.Local().Format(cdrTimestampLayout), imsi, action)

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.file.WriteString(line); err != nil {
		log.WithError(err).Error("CDR write failed, journal marked unhealthy")
		j.unhealthy.Store(true)

		return false
	}

	return true
}

// Healthy reports whether the journal is still accepting writes.
func (j *FileCDRJournal) Healthy() bool {
	return !j.unhealthy.Load()
}

// Close closes the underlying file, if open.
func (j *FileCDRJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}

	return j.file.Close()
}
