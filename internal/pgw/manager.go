// SPDX-License-Identifier: Apache-2.0
package pgw

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Manager is the session admission policy and lifecycle owner (§4.5, C5).
// It holds references to its collaborators rather than owning copies of
// their state, matching the teacher's constructor-injection pattern.
type Manager struct {
	store       *SessionStore
	rateLimiter *RateLimiter
	blacklist   *Blacklist
	cdr         CDRJournal
	log         log.FieldLogger
}

// NewManager wires the session admission pipeline together.
func NewManager(store *SessionStore, rateLimiter *RateLimiter, blacklist *Blacklist, cdr CDRJournal, logger log.FieldLogger) *Manager {
	if logger == nil {
		logger = log.StandardLogger()
	}

	return &Manager{
		store:       store,
		rateLimiter: rateLimiter,
		blacklist:   blacklist,
		cdr:         cdr,
		log:         logger,
	}
}

// CreateSession runs the §4.5 admission algorithm, in order:
//  1. blacklist -> REJECTED, CDR rejected_blacklist
//  2. rate limit -> REJECTED, CDR rejected_rate_limit
//  3. already active -> CREATED, no CDR (idempotent)
//  4. construct + store; CDR create on success, ERROR on store failure
func (m *Manager) CreateSession(imsi string) SessionResult {
	m.log.WithField("imsi", imsi).Debug("processing session creation request")

	if m.blacklist.Contains(imsi) {
		m.log.WithField("imsi", imsi).Info("session rejected: blacklisted")
		m.logCDR(imsi, ActionRejectedBlacklist)

		return Rejected
	}

	if !m.rateLimiter.Allow(imsi) {
		m.log.WithField("imsi", imsi).Warn("session rejected: rate limit exceeded")
		m.logCDR(imsi, ActionRejectedRateLimit)

		return Rejected
	}

	if m.store.Exists(imsi) {
		m.log.WithField("imsi", imsi).Debug("session already exists, returning CREATED")
		return Created
	}

	session := Session{IMSI: imsi, CreatedAt: time.Now()}

	if !m.store.Add(session) {
		// The store refused the insert (a concurrent create for the same
		// IMSI won between the Exists check above and this Add).
		m.log.WithField("imsi", imsi).Error("session store rejected insert")
		return SessionError
	}

	m.log.WithField("imsi", imsi).Info("session created")
	m.logCDR(imsi, ActionCreate)

	return Created
}

// IsSessionActive reports whether imsi currently has a session.
func (m *Manager) IsSessionActive(imsi string) bool {
	return m.store.Exists(imsi)
}

// RemoveSession removes the session for imsi, emitting one CDR with the
// caller-supplied action on success. A no-op (returns false) if the
// session is absent.
func (m *Manager) RemoveSession(imsi, action string) bool {
	if !m.store.Remove(imsi) {
		m.log.WithField("imsi", imsi).Debug("session not found, nothing to remove")
		return false
	}

	m.logCDR(imsi, action)
	m.log.WithFields(log.Fields{"imsi": imsi, "action": action}).Info("session removed")

	return true
}

// CleanExpiredSessions snapshots sessions whose age >= timeout and
// removes each individually, emitting a "timeout" CDR per successful
// removal (§4.5, C6's collaborator). Sessions removed concurrently
// between the snapshot and this call simply report false and emit no
// CDR, which is not an error.
func (m *Manager) CleanExpiredSessions(timeout time.Duration) int {
	expired := m.store.Expired(timeout)
	if len(expired) == 0 {
		return 0
	}

	removed := 0

	for _, sess := range expired {
		if m.store.Remove(sess.IMSI) {
			m.logCDR(sess.IMSI, ActionTimeout)
			removed++
		}
	}

	if removed > 0 {
		m.log.WithField("count", removed).Info("cleaned expired sessions")
	}

	return removed
}

// GetActiveSessionsCount returns the number of active sessions.
func (m *Manager) GetActiveSessionsCount() int {
	return m.store.Count()
}

// GetAllActiveIMSIs returns a snapshot of every active IMSI.
func (m *Manager) GetAllActiveIMSIs() []string {
	return m.store.AllIMSIs()
}

// logCDR writes a CDR and logs (but never propagates) any failure:
// admission is never contingent on CDR durability (§4.5, §7).
func (m *Manager) logCDR(imsi, action string) {
	if !m.cdr.WriteCDR(imsi, action) {
		m.log.WithFields(log.Fields{"imsi": imsi, "action": action}).Error("CDR write failed")
	}
}
