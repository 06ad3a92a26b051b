// SPDX-License-Identifier: Apache-2.0
package pgw

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreAddRemove(t *testing.T) {
	store := NewSessionStore()

	sess := Session{IMSI: "123456789012345", CreatedAt: time.Now()}

	require.True(t, store.Add(sess))
	assert.False(t, store.Add(sess), "duplicate add must not insert twice")
	assert.True(t, store.Exists(sess.IMSI))
	assert.Equal(t, 1, store.Count())

	require.True(t, store.Remove(sess.IMSI))
	assert.False(t, store.Exists(sess.IMSI))
	assert.False(t, store.Remove(sess.IMSI), "removing twice returns false")
}

func TestSessionStoreAllIMSIs(t *testing.T) {
	store := NewSessionStore()
	store.Add(Session{IMSI: "111111111111111", CreatedAt: time.Now()})
	store.Add(Session{IMSI: "222222222222222", CreatedAt: time.Now()})

	imsis := store.AllIMSIs()
	assert.ElementsMatch(t, []string{"111111111111111", "222222222222222"}, imsis)
}

func TestSessionStoreExpired(t *testing.T) {
	store := NewSessionStore()
	store.Add(Session{IMSI: "111111111111111", CreatedAt: time.Now().Add(-time.Minute)})
	store.Add(Session{IMSI: "222222222222222", CreatedAt: time.Now()})

	expired := store.Expired(30 * time.Second)
	require.Len(t, expired, 1)
	assert.Equal(t, "111111111111111", expired[0].IMSI)
}

func TestSessionStoreClear(t *testing.T) {
	store := NewSessionStore()
	store.Add(Session{IMSI: "111111111111111", CreatedAt: time.Now()})
	store.Clear()
	assert.Equal(t, 0, store.Count())
}
