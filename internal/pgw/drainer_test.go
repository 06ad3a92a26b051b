// SPDX-License-Identifier: Apache-2.0
package pgw

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainerRemovesAllSessions(t *testing.T) {
	m, cdr := newTestManager()

	for i := 0; i < 10; i++ {
		imsi := "12345678901234" + string(rune('0'+i))
		require.Equal(t, Created, m.CreateSession(imsi))
	}

	drainer := NewDrainer(m, 100, nil)
	require.True(t, drainer.InitiateShutdown())
	require.True(t, drainer.WaitForCompletion(2*time.Second))

	assert.Equal(t, 0, m.GetActiveSessionsCount())

	count := 0
	for _, rec := range cdr.records {
		if rec[len(rec)-len(ActionGracefulShutdown):] == ActionGracefulShutdown {
			count++
		}
	}
	assert.Equal(t, 10, count)
}

func TestDrainerDoubleInitiateIsNoop(t *testing.T) {
	m, _ := newTestManager()
	m.CreateSession("123456789012345")

	drainer := NewDrainer(m, 100, nil)
	require.True(t, drainer.InitiateShutdown())
	assert.False(t, drainer.InitiateShutdown(), "a second initiate while in progress must return false")

	drainer.WaitForCompletion(2 * time.Second)
}

func TestDrainerEmptyStoreCompletesImmediately(t *testing.T) {
	m, _ := newTestManager()

	drainer := NewDrainer(m, 10, nil)
	require.True(t, drainer.InitiateShutdown())
	assert.True(t, drainer.WaitForCompletion(time.Second))
}

func TestDrainerWaitForCompletionTimesOut(t *testing.T) {
	m, _ := newTestManager()
	for i := 0; i < 5; i++ {
		imsi := "12345678901234" + string(rune('0'+i))
		m.CreateSession(imsi)
	}

	// Slow rate (1/s) so a short wait observes incompletion.
	drainer := NewDrainer(m, 1, nil)
	require.True(t, drainer.InitiateShutdown())

	assert.False(t, drainer.WaitForCompletion(10*time.Millisecond))

	drainer.Stop()
}
