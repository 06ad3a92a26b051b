// SPDX-License-Identifier: Apache-2.0
package pgw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestHTTPServer builds an HTTPServer that is never started or bound
// to a socket; newTestMux routes to its real handlers so they can be
// exercised directly via httptest without a listening port.
func newTestHTTPServer(shutdown ShutdownFunc) *HTTPServer {
	m, _ := newTestManager()

	if shutdown == nil {
		shutdown = func() bool { return true }
	}

	return NewHTTPServer(":0", m, shutdown, nil)
}

func newTestMux(h *HTTPServer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/check_subscriber", h.handleCheckSubscriber)
	mux.HandleFunc("/stop", h.handleStop)
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/", h.handleRoot)

	return mux
}

func TestHandleCheckSubscriberMissingIMSI(t *testing.T) {
	h := newTestHTTPServer(nil)
	mux := newTestMux(h)

	req := httptest.NewRequest(http.MethodGet, "/check_subscriber", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing IMSI parameter", rec.Body.String())
}

func TestHandleCheckSubscriberActiveAndNotActive(t *testing.T) {
	h := newTestHTTPServer(nil)
	mux := newTestMux(h)

	const imsi = "123456789012345"
	require.Equal(t, Created, h.manager.CreateSession(imsi))

	req := httptest.NewRequest(http.MethodGet, "/check_subscriber?imsi="+imsi, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "active", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/check_subscriber?imsi=000000000000000", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, "not active", rec.Body.String())
}

func TestHandleStopInitiatesShutdownOnce(t *testing.T) {
	calls := 0
	h := newTestHTTPServer(func() bool {
		calls++
		return calls == 1
	})
	mux := newTestMux(h)

	req := httptest.NewRequest(http.MethodPost, "/stop", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, "Graceful shutdown initiated", rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, "Shutdown already in progress", rec.Body.String())
}

func TestHandleHealth(t *testing.T) {
	h := newTestHTTPServer(nil)
	mux := newTestMux(h)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandleRootBannerAndNotFound(t *testing.T) {
	h := newTestHTTPServer(nil)
	mux := newTestMux(h)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, bannerText, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/unknown", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", rec.Body.String())
}
