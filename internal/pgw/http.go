// SPDX-License-Identifier: Apache-2.0
package pgw

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	log "github.com/sirupsen/logrus"
)

const bannerText = "Mini-PGW control plane. See /health, /check_subscriber, /stop."

// ShutdownFunc triggers a graceful shutdown; it returns whether this
// call actually started the drain (false if one is already running).
type ShutdownFunc func() bool

// HTTPServer is the introspection and shutdown-trigger control plane of
// §4.9 (C9). It runs on its own goroutine; Start/Stop are idempotent.
type HTTPServer struct {
	addr     string
	manager  *Manager
	shutdown ShutdownFunc
	log      log.FieldLogger

	mu     sync.Mutex
	server *http.Server
}

// NewHTTPServer constructs the control plane bound to addr (":<port>").
func NewHTTPServer(addr string, manager *Manager, shutdown ShutdownFunc, logger log.FieldLogger) *HTTPServer {
	if logger == nil {
		logger = log.StandardLogger()
	}

	return &HTTPServer{addr: addr, manager: manager, shutdown: shutdown, log: logger}
}

// Start launches the HTTP server. A second call while already running is
// a no-op.
func (h *HTTPServer) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.server != nil {
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/check_subscriber", h.handleCheckSubscriber)
	mux.HandleFunc("/stop", h.handleStop)
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/", h.handleRoot)

	h.server = &http.Server{Addr: h.addr, Handler: mux}

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.log.WithError(err).Error("http server failed")
		}
	}()

	h.log.WithField("addr", h.addr).Info("http control plane started")
}

// Stop gracefully shuts the HTTP server down. A no-op if not running.
func (h *HTTPServer) Stop(ctx context.Context) {
	h.mu.Lock()
	server := h.server
	h.server = nil
	h.mu.Unlock()

	if server == nil {
		return
	}

	if err := server.Shutdown(ctx); err != nil {
		h.log.WithError(err).Error("http server shutdown error")
	}
}

func (h *HTTPServer) handleCheckSubscriber(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")

	imsi := r.URL.Query().Get("imsi")
	if imsi == "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "Missing IMSI parameter")

		return
	}

	if h.manager.IsSessionActive(imsi) {
		fmt.Fprint(w, "active")
	} else {
		fmt.Fprint(w, "not active")
	}
}

func (h *HTTPServer) handleStop(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")

	if h.shutdown() {
		fmt.Fprint(w, "Graceful shutdown initiated")
	} else {
		fmt.Fprint(w, "Shutdown already in progress")
	}
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, "OK")
}

func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")

	if r.URL.Path != "/" {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "Not Found")

		return
	}

	fmt.Fprint(w, bannerText)
}
