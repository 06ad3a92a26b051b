// SPDX-License-Identifier: Apache-2.0
package pgw

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

// App wires C1-C9 together and owns the process lifecycle (§4.10, C10),
// mirroring the teacher's PFCPIface/NewPFCPIface shape: a struct holding
// the resolved config plus its constructed sub-components, with a
// blocking Run().
type App struct {
	conf Conf

	cdr     *FileCDRJournal
	manager *Manager
	cleaner *Cleaner
	drainer *Drainer
	udp     *UDPFrontEnd
	http    *HTTPServer

	shutdownOnce sync.Once
	shutdownDone chan struct{}
}

// NewApp constructs every component from conf but starts nothing.
func NewApp(conf Conf) (*App, error) {
	cdr, err := NewFileCDRJournal(conf.CDRFile)
	if err != nil {
		log.WithError(err).Error("CDR journal unhealthy at startup; writes will be dropped")
	}

	store := NewSessionStore()
	rateLimiter := NewRateLimiter(conf.MaxRequestsPerMinute)
	blacklist := NewBlacklist(conf.Blacklist)

	manager := NewManager(store, rateLimiter, blacklist, cdr, log.StandardLogger())

	timeout := time.Duration(conf.SessionTimeoutSec) * time.Second
	interval := time.Duration(conf.CleanupIntervalSec) * time.Second
	cleaner := NewCleaner(manager, timeout, interval, log.StandardLogger())

	drainer := NewDrainer(manager, conf.GracefulShutdownRate, log.StandardLogger())

	udpAddr := fmt.Sprintf("%s:%d", conf.UDPIP, conf.UDPPort)
	udp := NewUDPFrontEnd(udpAddr, manager, log.StandardLogger())

	app := &App{
		conf:         conf,
		cdr:          cdr,
		manager:      manager,
		cleaner:      cleaner,
		drainer:      drainer,
		udp:          udp,
		shutdownDone: make(chan struct{}),
	}

	httpAddr := fmt.Sprintf(":%d", conf.HTTPPort)
	app.http = NewHTTPServer(httpAddr, manager, app.initiateShutdown, log.StandardLogger())

	return app, nil
}

// Run starts every component, installs the SIGINT/SIGTERM handler, and
// blocks until shutdown completes.
func (a *App) Run() error {
	if err := a.udp.Start(); err != nil {
		return fmt.Errorf("starting udp front end: %w", err)
	}

	a.http.Start()
	a.cleaner.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		log.Info("termination signal received, initiating graceful shutdown")
		a.initiateShutdown()
	}()

	<-a.shutdownDone

	return nil
}

// initiateShutdown triggers the drain sequence exactly once (§4.10,
// "double-shutdown is a no-op") and returns whether this call was the
// one that started it.
func (a *App) initiateShutdown() bool {
	started := a.drainer.InitiateShutdown()

	if started {
		go a.stopSequence()
	}

	return started
}

// stopSequence awaits the drain (bounded by shutdown_timeout_sec), then
// stops the HTTP control plane, the UDP front end, and the cleaner, in
// that order (§4.10).
func (a *App) stopSequence() {
	timeout := time.Duration(a.conf.ShutdownTimeoutSec) * time.Second

	if !a.drainer.WaitForCompletion(timeout) {
		log.Warn("shutdown drain did not complete within the configured timeout")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.http.Stop(ctx)
	a.udp.Stop()
	a.cleaner.Stop()

	if a.cdr != nil {
		if err := a.cdr.Close(); err != nil {
			log.WithError(err).Warn("error closing CDR journal")
		}
	}

	a.shutdownOnce.Do(func() { close(a.shutdownDone) })

	log.Info("shutdown complete")
}
