// SPDX-License-Identifier: Apache-2.0

// Command pgw-flood-client drives concurrent subscriber-attach traffic
// against a Mini-PGW server for load testing. It sits outside the
// gateway's core scope (§1) but is kept as ambient CLI tooling per
// SPEC_FULL.md §6.7.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/omec-project/mini-pgw/pkg/pgwclient"
)

var (
	serverAddr  string
	workerCount int
	duration    time.Duration
	timeout     time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pgw-flood-client",
		Short: "Flood a Mini-PGW server with randomly generated attach requests",
		RunE:  runFlood,
	}

	cmd.Flags().StringVar(&serverAddr, "server", "127.0.0.1:9000", "Mini-PGW UDP server address (host:port)")
	cmd.Flags().IntVar(&workerCount, "workers", 1, "number of concurrent flood workers")
	cmd.Flags().DurationVar(&duration, "duration", 0, "how long to run before stopping (0 = run until interrupted)")
	cmd.Flags().DurationVar(&timeout, "timeout", pgwclient.DefaultReceiveTimeout, "per-request receive timeout")

	return cmd
}

// metrics tracks flood-wide counters, replacing the original's
// Prometheus exporter (out of scope per the gateway's own non-goals)
// with a plain in-process tally printed at shutdown.
type metrics struct {
	requests atomic.Int64
	created  atomic.Int64
	rejected atomic.Int64
	errored  atomic.Int64
}

func runFlood(cmd *cobra.Command, args []string) error {
	if workerCount < 1 {
		return fmt.Errorf("--workers must be at least 1, got %d", workerCount)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if duration > 0 {
		var durationCancel context.CancelFunc
		ctx, durationCancel = context.WithTimeout(ctx, duration)
		defer durationCancel()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	m := &metrics{}

	var wg sync.WaitGroup
	for id := 0; id < workerCount; id++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			floodWorker(ctx, workerID, m)
		}(id)
	}

	fmt.Fprintf(os.Stderr, "flooding %s with %d worker(s); send SIGINT/SIGTERM to stop\n", serverAddr, workerCount)

	wg.Wait()

	fmt.Fprintf(os.Stderr, "flood finished: %d requests, %d created, %d rejected, %d errors\n",
		m.requests.Load(), m.created.Load(), m.rejected.Load(), m.errored.Load())

	return nil
}

// floodWorker repeatedly sends requests with freshly generated IMSIs
// until ctx is done, mirroring FloodWorker's run loop translated from
// a dedicated OS thread to a goroutine.
func floodWorker(ctx context.Context, id int, m *metrics) {
	client := pgwclient.New(serverAddr, timeout)
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		subscriber := generateIMSI(rng)

		m.requests.Add(1)

		resp, err := client.SendRequest(subscriber)
		switch {
		case err != nil:
			m.errored.Add(1)
		case resp == "created":
			m.created.Add(1)
		default:
			m.rejected.Add(1)
		}
	}
}

// generateIMSI produces a random 15-digit subscriber identifier, the
// Go equivalent of ImsiGenerator::generate's per-worker RNG.
func generateIMSI(rng *rand.Rand) string {
	digits := make([]byte, 15)
	for i := range digits {
		digits[i] = byte('0' + rng.Intn(10))
	}

	return string(digits)
}
