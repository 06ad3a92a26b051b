// SPDX-License-Identifier: Apache-2.0

// Command pgw-client sends a single subscriber-attach request to a
// Mini-PGW server and reports whether the session was created.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/omec-project/mini-pgw/pkg/imsi"
	"github.com/omec-project/mini-pgw/pkg/pgwclient"
)

var (
	serverAddr string
	timeout    time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pgw-client <imsi>",
		Short: "Send a single attach request to a Mini-PGW server",
		Args:  cobra.ExactArgs(1),
		RunE:  runClient,
	}

	cmd.Flags().StringVar(&serverAddr, "server", "127.0.0.1:9000", "Mini-PGW UDP server address (host:port)")
	cmd.Flags().DurationVar(&timeout, "timeout", pgwclient.DefaultReceiveTimeout, "time to wait for the server's reply")

	return cmd
}

// runClient validates the IMSI before opening any socket, per §6.7: a
// malformed argument must never trigger a network round trip.
func runClient(cmd *cobra.Command, args []string) error {
	subscriber := args[0]

	if !imsi.Valid(subscriber) {
		return fmt.Errorf("%w: %q must be exactly %d digits", imsi.ErrInvalidIMSI, subscriber, imsi.Length)
	}

	client := pgwclient.New(serverAddr, timeout)

	resp, err := client.SendRequest(subscriber)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	fmt.Println(resp)

	if resp != imsi.ResponseCreated {
		return fmt.Errorf("session not created: server returned %q", resp)
	}

	return nil
}
