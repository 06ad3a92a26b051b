// SPDX-License-Identifier: Apache-2.0

// Command pgw-server runs the Mini-PGW session-admission gateway.
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/omec-project/mini-pgw/internal/pgw"
)

var configPath = flag.String("config", "", "path to server_config.json (searched per the standard candidate list if unset)")

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	path, err := pgw.ResolveConfigPath(*configPath)
	if err != nil {
		return fmt.Errorf("resolving config file: %w", err)
	}

	conf, err := pgw.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}

	pgw.SetupLogger(conf)

	log.WithField("config", path).Info("mini-pgw starting")

	app, err := pgw.NewApp(conf)
	if err != nil {
		return fmt.Errorf("constructing app: %w", err)
	}

	return app.Run()
}
