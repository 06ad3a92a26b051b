// SPDX-License-Identifier: Apache-2.0
package pgw

import (
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

// Default values, applied whenever the corresponding JSON key is absent.
const (
	defaultUDPIP                = "0.0.0.0"
	defaultUDPPort              = uint16(9000)
	defaultHTTPPort             = uint16(8080)
	defaultSessionTimeoutSec    = uint32(30)
	defaultCleanupIntervalSec   = uint32(5)
	defaultGracefulShutdownRate = uint32(10)
	defaultMaxRequestsPerMinute = uint32(100)
	defaultCDRFile              = "cdr.log"
	defaultLogFile              = "pgw.log"
	defaultLogLevel             = "INFO"
	defaultShutdownTimeoutSec   = uint32(30)
)

// candidateConfigPaths is the fixed, ordered search list from which the
// bootstrap resolves the config file. The first readable path wins.
var candidateConfigPaths = []string{
	"../pgw_server/config/server_config.json",
	"config/server_config.json",
	"pgw_server/config/server_config.json",
	"../config/server_config.json",
	"server_config.json",
}

// Conf is the fully-resolved, validated in-memory configuration. It is
// constructed once by LoadConfigFile and handed to NewApp, which passes
// the individual fields to the components that need them.
type Conf struct {
	UDPIP                string   `json:"udp_ip"`
	UDPPort              uint16   `json:"udp_port"`
	HTTPPort             uint16   `json:"http_port"`
	SessionTimeoutSec    uint32   `json:"session_timeout_sec"`
	CleanupIntervalSec   uint32   `json:"cleanup_interval_sec"`
	GracefulShutdownRate uint32   `json:"graceful_shutdown_rate"`
	MaxRequestsPerMinute uint32   `json:"max_requests_per_minute"`
	CDRFile              string   `json:"cdr_file"`
	LogFile              string   `json:"log_file"`
	LogLevel             string   `json:"log_level"`
	Blacklist            []string `json:"blacklist"`
	ShutdownTimeoutSec   uint32   `json:"shutdown_timeout_sec"`
}

// defaultConf returns a Conf populated entirely with the §6.3 defaults.
func defaultConf() Conf {
	return Conf{
		UDPIP:                defaultUDPIP,
		UDPPort:              defaultUDPPort,
		HTTPPort:             defaultHTTPPort,
		SessionTimeoutSec:    defaultSessionTimeoutSec,
		CleanupIntervalSec:   defaultCleanupIntervalSec,
		GracefulShutdownRate: defaultGracefulShutdownRate,
		MaxRequestsPerMinute: defaultMaxRequestsPerMinute,
		CDRFile:              defaultCDRFile,
		LogFile:              defaultLogFile,
		LogLevel:             defaultLogLevel,
		Blacklist:            nil,
		ShutdownTimeoutSec:   defaultShutdownTimeoutSec,
	}
}

// ResolveConfigPath walks candidateConfigPaths in order and returns the
// first one that can be opened for reading. An explicit path (e.g. from
// a --config flag) is tried first when non-empty.
func ResolveConfigPath(explicit string) (string, error) {
	candidates := candidateConfigPaths
	if explicit != "" {
		candidates = append([]string{explicit}, candidates...)
	}

	for _, p := range candidates {
		if f, err := os.Open(p); err == nil {
			f.Close()
			return p, nil
		}
	}

	return "", ErrNotFound(fmt.Sprintf("config file among %v", candidates))
}

// LoadConfigFile parses the JSON file at path, applies §6.3 defaults for
// missing keys, and validates the result.
func LoadConfigFile(path string) (Conf, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Conf{}, err
	}

	conf := defaultConf()

	// Decode onto a copy so fields absent from the JSON keep their
	// defaults instead of being zeroed by json.Unmarshal.
	if err := json.Unmarshal(raw, &conf); err != nil {
		return Conf{}, err
	}

	if err := validateConf(conf); err != nil {
		return Conf{}, err
	}

	log.WithField("path", path).Infof("loaded config: %+v", conf)

	return conf, nil
}

func validateConf(conf Conf) error {
	if conf.UDPPort == 0 {
		return ErrInvalidArgumentWithReason("udp_port", conf.UDPPort, "must be nonzero")
	}

	if conf.HTTPPort == 0 {
		return ErrInvalidArgumentWithReason("http_port", conf.HTTPPort, "must be nonzero")
	}

	if conf.SessionTimeoutSec == 0 {
		return ErrInvalidArgumentWithReason("session_timeout_sec", conf.SessionTimeoutSec, "must be nonzero")
	}

	if conf.CleanupIntervalSec == 0 {
		return ErrInvalidArgumentWithReason("cleanup_interval_sec", conf.CleanupIntervalSec, "must be nonzero")
	}

	if conf.GracefulShutdownRate == 0 {
		return ErrInvalidArgumentWithReason("graceful_shutdown_rate", conf.GracefulShutdownRate, "must be nonzero")
	}

	if conf.MaxRequestsPerMinute == 0 {
		return ErrInvalidArgumentWithReason("max_requests_per_minute", conf.MaxRequestsPerMinute, "must be nonzero")
	}

	switch conf.LogLevel {
	case "DEBUG", "INFO", "WARN", "ERROR", "CRITICAL":
	default:
		return ErrInvalidArgumentWithReason("log_level", conf.LogLevel, "must be one of DEBUG, INFO, WARN, ERROR, CRITICAL")
	}

	return nil
}

// logrusLevel maps the §6.3 log_level vocabulary onto logrus' levels.
// CRITICAL has no direct logrus equivalent; it maps to FatalLevel so it
// remains the strictest threshold, one notch above ERROR.
func logrusLevel(level string) log.Level {
	switch level {
	case "DEBUG":
		return log.DebugLevel
	case "INFO":
		return log.InfoLevel
	case "WARN":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	case "CRITICAL":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}
