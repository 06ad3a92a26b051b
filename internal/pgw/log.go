// SPDX-License-Identifier: Apache-2.0
package pgw

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logMaxSizeMB  = 50
	logMaxBackups = 3
	logMaxAgeDays = 28
)

// SetupLogger configures the standard logrus logger per §6.3: leveled,
// and writing to the console plus (when log_file is non-empty) a
// lumberjack rotating file with fixed size, backup and age limits.
func SetupLogger(conf Conf) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrusLevel(conf.LogLevel))

	if conf.LogFile == "" {
		log.SetOutput(os.Stdout)
		return
	}

	rotating := &lumberjack.Logger{
		Filename:   conf.LogFile,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
	}

	log.SetOutput(io.MultiWriter(os.Stdout, rotating))
}
