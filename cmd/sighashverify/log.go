package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog"
	"github.com/ckb-open-tx/sighashlock"
)

// backendLog is the root logger every subsystem's logger is carved out
// of, matching lnd.go's ltndLog/backendLog split.
var backendLog = btclog.NewBackend(logWriter{})

var sighashverifyLog = backendLog.Logger("SVFY")

type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	return os.Stderr.Write(p)
}

// subsystemLoggers maps each subsystem name to its UseLogger setter, the
// same table-driven shape lnd.go's setLogLevels uses.
var subsystemLoggers = map[string]func(btclog.Logger){
	"SVFY": func(l btclog.Logger) { sighashverifyLog = l },
	"SGHL": sighashlock.UseLogger,
}

// setLogLevels parses a debuglevel string naming a single level ("info",
// "debug", ...) and applies it to every known subsystem. Per-subsystem
// settings such as "debug,SGHL=trace" are not parsed and are rejected as an
// unknown level.
func setLogLevels(debugLevel string) error {
	level, ok := btclog.LevelFromString(debugLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", debugLevel)
	}

	for name, setter := range subsystemLoggers {
		logger := backendLog.Logger(name)
		logger.SetLevel(level)
		setter(logger)
	}
	return nil
}
