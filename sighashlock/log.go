package sighashlock

import "github.com/btcsuite/btclog"

// log is this package's subsystem logger. It is disabled by default;
// callers wire up a real backend with UseLogger.
var log btclog.Logger = btclog.Disabled

// UseLogger lets a calling application replace the package-wide logger,
// following the per-subsystem logger convention the rest of this module's
// ancestry uses.
func UseLogger(logger btclog.Logger) {
	log = logger
}
