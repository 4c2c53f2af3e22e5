// Package monitoring holds the process-wide diagnostic logger for the
// graph construction pipeline.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf;
// tests and batch tooling may redirect or mute it with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// debug gates the high-volume per-event logging (sample skips, merge
// decisions). Off by default: an offline run over a long log would
// otherwise produce one line per sensor sample.
var debug bool

// SetLogger replaces the package logger. Passing nil installs a no-op.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetDebug toggles per-event diagnostic logging.
func SetDebug(on bool) { debug = on }

// Debugf logs through Logf only when debug logging is enabled.
func Debugf(format string, v ...interface{}) {
	if debug {
		Logf(format, v...)
	}
}
