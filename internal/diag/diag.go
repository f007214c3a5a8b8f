// Package diag provides parser/linker tracing, enabled by the CLI's
// --debug flag. It generalizes the teacher's env-gated debugPrintf
// (cpu/utils.go in the reference VM) into a flag-gated one, since this
// compiler's CLI already parses flags rather than reading DEBUG from
// the environment.
package diag

import "log"

var enabled bool

// SetEnabled turns tracing on or off for the remainder of the process.
func SetEnabled(v bool) {
	enabled = v
}

// Enabled reports whether tracing is currently turned on.
func Enabled() bool {
	return enabled
}

// Tracef logs a trace message if tracing is enabled.
func Tracef(format string, args ...any) {
	if !enabled {
		return
	}
	log.Printf(format, args...)
}
