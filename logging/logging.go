// Package logging holds the logger the interpreter packages write to. It
// discards everything until the host installs a logger with Set.
package logging

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

var current atomic.Pointer[zerolog.Logger]

func init() {
	Set(zerolog.Nop())
}

// Set installs l for every package of the interpreter.
func Set(l zerolog.Logger) {
	current.Store(&l)
}

// Logger returns the installed logger.
func Logger() *zerolog.Logger {
	return current.Load()
}
