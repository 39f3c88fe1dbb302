package ndi

import (
	"io"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

type loggerBox struct {
	log.FieldLogger
}

var current atomic.Pointer[loggerBox]

func init() {
	current.Store(&loggerBox{log.WithField("component", "ndi")})
}

// logger returns the package logger. Cleanups log from the runtime's
// cleanup goroutine, so access is atomic.
func logger() log.FieldLogger {
	return current.Load().FieldLogger
}

// SetLogger replaces the package logger. A nil logger silences the package.
func SetLogger(l log.FieldLogger) {
	if l == nil {
		discard := log.New()
		discard.SetOutput(io.Discard)
		l = discard
	}
	current.Store(&loggerBox{l})
}
