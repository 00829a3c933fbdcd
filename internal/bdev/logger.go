package bdev

import (
	"io"

	"github.com/sirupsen/logrus"
)

// log is the package-wide logging sink. The core never writes to stderr
// directly; host applications that want bdev diagnostics call SetLogger.
// The default logger discards everything, so library use without an
// explicit logger configured stays silent.
var log logrus.FieldLogger = newDiscardLogger()

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// SetLogger replaces the package-wide logger. Pass nil to restore the
// default discarding logger.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		log = newDiscardLogger()
		return
	}

	log = l
}
