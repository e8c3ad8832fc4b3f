package loggingx

import (
	"fmt"
	"strings"

	"github.com/dogmatiq/dodeca/logging"
)

// WithPrefix returns a logger that prepends a fixed prefix to every message,
// such as the key of the process a worker belongs to.
func WithPrefix(next logging.Logger, f string, v ...interface{}) logging.Logger {
	p := fmt.Sprintf(f, v...)

	return &prefixed{
		next: next,
		text: p,
		// Verbs in the prefix must not be re-interpreted when the prefix is
		// prepended to a format string.
		format: strings.ReplaceAll(p, "%", "%%"),
	}
}

type prefixed struct {
	next   logging.Logger
	text   string
	format string
}

func (l *prefixed) Log(f string, v ...interface{}) {
	l.next.Log(l.format+f, v...)
}

func (l *prefixed) LogString(s string) {
	l.next.LogString(l.text + s)
}

func (l *prefixed) Debug(f string, v ...interface{}) {
	l.next.Debug(l.format+f, v...)
}

func (l *prefixed) DebugString(s string) {
	l.next.DebugString(l.text + s)
}

func (l *prefixed) IsDebug() bool {
	return l.next.IsDebug()
}
