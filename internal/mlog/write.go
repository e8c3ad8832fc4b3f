package mlog

import (
	"io"
	"strings"

	"github.com/dogmatiq/iago/must"
)

// String builds one log line from a set of labelled ID icons, a set of bare
// status icons, and free-form text segments.
//
// Empty text segments are skipped; the remaining segments are joined with the
// separator icon.
func String(
	ids []IconWithLabel,
	icons []Icon,
	text ...string,
) string {
	w := &strings.Builder{}
	write(w, ids, icons, text)

	return w.String()
}

func write(
	w io.Writer,
	ids []IconWithLabel,
	icons []Icon,
	text []string,
) {
	for _, id := range ids {
		must.WriteTo(w, id)
		must.Write(w, space2)
	}

	for _, ic := range icons {
		must.WriteTo(w, ic)
		must.Write(w, space1)
	}

	n := 0

	for _, t := range text {
		if t == "" {
			continue
		}

		must.Write(w, space1)

		if n > 0 {
			must.WriteTo(w, SeparatorIcon)
			must.Write(w, space1)
		}

		must.WriteString(w, t)
		n++
	}
}

var (
	space1 = []byte{' '}
	space2 = []byte{' ', ' '}
)
