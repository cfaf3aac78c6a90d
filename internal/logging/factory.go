package logging

import (
	"io"
	"strings"
)

// New returns a Logger for the given backend ("slog" or "logrus").
// Unknown backends fall back to slog.
func New(w io.Writer, backend, format, level string) Logger {
	if strings.EqualFold(backend, "logrus") {
		return NewLogrus(w, format, level)
	}
	return NewSlog(w, format, level)
}
