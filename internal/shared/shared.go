// package shared defines helpers used across the application: logging,
// identifier generation, configuration, and database access.
package shared

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a [log.Logger] writing to w with timestamps and caller
// reporting enabled. A nil writer defaults to [os.Stderr].
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{ReportTimestamp: true, ReportCaller: true})
}

// SetLogLevel sets the minimum [log.Level] emitted by the given logger.
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateToken returns a new v4 [uuid.UUID] string, used for OAuth state
// nonces and other opaque identifiers.
func GenerateToken() string {
	return uuid.New().String()
}
