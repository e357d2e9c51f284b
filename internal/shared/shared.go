// package shared defines shared helpers
package shared

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mozillazg/go-unidecode"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// NewFileLogger creates a [log.Logger] writing to a size-rotated file at path.
//
// Used by the TUI so log lines never land on the terminal it draws.
func NewFileLogger(path string) (*log.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
	}
	return NewLogger(w), nil
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// ParseLogLevel parses a level name, falling back to [log.InfoLevel].
func ParseLogLevel(s string) log.Level {
	ll, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return ll
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// FoldText lowercases s and strips diacritics so "Bạn Đêm" matches "ban dem".
func FoldText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(unidecode.Unidecode(s))), " ")
}

// MarshalJSON encodes v, indented when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// UnixMilli converts milliseconds since epoch to a local [time.Time].
func UnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// FormatTimestamp renders milliseconds since epoch as "2006-01-02 15:04".
func FormatTimestamp(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return UnixMilli(ms).Format("2006-01-02 15:04")
}

// Clock reports the current time in milliseconds since epoch.
type Clock interface {
	Now() int64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() int64 { return time.Now().UnixMilli() }

// Monotonic wraps a [Clock] so successive stamps strictly increase.
type Monotonic struct {
	mu    sync.Mutex
	clock Clock
	last  int64
}

// NewMonotonic wraps c, defaulting to [SystemClock].
func NewMonotonic(c Clock) *Monotonic {
	if c == nil {
		c = SystemClock{}
	}
	return &Monotonic{clock: c}
}

// Observe raises the floor so the next stamp is greater than ts.
func (m *Monotonic) Observe(ts int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ts > m.last {
		m.last = ts
	}
}

// Now returns max(clock, last+1).
func (m *Monotonic) Now() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts := m.clock.Now()
	if ts <= m.last {
		ts = m.last + 1
	}
	m.last = ts
	return ts
}
