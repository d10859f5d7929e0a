// Package log defines the build's log collaborator: info and warn messages plus
// a terminal failure slot.
package log

import (
	"io"
	"log/slog"
	"sync"

	ferrors "git.home.luguber.info/inful/formidable/internal/foundation/errors"
)

// Sink receives build progress and the single fatal failure of a build.
type Sink interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	// Fail reports a fatal error. code zero selects the exit code mapped from
	// the error category. The default sink terminates the process.
	Fail(err error, code int)
}

// SlogSink writes through slog and exits the process on Fail.
type SlogSink struct {
	logger  *slog.Logger
	adapter *ferrors.CLIErrorAdapter
}

// NewSlogSink returns the default sink. A nil logger selects slog.Default().
func NewSlogSink(logger *slog.Logger, verbose bool) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger, adapter: ferrors.NewCLIErrorAdapter(verbose, logger)}
}

// WithOutput redirects the failure message and exit call.
func (s *SlogSink) WithOutput(out io.Writer, exit func(int)) *SlogSink {
	s.adapter.WithOutput(out, exit)
	return s
}

func (s *SlogSink) Info(msg string, args ...any) { s.logger.Info(msg, args...) }

func (s *SlogSink) Warn(msg string, args ...any) { s.logger.Warn(msg, args...) }

func (s *SlogSink) Fail(err error, code int) { s.adapter.HandleErrorWithCode(err, code) }

// Entry is one message captured by a Recorder.
type Entry struct {
	Level slog.Level
	Msg   string
	Args  []any
}

// Recorder is a Sink that keeps every message and failure in memory and never exits.
type Recorder struct {
	mu       sync.Mutex
	entries  []Entry
	failures []error
	codes    []int
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Info(msg string, args ...any) { r.add(slog.LevelInfo, msg, args) }

func (r *Recorder) Warn(msg string, args ...any) { r.add(slog.LevelWarn, msg, args) }

func (r *Recorder) Fail(err error, code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, err)
	r.codes = append(r.codes, code)
}

func (r *Recorder) add(level slog.Level, msg string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Msg: msg, Args: args})
}

// Entries returns the captured messages.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Count returns how many messages were captured at level.
func (r *Recorder) Count(level slog.Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Failures returns the errors passed to Fail.
func (r *Recorder) Failures() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.failures...)
}
