package binproto

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Reporter receives every error a protocol recovers from. It is the only
// channel through which ProcessInbound and ProcessOutbound surface failures.
type Reporter interface {
	Report(err error)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(err error)

func (f ReporterFunc) Report(err error) { f(err) }

// DiscardReporter drops every error.
var DiscardReporter Reporter = ReporterFunc(func(error) {})

// DefaultReporter returns a LogReporter bound to the global zerolog logger.
func DefaultReporter() Reporter {
	return &LogReporter{}
}

// LogReporter writes each error as one zerolog event at error level, with
// the error's details as structured fields.
type LogReporter struct {
	// Logger defaults to the global logger from github.com/rs/zerolog/log.
	Logger *zerolog.Logger
}

// NewLogReporter returns a reporter writing to logger.
func NewLogReporter(logger zerolog.Logger) *LogReporter {
	return &LogReporter{Logger: &logger}
}

func (r *LogReporter) Report(err error) {
	logger := r.Logger
	if logger == nil {
		logger = &log.Logger
	}

	ev := logger.Error().Err(err).Str("kind", Kind(err))

	var (
		arityErr  *ArityError
		encodeErr *EncodeError
		decodeErr *DecodeError
		layoutErr *LayoutError
	)
	switch {
	case errors.As(err, &decodeErr):
		ev = ev.Str("encoding", decodeErr.Encoding).
			Int64("offset", decodeErr.Offset).
			Int("length", len(decodeErr.Bytes)).
			Hex("bytes", decodeErr.Bytes).
			Bool("truncated", decodeErr.Truncated)
	case errors.As(err, &encodeErr):
		ev = ev.Str("encoding", encodeErr.Encoding).
			Str("text", encodeErr.Text).
			Int("unrepresentable", len(encodeErr.Runes))
	case errors.As(err, &arityErr):
		ev = ev.Int("want", arityErr.Want).Int("got", arityErr.Got)
		if arityErr.Type != "" {
			ev = ev.Int("index", arityErr.Index).Str("type", arityErr.Type)
		}
	case errors.As(err, &layoutErr):
		ev = ev.Int("field", layoutErr.Field)
		if layoutErr.Kind != "" {
			ev = ev.Str("field_kind", string(layoutErr.Kind))
		}
	}

	ev.Msg("protocol error")
}
