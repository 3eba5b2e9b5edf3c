package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Build struct {
	writer io.Writer
	level  string
	pretty bool
}

func New() *Build {
	return &Build{writer: os.Stdout, level: zerolog.LevelInfoValue}
}

func (b *Build) WithWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

func (b *Build) WithLevel(level string) *Build {
	b.level = level
	return b
}

// Pretty switches output to zerolog's human readable console format.
func (b *Build) Pretty(pretty bool) *Build {
	b.pretty = pretty
	return b
}

// Make returns the configured logger. An unknown level falls back to info
// and is reported through the returned logger.
func (b *Build) Make() zerolog.Logger {
	w := b.writer
	if b.pretty {
		w = zerolog.ConsoleWriter{Out: b.writer, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(b.level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	l := zerolog.New(w).Level(level).With().Timestamp().Logger()
	if err != nil {
		l.Warn().Str("level", b.level).Msg("unknown log level, using info")
	}
	return l
}
