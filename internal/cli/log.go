// Package cli implements the arbor command-line interface.
//
// The commands lay out tree documents (JSON, YAML or TOML), render them to
// files, explore them in the terminal and serve them over HTTP. The CLI is
// built on cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - render: write SVG, PNG, PDF, JSON or DOT output
//   - layout: write the settled node positions as JSON
//   - convert: re-encode a document as nested JSON, YAML or TOML
//   - view: interactive terminal viewer
//   - serve: HTTP API with optional file watching
//   - config: inspect and initialize the configuration file
//   - cache: manage the rendered artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// routes engine, cache and HTTP hook events to the logger.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a timestamped logger writing to w at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
}

// progress logs a message with the time elapsed since it was created.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs e.g. "Rendered svg (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext falls back to log.Default when ctx carries no logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
