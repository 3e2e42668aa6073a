// Package cli implements the pipelinecheck command-line interface.
//
// # Commands
//
// The main commands are:
//   - serve: Run the HTTP service
//   - check: Check a pipeline file for cycles
//   - cache: Manage the local verdict cache
//
// # Configuration
//
// Settings are read from a TOML file (see the config package), by default
// ~/.config/pipelinecheck/config.toml. Command flags override file values.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Each command
// attaches its own fields (the pipeline being checked, the listen address) to
// the logger and passes it through context.Context, so runner warnings about
// skipped edges say which pipeline they belong to.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipelinecheck/pkg/pipeline"
)

// newLogger creates the CLI logger writing to w at level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45"). The
// is_dag and skipped fields are coloured so a cycle or a dangling edge stands
// out in a scrolling server log.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	l.SetStyles(verdictStyles())
	return l
}

func verdictStyles() *log.Styles {
	s := log.DefaultStyles()
	s.Keys["is_dag"] = lipgloss.NewStyle().Foreground(colorCyan)
	s.Values["is_dag"] = lipgloss.NewStyle().Foreground(colorGreen)
	s.Keys["skipped"] = lipgloss.NewStyle().Foreground(colorYellow)
	s.Keys["cycle"] = StyleCycle
	return s
}

// checkProgress times one pipeline check and logs its verdict.
type checkProgress struct {
	logger *log.Logger
	start  time.Time
}

func newCheckProgress(l *log.Logger) *checkProgress {
	return &checkProgress{logger: l, start: time.Now()}
}

// done logs the verdict counts with the elapsed time, e.g.
// "Checked pipeline nodes=3 edges=2 is_dag=true skipped=0 cached=false elapsed=2ms".
// A cyclic verdict is logged at warn level.
func (p *checkProgress) done(res *pipeline.Result) {
	v := res.Verdict
	kv := []any{
		"nodes", v.NumNodes,
		"edges", v.NumEdges,
		"is_dag", v.IsDAG,
		"skipped", len(v.SkippedEdges),
		"cached", res.Cached,
		"elapsed", time.Since(p.start).Round(time.Millisecond),
	}
	if v.IsDAG {
		p.logger.Info("Checked pipeline", kv...)
		return
	}
	p.logger.Warn("Checked pipeline", append(kv, "cycle", len(v.Cycle))...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns ctx carrying l extended with keyvals, such as
// "pipeline", "flow.json" for a check or "addr", ":8000" for the server.
func withLogger(ctx context.Context, l *log.Logger, keyvals ...any) context.Context {
	if len(keyvals) > 0 {
		l = l.With(keyvals...)
	}
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger stored by withLogger, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
