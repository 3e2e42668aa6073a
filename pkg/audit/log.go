package audit

import (
	"context"

	"github.com/charmbracelet/log"
)

// LogRecorder writes each record to a logger at debug level.
type LogRecorder struct {
	Logger *log.Logger
}

// NewLogRecorder creates a recorder logging to l, or to log.Default() when l
// is nil.
func NewLogRecorder(l *log.Logger) *LogRecorder {
	if l == nil {
		l = log.Default()
	}
	return &LogRecorder{Logger: l}
}

// Record logs rec.
func (r *LogRecorder) Record(_ context.Context, rec Record) error {
	r.Logger.Debug("check recorded",
		"id", rec.ID,
		"request_id", rec.RequestID,
		"nodes", rec.NumNodes,
		"edges", rec.NumEdges,
		"is_dag", rec.IsDAG,
		"skipped", rec.Skipped,
		"cached", rec.Cached,
		"duration", rec.Duration)
	return nil
}

// Close does nothing.
func (r *LogRecorder) Close(context.Context) error { return nil }

var _ Recorder = (*LogRecorder)(nil)
