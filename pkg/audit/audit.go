// Package audit records a summary of every cycle check.
//
// A [Record] holds counts and the verdict only. The submitted graph is never
// stored. Backends:
//
//   - [NullRecorder]: auditing disabled
//   - [LogRecorder]: writes records to a charmbracelet logger
//   - [MongoRecorder]: inserts records into a MongoDB collection
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record summarises one check.
type Record struct {
	ID          string        `json:"id" bson:"_id"`
	RequestID   string        `json:"request_id,omitempty" bson:"request_id,omitempty"`
	Time        time.Time     `json:"time" bson:"time"`
	NumNodes    int           `json:"num_nodes" bson:"num_nodes"`
	NumEdges    int           `json:"num_edges" bson:"num_edges"`
	IsDAG       bool          `json:"is_dag" bson:"is_dag"`
	Skipped     int           `json:"skipped_edges" bson:"skipped_edges"`
	CycleLength int           `json:"cycle_length,omitempty" bson:"cycle_length,omitempty"`
	Cached      bool          `json:"cached" bson:"cached"`
	Duration    time.Duration `json:"duration_ns" bson:"duration_ns"`
}

// NewRecord creates a record with a fresh random ID, the current time, and
// the request ID carried by ctx, if any.
func NewRecord(ctx context.Context) Record {
	return Record{
		ID:        uuid.NewString(),
		RequestID: RequestIDFromContext(ctx),
		Time:      time.Now().UTC(),
	}
}

// Recorder persists check records.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
	Close(ctx context.Context) error
}

// NullRecorder discards all records.
type NullRecorder struct{}

func (NullRecorder) Record(context.Context, Record) error { return nil }
func (NullRecorder) Close(context.Context) error          { return nil }

type ctxKey int

const requestIDKey ctxKey = 0

// WithRequestID attaches a request ID to ctx for inclusion in records.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID attached by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
