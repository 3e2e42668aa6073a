package audit

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestNewRecord(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	rec := NewRecord(ctx)

	if _, err := uuid.Parse(rec.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", rec.ID, err)
	}
	if rec.RequestID != "req-1" {
		t.Errorf("RequestID = %q, want %q", rec.RequestID, "req-1")
	}
	if rec.Time.IsZero() {
		t.Error("Time should be set")
	}

	if other := NewRecord(ctx); other.ID == rec.ID {
		t.Error("NewRecord should generate unique IDs")
	}
}

func TestRequestIDFromContextEmpty(t *testing.T) {
	if id := RequestIDFromContext(context.Background()); id != "" {
		t.Errorf("RequestIDFromContext() = %q, want empty", id)
	}
}

func TestNullRecorder(t *testing.T) {
	var r Recorder = NullRecorder{}
	if err := r.Record(context.Background(), Record{}); err != nil {
		t.Errorf("Record error: %v", err)
	}
	if err := r.Close(context.Background()); err != nil {
		t.Errorf("Close error: %v", err)
	}
}

func TestLogRecorder(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	r := NewLogRecorder(logger)

	rec := Record{ID: "abc", NumNodes: 3, NumEdges: 2, IsDAG: true}
	if err := r.Record(context.Background(), rec); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "check recorded") {
		t.Errorf("log output missing message: %q", out)
	}
	if !strings.Contains(out, "abc") {
		t.Errorf("log output missing record ID: %q", out)
	}
}

func TestNewMongoRecorderEmptyURI(t *testing.T) {
	if _, err := NewMongoRecorder(context.Background(), MongoConfig{}); err == nil {
		t.Error("NewMongoRecorder with empty URI should fail")
	}
}
