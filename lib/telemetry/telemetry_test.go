package telemetry

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func successSnapshot() *Snapshot {
	return &Snapshot{
		Success:      true,
		CompletedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Duration:     1500 * time.Millisecond,
		Deleted:      42,
		Index:        "created",
		Compaction:   "completed",
		Database:     "appdb",
		Collection:   "events",
		Documents:    1234,
		StorageBytes: 5 << 20,
		IndexBytes:   1 << 19,
	}
}

func TestWritePrometheusSuccess(t *testing.T) {
	var buf bytes.Buffer
	successSnapshot().WritePrometheus(&buf)
	got := buf.String()

	for _, want := range []string{
		"mongomaint_run_success 1",
		"mongomaint_run_duration_seconds 1.5",
		"mongomaint_last_run_timestamp_seconds 1714564800",
		"mongomaint_documents_deleted 42",
		`mongomaint_index_action{action="created"} 1`,
		`mongomaint_compaction{outcome="completed"} 1`,
		`mongomaint_collection_documents{db="appdb",collection="events"} 1234`,
		`mongomaint_collection_storage_bytes{db="appdb",collection="events"} 5242880`,
		`mongomaint_collection_index_bytes{db="appdb",collection="events"} 524288`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected export to contain %q, got:\n%s", want, got)
		}
	}
}

func TestWritePrometheusFailure(t *testing.T) {
	snap := &Snapshot{
		Success:     false,
		CompletedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Duration:    2 * time.Second,
	}

	var buf bytes.Buffer
	snap.WritePrometheus(&buf)
	got := buf.String()

	if !strings.Contains(got, "mongomaint_run_success 0") {
		t.Errorf("Expected a zero success gauge, got:\n%s", got)
	}
	if !strings.Contains(got, "mongomaint_documents_deleted 0") {
		t.Errorf("Expected a zero deleted gauge, got:\n%s", got)
	}
	// stage and collection gauges must stay out when the run never
	// reached those stages
	for _, absent := range []string{
		"mongomaint_index_action",
		"mongomaint_compaction",
		"mongomaint_collection_documents",
		"mongomaint_collection_storage_bytes",
		"mongomaint_collection_index_bytes",
	} {
		if strings.Contains(got, absent) {
			t.Errorf("Expected export to omit %q, got:\n%s", absent, got)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mongomaint.prom")

	if err := successSnapshot().WriteFile(path); err != nil {
		t.Fatalf("Expected file export to succeed, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected the metrics file to exist, got %v", err)
	}
	if !strings.Contains(string(data), "mongomaint_run_success 1") {
		t.Errorf("Expected exported metrics in file, got:\n%s", data)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("Expected the staging file to be gone, got %v", err)
	}
}

func TestWriteFileBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "mongomaint.prom")

	if err := successSnapshot().WriteFile(path); err == nil {
		t.Error("Expected file export into a missing directory to fail")
	}
}
