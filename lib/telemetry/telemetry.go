package telemetry

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// Snapshot captures the outcome of one maintenance run. Zero values
// are exported as-is; the collection gauges are only exported for
// successful runs since their values are unreliable otherwise.
type Snapshot struct {
	Success     bool
	CompletedAt time.Time
	Duration    time.Duration

	Deleted    int64
	Index      string // index action, empty when the stage never ran
	Compaction string // compaction outcome, empty when the stage never ran

	Database   string
	Collection string

	Documents    int64
	StorageBytes int64
	IndexBytes   int64
}

// collect assembles the metric set of the snapshot.
func (s *Snapshot) collect() *metrics.Set {
	set := metrics.NewSet()

	set.NewGauge("mongomaint_run_success", func() float64 {
		if s.Success {
			return 1
		}
		return 0
	})
	set.NewGauge("mongomaint_run_duration_seconds", func() float64 {
		return s.Duration.Seconds()
	})
	set.NewGauge("mongomaint_last_run_timestamp_seconds", func() float64 {
		return float64(s.CompletedAt.Unix())
	})
	set.NewGauge("mongomaint_documents_deleted", func() float64 {
		return float64(s.Deleted)
	})

	if s.Index != "" {
		name := fmt.Sprintf(`mongomaint_index_action{action=%q}`, s.Index)
		set.NewGauge(name, func() float64 { return 1 })
	}
	if s.Compaction != "" {
		name := fmt.Sprintf(`mongomaint_compaction{outcome=%q}`, s.Compaction)
		set.NewGauge(name, func() float64 { return 1 })
	}

	// collection sizes of a failed run may describe a collection the
	// run never reached, skip them
	if s.Success {
		labels := fmt.Sprintf(`db=%q,collection=%q`, s.Database, s.Collection)
		set.NewGauge("mongomaint_collection_documents{"+labels+"}", func() float64 {
			return float64(s.Documents)
		})
		set.NewGauge("mongomaint_collection_storage_bytes{"+labels+"}", func() float64 {
			return float64(s.StorageBytes)
		})
		set.NewGauge("mongomaint_collection_index_bytes{"+labels+"}", func() float64 {
			return float64(s.IndexBytes)
		})
	}

	return set
}

// WritePrometheus writes the snapshot to w in Prometheus text format.
func (s *Snapshot) WritePrometheus(w io.Writer) {
	s.collect().WritePrometheus(w)
}

// WriteFile atomically writes the snapshot to path. The file is
// staged next to the target and moved into place, so a scraper never
// observes a half-written export.
func (s *Snapshot) WriteFile(path string) error {
	var buf bytes.Buffer
	s.WritePrometheus(&buf)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to stage metrics file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to move metrics file into place: %w", err)
	}
	return nil
}
