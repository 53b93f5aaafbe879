package maintain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ValentinKolb/mongomaint/lib/cluster"
	clustertesting "github.com/ValentinKolb/mongomaint/lib/cluster/testing"
	"github.com/ValentinKolb/mongomaint/lib/logging"
)

func TestReportStats(t *testing.T) {
	coll := &clustertesting.FakeCollection{
		CollName: "events",
		StatsDoc: cluster.CollectionStats{
			Documents:    1234,
			StorageBytes: 5*1024*1024 + 256*1024, // 5.25 MB
			IndexBytes:   512 * 1024,             // 0.50 MB
		},
	}

	log, out, _ := captureLogger()
	r := NewStatsReporter(log)

	stats, err := r.Report(context.Background(), coll)
	if err != nil {
		t.Fatalf("Expected stats report to succeed, got %v", err)
	}
	if stats != coll.StatsDoc {
		t.Errorf("Expected stats %+v to be surfaced, got %+v", coll.StatsDoc, stats)
	}

	got := out.String()
	for _, want := range []string{
		`Statistics of collection "events"`,
		"Documents: 1234",
		"Storage size: 5.25 MB",
		"Index size: 0.50 MB",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected log to contain %q, got %q", want, got)
		}
	}
}

func TestReportStatsFailure(t *testing.T) {
	coll := &clustertesting.FakeCollection{StatsErr: errors.New("connection reset")}

	r := NewStatsReporter(testLogger())
	_, err := r.Report(context.Background(), coll)
	if err == nil {
		t.Fatal("Expected stats failure to propagate")
	}
	if tag := TagOf(err); tag != logging.TagStats {
		t.Errorf("Expected STATS tag, got %s", tag)
	}
}
