package maintain

import (
	"context"

	"github.com/ValentinKolb/mongomaint/lib/cluster"
	"github.com/ValentinKolb/mongomaint/lib/logging"
)

// --------------------------------------------------------------------------
// Stats Reporter
// --------------------------------------------------------------------------

// StatsReporter logs collection statistics after the destructive
// stages are done.
type StatsReporter struct {
	log logging.ILogger
}

// NewStatsReporter creates a StatsReporter.
func NewStatsReporter(log logging.ILogger) *StatsReporter {
	return &StatsReporter{log: log}
}

// Report fetches the collection statistics and logs document count and
// sizes. Sizes are reported in megabytes with two decimals.
func (r *StatsReporter) Report(ctx context.Context, coll cluster.ICollection) (cluster.CollectionStats, error) {
	stats, err := coll.Stats(ctx)
	if err != nil {
		return cluster.CollectionStats{}, newError(logging.TagStats, "fetching collection statistics", err)
	}

	r.log.Infof(logging.TagStats, "Statistics of collection %q", coll.Name())
	r.log.Infof(logging.TagStats, "Documents: %d", stats.Documents)
	r.log.Infof(logging.TagStats, "Storage size: %.2f MB", stats.StorageMB())
	r.log.Infof(logging.TagStats, "Index size: %.2f MB", stats.IndexMB())

	return stats, nil
}
