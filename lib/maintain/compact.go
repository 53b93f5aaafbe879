package maintain

import (
	"context"

	"github.com/ValentinKolb/mongomaint/lib/cluster"
	"github.com/ValentinKolb/mongomaint/lib/logging"
	"go.mongodb.org/mongo-driver/bson"
)

// --------------------------------------------------------------------------
// Compaction Guard
// --------------------------------------------------------------------------

// CompactionOutcome is the recorded outcome of the compaction stage.
type CompactionOutcome string

const (
	CompactionCompleted      CompactionOutcome = "completed"
	CompactionWarning        CompactionOutcome = "warning"
	CompactionSkippedSharded CompactionOutcome = "skipped-sharded"
)

// CompactionGuard compacts collection storage unless the topology
// forbids it.
type CompactionGuard struct {
	log logging.ILogger
}

// NewCompactionGuard creates a CompactionGuard.
func NewCompactionGuard(log logging.ILogger) *CompactionGuard {
	return &CompactionGuard{log: log}
}

// Compact re-probes the topology and runs the compact command. A
// mongos router does not accept compact, so on a sharded cluster the
// command is never sent and the stage records the skip. An
// acknowledged reply without ok:1 is a warning, not a failure; its
// payload is logged in full and not parsed further.
func (g *CompactionGuard) Compact(ctx context.Context, sess cluster.ISession, coll cluster.ICollection) (CompactionOutcome, error) {
	info, err := sess.ServerInfo(ctx)
	if err != nil {
		return "", newError(logging.TagOptimize, "topology probe before compaction", err)
	}
	if info.Sharded {
		g.log.Infof(logging.TagOptimize, "Detected sharded cluster - skipping compaction")
		return CompactionSkippedSharded, nil
	}

	g.log.Infof(logging.TagOptimize, "Starting compaction of collection %q", coll.Name())

	reply, err := coll.Compact(ctx)
	if err != nil {
		return "", newError(logging.TagOptimize, "compacting collection storage", err)
	}

	if replyOK(reply) {
		g.log.Infof(logging.TagOptimize, "Compaction completed")
		return CompactionCompleted, nil
	}

	g.log.Infof(logging.TagOptimize, "Compaction completed with warnings: %v", reply)
	return CompactionWarning, nil
}

// replyOK reads the ok field of a command reply, tolerating the
// numeric BSON types servers use for it.
func replyOK(reply bson.M) bool {
	switch ok := reply["ok"].(type) {
	case float64:
		return ok == 1
	case int32:
		return ok == 1
	case int64:
		return ok == 1
	case bool:
		return ok
	default:
		return false
	}
}
