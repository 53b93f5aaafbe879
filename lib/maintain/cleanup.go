package maintain

import (
	"context"
	"time"

	"github.com/ValentinKolb/mongomaint/lib/cluster"
	"github.com/ValentinKolb/mongomaint/lib/logging"
	"go.mongodb.org/mongo-driver/bson"
)

// --------------------------------------------------------------------------
// Clean Strategy
// --------------------------------------------------------------------------

// ICleanStrategy builds the deletion filter for a cutoff timestamp.
// The strategy is injected into the executor so the retention policy
// stays exchangeable without touching the deletion code.
type ICleanStrategy interface {
	// Query returns the filter selecting every document to delete.
	Query(cutoff time.Time) bson.D
}

// FieldStrategy selects documents whose timestamp field exists, is not
// null and lies strictly before the cutoff. Documents without the
// field, with a null value or exactly at the cutoff are kept.
type FieldStrategy struct {
	Field string
}

// Query implements ICleanStrategy.
func (s *FieldStrategy) Query(cutoff time.Time) bson.D {
	return bson.D{{Key: s.Field, Value: bson.D{
		{Key: "$exists", Value: true},
		{Key: "$ne", Value: nil},
		{Key: "$lt", Value: cutoff},
	}}}
}

// --------------------------------------------------------------------------
// Cleanup Executor
// --------------------------------------------------------------------------

// CleanupExecutor deletes expired documents in one unbatched pass.
type CleanupExecutor struct {
	strategy ICleanStrategy
	log      logging.ILogger
}

// NewCleanupExecutor creates a CleanupExecutor with the given strategy.
func NewCleanupExecutor(strategy ICleanStrategy, log logging.ILogger) *CleanupExecutor {
	return &CleanupExecutor{
		strategy: strategy,
		log:      log,
	}
}

// DeleteExpired removes every document matching the strategy's filter
// for the cutoff and returns the number of removed documents. A count
// of zero is a regular outcome, not an error.
func (e *CleanupExecutor) DeleteExpired(ctx context.Context, coll cluster.ICollection, cutoff time.Time) (int64, error) {
	e.log.Infof(logging.TagCleanup, "Cleaning documents older than %s", cutoff.Format(time.RFC3339))

	deleted, err := coll.DeleteMany(ctx, e.strategy.Query(cutoff))
	if err != nil {
		return 0, newError(logging.TagCleanup, "deleting expired documents", err)
	}

	e.log.Infof(logging.TagCleanup, "Deleted %d documents", deleted)
	return deleted, nil
}
