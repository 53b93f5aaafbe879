package maintain

import (
	"context"
	"fmt"
	"slices"

	"github.com/ValentinKolb/mongomaint/lib/cluster"
	"github.com/ValentinKolb/mongomaint/lib/logging"
	"go.mongodb.org/mongo-driver/bson"
)

// --------------------------------------------------------------------------
// Index Maintainer
// --------------------------------------------------------------------------

// IndexAction is the recorded outcome of the index stage.
type IndexAction string

const (
	IndexCreated        IndexAction = "created"
	IndexAlreadyPresent IndexAction = "already-present"
	IndexSkipped        IndexAction = "skipped"
)

// IndexMaintainer ensures the retention index exists so future cleanup
// passes stay cheap.
type IndexMaintainer struct {
	log logging.ILogger
}

// NewIndexMaintainer creates an IndexMaintainer.
func NewIndexMaintainer(log logging.ILogger) *IndexMaintainer {
	return &IndexMaintainer{log: log}
}

// EnsureIndex makes sure the single-field index {field: order} exists
// under its deterministic name, creating it when missing. The call is
// idempotent and tolerates concurrent creation by another client.
func (m *IndexMaintainer) EnsureIndex(ctx context.Context, coll cluster.ICollection, field string, order int32) (IndexAction, error) {
	name := fmt.Sprintf("%s_%d", field, order)

	names, err := coll.IndexNames(ctx)
	if err != nil {
		return IndexSkipped, newError(logging.TagIndex, "listing indexes", err)
	}
	if slices.Contains(names, name) {
		m.log.Infof(logging.TagIndex, "Index %s already exists", name)
		return IndexAlreadyPresent, nil
	}

	m.log.Infof(logging.TagIndex, "Creating index %s on field %q", name, field)

	created, err := coll.CreateIndex(ctx, bson.D{{Key: field, Value: order}}, name)
	if err != nil {
		if cluster.IsIndexConflict(err) {
			// another client created it between the listing and now
			m.log.Infof(logging.TagIndex, "Index %s already exists", name)
			return IndexAlreadyPresent, nil
		}
		return IndexSkipped, newError(logging.TagIndex, fmt.Sprintf("creating index %s", name), err)
	}

	m.log.Infof(logging.TagIndex, "Created index %s", created)
	return IndexCreated, nil
}
