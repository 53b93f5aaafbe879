package testing

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/ValentinKolb/mongomaint/lib/cluster"
	"github.com/ValentinKolb/mongomaint/lib/config"
	"go.mongodb.org/mongo-driver/bson"
)

// --------------------------------------------------------------------------
// Fake Documents
// --------------------------------------------------------------------------

// FakeDoc is one stored document of the fake collection, reduced to
// the retention field. Present reports whether the field exists at
// all, Null whether it holds an explicit null.
type FakeDoc struct {
	Present   bool
	Null      bool
	Timestamp time.Time
}

// DocAt returns a document whose retention field holds ts.
func DocAt(ts time.Time) FakeDoc {
	return FakeDoc{Present: true, Timestamp: ts}
}

// DocMissing returns a document without the retention field.
func DocMissing() FakeDoc {
	return FakeDoc{}
}

// DocNull returns a document whose retention field is null.
func DocNull() FakeDoc {
	return FakeDoc{Present: true, Null: true}
}

// --------------------------------------------------------------------------
// Fake Collection
// --------------------------------------------------------------------------

// FakeCollection implements cluster.ICollection in memory. Error
// fields, when set, are returned by the corresponding method instead
// of performing the operation.
type FakeCollection struct {
	CollName string
	Docs     []FakeDoc
	Indexes  []string

	DeleteErr  error
	ListErr    error
	CreateErr  error
	CompactErr error
	StatsErr   error

	CompactDoc bson.M // compact reply, defaults to {ok: 1}
	StatsDoc   cluster.CollectionStats

	DeleteCalls  int
	IndexLists   int
	CompactCalls int
	StatsCalls   int
	LastFilter   bson.D
}

func (c *FakeCollection) Name() string {
	if c.CollName == "" {
		return "collection"
	}
	return c.CollName
}

// DeleteMany evaluates the filter against the stored documents. Only
// the canonical retention filter shape is understood:
// {field: {$exists: true, $ne: null, $lt: <time>}}.
func (c *FakeCollection) DeleteMany(_ context.Context, filter bson.D) (int64, error) {
	c.DeleteCalls++
	c.LastFilter = filter
	if c.DeleteErr != nil {
		return 0, c.DeleteErr
	}

	cutoff, ok := filterCutoff(filter)
	if !ok {
		return 0, fmt.Errorf("fake collection: unsupported filter %v", filter)
	}

	var kept []FakeDoc
	var deleted int64
	for _, doc := range c.Docs {
		if doc.Present && !doc.Null && doc.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	c.Docs = kept
	return deleted, nil
}

// filterCutoff extracts the $lt bound from the canonical retention
// filter.
func filterCutoff(filter bson.D) (time.Time, bool) {
	if len(filter) != 1 {
		return time.Time{}, false
	}
	conds, ok := filter[0].Value.(bson.D)
	if !ok {
		return time.Time{}, false
	}

	var cutoff time.Time
	var found bool
	for _, cond := range conds {
		if cond.Key == "$lt" {
			cutoff, found = cond.Value.(time.Time)
		}
	}
	return cutoff, found
}

func (c *FakeCollection) IndexNames(_ context.Context) ([]string, error) {
	c.IndexLists++
	if c.ListErr != nil {
		return nil, c.ListErr
	}
	return slices.Clone(c.Indexes), nil
}

func (c *FakeCollection) CreateIndex(_ context.Context, _ bson.D, name string) (string, error) {
	if c.CreateErr != nil {
		return "", c.CreateErr
	}
	c.Indexes = append(c.Indexes, name)
	return name, nil
}

func (c *FakeCollection) Compact(_ context.Context) (bson.M, error) {
	c.CompactCalls++
	if c.CompactErr != nil {
		return nil, c.CompactErr
	}
	if c.CompactDoc == nil {
		return bson.M{"ok": 1.0}, nil
	}
	return c.CompactDoc, nil
}

func (c *FakeCollection) Stats(_ context.Context) (cluster.CollectionStats, error) {
	c.StatsCalls++
	if c.StatsErr != nil {
		return cluster.CollectionStats{}, c.StatsErr
	}
	return c.StatsDoc, nil
}

// --------------------------------------------------------------------------
// Fake Session
// --------------------------------------------------------------------------

// FakeSession implements cluster.ISession over a single
// FakeCollection. Databases maps database names to their collection
// names for the existence check.
type FakeSession struct {
	Info      cluster.ServerInfo
	InfoErr   error
	Databases map[string][]string
	Coll      *FakeCollection
	NamesErr  error

	InfoCalls     int
	Disconnects   int
	DisconnectErr error
}

func (s *FakeSession) ServerInfo(_ context.Context) (cluster.ServerInfo, error) {
	s.InfoCalls++
	if s.InfoErr != nil {
		return cluster.ServerInfo{}, s.InfoErr
	}
	return s.Info, nil
}

func (s *FakeSession) CollectionNames(_ context.Context, database string) ([]string, error) {
	if s.NamesErr != nil {
		return nil, s.NamesErr
	}
	return s.Databases[database], nil
}

func (s *FakeSession) Collection(_, _ string) cluster.ICollection {
	return s.Coll
}

func (s *FakeSession) Disconnect(_ context.Context) error {
	s.Disconnects++
	return s.DisconnectErr
}

// --------------------------------------------------------------------------
// Fake Dialer
// --------------------------------------------------------------------------

// Target scripts the dial result for one target.
type Target struct {
	Err     error // dial error, nil hands out Session
	Session *FakeSession
}

// FakeDialer hands out scripted sessions per target and records the
// dial order.
type FakeDialer struct {
	Targets map[string]Target
	Dialed  []string
}

// Dial implements cluster.Dialer.
func (d *FakeDialer) Dial(_ context.Context, _ *config.Config, target string) (cluster.ISession, error) {
	d.Dialed = append(d.Dialed, target)

	t, ok := d.Targets[target]
	if !ok {
		return nil, fmt.Errorf("fake dialer: no script for target %s", target)
	}
	if t.Err != nil {
		return nil, t.Err
	}
	return t.Session, nil
}

// --------------------------------------------------------------------------
// Builders
// --------------------------------------------------------------------------

// TestConfig returns a valid configuration against the given hosts
// (default localhost) targeting appdb.events.
func TestConfig(hosts ...string) *config.Config {
	if len(hosts) == 0 {
		hosts = []string{"localhost:27017"}
	}
	return &config.Config{
		Hosts:          hosts,
		Database:       "appdb",
		Collection:     "events",
		RetentionField: "createdAt",
		RetentionDays:  30,
		IndexOrder:     1,
		RequirePrimary: true,
		AppName:        "mongomaint",
	}
}

// PrimarySession returns a session that passes the primary check and
// resolves the given collection.
func PrimarySession(database, collection string, coll *FakeCollection) *FakeSession {
	return &FakeSession{
		Info:      cluster.ServerInfo{Primary: true},
		Databases: map[string][]string{database: {collection}},
		Coll:      coll,
	}
}

// SecondarySession returns a reachable session that fails the primary
// check.
func SecondarySession() *FakeSession {
	return &FakeSession{Info: cluster.ServerInfo{Primary: false, ReplicaSet: "rs0"}}
}
