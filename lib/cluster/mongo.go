package cluster

import (
	"context"
	"errors"
	"strings"

	"github.com/ValentinKolb/mongomaint/lib/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// --------------------------------------------------------------------------
// Driver-backed Session
// --------------------------------------------------------------------------

// MongoDial is the production Dialer. It connects the official driver
// to a single target and verifies reachability with a ping before
// handing the session out - the driver itself connects lazily and
// would hide a dead target until the first operation.
func MongoDial(ctx context.Context, cfg *config.Config, target string) (ISession, error) {
	client, err := mongo.Connect(ctx, clientOptions(cfg, target))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &mongoSession{client: client}, nil
}

// clientOptions assembles the driver options for one target. The
// timeouts are only applied when positive, a zero keeps the driver
// default (the driver reads an explicit zero as "no timeout" for some
// of them).
func clientOptions(cfg *config.Config, target string) *options.ClientOptions {
	opts := options.Client().SetAppName(cfg.AppName)

	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}
	if cfg.SocketTimeout > 0 {
		opts.SetSocketTimeout(cfg.SocketTimeout)
	}
	if cfg.ServerSelectionTimeout > 0 {
		opts.SetServerSelectionTimeout(cfg.ServerSelectionTimeout)
	}

	if isURITarget(target) {
		return opts.ApplyURI(target)
	}

	opts.SetHosts([]string{target}).SetDirect(cfg.DirectConnection)
	if cfg.Username != "" {
		cred := options.Credential{
			Username:    cfg.Username,
			Password:    cfg.Password,
			PasswordSet: true,
		}
		if cfg.AuthSource != "" {
			cred.AuthSource = cfg.AuthSource
		}
		opts.SetAuth(cred)
	}
	return opts
}

// isURITarget reports whether target is a full connection string
// instead of a plain host:port pair.
func isURITarget(target string) bool {
	return strings.HasPrefix(target, "mongodb://") ||
		strings.HasPrefix(target, "mongodb+srv://")
}

// mongoSession implements ISession on top of *mongo.Client.
type mongoSession struct {
	client *mongo.Client
}

// helloReply carries the subset of the hello/isMaster reply the
// session cares about.
type helloReply struct {
	IsWritablePrimary bool   `bson:"isWritablePrimary"`
	IsMaster          bool   `bson:"ismaster"`
	Msg               string `bson:"msg"`
	SetName           string `bson:"setName"`
}

// ServerInfo probes the server with the hello command, falling back to
// the legacy isMaster for servers older than 4.4. A mongos router
// identifies itself with msg "isdbgrid" in both variants.
func (s *mongoSession) ServerInfo(ctx context.Context) (ServerInfo, error) {
	reply, err := s.runHello(ctx, bson.D{{Key: "hello", Value: 1}})
	if err != nil {
		reply, err = s.runHello(ctx, bson.D{{Key: "isMaster", Value: 1}})
	}
	if err != nil {
		return ServerInfo{}, err
	}

	return ServerInfo{
		Primary:    reply.IsWritablePrimary || reply.IsMaster,
		Sharded:    reply.Msg == "isdbgrid",
		ReplicaSet: reply.SetName,
	}, nil
}

func (s *mongoSession) runHello(ctx context.Context, cmd bson.D) (helloReply, error) {
	var reply helloReply
	err := s.client.Database("admin").RunCommand(ctx, cmd).Decode(&reply)
	return reply, err
}

func (s *mongoSession) CollectionNames(ctx context.Context, database string) ([]string, error) {
	return s.client.Database(database).ListCollectionNames(ctx, bson.D{})
}

func (s *mongoSession) Collection(database, name string) ICollection {
	db := s.client.Database(database)
	return &mongoCollection{db: db, coll: db.Collection(name)}
}

func (s *mongoSession) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// --------------------------------------------------------------------------
// Driver-backed Collection
// --------------------------------------------------------------------------

// mongoCollection implements ICollection. The database handle is kept
// for the commands that address a collection by name (compact,
// collStats).
type mongoCollection struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func (c *mongoCollection) Name() string {
	return c.coll.Name()
}

func (c *mongoCollection) DeleteMany(ctx context.Context, filter bson.D) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *mongoCollection) IndexNames(ctx context.Context) ([]string, error) {
	cursor, err := c.coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		if name, ok := doc["name"].(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func (c *mongoCollection) CreateIndex(ctx context.Context, keys bson.D, name string) (string, error) {
	model := mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(name),
	}
	return c.coll.Indexes().CreateOne(ctx, model)
}

// Compact runs the compact command with force:true so the server
// accepts it on a replica set primary.
func (c *mongoCollection) Compact(ctx context.Context) (bson.M, error) {
	cmd := bson.D{
		{Key: "compact", Value: c.coll.Name()},
		{Key: "force", Value: true},
	}

	var reply bson.M
	if err := c.db.RunCommand(ctx, cmd).Decode(&reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *mongoCollection) Stats(ctx context.Context) (CollectionStats, error) {
	cmd := bson.D{{Key: "collStats", Value: c.coll.Name()}}

	var reply bson.M
	if err := c.db.RunCommand(ctx, cmd).Decode(&reply); err != nil {
		return CollectionStats{}, err
	}

	return CollectionStats{
		Documents:    asInt64(reply["count"]),
		StorageBytes: asInt64(reply["storageSize"]),
		IndexBytes:   asInt64(reply["totalIndexSize"]),
	}, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// asInt64 coerces the numeric BSON types servers use interchangeably
// for count and size fields.
func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// Server codes for an index that already exists with an identical or
// conflicting definition.
const (
	codeIndexAlreadyExists    = 68
	codeIndexOptionsConflict  = 85
	codeIndexKeySpecsConflict = 86
)

// IsIndexConflict reports whether err only means the index already
// exists, e.g. because another client created it concurrently.
func IsIndexConflict(err error) bool {
	var srvErr mongo.ServerError
	if !errors.As(err, &srvErr) {
		return false
	}
	return srvErr.HasErrorCode(codeIndexAlreadyExists) ||
		srvErr.HasErrorCode(codeIndexOptionsConflict) ||
		srvErr.HasErrorCode(codeIndexKeySpecsConflict)
}
