package cluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/ValentinKolb/mongomaint/lib/config"
	"go.mongodb.org/mongo-driver/bson"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Dialer is a function type that opens a session to a single target.
// A target is either a host:port pair or a full connection string.
// This abstracts the concrete client library from connection
// establishment and lets tests substitute fakes.
type Dialer func(ctx context.Context, cfg *config.Config, target string) (ISession, error)

// ISession is the cluster-scoped handle returned by a successful dial.
// A session is single-owner and not retried: once Disconnect was
// called it must not be used again.
type ISession interface {
	// ServerInfo probes the dialed server for its role and topology.
	ServerInfo(ctx context.Context) (ServerInfo, error)
	// CollectionNames lists the collection names of a database.
	CollectionNames(ctx context.Context, database string) ([]string, error)
	// Collection returns the handle for a single collection. The
	// collection is not required to exist.
	Collection(database, name string) ICollection
	// Disconnect releases the session and all resources held by it.
	// It must be called exactly once per session.
	Disconnect(ctx context.Context) error
}

// ICollection is the handle for the operations the maintenance stages
// run against a single collection.
type ICollection interface {
	// Name returns the collection name.
	Name() string
	// DeleteMany removes every document matching filter and returns
	// the number of removed documents.
	DeleteMany(ctx context.Context, filter bson.D) (int64, error)
	// IndexNames lists the names of all indexes of the collection.
	IndexNames(ctx context.Context) ([]string, error)
	// CreateIndex creates an index with the given key document and
	// name and returns the name reported by the server.
	CreateIndex(ctx context.Context, keys bson.D, name string) (string, error)
	// Compact asks the server to defragment the collection storage
	// and returns the raw command reply.
	Compact(ctx context.Context) (bson.M, error)
	// Stats returns document count and size statistics.
	Stats(ctx context.Context) (CollectionStats, error)
}

// ServerInfo describes one dialed server.
type ServerInfo struct {
	Primary    bool   // the server reported itself as writable primary
	Sharded    bool   // the server is a mongos router
	ReplicaSet string // replica set name, empty for standalone servers
}

// CollectionStats carries the statistics reported for a collection.
type CollectionStats struct {
	Documents    int64 // number of documents
	StorageBytes int64 // size of the collection data on disk
	IndexBytes   int64 // combined size of all indexes
}

// StorageMB returns the storage size in megabytes.
func (s CollectionStats) StorageMB() float64 {
	return float64(s.StorageBytes) / 1024 / 1024
}

// IndexMB returns the total index size in megabytes.
func (s CollectionStats) IndexMB() float64 {
	return float64(s.IndexBytes) / 1024 / 1024
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the error type of connection establishment. It wraps a
// classification code, a message and the underlying cause.
type Error struct {
	Code ErrCode // The classification code
	Msg  string  // The error message
	Err  error   // The underlying cause (may be nil)
}

// Error implements the error interface.
func (e *Error) Error() string {
	name := ""
	switch e.Code {
	case ErrCodeConfig:
		name = "ConfigError"
	case ErrCodeNetwork:
		name = "NetworkError"
	case ErrCodePrimaryNotFound:
		name = "PrimaryNotFoundError"
	case ErrCodeCollectionNotFound:
		name = "CollectionNotFoundError"
	default:
		name = "Unknown"
	}

	if e.Err != nil {
		return fmt.Sprintf("cluster error (%s): %s: %v", name, e.Msg, e.Err)
	}
	return fmt.Sprintf("cluster error (%s): %s", name, e.Msg)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given code, message and cause.
func NewError(code ErrCode, msg string, err error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

// CodeOf returns the classification code of err, or ErrCodeUnknown for
// foreign errors.
func CodeOf(err error) ErrCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeUnknown
}

// --------------------------------------------------------------------------
// Error Codes
// --------------------------------------------------------------------------

type ErrCode uint64

const (
	ErrCodeUnknown            ErrCode = iota // 0: not a cluster error
	ErrCodeConfig                            // 1: invalid configuration
	ErrCodeNetwork                           // 2: transport or auth failure while dialing
	ErrCodePrimaryNotFound                   // 3: no target passed the primary role check
	ErrCodeCollectionNotFound                // 4: target collection missing in the database
)
