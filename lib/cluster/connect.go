package cluster

import (
	"context"
	"fmt"
	"slices"

	"github.com/ValentinKolb/mongomaint/lib/config"
	"github.com/ValentinKolb/mongomaint/lib/logging"
)

// --------------------------------------------------------------------------
// Connection Establishment
// --------------------------------------------------------------------------

// Connection is the accepted session plus the resolved target
// collection handle. It is only ever returned fully verified: dialed,
// role-checked (when configured) and with the collection confirmed to
// exist.
type Connection struct {
	Session ISession
	Coll    ICollection
	Target  string
}

// Close releases the underlying session. Must be called exactly once.
func (c *Connection) Close(ctx context.Context) error {
	return c.Session.Disconnect(ctx)
}

// Connect establishes a verified connection to the cluster.
//
// Targets are tried strictly in the configured order. A target that
// fails to dial is skipped once and never retried. With RequirePrimary
// set, a reachable server that is not a writable primary is closed and
// skipped the same way; the first verified primary wins and later
// targets are never dialed. After the list is exhausted the returned
// error mirrors the last failure: a failed role check yields
// ErrCodePrimaryNotFound, anything else ErrCodeNetwork.
//
// The accepted session is then checked for the target collection. On
// any verification failure the session is released before the error is
// returned, so no partial connection ever leaves this function.
func Connect(ctx context.Context, cfg *config.Config, dial Dialer, log logging.ILogger) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, NewError(ErrCodeConfig, "invalid configuration", err)
	}

	sess, target, err := acceptTarget(ctx, cfg, dial, log)
	if err != nil {
		return nil, err
	}

	names, err := sess.CollectionNames(ctx, cfg.Database)
	if err != nil {
		_ = sess.Disconnect(ctx)
		return nil, NewError(ErrCodeNetwork,
			fmt.Sprintf("listing collections of database %q failed", cfg.Database), err)
	}
	if !slices.Contains(names, cfg.Collection) {
		_ = sess.Disconnect(ctx)
		return nil, NewError(ErrCodeCollectionNotFound,
			fmt.Sprintf("collection %q not found in database %q", cfg.Collection, cfg.Database), nil)
	}

	log.Infof(logging.TagNetwork, "Connection established to %s (%s.%s)",
		target, cfg.Database, cfg.Collection)

	return &Connection{
		Session: sess,
		Coll:    sess.Collection(cfg.Database, cfg.Collection),
		Target:  target,
	}, nil
}

// acceptTarget walks the target list in order and returns the first
// session passing the configured checks.
func acceptTarget(ctx context.Context, cfg *config.Config, dial Dialer, log logging.ILogger) (ISession, string, error) {
	var lastErr *Error

	for _, target := range cfg.Targets() {
		log.Debugf(logging.TagNetwork, "Connecting to MongoDB at %s", target)

		sess, err := dial(ctx, cfg, target)
		if err != nil {
			log.Errorf(logging.TagNetwork, "Connection to %s failed: %v", target, err)
			lastErr = NewError(ErrCodeNetwork, fmt.Sprintf("connection to %s failed", target), err)
			continue
		}
		log.Infof(logging.TagNetwork, "Connection verified for %s", target)

		if !cfg.RequirePrimary {
			return sess, target, nil
		}

		info, err := sess.ServerInfo(ctx)
		if err != nil {
			_ = sess.Disconnect(ctx)
			log.Errorf(logging.TagNetwork, "Role probe of %s failed: %v", target, err)
			lastErr = NewError(ErrCodeNetwork, fmt.Sprintf("role probe of %s failed", target), err)
			continue
		}
		if !info.Primary {
			_ = sess.Disconnect(ctx)
			log.Infof(logging.TagNetwork, "%s is not a writable primary, trying next host", target)
			lastErr = NewError(ErrCodePrimaryNotFound,
				fmt.Sprintf("%s is not a writable primary", target), nil)
			continue
		}

		log.Infof(logging.TagNetwork, "Primary confirmed at %s", target)
		return sess, target, nil
	}

	if lastErr == nil {
		// cannot happen with a validated config, Targets is never empty
		lastErr = NewError(ErrCodeNetwork, "no connection target available", nil)
	}
	return nil, "", lastErr
}
