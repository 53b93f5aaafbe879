// Package cluster connects the maintenance pipeline to a MongoDB
// cluster and hides the concrete driver behind small interfaces.
//
// Key Features:
//
//   - Ordered multi-host failover: targets are dialed strictly in the
//     configured order, a failed host is skipped once and never
//     retried, the first host passing all checks wins.
//   - Primary role verification: when enabled, each reachable host is
//     probed with the hello command and only a writable primary is
//     accepted.
//   - Collection verification: a connection is only handed out after
//     the target collection was confirmed to exist, so later stages
//     never operate on a missing namespace.
//   - Driver isolation: the pipeline only sees the ISession and
//     ICollection interfaces plus bson document types. The official
//     driver lives in this package alone, which lets tests substitute
//     in-memory fakes (see the testing subpackage).
//
// Connection establishment classifies every terminal failure with an
// ErrCode (configuration, network, no primary found, collection not
// found). No partial connection is ever returned: any session opened
// during a failed establishment is released before the error leaves
// the package.
package cluster
