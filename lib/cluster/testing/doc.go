// Package testing provides in-memory fakes of the cluster interfaces
// for the tests of dependent packages.
//
// The package contains:
//   - FakeCollection: implements cluster.ICollection and evaluates the
//     canonical retention filter against stored documents, so deletion
//     scenarios run without a server
//   - FakeSession: implements cluster.ISession with a scriptable
//     topology probe and a Disconnects counter for release accounting
//   - FakeDialer: hands out scripted sessions per target and records
//     the dial order for failover tests
//   - Builders for common scenarios: TestConfig, PrimarySession,
//     SecondarySession and the DocAt/DocMissing/DocNull document
//     constructors
//
// Example usage:
//
//	coll := &clustertesting.FakeCollection{
//		Docs: []clustertesting.FakeDoc{clustertesting.DocAt(ts)},
//	}
//	sess := clustertesting.PrimarySession("appdb", "events", coll)
//	dial := &clustertesting.FakeDialer{
//		Targets: map[string]clustertesting.Target{
//			"localhost:27017": {Session: sess},
//		},
//	}
//	conn, err := cluster.Connect(ctx, clustertesting.TestConfig(), dial.Dial, log)
package testing
