package maintain

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	clustertesting "github.com/ValentinKolb/mongomaint/lib/cluster/testing"
	"github.com/ValentinKolb/mongomaint/lib/logging"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFieldStrategyQuery(t *testing.T) {
	cutoff := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	strategy := &FieldStrategy{Field: "createdAt"}

	got := strategy.Query(cutoff)
	want := bson.D{{Key: "createdAt", Value: bson.D{
		{Key: "$exists", Value: true},
		{Key: "$ne", Value: nil},
		{Key: "$lt", Value: cutoff},
	}}}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected filter %v, got %v", want, got)
	}
}

func TestDeleteExpired(t *testing.T) {
	cutoff := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	coll := &clustertesting.FakeCollection{Docs: []clustertesting.FakeDoc{
		clustertesting.DocAt(cutoff.Add(-time.Hour)),           // expired
		clustertesting.DocAt(cutoff.Add(-30 * 24 * time.Hour)), // long expired
		clustertesting.DocAt(cutoff),                           // exactly at cutoff, kept
		clustertesting.DocAt(cutoff.Add(time.Minute)),          // young
		clustertesting.DocMissing(),                            // field absent
		clustertesting.DocNull(),                               // field null
	}}

	exec := NewCleanupExecutor(&FieldStrategy{Field: "createdAt"}, testLogger())
	deleted, err := exec.DeleteExpired(context.Background(), coll, cutoff)
	if err != nil {
		t.Fatalf("Expected cleanup to succeed, got %v", err)
	}

	if deleted != 2 {
		t.Errorf("Expected 2 deleted documents, got %d", deleted)
	}
	if len(coll.Docs) != 4 {
		t.Errorf("Expected 4 surviving documents, got %d", len(coll.Docs))
	}
	if coll.DeleteCalls != 1 {
		t.Errorf("Expected a single unbatched delete, got %d calls", coll.DeleteCalls)
	}
}

func TestDeleteExpiredZeroMatches(t *testing.T) {
	cutoff := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	coll := &clustertesting.FakeCollection{Docs: []clustertesting.FakeDoc{
		clustertesting.DocAt(cutoff.Add(time.Hour)),
	}}

	exec := NewCleanupExecutor(&FieldStrategy{Field: "createdAt"}, testLogger())
	deleted, err := exec.DeleteExpired(context.Background(), coll, cutoff)
	if err != nil {
		t.Fatalf("Expected zero matches to be a regular outcome, got %v", err)
	}
	if deleted != 0 {
		t.Errorf("Expected 0 deleted documents, got %d", deleted)
	}
}

func TestDeleteExpiredUsesConfiguredField(t *testing.T) {
	cutoff := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	coll := &clustertesting.FakeCollection{}

	exec := NewCleanupExecutor(&FieldStrategy{Field: "expiresAt"}, testLogger())
	if _, err := exec.DeleteExpired(context.Background(), coll, cutoff); err != nil {
		t.Fatalf("Expected cleanup to succeed, got %v", err)
	}

	if len(coll.LastFilter) != 1 || coll.LastFilter[0].Key != "expiresAt" {
		t.Errorf("Expected filter on expiresAt, got %v", coll.LastFilter)
	}
}

func TestDeleteExpiredFailure(t *testing.T) {
	coll := &clustertesting.FakeCollection{DeleteErr: errors.New("connection reset")}

	exec := NewCleanupExecutor(&FieldStrategy{Field: "createdAt"}, testLogger())
	deleted, err := exec.DeleteExpired(context.Background(), coll, time.Now().UTC())
	if err == nil {
		t.Fatal("Expected cleanup to fail")
	}
	if deleted != 0 {
		t.Errorf("Expected no deleted count on failure, got %d", deleted)
	}
	if tag := TagOf(err); tag != logging.TagCleanup {
		t.Errorf("Expected CLEANUP tag, got %s", tag)
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("Expected the cause in the error, got %q", err.Error())
	}
}
