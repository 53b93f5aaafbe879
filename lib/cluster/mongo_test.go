package cluster

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ValentinKolb/mongomaint/lib/config"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsURITarget(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"mongodb://localhost:27017", true},
		{"mongodb+srv://cluster0.example.net", true},
		{"localhost:27017", false},
		{"10.0.0.1:27017", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := isURITarget(tc.target); got != tc.want {
			t.Errorf("Expected isURITarget(%q) = %v, got %v", tc.target, tc.want, got)
		}
	}
}

func TestClientOptionsTimeouts(t *testing.T) {
	cfg := &config.Config{
		AppName:                "mongomaint",
		ConnectTimeout:         5 * time.Second,
		SocketTimeout:          30 * time.Second,
		ServerSelectionTimeout: 20 * time.Second,
	}

	opts := clientOptions(cfg, "localhost:27017")
	if opts.ConnectTimeout == nil || *opts.ConnectTimeout != 5*time.Second {
		t.Errorf("Expected connect timeout 5s, got %v", opts.ConnectTimeout)
	}
	if opts.SocketTimeout == nil || *opts.SocketTimeout != 30*time.Second {
		t.Errorf("Expected socket timeout 30s, got %v", opts.SocketTimeout)
	}
	if opts.ServerSelectionTimeout == nil || *opts.ServerSelectionTimeout != 20*time.Second {
		t.Errorf("Expected server selection timeout 20s, got %v", opts.ServerSelectionTimeout)
	}

	// zero keeps the driver defaults
	opts = clientOptions(&config.Config{AppName: "mongomaint"}, "localhost:27017")
	if opts.ConnectTimeout != nil {
		t.Errorf("Expected connect timeout left unset, got %v", *opts.ConnectTimeout)
	}
	if opts.SocketTimeout != nil {
		t.Errorf("Expected socket timeout left unset, got %v", *opts.SocketTimeout)
	}
	if opts.ServerSelectionTimeout != nil {
		t.Errorf("Expected server selection timeout left unset, got %v", *opts.ServerSelectionTimeout)
	}
}

func TestClientOptionsTargetAssembly(t *testing.T) {
	cfg := &config.Config{
		AppName:          "mongomaint",
		DirectConnection: true,
		Username:         "admin",
		Password:         "secret",
		AuthSource:       "admin",
	}

	opts := clientOptions(cfg, "alpha:27017")
	if len(opts.Hosts) != 1 || opts.Hosts[0] != "alpha:27017" {
		t.Errorf("Expected single host alpha:27017, got %v", opts.Hosts)
	}
	if opts.Direct == nil || !*opts.Direct {
		t.Error("Expected a direct connection")
	}
	if opts.Auth == nil || opts.Auth.Username != "admin" || opts.Auth.AuthSource != "admin" {
		t.Errorf("Expected credentials with auth source, got %+v", opts.Auth)
	}

	// without a username no credentials are configured
	opts = clientOptions(&config.Config{AppName: "mongomaint"}, "alpha:27017")
	if opts.Auth != nil {
		t.Errorf("Expected no credentials, got %+v", opts.Auth)
	}

	// a URI target is applied as-is
	opts = clientOptions(&config.Config{AppName: "mongomaint"}, "mongodb://beta:27018/appdb")
	if len(opts.Hosts) != 1 || opts.Hosts[0] != "beta:27018" {
		t.Errorf("Expected host from URI, got %v", opts.Hosts)
	}
}

func TestAsInt64(t *testing.T) {
	tests := []struct {
		in   interface{}
		want int64
	}{
		{int32(42), 42},
		{int64(1 << 40), 1 << 40},
		{float64(1048576), 1048576},
		{nil, 0},
		{"not a number", 0},
	}

	for _, tc := range tests {
		if got := asInt64(tc.in); got != tc.want {
			t.Errorf("Expected asInt64(%v) = %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestIsIndexConflict(t *testing.T) {
	conflict := mongo.CommandError{Code: 85, Message: "Index with name: createdAt_1 already exists"}
	if !IsIndexConflict(conflict) {
		t.Error("Expected code 85 to count as index conflict")
	}
	if !IsIndexConflict(mongo.CommandError{Code: 86}) {
		t.Error("Expected code 86 to count as index conflict")
	}
	if !IsIndexConflict(mongo.CommandError{Code: 68}) {
		t.Error("Expected code 68 to count as index conflict")
	}

	// classification must survive wrapping
	if !IsIndexConflict(fmt.Errorf("creating index: %w", conflict)) {
		t.Error("Expected a wrapped conflict to be recognized")
	}

	if IsIndexConflict(mongo.CommandError{Code: 13}) {
		t.Error("Expected an unauthorized error to stay fatal")
	}
	if IsIndexConflict(errors.New("disk full")) {
		t.Error("Expected a plain error to stay fatal")
	}
	if IsIndexConflict(nil) {
		t.Error("Expected nil to not be a conflict")
	}
}

func TestErrorRendering(t *testing.T) {
	err := NewError(ErrCodePrimaryNotFound, "alpha:27017 is not a writable primary", nil)
	want := "cluster error (PrimaryNotFoundError): alpha:27017 is not a writable primary"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}

	cause := errors.New("connection refused")
	err = NewError(ErrCodeNetwork, "connection to alpha:27017 failed", cause)
	if !errors.Is(err, cause) {
		t.Error("Expected the cause to be reachable through errors.Is")
	}
	if CodeOf(err) != ErrCodeNetwork {
		t.Errorf("Expected ErrCodeNetwork, got %d", CodeOf(err))
	}
	if CodeOf(errors.New("foreign")) != ErrCodeUnknown {
		t.Error("Expected foreign errors to classify as unknown")
	}
}
