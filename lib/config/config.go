package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// Config holds every setting of a single maintenance run.
type Config struct {
	// URI is a full MongoDB connection string. When set it takes
	// precedence over Hosts and the driver performs server selection
	// itself.
	URI string
	// Hosts is the ordered list of host:port targets tried during
	// connection establishment. The first target passing all checks
	// wins.
	Hosts []string
	// Username and Password authenticate the session. Authentication
	// is only configured when Username is non-empty.
	Username string
	Password string
	// AuthSource is the database to authenticate against. Empty means
	// the driver default.
	AuthSource string
	// DirectConnection dials each host directly instead of running
	// the driver's topology discovery.
	DirectConnection bool
	// AppName is reported to the server in the connection handshake.
	AppName string

	// Database and Collection name the maintenance target. The
	// collection must exist, it is never created.
	Database   string
	Collection string

	// RetentionField is the timestamp field deciding document age.
	RetentionField string
	// RetentionDays is the age threshold. Documents whose retention
	// field lies more than RetentionDays fixed 24h periods in the
	// past are deleted.
	RetentionDays int
	// IndexOrder is the sort order of the retention index, 1 for
	// ascending and -1 for descending.
	IndexOrder int32
	// RequirePrimary only accepts hosts reporting themselves as
	// writable primary.
	RequirePrimary bool

	// Driver timeouts. Zero values leave the driver defaults in place.
	ConnectTimeout         time.Duration
	SocketTimeout          time.Duration
	ServerSelectionTimeout time.Duration

	// LogLevel is the level at which logs will be output (debug,
	// info, error).
	LogLevel string
	// MetricsFile is the path the run metrics are written to in
	// Prometheus text format. Empty disables the export.
	MetricsFile string
}

// ParseHostList splits a comma-separated host list into normalized
// host:port targets. Entries without a port get defaultPort appended,
// whitespace and empty entries are dropped.
func ParseHostList(raw string, defaultPort int) []string {
	var hosts []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(entry); err != nil {
			// a bracketed IPv6 entry without a port, JoinHostPort
			// brackets the host itself
			if strings.HasPrefix(entry, "[") && strings.HasSuffix(entry, "]") {
				entry = entry[1 : len(entry)-1]
			}
			entry = net.JoinHostPort(entry, strconv.Itoa(defaultPort))
		}
		hosts = append(hosts, entry)
	}
	return hosts
}

// Targets returns the connection targets in the order they are tried.
// A configured URI replaces the host list with a single target.
func (c *Config) Targets() []string {
	if c.URI != "" {
		return []string{c.URI}
	}
	return c.Hosts
}

// Cutoff returns the deletion threshold for the given reference time.
// Days are fixed 24 hour periods and the result is always UTC. The
// offset is applied as calendar days (identical in UTC, which has no
// DST): a Duration product overflows int64 above ~106751 days and
// would place the cutoff in the future.
func (c *Config) Cutoff(now time.Time) time.Time {
	return now.UTC().AddDate(0, 0, -c.RetentionDays)
}

// Validate checks the configuration for a runnable maintenance pass.
func (c *Config) Validate() error {
	if c.URI == "" && len(c.Hosts) == 0 {
		return fmt.Errorf("no connection target configured (set a host list or a URI)")
	}
	if c.Database == "" {
		return fmt.Errorf("database name must not be empty")
	}
	if c.Collection == "" {
		return fmt.Errorf("collection name must not be empty")
	}
	if c.RetentionField == "" {
		return fmt.Errorf("retention field must not be empty")
	}
	if c.RetentionDays < 1 {
		// zero would purge every document carrying the field
		return fmt.Errorf("retention days must be at least 1, got %d", c.RetentionDays)
	}
	if c.IndexOrder != 1 && c.IndexOrder != -1 {
		return fmt.Errorf("index order must be 1 or -1, got %d", c.IndexOrder)
	}
	if c.ConnectTimeout < 0 || c.SocketTimeout < 0 || c.ServerSelectionTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}
