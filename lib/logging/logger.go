package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Tags and Levels
// --------------------------------------------------------------------------

// Tag labels a log line with the pipeline stage it originates from.
type Tag string

const (
	TagNetwork  Tag = "NETWORK"  // connection establishment and teardown
	TagCleanup  Tag = "CLEANUP"  // document deletion
	TagIndex    Tag = "INDEX"    // index maintenance
	TagOptimize Tag = "OPTIMIZE" // storage compaction
	TagStats    Tag = "STATS"    // collection statistics
	TagSystem   Tag = "SYSTEM"   // run lifecycle and everything else
)

// Level controls which lines are emitted. Higher levels are more
// verbose.
type Level int

const (
	LevelError Level = iota
	LevelInfo
	LevelDebug
)

// ParseLevel converts a string level to a Level. "warn" is accepted as
// an alias for info since the line contract has no warning stream.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info", "warn", "warning":
		return LevelInfo, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s. must be one of debug, info, error", level)
	}
}

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ILogger is the logging interface handed to the pipeline components.
type ILogger interface {
	// Debugf logs fine-grained diagnostics, suppressed unless the
	// level is debug.
	Debugf(tag Tag, format string, args ...interface{})
	// Infof logs regular progress lines to the standard stream.
	Infof(tag Tag, format string, args ...interface{})
	// Errorf logs failures to the error stream.
	Errorf(tag Tag, format string, args ...interface{})
}

// --------------------------------------------------------------------------
// Stage Logger
// --------------------------------------------------------------------------

// timestampLayout is the fixed second-resolution layout of every line.
const timestampLayout = "2006-01-02T15:04:05"

// stageLogger implements ILogger with the line format
// "<timestamp> [<TAG>] <message>".
type stageLogger struct {
	level Level
	out   *log.Logger
	err   *log.Logger
	nowFn func() time.Time
}

// New creates a logger against the process streams.
func New(level Level) ILogger {
	return NewWithWriters(level, os.Stdout, os.Stderr)
}

// NewWithWriters creates a logger against arbitrary writers. Used by
// tests to capture output.
func NewWithWriters(level Level, out, err io.Writer) ILogger {
	return &stageLogger{
		level: level,
		out:   log.New(out, "", 0),
		err:   log.New(err, "", 0),
		nowFn: time.Now,
	}
}

func (l *stageLogger) Debugf(tag Tag, format string, args ...interface{}) {
	if l.level >= LevelDebug {
		l.log(l.out, tag, format, args...)
	}
}

func (l *stageLogger) Infof(tag Tag, format string, args ...interface{}) {
	if l.level >= LevelInfo {
		l.log(l.out, tag, format, args...)
	}
}

func (l *stageLogger) Errorf(tag Tag, format string, args ...interface{}) {
	if l.level >= LevelError {
		l.log(l.err, tag, format, args...)
	}
}

// log formats and writes a log line. this internal helper is used by the
// public methods
func (l *stageLogger) log(target *log.Logger, tag Tag, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	target.Printf("%s [%s] %s", l.nowFn().UTC().Format(timestampLayout), tag, message)
}
