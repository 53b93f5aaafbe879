package maintain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/mongomaint/lib/cluster"
	"github.com/ValentinKolb/mongomaint/lib/config"
	"github.com/ValentinKolb/mongomaint/lib/logging"
)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the error type of failed maintenance stages. The tag names
// the originating stage and doubles as the tag of the failure log
// line.
type Error struct {
	Tag logging.Tag // The stage the failure belongs to
	Msg string      // The error message
	Err error       // The underlying cause (may be nil)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("%s failed", e.Msg)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// newError wraps a stage failure.
func newError(tag logging.Tag, msg string, err error) *Error {
	return &Error{
		Tag: tag,
		Msg: msg,
		Err: err,
	}
}

// TagOf returns the stage tag of err. Connection errors map to
// NETWORK, foreign errors to SYSTEM.
func TagOf(err error) logging.Tag {
	var mErr *Error
	if errors.As(err, &mErr) {
		return mErr.Tag
	}
	var cErr *cluster.Error
	if errors.As(err, &cErr) {
		return logging.TagNetwork
	}
	return logging.TagSystem
}

// --------------------------------------------------------------------------
// Maintenance Result
// --------------------------------------------------------------------------

// Result is the incrementally assembled outcome of one run. On failure
// it carries whatever the completed stages produced; fields of stages
// that never ran keep their zero values.
type Result struct {
	Target     string
	Deleted    int64
	Index      IndexAction
	Compaction CompactionOutcome
	Stats      cluster.CollectionStats
}

// --------------------------------------------------------------------------
// Pipeline
// --------------------------------------------------------------------------

// Pipeline runs the maintenance stages in fixed order over a single
// session: cleanup, index, compaction, stats. It owns connection
// establishment and the exactly-once release of the session.
type Pipeline struct {
	cfg     *config.Config
	dial    cluster.Dialer
	log     logging.ILogger
	cleanup *CleanupExecutor
	index   *IndexMaintainer
	guard   *CompactionGuard
	stats   *StatsReporter
	nowFn   func() time.Time
}

// New creates a Pipeline with the production stage set. The cleanup
// strategy is FieldStrategy over the configured retention field.
func New(cfg *config.Config, dial cluster.Dialer, log logging.ILogger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		dial:    dial,
		log:     log,
		cleanup: NewCleanupExecutor(&FieldStrategy{Field: cfg.RetentionField}, log),
		index:   NewIndexMaintainer(log),
		guard:   NewCompactionGuard(log),
		stats:   NewStatsReporter(log),
		nowFn:   time.Now,
	}
}

// Run executes one maintenance pass. The returned Result is always
// non-nil so callers can export partial outcomes of failed runs. A
// fatal stage failure aborts the run; only the index stage is
// isolated, its failure is logged and the run continues.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{}
	cutoff := p.cfg.Cutoff(p.nowFn())

	p.log.Infof(logging.TagSystem, "Starting maintenance of %s.%s (retention %d days)",
		p.cfg.Database, p.cfg.Collection, p.cfg.RetentionDays)

	conn, err := cluster.Connect(ctx, p.cfg, p.dial, p.log)
	if err != nil {
		return res, p.abort(err)
	}
	res.Target = conn.Target

	// the session is released exactly once, on every exit path
	defer func() {
		if cerr := conn.Close(ctx); cerr != nil {
			p.log.Errorf(logging.TagNetwork, "Closing connection failed: %v", cerr)
		} else {
			p.log.Infof(logging.TagNetwork, "Connection closed")
		}
	}()

	deleted, err := p.cleanup.DeleteExpired(ctx, conn.Coll, cutoff)
	if err != nil {
		return res, p.abort(err)
	}
	res.Deleted = deleted

	action, err := p.index.EnsureIndex(ctx, conn.Coll, p.cfg.RetentionField, p.cfg.IndexOrder)
	if err != nil {
		// a missing index only slows future runs, never abort for it
		p.log.Errorf(logging.TagIndex, "%v", err)
		action = IndexSkipped
	}
	res.Index = action

	outcome, err := p.guard.Compact(ctx, conn.Session, conn.Coll)
	if err != nil {
		return res, p.abort(err)
	}
	res.Compaction = outcome

	stats, err := p.stats.Report(ctx, conn.Coll)
	if err != nil {
		return res, p.abort(err)
	}
	res.Stats = stats

	p.log.Infof(logging.TagSystem, "Maintenance run completed (deleted=%d, index=%s, compaction=%s)",
		res.Deleted, res.Index, res.Compaction)
	return res, nil
}

// abort logs the terminal failure once under its stage tag plus the
// run outcome, then hands the error back for the exit status.
func (p *Pipeline) abort(err error) error {
	p.log.Errorf(TagOf(err), "%v", err)
	p.log.Errorf(logging.TagSystem, "Maintenance run failed")
	return err
}
