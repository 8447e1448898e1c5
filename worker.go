package vqleval

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/deepvis/vqleval/internal/dbfile"
	"github.com/deepvis/vqleval/internal/schema"
)

// EvalFunc evaluates one sample under ctx.
type EvalFunc func(ctx context.Context, s Sample) Outcome

// A Worker evaluates one sample at a time under a wall-clock deadline. Every
// call opens its own database connection and closes it before returning.
type Worker struct {
	timeout time.Duration
	opts    dbfile.Options
	logger  log.Logger

	// Used in tests.
	evalFunc EvalFunc
}

// NewWorker returns a Worker. A non-positive timeout means 30s.
func NewWorker(timeout time.Duration, opts dbfile.Options, logger log.Logger) *Worker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	w := &Worker{
		timeout: timeout,
		opts:    opts,
		logger:  orNop(logger),
	}
	w.evalFunc = w.evaluate
	return w
}

// Run evaluates s. When the deadline expires first the evaluation is
// abandoned and a TimedOut outcome is returned. Run only returns an error,
// matching ErrInterrupted, when ctx itself is cancelled.
func (w *Worker) Run(ctx context.Context, s Sample) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, newEvalError(EvalErrorTypeInterrupted, "evaluation interrupted", s.DBID, err)
	}

	start := time.Now()
	tctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	done := make(chan Outcome, 1)
	go w.doJob(tctx, s, done)

	var o Outcome
	select {
	case o = <-done:
	case <-tctx.Done():
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, newEvalError(EvalErrorTypeInterrupted, "evaluation interrupted", s.DBID, err)
	}
	// An evaluation that observed the expired deadline is a timeout even if
	// it managed to report back.
	if tctx.Err() != nil {
		o = failedOutcome(s, newEvalError(EvalErrorTypeTimeout,
			fmt.Sprintf("sample timed out after %s", w.timeout), s.DBID, nil))
	}
	o.Duration = time.Since(start)
	return o, nil
}

func (w *Worker) doJob(ctx context.Context, s Sample, done chan<- Outcome) {
	defer func() {
		if r := recover(); r != nil {
			level.Error(w.logger).Log("msg", "recovered panic during evaluation", "index", s.Index, "db_id", s.DBID, "panic", r)
			done <- failedOutcome(s, newEvalError(EvalErrorTypeUnknown,
				fmt.Sprintf("panic during evaluation: %v", r), s.DBID, nil))
		}
	}()
	done <- w.evalFunc(ctx, s)
}

// evaluate opens the sample's database, canonicalizes both queries against
// its schema and scores them.
func (w *Worker) evaluate(ctx context.Context, s Sample) Outcome {
	db, err := dbfile.Open(s.DBPath, w.opts)
	if err != nil {
		return failedOutcome(s, newEvalError(EvalErrorTypeExecution, "opening database", s.DBID, err))
	}
	defer db.Close()

	sch, err := schema.Load(ctx, db)
	if err != nil {
		return failedOutcome(s, execError(ctx, s, "loading schema", err))
	}

	s.Predicted.SQL = schema.Canonicalize(s.Predicted.SQL, sch)
	s.Reference.SQL = schema.Canonicalize(s.Reference.SQL, sch)
	return NewEvaluator(db, sch).Evaluate(ctx, s)
}
