package vqleval

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

const progressEvery = 100

// Diagnostic records why a sample did not execute.
type Diagnostic struct {
	Index        int    `json:"index"`
	DBID         string `json:"db_id"`
	Status       Status `json:"status"`
	PredictedSQL string `json:"predicted_sql"`
	ReferenceSQL string `json:"reference_sql"`
	Reason       string `json:"reason"`
}

// Summary aggregates the outcomes of a batch. Accuracies are percentages of
// Total.
type Summary struct {
	Total    int `json:"total"`
	Executed int `json:"executed"`
	Skipped  int `json:"skipped"`
	TimedOut int `json:"timed_out"`
	Errored  int `json:"errored"`

	SQLAccuracy    float64 `json:"sql_accuracy"`
	VisAccuracy    float64 `json:"vis_accuracy"`
	BinAccuracy    float64 `json:"bin_accuracy"`
	AllAccuracy    float64 `json:"all_accuracy"`
	BinSQLAccuracy float64 `json:"bin_sql_accuracy"`

	// SkippedDBIDs lists, sorted and without duplicates, the databases whose
	// target table was missing or empty.
	SkippedDBIDs []string `json:"skipped_db_ids"`
	// Diagnostics holds one record per non-executed outcome, in input order.
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Summarize computes the aggregate figures of outcomes.
func Summarize(outcomes []Outcome) Summary {
	sum := Summary{Total: len(outcomes)}
	var sqlN, visN, binN, allN, binSQLN int
	skipped := map[string]struct{}{}
	for _, o := range outcomes {
		switch o.Status {
		case StatusExecuted:
			sum.Executed++
		case StatusSkipped:
			sum.Skipped++
			skipped[o.DBID] = struct{}{}
		case StatusTimedOut:
			sum.TimedOut++
		default:
			sum.Errored++
		}
		if o.Status != StatusExecuted {
			sum.Diagnostics = append(sum.Diagnostics, Diagnostic{
				Index:        o.Index,
				DBID:         o.DBID,
				Status:       o.Status,
				PredictedSQL: o.PredictedSQL,
				ReferenceSQL: o.ReferenceSQL,
				Reason:       o.Reason,
			})
			continue
		}
		sqlN += b2i(o.SQLMatch)
		visN += b2i(o.VisMatch)
		binN += b2i(o.BinMatch)
		allN += b2i(o.AllMatch)
		binSQLN += b2i(o.BinSQLMatch)
	}

	sum.SQLAccuracy = percent(sqlN, sum.Total)
	sum.VisAccuracy = percent(visN, sum.Total)
	sum.BinAccuracy = percent(binN, sum.Total)
	sum.AllAccuracy = percent(allN, sum.Total)
	sum.BinSQLAccuracy = percent(binSQLN, sum.Total)

	sum.SkippedDBIDs = make([]string, 0, len(skipped))
	for id := range skipped {
		sum.SkippedDBIDs = append(sum.SkippedDBIDs, id)
	}
	sort.Strings(sum.SkippedDBIDs)
	return sum
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Result is the output of one batch.
type Result struct {
	// Outcomes is index-aligned with the input samples.
	Outcomes []Outcome `json:"outcomes"`
	Summary  Summary   `json:"summary"`
}

// Runner evaluates a batch of samples on a bounded pool of workers.
type Runner struct {
	worker  *Worker
	workers int
	logger  log.Logger
	metrics *Metrics

	done atomic.Int64
}

// NewRunner returns a Runner using cfg's pool size, timeout and connection
// options. metrics may be nil.
func NewRunner(cfg Config, logger log.Logger, metrics *Metrics) *Runner {
	logger = orNop(logger)
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{
		worker:  NewWorker(cfg.SampleTimeout, cfg.DBOptions(), logger),
		workers: workers,
		logger:  logger,
		metrics: metrics,
	}
}

// Run evaluates samples. No outcome is reported if ctx is cancelled before
// every sample completes; the returned error then matches ErrInterrupted.
func (r *Runner) Run(ctx context.Context, samples []Sample) (*Result, error) {
	start := time.Now()
	r.done.Store(0)
	level.Info(r.logger).Log("msg", "starting evaluation", "samples", len(samples), "workers", r.workers)

	outcomes := make([]Outcome, len(samples))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, s := range samples {
		if gctx.Err() != nil {
			break
		}
		i, s := i, s
		g.Go(func() error {
			o, err := r.worker.Run(gctx, s)
			if err != nil {
				return err
			}
			outcomes[i] = o
			r.record(o, len(samples))
			return nil
		})
	}
	err := g.Wait()
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		level.Warn(r.logger).Log("msg", "evaluation interrupted", "completed", r.done.Load(), "samples", len(samples), "err", err)
		if errors.Is(err, ErrInterrupted) {
			return nil, err
		}
		return nil, newEvalError(EvalErrorTypeInterrupted, "evaluation interrupted", "", err)
	}

	res := &Result{Outcomes: outcomes, Summary: Summarize(outcomes)}
	level.Info(r.logger).Log(
		"msg", "evaluation finished",
		"samples", res.Summary.Total,
		"executed", res.Summary.Executed,
		"skipped", res.Summary.Skipped,
		"timed_out", res.Summary.TimedOut,
		"errored", res.Summary.Errored,
		"duration", time.Since(start),
	)
	return res, nil
}

func (r *Runner) record(o Outcome, total int) {
	r.metrics.observe(o)
	if o.Status != StatusExecuted {
		level.Warn(r.logger).Log(
			"msg", "sample not executed",
			"index", o.Index,
			"db_id", o.DBID,
			"status", o.Status,
			"reason", o.Reason,
			"predicted_sql", o.PredictedSQL,
			"reference_sql", o.ReferenceSQL,
		)
	}
	if n := r.done.Inc(); n%progressEvery == 0 || int(n) == total {
		level.Debug(r.logger).Log("msg", "progress", "completed", n, "samples", total)
	}
}
