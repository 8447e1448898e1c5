package vqleval

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Pipeline runs a whole evaluation from the files named by its Config.
type Pipeline struct {
	cfg     Config
	logger  log.Logger
	metrics *Metrics
}

// NewPipeline validates cfg and returns a Pipeline. metrics may be nil.
func NewPipeline(cfg Config, logger log.Logger, metrics *Metrics) (*Pipeline, error) {
	cfg = cfg.NormalizedCopy()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg, logger: orNop(logger), metrics: metrics}, nil
}

// Run loads the dataset, evaluates every bound sample and returns the
// report. An interrupt yields no report and an error matching
// ErrInterrupted.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	ds, err := LoadDataset(p.cfg, p.logger)
	if err != nil {
		return nil, err
	}
	level.Info(p.logger).Log(
		"msg", "dataset loaded",
		"records", ds.Records,
		"samples", len(ds.Samples),
		"unextracted", ds.Unextracted,
		"parse_failures", len(ds.ParseFailures),
		"unbound", len(ds.Unbound),
	)

	res, err := NewRunner(p.cfg, p.logger, p.metrics).Run(ctx, ds.Samples)
	if err != nil {
		return nil, err
	}
	return NewReport(ds, res), nil
}
