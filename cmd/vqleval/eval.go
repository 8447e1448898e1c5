package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/go-kit/log/level"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/deepvis/vqleval"
)

// stringFlag is a flag value applied on top of the config file only when
// given on the command line.
type stringFlag struct {
	value string
	set   bool
}

type intFlag struct {
	value int
	set   bool
}

type durationFlag struct {
	value time.Duration
	set   bool
}

// evalCommand runs a full batch evaluation.
type evalCommand struct {
	configFile string

	responses   stringFlag
	groundTruth stringFlag
	databaseDir stringFlag
	databaseExt stringFlag
	marker      stringFlag
	logLevel    stringFlag
	workers     intFlag
	timeout     durationFlag

	reportFile   string
	reportFormat string
	metricsFile  string
	noColor      bool
}

func (cmd *evalCommand) config() (vqleval.Config, error) {
	cfg := vqleval.DefaultConfig()
	if cmd.configFile != "" {
		var err error
		if cfg, err = vqleval.LoadConfig(cmd.configFile); err != nil {
			return cfg, err
		}
	}
	for _, f := range []struct {
		flag stringFlag
		dst  *string
	}{
		{cmd.responses, &cfg.ResponsesFile},
		{cmd.groundTruth, &cfg.GroundTruthFile},
		{cmd.databaseDir, &cfg.DatabaseDir},
		{cmd.databaseExt, &cfg.DatabaseExt},
		{cmd.marker, &cfg.ReferenceMarker},
		{cmd.logLevel, &cfg.LogLevel},
	} {
		if f.flag.set {
			*f.dst = f.flag.value
		}
	}
	if cmd.workers.set {
		cfg.Workers = cmd.workers.value
	}
	if cmd.timeout.set {
		cfg.SampleTimeout = cmd.timeout.value
	}
	return cfg, cfg.Validate()
}

func (cmd *evalCommand) run(_ *kingpin.ParseContext) error {
	cfg, err := cmd.config()
	if err != nil {
		exitWithErr(err)
	}
	logger := vqleval.NewLogger(os.Stderr, cfg.LogLevel)

	reg := prometheus.NewRegistry()
	pipeline, err := vqleval.NewPipeline(cfg, logger, vqleval.NewMetrics(reg))
	if err != nil {
		exitWithErr(err)
	}

	var (
		g      run.Group
		report *vqleval.Report
	)
	{
		ctx, cancel := context.WithCancel(context.Background())
		g.Add(func() error {
			var err error
			report, err = pipeline.Run(ctx)
			return err
		}, func(error) {
			cancel()
		})
	}
	g.Add(run.SignalHandler(context.Background(), os.Interrupt, syscall.SIGTERM))

	if err := g.Run(); err != nil {
		if errors.Is(err, run.ErrSignal) || errors.Is(err, vqleval.ErrInterrupted) {
			level.Warn(logger).Log("msg", "evaluation aborted", "err", err)
			os.Exit(exitInterrupted)
		}
		exitWithErr(err)
	}

	if err := cmd.writeReport(report); err != nil {
		exitWithErr(err)
	}
	if cmd.metricsFile != "" {
		if err := prometheus.WriteToTextfile(cmd.metricsFile, reg); err != nil {
			exitWithErr(fmt.Errorf("failed to write metrics: %w", err))
		}
	}
	return nil
}

func (cmd *evalCommand) writeReport(report *vqleval.Report) error {
	if err := report.WriteText(os.Stdout, !cmd.noColor && !color.NoColor); err != nil {
		return err
	}
	if cmd.reportFile == "" {
		return nil
	}

	f, err := os.Create(cmd.reportFile)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if cmd.reportFormat == "json" {
		err = report.WriteJSON(f)
	} else {
		err = report.WriteText(f, false)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func addEvalCommand(app *kingpin.Application) {
	cmd := &evalCommand{}
	eval := app.Command("eval", "Evaluate a batch of generated responses.").Default().Action(cmd.run)

	eval.Flag("config.file", "YAML configuration file. Flags override its values.").StringVar(&cmd.configFile)
	eval.Flag("responses", "JSON array of generated responses.").IsSetByUser(&cmd.responses.set).StringVar(&cmd.responses.value)
	eval.Flag("ground-truth", "JSON array of ground-truth records.").IsSetByUser(&cmd.groundTruth.set).StringVar(&cmd.groundTruth.value)
	eval.Flag("database-dir", "Directory holding one sub-directory per db_id.").IsSetByUser(&cmd.databaseDir.set).StringVar(&cmd.databaseDir.value)
	eval.Flag("database-ext", "Database file extension.").IsSetByUser(&cmd.databaseExt.set).StringVar(&cmd.databaseExt.value)
	eval.Flag("marker", "Marker preceding the reference statement.").IsSetByUser(&cmd.marker.set).StringVar(&cmd.marker.value)
	eval.Flag("log.level", "Only log messages with the given severity or above. One of: [debug, info, warn, error]").IsSetByUser(&cmd.logLevel.set).StringVar(&cmd.logLevel.value)
	eval.Flag("workers", "Number of samples evaluated in parallel.").IsSetByUser(&cmd.workers.set).IntVar(&cmd.workers.value)
	eval.Flag("timeout", "Per-sample evaluation deadline.").IsSetByUser(&cmd.timeout.set).DurationVar(&cmd.timeout.value)

	eval.Flag("report-file", "Also write the report to this file.").StringVar(&cmd.reportFile)
	eval.Flag("report-format", "Format of --report-file.").Default("json").EnumVar(&cmd.reportFormat, "json", "text")
	eval.Flag("metrics-file", "Write evaluation metrics in the Prometheus text format to this file.").StringVar(&cmd.metricsFile)
	eval.Flag("no-color", "Disable colored output.").BoolVar(&cmd.noColor)
}
