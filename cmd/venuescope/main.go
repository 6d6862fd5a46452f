package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/venuescope/pkg/analyzer"
	"github.com/umputun/venuescope/pkg/bulk"
	"github.com/umputun/venuescope/pkg/config"
	"github.com/umputun/venuescope/pkg/domain"
	"github.com/umputun/venuescope/pkg/fetch"
	"github.com/umputun/venuescope/pkg/llm"
	"github.com/umputun/venuescope/pkg/parser"
	"github.com/umputun/venuescope/pkg/repository"
	"github.com/umputun/venuescope/pkg/strategy"
	"github.com/umputun/venuescope/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" description:"configuration file, defaults used if not set"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`

	Parse    string `short:"p" long:"parse" description:"parse a single venue url and print the outcome"`
	Strategy string `long:"strategy" description:"strategy tried first in parse mode"`
	Batch    string `short:"b" long:"batch" description:"file with venue urls to parse in bulk"`
	Simple   bool   `long:"simple" description:"batch in fixed chunks without progress or concurrency groups"`
	Export   string `long:"export" choice:"json" choice:"csv" default:"json" description:"batch report format"`
	Out      string `short:"o" long:"out" description:"batch report file, stdout if not set"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	p := flags.NewParser(&opts, flags.Default)
	if _, err := p.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	color.NoColor = color.NoColor || opts.NoColor
	setupLog(opts.Debug)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

// app holds wired services shared by all modes
type app struct {
	cfg          *config.Config
	gateway      *fetch.Gateway
	analyzer     *analyzer.Analyzer
	orchestrator *parser.Orchestrator
	processor    *bulk.Processor
}

func run(ctx context.Context, opts Opts) error {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	if cfg.LLM.APIKey != "" {
		setupLog(opts.Debug, cfg.LLM.APIKey)
	}

	a := newApp(cfg)
	switch {
	case opts.Parse != "":
		return runParse(ctx, a, opts, os.Stdout)
	case opts.Batch != "":
		return runBatch(ctx, a, opts, os.Stdout, os.Stderr)
	default:
		lgr.Printf("[INFO] starting venuescope version %s", revision)
		return runServer(ctx, a, opts)
	}
}

// newApp wires gateway, analyzer, strategies, orchestrator and bulk processor
func newApp(cfg *config.Config) *app {
	gw := fetch.New(fetch.Config{
		Endpoints: cfg.Gateway.Endpoints,
		Timeout:   cfg.Gateway.Timeout,
		UserAgent: cfg.Gateway.UserAgent,
		MaxBytes:  cfg.Gateway.MaxBytes,
	})

	var extractor strategy.EventExtractor // stays nil interface when llm is disabled
	if cfg.LLM.Enabled {
		extractor = llm.NewExtractor(cfg.LLM)
		lgr.Printf("[INFO] llm extraction enabled, model %s", cfg.LLM.Model)
	}

	an := analyzer.New(gw, cfg.Parser.CacheTTL)
	orch := parser.New(parser.Config{
		Fetcher:       gw,
		Analyzer:      an,
		Strategies:    slices.Collect(maps.Values(strategy.All(gw, extractor))),
		CacheTTL:      cfg.Parser.CacheTTL,
		LearningLimit: cfg.Parser.LearningLimit,
		Batch:         parser.BatchOptions{BatchSize: cfg.Batch.SimpleSize, Delay: cfg.Batch.SimpleDelay},
	})
	proc := bulk.NewProcessor(orch, bulk.Options{
		BatchSize:     cfg.Batch.BatchSize,
		Delay:         cfg.Batch.Delay,
		MaxConcurrent: cfg.Batch.MaxConcurrent,
		GroupPause:    cfg.Batch.GroupPause,
	})

	return &app{cfg: cfg, gateway: gw, analyzer: an, orchestrator: orch, processor: proc}
}

// runParse parses one venue and prints the outcome as json
func runParse(ctx context.Context, a *app, opts Opts, w io.Writer) error {
	var out domain.Outcome
	var err error
	if opts.Strategy != "" {
		out, err = a.orchestrator.ParseWithStrategy(ctx, opts.Parse, domain.Strategy(opts.Strategy))
	} else {
		out, err = a.orchestrator.ParseVenue(ctx, opts.Parse)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", opts.Parse, err)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("write outcome: %w", err)
	}
	if out.Error != "" {
		lgr.Printf("[WARN] no events for %s: %s", opts.Parse, out.Error)
	}
	return nil
}

// runBatch parses urls listed in a file, writes the report and prints a summary table to the log writer
func runBatch(ctx context.Context, a *app, opts Opts, stdout, summary io.Writer) error {
	text, err := os.ReadFile(opts.Batch)
	if err != nil {
		return fmt.Errorf("read url list: %w", err)
	}
	list := bulk.ParseURLList(string(text))
	for _, inv := range list.Invalid {
		lgr.Printf("[WARN] skipped %q: %s", inv.URL, inv.Reason)
	}
	if len(list.Valid) == 0 {
		return errors.New("no valid urls in " + opts.Batch)
	}

	var report *domain.Report
	if opts.Simple {
		started := time.Now()
		outs, err := a.orchestrator.ParseBatch(ctx, list.Valid, parser.BatchOptions{})
		if err != nil && len(outs) == 0 {
			return fmt.Errorf("simple batch: %w", err)
		}
		report = bulk.NewReport(list.Valid, outs, started, time.Now())
	} else {
		unsubscribe := a.processor.OnProgress(func(p domain.Progress) {
			lgr.Printf("[INFO] processed %d/%d (%d%%), %d events so far", p.Processed, p.Total, p.Percentage, p.TotalEvents)
		})
		defer unsubscribe()

		if report, err = a.processor.Run(ctx, list.Valid, bulk.Options{}); err != nil {
			return fmt.Errorf("batch run: %w", err)
		}
	}

	data, err := bulk.Export(report, opts.Export)
	if err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, data, 0o600); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		lgr.Printf("[INFO] report %s written to %s", report.ID, opts.Out)
	} else if _, err := stdout.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	_, err = io.WriteString(summary, renderSummary(report)+"\n")
	return err
}

// runServer starts the http api with run history stored in sqlite
func runServer(ctx context.Context, a *app, opts Opts) error {
	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             a.cfg.Database.DSN,
		MaxOpenConns:    a.cfg.Database.MaxOpenConns,
		MaxIdleConns:    a.cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(a.cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			lgr.Printf("[WARN] can't close database: %v", err)
		}
	}()

	srv := server.New(server.Deps{
		Config:     a.cfg,
		Parser:     a.orchestrator,
		Analyzer:   a.analyzer,
		Batch:      a.processor,
		Runs:       repos.Run,
		Gateway:    a.gateway,
		Collectors: a.gateway.Collectors(),
	}, revision, opts.Debug)

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	lgr.Print("[INFO] shutdown complete")
	return nil
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
