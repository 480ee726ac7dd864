/*
	Copyright (c) 2015-2016 Christopher Young
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	redplot.go: Render the RED queue figures of an ns-3 simulation run.
*/

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/b3nn0/redplot/config"
	"github.com/b3nn0/redplot/logging"
)

type options struct {
	config    string
	figure    string
	data      string
	out       string
	view      string
	addr      string
	strict    bool
	archive   string
	metrics   string
	dump      string
	logLevel  string
	logFormat string
	refresh   time.Duration
}

func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	o := &options{}
	fs.StringVar(&o.config, "config", "", "YAML config file (default $"+config.PathEnvVar+" or "+config.DefaultPath+")")
	fs.StringVar(&o.figure, "figure", "", "Figure layout: single-gate or dual-gate")
	fs.StringVar(&o.data, "data", "", "Directory holding the .plot files")
	fs.StringVar(&o.out, "o", "", "Output chart path (.png, .jpg, .tif, .svg, .pdf)")
	fs.StringVar(&o.view, "view", "", "Show the chart when done: none, http or tui")
	fs.StringVar(&o.addr, "addr", "", "Listen address for -view http")
	fs.BoolVar(&o.strict, "strict", false, "Fail on out-of-order timestamps and queue/average count mismatches")
	fs.StringVar(&o.archive, "archive", "", "SQLite file to archive the plotted series into")
	fs.StringVar(&o.metrics, "metrics", "", "node_exporter textfile to write run metrics to")
	fs.StringVar(&o.dump, "dump", "", "Write the plotted series as JSON to this file")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	fs.StringVar(&o.logFormat, "log-format", "", "Log format: console or json")
	fs.DurationVar(&o.refresh, "refresh", 0, "Browser reload interval for -view http")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return o, nil
}

// apply copies the flags that were given on the command line over cfg.
func (o *options) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "figure":
			cfg.Figure = o.figure
		case "data":
			cfg.DataDir = o.data
		case "o":
			cfg.Output.Path = o.out
		case "view":
			cfg.View.Mode = o.view
		case "addr":
			cfg.View.Addr = o.addr
		case "strict":
			cfg.Strict = o.strict
		case "archive":
			cfg.Archive.Path = o.archive
		case "metrics":
			cfg.Metrics.Textfile = o.metrics
		case "dump":
			cfg.Output.DumpJSON = o.dump
		case "log-level":
			cfg.Logging.Level = o.logLevel
		case "log-format":
			cfg.Logging.Format = o.logFormat
		case "refresh":
			cfg.View.Refresh = o.refresh
		}
	})
}

func loadConfig(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("redplot", flag.ContinueOnError)
	o, err := parseFlags(fs, args)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Read(o.config)
	if err != nil {
		return nil, err
	}
	o.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err == flag.ErrHelp {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "redplot: %s\n", err)
		os.Exit(2)
	}
	if err := logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}); err != nil {
		fmt.Fprintf(os.Stderr, "redplot: %s\n", err)
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		logging.Error().Err(err).Str("figure", cfg.Figure).Bool("strict", cfg.Strict).Msg("redplot failed")
		os.Exit(1)
	}
}
