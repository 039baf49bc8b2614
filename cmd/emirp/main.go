package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"emirps/internal/config"
	"emirps/internal/emirp"
	"emirps/internal/primes"
)

type options struct {
	configPath string
	limitsFile string
	output     string
	limit      int64
	workers    int
	logLevel   string

	// names of the flags given on the command line
	set map[string]bool
}

func parseFlags(args []string) (options, error) {
	var opts options

	fs := flag.NewFlagSet("emirp", flag.ContinueOnError)
	fs.Int64Var(&opts.limit, "limit", 200000, "Upper bound of the emirp search")
	fs.IntVar(&opts.workers, "workers", 0, "Number of worker goroutines (default: number of CPUs)")
	fs.StringVar(&opts.limitsFile, "limits-file", "", "File with one limit per line, searched against a shared prime cache")
	fs.StringVar(&opts.output, "output", "", "Write the emirps of the largest limit to this file")
	fs.StringVar(&opts.configPath, "config", "", "Optional config file (yaml, json or toml)")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	return opts, nil
}

// apply overrides cfg with the flags that were given explicitly.
func (o options) apply(cfg *config.Config) {
	if o.set["limit"] {
		cfg.Limit = o.limit
	}
	if o.set["workers"] {
		cfg.Workers = o.workers
	}
	if o.set["log-level"] {
		cfg.LogLevel = o.logLevel
	}
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	if err := run(opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, out, diag io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	opts.apply(&cfg)

	logger := config.NewLogger(diag, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	limits, err := resolveLimits(cfg.Limit, opts.limitsFile)
	if err != nil {
		return err
	}
	logger.Debug("starting emirp search", "limits", len(limits), "workers", cfg.Workers)

	// Track start time for elapsed time reporting
	programStart := time.Now()

	// Progress callback that shows elapsed time
	progressCallback := func(msg string) {
		if logger.Enabled(context.Background(), slog.LevelDebug) {
			fmt.Fprintf(diag, "[%s] %s\n", formatElapsed(time.Since(programStart)), msg)
		}
	}

	finder := emirp.New(
		primes.New(primes.WithWorkers(cfg.Workers)),
		emirp.WithWorkers(cfg.Workers),
		emirp.WithProgress(progressCallback),
	)

	for _, limit := range limits {
		start := time.Now()
		summary, err := finder.Find(limit)
		if err != nil {
			return fmt.Errorf("limit %d: %w", limit, err)
		}
		logger.Debug("search complete", "limit", limit, "elapsed", time.Since(start).Round(time.Millisecond))
		fmt.Fprintln(out, formatReport(limit, summary))
	}

	if opts.output == "" {
		return nil
	}

	largest := slices.Max(limits)
	progressCallback("Writing output file...")
	found, err := finder.Emirps(largest)
	if err != nil {
		return fmt.Errorf("limit %d: %w", largest, err)
	}
	if err := emirp.WriteTextFile(found, opts.output); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	logger.Info("wrote emirps", "count", len(found), "limit", largest, "output", opts.output)

	return nil
}

// resolveLimits returns the limits to search: the contents of limitsFile when
// given, otherwise the single configured limit. LoadLimits rejects file
// limits below 2 with their line number.
func resolveLimits(limit int64, limitsFile string) ([]int64, error) {
	if limitsFile == "" {
		return []int64{limit}, nil
	}

	limits, err := emirp.LoadLimits(limitsFile)
	if err != nil {
		return nil, err
	}
	if len(limits) == 0 {
		return nil, fmt.Errorf("no limits found in %s", limitsFile)
	}
	return limits, nil
}

func formatReport(limit int64, s emirp.Summary) string {
	return fmt.Sprintf("For given range: 1-%d, there is %d emirps found. Max emirp is %d and sum of all found emirps is %d.",
		limit, s.Count, s.Max, s.Sum)
}

// formatElapsed formats a duration into a human-readable elapsed time string
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes > 0 {
		return fmt.Sprintf("%dm%02ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
