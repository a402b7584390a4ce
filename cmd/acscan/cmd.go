package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/coregx/acscan/acerr"
	"github.com/coregx/acscan/automaton"
	"github.com/coregx/acscan/config"
	"github.com/coregx/acscan/dictionary"
	"github.com/coregx/acscan/internal/cpufeat"
	"github.com/coregx/acscan/matcher"
	"github.com/coregx/acscan/pipeline"
	"github.com/coregx/acscan/scanner"
)

// queueCapacity bounds each per-worker queue's backlog (spec §5 "bounded
// FIFO"): enough packets in flight to smooth out one slow scanner without
// letting the reader run arbitrarily far ahead.
const queueCapacity = 256

func newRootCommand() *cobra.Command {
	cfg := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "acscan <automaton-file> <capture-file>",
		Short: "Scan a packet capture against a compiled Aho-Corasick automaton",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.AutomatonPath = args[0]
			cfg.CapturePath = args[1]
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.DictPath, "dict", "", "dictionary file to skip previously-seen chunks")
	flags.IntVar(&cfg.DictWidth, "dict-width", 0, "chunk width the dictionary file was built with")
	flags.IntVar(&cfg.Threads, "threads", 1, "number of scanner workers")
	flags.BoolVar(&cfg.Verbose, "verbose", false, "print every match found")
	flags.BoolVar(&cfg.Timing, "timing", false, "print the elapsed-time and throughput summary")

	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

	automatonFile, err := os.Open(cfg.AutomatonPath)
	if err != nil {
		return &acerr.LoadError{Path: cfg.AutomatonPath, Err: err}
	}
	defer automatonFile.Close()

	m, err := automaton.Load(automatonFile)
	if err != nil {
		return err
	}
	if err := cfg.ValidateAgainstMachine(m.AllTableEncoded); err != nil {
		return err
	}

	var dict *dictionary.Dictionary
	if cfg.DictPath != "" {
		dictFile, err := os.Open(cfg.DictPath)
		if err != nil {
			return &acerr.LoadError{Path: cfg.DictPath, Err: err}
		}
		defer dictFile.Close()
		dict, err = dictionary.Load(dictFile)
		if err != nil {
			return err
		}
		if dict.Width() != cfg.DictWidth {
			return &acerr.ConfigError{
				Flag:    "dict-width",
				Message: fmt.Sprintf("is %d but the dictionary file was built with width %d", cfg.DictWidth, dict.Width()),
			}
		}
		logger.Info("loaded dictionary", "path", cfg.DictPath, "entries", dict.Len(), "width", dict.Width())
	}

	captureFile, err := os.Open(cfg.CapturePath)
	if err != nil {
		return &acerr.LoadError{Path: cfg.CapturePath, Err: err}
	}
	defer captureFile.Close()

	runCtx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	queues := make([]*pipeline.Queue, cfg.Threads)
	for i := range queues {
		queues[i] = pipeline.NewQueue(queueCapacity)
	}

	reader := pipeline.NewReader(queues)
	start := time.Now()
	reader.Start(captureFile)

	scanners := make([]*scanner.Scanner, cfg.Threads)
	for i := range scanners {
		sc := scanner.NewScanner(i, m, queues[i], dict)
		if cfg.Verbose {
			id := i
			sc.SetHitSink(func(h matcher.Hit) {
				logger.Info("match", "scanner", id, "pattern", string(h.Pattern), "offset", h.Offset)
			})
		}
		sc.Start(runCtx)
		scanners[i] = sc
	}

	if err := reader.Join(); err != nil {
		return err
	}
	for _, sc := range scanners {
		sc.Join()
	}
	elapsed := time.Since(start)

	stats := make([]scanner.Stats, len(scanners))
	for i, sc := range scanners {
		stats[i] = sc.Stats()
	}
	total := scanner.Sum(stats)

	if cfg.Timing {
		bytes := reader.TotalBytes()
		bytesWithHeaders := reader.TotalBytesWithHeaders()
		rate := megabitsPerSecond(bytes, elapsed)
		rateWithHeaders := megabitsPerSecond(bytesWithHeaders, elapsed)
		fmt.Printf("Time(micros)\tData(No H)\tData(w/ H)\tRate(No H) Mb/s\tRate(w/ H) Mb/s\n")
		fmt.Printf("%8d\t%9d\t%9d\t%5.4f\t%5.4f\n",
			elapsed.Microseconds(), bytes, bytesWithHeaders, rate, rateWithHeaders)
		fmt.Printf("HW popcount: %v\n", cpufeat.HasHardwarePopcount())
	}

	for i, sc := range scanners {
		s := sc.Stats()
		pct := 0.0
		if s.BloomChecks > 0 {
			pct = 100 * float64(s.BloomPositives) / float64(s.BloomChecks)
		}
		gatePct := 0.0
		if s.RollingHashChecks > 0 {
			gatePct = 100 * float64(s.BloomChecks) / float64(s.RollingHashChecks)
		}
		logger.Info("scanner summary",
			"scanner", i,
			"packets", s.Packets,
			"bytes", s.Bytes,
			"matches", s.Matches,
			"bytes_skipped", s.BytesSkipped,
			"rolling_hash_gate_pct", fmt.Sprintf("%.3f", gatePct),
			"bloom_positive_pct", fmt.Sprintf("%.3f", pct),
		)
	}
	failPercent := 0.0
	if totalTransitions := total.Transitions.Gotos + total.Transitions.Failures; totalTransitions > 0 {
		failPercent = 100 * float64(total.Transitions.Failures) / float64(totalTransitions)
	}
	logger.Info("totals",
		"matches", total.Matches,
		"gotos", total.Transitions.Gotos,
		"failures", total.Transitions.Failures,
		"fail_percent", fmt.Sprintf("%.4f", failPercent),
	)

	return nil
}

func megabitsPerSecond(bytes uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(bytes*8) / 1e6 / elapsed.Seconds()
}
