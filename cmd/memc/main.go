// memc snapshots per-process virtual memory maps to JSON.
//
// See `memc -help` for usage details.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"

	"github.com/hupe1980/procmem"
	"github.com/hupe1980/procmem/procfs"
	"github.com/hupe1980/procmem/region"
)

const version = "1.0.0"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		all          = flag.Bool("all", false, "snapshot all processes on the system")
		smaps        = flag.Bool("smaps", false, "collect detailed per-region stats from smaps (slower)")
		skipKernel   = flag.Bool("skip-kernel", false, "with -all, skip kernel threads that have no user-space mappings")
		compact      = flag.Bool("compact", false, "emit compact JSON instead of indented")
		intervalMS   = flag.Int("interval", 1000, "sampling interval in milliseconds")
		count        = flag.Int("count", 1, "number of samples to take (1 = single, 0 = continuous)")
		maxSnapshots = flag.Int("max-snapshots", 0, "bound on in-memory snapshot history (0 = unbounded)")
		procRoot     = flag.String("proc-root", "", "alternate proc mount point (defaults to $HOST_PROC or /proc)")
		configPath   = flag.String("config", "", "YAML config file (flags override file values)")
		logLevel     = flag.String("log-level", "warn", "log level: debug, info, warn, error")
		showVersion  = flag.Bool("version", false, "print version and exit")
	)
	var output string
	flag.StringVar(&output, "output", "", "write JSON to file instead of stdout (.gz compresses)")
	flag.StringVar(&output, "o", "", "shorthand for -output")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("memc %s\n", version)
		return 0
	}

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	// Explicit flags override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "interval":
			cfg.IntervalMS = *intervalMS
		case "count":
			cfg.Count = *count
		case "smaps":
			cfg.Smaps = *smaps
		case "max-snapshots":
			cfg.MaxSnapshots = *maxSnapshots
		case "compact":
			cfg.Compact = *compact
		case "skip-kernel":
			cfg.SkipKernel = *skipKernel
		case "output", "o":
			cfg.Output = output
		case "proc-root":
			cfg.ProcRoot = *procRoot
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if cfg.IntervalMS <= 0 {
		fmt.Fprintln(os.Stderr, "Error: interval must be positive")
		return 1
	}

	opts := []procmem.Option{
		procmem.WithInterval(time.Duration(cfg.IntervalMS) * time.Millisecond),
		procmem.WithMaxSnapshots(cfg.MaxSnapshots),
		procmem.WithPrettyJSON(!cfg.Compact),
		procmem.WithLogger(procmem.NewTextLogger(parseLevel(cfg.LogLevel))),
	}
	if cfg.Smaps {
		opts = append(opts, procmem.WithSmaps())
	}
	if cfg.SkipKernel {
		opts = append(opts, procmem.WithSkipKernel())
	}
	if cfg.ProcRoot != "" {
		opts = append(opts, procmem.WithProcRoot(cfg.ProcRoot))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *all {
		return runAll(ctx, cfg, opts)
	}

	if flag.NArg() != 1 {
		usage()
		return 1
	}
	pid, err := strconv.Atoi(flag.Arg(0))
	if err != nil || pid <= 0 {
		fmt.Fprintf(os.Stderr, "Error: invalid PID %q\n", flag.Arg(0))
		return 1
	}
	return runSinglePID(ctx, pid, cfg, opts)
}

// runAll snapshots every process once and writes the combined report.
func runAll(ctx context.Context, cfg Config, opts []procmem.Option) int {
	fmt.Fprintf(os.Stderr, "Scanning processes%s...\n", smapsNote(cfg))

	report, err := procmem.ScanAll(ctx, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var data []byte
	if cfg.Compact {
		data, err = report.MarshalJSON()
	} else {
		data, err = report.MarshalIndentJSON()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := writeOutput(string(data), cfg.Output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stderr, "Collected %d process snapshots (%d skipped due to permissions).\n",
		len(report.Processes), len(report.Skipped))
	return 0
}

// runSinglePID takes one snapshot, a fixed number, or samples continuously
// until interrupted.
func runSinglePID(ctx context.Context, pid int, cfg Config, opts []procmem.Option) int {
	c, err := procmem.New(pid, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if cfg.Count == 1 {
		snap, err := c.CollectOnce()
		if err != nil {
			if cfg.ProcRoot == "" && !procfs.Default().Alive(pid) {
				fmt.Fprintf(os.Stderr, "Error: no process with PID %d\n", pid)
			} else {
				fmt.Fprintf(os.Stderr, "Error: failed to read memory map of PID %d\n"+
					"Check that the process exists and you have permission.\n", pid)
			}
			return 1
		}
		out, err := c.ToJSON(*snap)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if err := writeOutput(out, cfg.Output); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "pid %d: %d regions, %s virtual%s\n",
			pid, len(snap.Regions),
			humanize.IBytes(snap.TotalVirtualKB()*1024),
			residentNote(*snap))
		return 0
	}

	continuous := cfg.Count == 0
	fmt.Fprintf(os.Stderr, "Sampling PID %d every %dms%s%s...\n",
		pid, cfg.IntervalMS, smapsNote(cfg), ctrlCNote(continuous))

	// The callback prints each snapshot; main stops the sampler, since a
	// callback must never call back into it.
	done := make(chan struct{})
	taken := 0
	c.OnSnapshot(func(s region.ProcessSnapshot) {
		if out, err := c.ToJSON(s); err == nil {
			fmt.Println(out)
		}
		taken++
		if !continuous && taken == cfg.Count {
			close(done)
		}
	})

	c.StartSampling()
	select {
	case <-ctx.Done():
	case <-done:
	}
	c.StopSampling()

	fmt.Fprintf(os.Stderr, "Collected %d snapshot(s).\n", c.SnapshotCount())
	return 0
}

// writeOutput writes JSON to the output file, or stdout when no file is
// configured. A path ending in .gz is gzip-compressed.
func writeOutput(data, path string) error {
	if path == "" {
		fmt.Println(data)
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s for writing: %w", path, err)
	}

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}

	if _, err := io.WriteString(w, data+"\n"); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(os.Stderr, "Written to %s\n", path)
	return nil
}

func smapsNote(cfg Config) string {
	if cfg.Smaps {
		return " (with smaps)"
	}
	return ""
}

func residentNote(snap region.ProcessSnapshot) string {
	if rss := snap.TotalRSSKB(); rss > 0 {
		return fmt.Sprintf(", %s resident", humanize.IBytes(rss*1024))
	}
	return ""
}

func ctrlCNote(continuous bool) string {
	if continuous {
		return " (Ctrl+C to stop)"
	}
	return ""
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: memc [flags] <pid>
       memc [flags] -all

Snapshots per-process virtual memory maps to JSON.

Flags:
`)
	flag.PrintDefaults()
}
