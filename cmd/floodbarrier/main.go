package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	floodbarrier "github.com/gonikkk/smart-FloodBarrier-monitoring"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/adapters/observability"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/adapters/store"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/logging"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/ports"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/viewer"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "view":
		err = viewCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "floodbarrier %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func runCommand(args []string) error {
	fs := newFlagSet("run")
	cfgPath := fs.StringP("config", "c", "", "Path to configuration file (built-in defaults when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	flow, err := floodbarrier.Conf(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return flow.Run(ctx)
}

func validateCommand(args []string) error {
	fs := newFlagSet("validate")
	cfgPath := fs.StringP("config", "c", "", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := floodbarrier.LoadConfig(*cfgPath)
	if err != nil {
		return err
	}
	fmt.Printf("config %s looks good: serial %s @ %d baud, %s table %s at %s\n",
		displayPath(*cfgPath), cfg.Serial.Port, cfg.Serial.BaudRate,
		cfg.Database.Driver, cfg.Database.Table, cfg.Database.Addr())
	return nil
}

func viewCommand(args []string) error {
	fs := newFlagSet("view")
	cfgPath := fs.StringP("config", "c", "", "Path to configuration file (built-in defaults when empty)")
	limit := fs.Int("limit", 0, "Rows to show (overrides viewer.limit)")
	logOutput := fs.String("log-output", "", "Write JSON log records to this file while the viewer runs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := floodbarrier.LoadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *limit > 0 {
		cfg.Viewer.Limit = *limit
	}

	// the terminal belongs to the viewer, so logs only go to a file
	logCfg := logging.Config{Level: "disabled", Output: io.Discard}
	if *logOutput != "" {
		f, err := os.OpenFile(*logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log output: %w", err)
		}
		defer f.Close()
		logCfg = logging.Config{Level: cfg.Log.Level, Format: "json", Output: f}
	}
	obs := observability.NewPromObs(prometheus.NewRegistry(), logging.New(logCfg))

	gw, err := store.NewGateway(cfg.Database, obs)
	if err != nil {
		return err
	}
	reader := store.NewReader(gw)
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return viewer.Run(ctx, reader, viewer.Options{
		Limit:           cfg.Viewer.Limit,
		RefreshInterval: cfg.Viewer.RefreshInterval,
		QueryTimeout:    cfg.Database.DialTimeout,
	})
}

func statsCommand(args []string) error {
	fs := newFlagSet("stats")
	url := fs.String("url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	client := &http.Client{Timeout: *interval}
	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(ctx, client, *url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printMetricsSnapshot(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	targets, err := scrapeValues(resp.Body, []string{
		ports.MetricLinesReceived,
		ports.MetricReadingsStored,
		ports.MetricParseErrors,
		ports.MetricInsertErrors,
		ports.MetricReconnects,
		ports.MetricDBConnected,
		ports.MetricLastRainMM,
	})
	if err != nil {
		return err
	}

	fmt.Printf("[%s] lines=%.0f stored=%.0f parse_errors=%.0f insert_errors=%.0f reconnects=%.0f db_connected=%.0f last_rain_mm=%.0f\n",
		time.Now().Format(time.RFC3339),
		targets[ports.MetricLinesReceived],
		targets[ports.MetricReadingsStored],
		targets[ports.MetricParseErrors],
		targets[ports.MetricInsertErrors],
		targets[ports.MetricReconnects],
		targets[ports.MetricDBConnected],
		targets[ports.MetricLastRainMM],
	)
	return nil
}

// scrapeValues picks unlabelled samples out of the Prometheus text format.
func scrapeValues(r io.Reader, names []string) (map[string]float64, error) {
	targets := make(map[string]float64, len(names))
	for _, n := range names {
		targets[n] = 0
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for key := range targets {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %g", &value); err == nil {
					targets[key] = value
				}
			}
		}
	}
	return targets, scanner.Err()
}

func displayPath(p string) string {
	if p == "" {
		return "(defaults)"
	}
	return p
}

func printUsage() {
	fmt.Printf(`floodbarrier - flood barrier telemetry ingestion

Usage:
  floodbarrier <command> [flags]

Commands:
  run        Read the serial link and store every reading (runs until interrupted)
  validate   Load and validate a config file without opening any device
  view       Terminal dashboard of the most recent readings
  stats      Poll the Prometheus metrics endpoint and print live counters

Examples:
  floodbarrier run --config ./config.yaml
  floodbarrier validate --config ./config.yaml
  floodbarrier view --limit 100
  floodbarrier stats --url http://localhost:9100/metrics --interval 1s
`)
}
