// Command shiftsync uploads Shift Manager Summary CSV files from a watch
// folder to remote object storage, deleting each local file once its
// upload is confirmed. One-shot: scan, upload, report, exit.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/schedulehq/desktop-tools/internal/upload"
)

func main() {
	cfg, err := upload.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	flag.StringVar(&cfg.WatchDir, "dir", cfg.WatchDir, "folder to scan for CSV files")
	flag.StringVar(&cfg.Endpoint, "endpoint", cfg.Endpoint, "object storage base URL")
	flag.StringVar(&cfg.Prefix, "prefix", cfg.Prefix, "remote key prefix")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	batch := &upload.Batch{
		Dir:    cfg.WatchDir,
		Prefix: cfg.Prefix,
		Store:  upload.NewHTTPStore(cfg.Endpoint, cfg.Token),
		Log:    log,
	}

	sum, err := batch.Run(context.Background())
	if err != nil {
		log.Error("run finished with failures", "err", err)
	}
	fmt.Printf("Processing complete: %d uploaded, %d failed\n", sum.Uploaded, sum.Failed)
	if sum.Failed > 0 {
		os.Exit(1)
	}
}
