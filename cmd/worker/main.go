package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/me/jamsched/internal/logging"
	"github.com/me/jamsched/internal/worker"
	"github.com/me/jamsched/pkg/model"
)

func main() {
	var (
		cfg  worker.Config
		name string
	)
	flag.StringVar(&cfg.ServerURL, "server", "http://localhost:8080", "Controller URL")
	flag.StringVar(&name, "name", "", "Worker name as it appears in workloads (default: hostname)")
	flag.DurationVar(&cfg.Poll, "poll", time.Second, "Poll interval")
	emitJSON := flag.Bool("json", false, "Print each assignment as JSON on stdout")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "text", "Log format (text, json)")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	flag.Parse()

	if *debug {
		*logLevel = "debug"
	}
	format, err := logging.ParseFormat(*logFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(logging.ParseLevel(*logLevel), format)

	if name == "" {
		h, err := os.Hostname()
		if err != nil {
			name = "worker"
		} else {
			name = h
		}
	}
	cfg.Name = model.Worker(name)

	handler := worker.LogHandler(logger)
	if *emitJSON {
		enc := json.NewEncoder(os.Stdout)
		logged := handler
		handler = func(ctx context.Context, a worker.Assignment) error {
			if err := logged(ctx, a); err != nil {
				return err
			}
			return enc.Encode(a)
		}
	}

	w := worker.New(cfg, nil, handler, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker starting", "server", cfg.ServerURL, "name", cfg.Name, "poll", cfg.Poll)
	if err := w.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "worker error: %v\n", err)
		os.Exit(1)
	}
}
