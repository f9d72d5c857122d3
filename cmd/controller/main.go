package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/me/jamsched/internal/broadcast"
	"github.com/me/jamsched/internal/config"
	"github.com/me/jamsched/internal/logging"
	"github.com/me/jamsched/internal/scheduler"
	"github.com/me/jamsched/internal/server"
	"github.com/me/jamsched/internal/workload"
	"github.com/me/jamsched/pkg/model"
)

func main() {
	configFile := flag.String("config", "", "Path to controller config file (YAML)")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "Log format (text, json)")
	workloadFile := flag.String("workload", "", "Initial workload file (overrides config)")
	mode := flag.String("mode", "", "Scheduling mode: classic, hybrid (overrides config)")
	broadcastLog := flag.String("broadcast-log", "", `Write broadcasts as NDJSON to this file ("-" for stdout)`)
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	flag.Parse()

	cfg := config.DefaultControllerConfig()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *logLevel != "" {
		cfg.Server.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.Server.LogFormat = *logFormat
	}
	if *debug {
		cfg.Server.LogLevel = "debug"
	}
	if *workloadFile != "" {
		cfg.Workload = *workloadFile
	}
	if *mode != "" {
		cfg.Mode = model.Mode(*mode)
	}
	if *broadcastLog != "" {
		cfg.BroadcastLog = *broadcastLog
	}

	if apiErr := cfg.Validate(); apiErr != nil {
		fmt.Fprintf(os.Stderr, "%s\n", apiErr.Message)
		for _, d := range apiErr.Details {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", d.Field, d.Message)
		}
		os.Exit(1)
	}

	format, err := logging.ParseFormat(cfg.Server.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(logging.ParseLevel(cfg.Server.LogLevel), format)

	planner := scheduler.NewPlanner(cfg.PlannerConfig(), logger)

	// Initial workload, if any. An invalid file is fatal; the loop would
	// otherwise fail every cycle.
	var initial *workload.Workload
	if cfg.Workload != "" {
		initial, err = workload.NewParser(logger).ParseFile(cfg.Workload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load workload: %v\n", err)
			os.Exit(1)
		}
		initial.ApplyDefaults(cfg.Defaults())
		if apiErr := planner.Validate(initial); apiErr != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", cfg.Workload, apiErr.Message)
			for _, d := range apiErr.Details {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", d.Field, d.Message)
			}
			os.Exit(1)
		}
		logger.Info("workload loaded", "path", cfg.Workload, "workers", len(initial.Workers), "tasks", len(initial.Tasks))
	}

	// Publishers: the in-memory recorder always, NDJSON output on request.
	rec := broadcast.NewRecorder()
	publishers := broadcast.Multi{rec}
	switch cfg.BroadcastLog {
	case "":
	case "-":
		publishers = append(publishers, broadcast.NewJSONPublisher(os.Stdout))
	default:
		f, err := os.OpenFile(cfg.BroadcastLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open broadcast log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		publishers = append(publishers, broadcast.NewJSONPublisher(f))
	}

	loop := scheduler.NewLoop(planner, publishers, initial, cfg.LoopConfig(), logger)

	srv := server.New(cfg.Server, planner, logger,
		server.WithLoop(loop),
		server.WithRecorder(rec),
		server.WithDefaults(cfg.Defaults()),
	)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := loop.Start(ctx); err != nil && err != context.Canceled {
			logger.Error("scheduler stopped", "error", err)
		}
	}()

	go func() {
		logger.Info("server starting", "addr", cfg.Server.Addr, "controller_id", cfg.ControllerID, "mode", cfg.Mode)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Stop scheduler before HTTP server.
	if err := loop.Stop(); err != nil {
		logger.Error("scheduler stop error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
