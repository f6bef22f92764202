package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/orbitshield/orbitshield/internal/api"
	"github.com/orbitshield/orbitshield/internal/auth"
	"github.com/orbitshield/orbitshield/internal/catalog"
	"github.com/orbitshield/orbitshield/internal/conjunction"
	"github.com/orbitshield/orbitshield/internal/health"
	"github.com/orbitshield/orbitshield/internal/propagation"
	"github.com/orbitshield/orbitshield/internal/stream"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	addr := os.Getenv("ORBITSHIELD_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	maxEvents := 500
	if v := os.Getenv("ORBITSHIELD_MAX_EVENTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid ORBITSHIELD_MAX_EVENTS value, using default", "value", v, "default", maxEvents)
		} else {
			maxEvents = n
		}
	}
	store := catalog.NewStore(maxEvents)

	// Seed the catalog from a scenario file when one is configured.
	if path := os.Getenv("ORBITSHIELD_SCENARIO"); path != "" {
		if _, err := catalog.LoadScenario(path, store, logger); err != nil {
			logger.Error("failed to load scenario", "path", path, "error", err)
			os.Exit(1)
		}
	}

	engineCfg := loadEngineConfig(logger)
	engine := conjunction.NewEngine(engineCfg, store, logger)

	refreshCfg := loadRefresherConfig(logger)
	refresher := propagation.NewRefresher(store, refreshCfg, logger)

	streamCfg := loadStreamConfig(logger)
	streamHandler := stream.NewHandler(engine, streamCfg, logger)

	probes := health.NewState()
	srv := api.NewServer(addr, store, engine, streamHandler, probes, logger, authCfg)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go refresher.Start(ctx)
	go engine.Start(ctx)
	probes.SetReady()

	go func() {
		logger.Info("starting server", "addr", addr, "auth_enabled", authCfg.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("ORBITSHIELD_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("ORBITSHIELD_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("ORBITSHIELD_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("ORBITSHIELD_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

func loadEngineConfig(logger *slog.Logger) conjunction.Config {
	cfg := conjunction.Config{
		ScanInterval:       5 * time.Second,
		MonitorThresholdKm: 50,
		Lookahead:          time.Hour,
		Workers:            runtime.NumCPU(),
	}

	if v := os.Getenv("ORBITSHIELD_SCAN_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid ORBITSHIELD_SCAN_INTERVAL value, using default", "value", v, "default", 5)
		} else {
			cfg.ScanInterval = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("ORBITSHIELD_MONITOR_THRESHOLD_KM"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			logger.Warn("invalid ORBITSHIELD_MONITOR_THRESHOLD_KM value, using default", "value", v, "default", 50)
		} else {
			cfg.MonitorThresholdKm = f
		}
	}

	if v := os.Getenv("ORBITSHIELD_LOOKAHEAD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid ORBITSHIELD_LOOKAHEAD value, using default", "value", v, "default", 3600)
		} else {
			cfg.Lookahead = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("ORBITSHIELD_SCAN_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid ORBITSHIELD_SCAN_WORKERS value, using default", "value", v, "default", cfg.Workers)
		} else {
			cfg.Workers = n
		}
	}

	return cfg
}

func loadRefresherConfig(logger *slog.Logger) propagation.Config {
	cfg := propagation.Config{
		Workers:  runtime.NumCPU(),
		Interval: 30 * time.Second,
	}

	if v := os.Getenv("ORBITSHIELD_REFRESH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid ORBITSHIELD_REFRESH_WORKERS value, using default", "value", v, "default", cfg.Workers)
		} else {
			cfg.Workers = n
		}
	}

	if v := os.Getenv("ORBITSHIELD_REFRESH_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid ORBITSHIELD_REFRESH_INTERVAL value, using default", "value", v, "default", 30)
		} else {
			cfg.Interval = time.Duration(n) * time.Second
		}
	}

	logger.Info("refresher config",
		"workers", cfg.Workers,
		"interval_seconds", cfg.Interval.Seconds(),
	)

	return cfg
}

func loadStreamConfig(logger *slog.Logger) stream.Config {
	cfg := stream.Config{
		MaxConcurrentPerIP: 10,
		KeepaliveInterval:  30 * time.Second,
	}

	if v := os.Getenv("ORBITSHIELD_STREAM_MAX_CONCURRENT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid ORBITSHIELD_STREAM_MAX_CONCURRENT value, using default", "value", v, "default", 10)
		} else {
			cfg.MaxConcurrentPerIP = n
		}
	}

	if v := os.Getenv("ORBITSHIELD_STREAM_KEEPALIVE_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid ORBITSHIELD_STREAM_KEEPALIVE_INTERVAL value, using default", "value", v, "default", 30)
		} else {
			cfg.KeepaliveInterval = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("ORBITSHIELD_TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid ORBITSHIELD_TRUST_PROXY value, defaulting to false", "value", v)
		} else {
			cfg.TrustProxy = b
		}
	}

	logger.Info("stream config",
		"max_concurrent_per_ip", cfg.MaxConcurrentPerIP,
		"keepalive_interval_seconds", cfg.KeepaliveInterval.Seconds(),
		"trust_proxy", cfg.TrustProxy,
	)

	return cfg
}
