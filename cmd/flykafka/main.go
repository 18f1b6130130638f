/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
FlyKafka Server - Main Entry Point.

USAGE:
======

	flykafka [options]

OPTIONS:
========

	-config string    Path to configuration file (TOML or JSON)
	-bind string      Override the listen address
	-human-readable   Use human-readable log format instead of JSON
	-quiet            Skip banner and config display, output logs only
	-version          Show version information
	-help             Show help message

STARTUP SEQUENCE:
=================
1. Parse command line flags and config file
2. Apply environment overrides, then flag overrides, then validate
3. Initialize logging
4. Build the topic catalog and broker
5. Start TCP server
6. Start metrics and health endpoints
7. Wait for shutdown signal
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"flykafka/internal/banner"
	"flykafka/internal/broker"
	"flykafka/internal/config"
	"flykafka/internal/health"
	"flykafka/internal/logging"
	"flykafka/internal/metrics"
	"flykafka/internal/server"
)

func printHelp() {
	banner.Print()
	fmt.Println()
	fmt.Println("\033[1;36mUsage:\033[0m")
	fmt.Println("  flykafka [options]")
	fmt.Println()
	fmt.Println("\033[1;36mOptions:\033[0m")
	fmt.Println("  -config string    Path to configuration file (TOML or JSON)")
	fmt.Println("  -bind string      Listen address (overrides config and environment)")
	fmt.Println("  -human-readable   Use human-readable log format instead of JSON")
	fmt.Println("  -quiet            Skip banner and config display, output logs only")
	fmt.Println("  -version          Show version information")
	fmt.Println("  -help, -h         Show this help message")
	fmt.Println()
	fmt.Println("\033[1;36mEnvironment Variables:\033[0m")
	fmt.Printf("  %-30s Listen address (default: 127.0.0.1:9092)\n", config.EnvBindAddr)
	fmt.Printf("  %-30s Largest accepted message size in bytes\n", config.EnvMaxMessageSize)
	fmt.Printf("  %-30s Idle read timeout per connection (0 = none)\n", config.EnvReadTimeoutMs)
	fmt.Printf("  %-30s Response write timeout (0 = none)\n", config.EnvWriteTimeoutMs)
	fmt.Printf("  %-30s Log level: debug, info, warn, error\n", config.EnvLogLevel)
	fmt.Printf("  %-30s Enable JSON log output (true/false)\n", config.EnvLogJSON)
	fmt.Printf("  %-30s Enable the Prometheus endpoint (true/false)\n", config.EnvMetricsEnabled)
	fmt.Printf("  %-30s Metrics HTTP address (default: :9094)\n", config.EnvMetricsAddr)
	fmt.Printf("  %-30s Enable request tracing (true/false)\n", config.EnvTracingEnabled)
	fmt.Printf("  %-30s Trace sampling rate (0.0-1.0)\n", config.EnvTracingSampleRate)
	fmt.Printf("  %-30s Enable health endpoints (true/false)\n", config.EnvHealthEnabled)
	fmt.Printf("  %-30s Health HTTP address (default: :9095)\n", config.EnvHealthAddr)
	fmt.Println()
	fmt.Println("\033[1;36mExamples:\033[0m")
	fmt.Println("  # Start with default settings")
	fmt.Println("  flykafka")
	fmt.Println()
	fmt.Println("  # Listen on all interfaces with JSON logs")
	fmt.Println("  FLYKAFKA_LOG_JSON=true flykafka -bind 0.0.0.0:9092")
	fmt.Println()
	fmt.Println("  # Serve a topic catalog from a config file")
	fmt.Println("  flykafka -config /etc/flykafka/flykafka.toml")
	fmt.Println()
}

func main() {
	// Custom flag handling for help
	for _, arg := range os.Args[1:] {
		if arg == "-h" || arg == "--help" || arg == "-help" || arg == "help" {
			printHelp()
			return
		}
	}

	configPath := flag.String("config", "", "Path to configuration file")
	bindAddr := flag.String("bind", "", "Listen address")
	humanReadable := flag.Bool("human-readable", false, "Use human-readable log format instead of JSON")
	quietMode := flag.Bool("quiet", false, "Skip banner and config display, output logs only")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = printHelp
	flag.Parse()

	if *showVersion {
		banner.Print()
		return
	}

	// Defaults, then file, then environment, then flags.
	cfgMgr := config.Global()
	if *configPath != "" {
		if err := cfgMgr.LoadFromFile(*configPath); err != nil {
			fmt.Printf("Error loading config file: %v\n", err)
			os.Exit(1)
		}
	}
	cfgMgr.LoadFromEnv()
	cfg := cfgMgr.Get()

	if *bindAddr != "" {
		cfg.BindAddr = *bindAddr
	}
	if *humanReadable {
		cfg.LogJSON = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if !*quietMode {
		banner.PrintServerWithConfig(cfg)
	}

	logging.Configure(logging.Config{
		Level:    logging.ParseLevel(cfg.LogLevel),
		Output:   os.Stdout,
		JSONMode: cfg.LogJSON,
	})
	logger := logging.NewLogger("main")

	logger.Info("Starting FlyKafka", "version", banner.Version, "topics", len(cfg.Topics))

	b, err := broker.NewBroker(cfg)
	if err != nil {
		logger.Error("Failed to initialize broker", "error", err)
		os.Exit(1)
	}

	srv := server.NewServer(cfg, b.Dispatcher())
	if err := srv.Start(); err != nil {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
	logger.Info("Listening", "addr", srv.Addr().String())

	// ========================================================================
	// Observability Services
	// ========================================================================

	var metricsServer *metrics.Server
	if cfg.Observability.Metrics.Enabled {
		metricsServer = metrics.NewServer(&cfg.Observability.Metrics)
		if err := metricsServer.Start(); err != nil {
			logger.Error("Failed to start metrics server", "error", err)
		} else {
			logger.Info("Metrics server started", "addr", cfg.Observability.Metrics.Addr)
		}
	}

	var healthServer *health.Server
	if cfg.Observability.Health.Enabled {
		m := metrics.Get()
		checker := health.NewChecker(banner.Version)
		checker.RegisterCheck("listener", health.ListenerCheck(srv.Running))
		checker.RegisterCheck("connections", health.FailureRatioCheck(0.5, m.TotalConnections.Load, m.TotalFailures))
		healthServer = health.NewServer(&cfg.Observability.Health, checker)
		if err := healthServer.Start(); err != nil {
			logger.Error("Failed to start health server", "error", err)
		} else {
			logger.Info("Health server started", "addr", cfg.Observability.Health.Addr)
		}
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("Shutting down...", "signal", sig.String())

	if healthServer != nil {
		if err := healthServer.Stop(); err != nil {
			logger.Error("Error stopping health server", "error", err)
		}
	}
	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Error("Error stopping metrics server", "error", err)
		}
	}

	if err := srv.Stop(); err != nil {
		logger.Error("Error stopping server", "error", err)
	}
}
