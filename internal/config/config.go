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
Package config provides configuration management for FlyKafka.

CONFIGURATION SOURCES (in order of precedence):
===============================================
1. Command-line flags (highest priority)
2. Environment variables (FLYKAFKA_* prefix)
3. Configuration file (TOML when the name ends in .toml, JSON otherwise)
4. Default values (lowest priority)

CONFIGURATION CATEGORIES:
=========================
- Network: bind_addr, read_timeout_ms, write_timeout_ms
- Protocol: max_message_size
- Logging: log_level, log_json
- Topics: static topic catalog answered by DescribeTopicPartitions
- Observability: metrics, tracing

EXAMPLE CONFIGURATION FILE:
===========================

	bind_addr = "127.0.0.1:9092"
	max_message_size = 1048576
	log_level = "info"

	[[topics]]
	name = "orders"
	id = "71b2f5a4-6d2c-4f64-9c2e-3f5b0a1c2d3e"
	partitions = 3

	[observability.metrics]
	enabled = true
	addr = ":9094"

ENVIRONMENT VARIABLES:
======================
Scalar settings can be configured via environment variables with FLYKAFKA_ prefix.
Example: FLYKAFKA_BIND_ADDR="0.0.0.0:9092" FLYKAFKA_LOG_LEVEL="debug"
*/
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

// Environment variable names
const (
	EnvBindAddr       = "FLYKAFKA_BIND_ADDR"
	EnvMaxMessageSize = "FLYKAFKA_MAX_MESSAGE_SIZE"
	EnvReadTimeoutMs  = "FLYKAFKA_READ_TIMEOUT_MS"
	EnvWriteTimeoutMs = "FLYKAFKA_WRITE_TIMEOUT_MS"
	EnvLogLevel       = "FLYKAFKA_LOG_LEVEL"
	EnvLogJSON        = "FLYKAFKA_LOG_JSON"

	// Observability configuration
	EnvMetricsEnabled    = "FLYKAFKA_METRICS_ENABLED"
	EnvMetricsAddr       = "FLYKAFKA_METRICS_ADDR"
	EnvTracingEnabled    = "FLYKAFKA_TRACING_ENABLED"
	EnvTracingSampleRate = "FLYKAFKA_TRACING_SAMPLE_RATE"
	EnvHealthEnabled     = "FLYKAFKA_HEALTH_ENABLED"
	EnvHealthAddr        = "FLYKAFKA_HEALTH_ADDR"
)

const (
	// DefaultMaxMessageSize matches the protocol decoder default (1MB).
	DefaultMaxMessageSize = 1024 * 1024

	// MaxMessageSizeLimit is the largest max_message_size accepted (100MB).
	MaxMessageSizeLimit = 100 * 1024 * 1024
)

// Default paths
var DefaultConfigPaths = []string{
	"/etc/flykafka/flykafka.toml",
	"$HOME/.config/flykafka/flykafka.toml",
	"./flykafka.toml",
}

// TopicConfig describes one topic of the static catalog.
type TopicConfig struct {
	Name       string `toml:"name" json:"name"`
	ID         string `toml:"id" json:"id"`                 // UUID; derived from the name when empty
	Partitions int    `toml:"partitions" json:"partitions"` // Number of partitions (default 1)
	Internal   bool   `toml:"internal" json:"internal"`
}

// TopicID returns the configured id, or a stable name-based UUID when unset.
func (t TopicConfig) TopicID() (uuid.UUID, error) {
	if t.ID == "" {
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte("flykafka:topic:"+t.Name)), nil
	}
	return uuid.Parse(t.ID)
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"` // Enable Prometheus metrics
	Addr    string `toml:"addr" json:"addr"`       // Metrics HTTP server address
}

// TracingConfig holds request tracing configuration.
type TracingConfig struct {
	Enabled     bool    `toml:"enabled" json:"enabled"`           // Enable request tracing
	SampleRate  float64 `toml:"sample_rate" json:"sample_rate"`   // Sampling rate (0.0-1.0)
	ServiceName string  `toml:"service_name" json:"service_name"` // Service name for spans
}

// HealthConfig holds health check endpoint configuration.
type HealthConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"` // Enable health check endpoint
	Addr    string `toml:"addr" json:"addr"`       // Health check HTTP server address
}

// ObservabilityConfig holds all observability-related configuration.
type ObservabilityConfig struct {
	Metrics MetricsConfig `toml:"metrics" json:"metrics"`
	Tracing TracingConfig `toml:"tracing" json:"tracing"`
	Health  HealthConfig  `toml:"health" json:"health"`
}

// Config holds the configuration for FlyKafka.
type Config struct {
	// Network
	BindAddr       string `toml:"bind_addr" json:"bind_addr"`               // Address to listen for clients
	ReadTimeoutMs  int64  `toml:"read_timeout_ms" json:"read_timeout_ms"`   // Idle read timeout per connection (0=none)
	WriteTimeoutMs int64  `toml:"write_timeout_ms" json:"write_timeout_ms"` // Response write timeout (0=none)

	// Protocol
	MaxMessageSize int `toml:"max_message_size" json:"max_message_size"` // Largest accepted message_size

	// Logging
	LogLevel string `toml:"log_level" json:"log_level"`
	LogJSON  bool   `toml:"log_json" json:"log_json"`

	// Topics answered by DescribeTopicPartitions; empty means every topic is unknown
	Topics []TopicConfig `toml:"topics" json:"topics"`

	// Observability
	Observability ObservabilityConfig `toml:"observability" json:"observability"`

	// Metadata
	ConfigFile string `toml:"-" json:"-"`
}

// DefaultConfig returns defaults.
func DefaultConfig() *Config {
	return &Config{
		BindAddr:       "127.0.0.1:9092",
		ReadTimeoutMs:  0,
		WriteTimeoutMs: 10000,
		MaxMessageSize: DefaultMaxMessageSize,
		LogLevel:       "info",
		LogJSON:        false,
		Topics:         []TopicConfig{},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: false,
				Addr:    ":9094",
			},
			Tracing: TracingConfig{
				Enabled:     false,
				SampleRate:  1.0,
				ServiceName: "flykafka",
			},
			Health: HealthConfig{
				Enabled: false,
				Addr:    ":9095",
			},
		},
	}
}

// Manager handles configuration loading.
type Manager struct {
	config *Config
	mu     sync.RWMutex
}

var globalManager = &Manager{
	config: DefaultConfig(),
}

// Global returns the global manager.
func Global() *Manager {
	return globalManager
}

// Get returns a copy of current config.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := *m.config
	cfg.Topics = append([]TopicConfig(nil), m.config.Topics...)
	return &cfg
}

// Set updates the config.
func (m *Manager) Set(cfg *Config) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
}

// LoadFromFile loads configuration from a TOML or JSON file.
func (m *Manager) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}

	cfg := DefaultConfig()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	cfg.ConfigFile = path
	m.Set(cfg)
	return nil
}

// LoadFromEnv loads configuration from environment variables.
func (m *Manager) LoadFromEnv() {
	cfg := m.Get()

	if v := os.Getenv(EnvBindAddr); v != "" {
		cfg.BindAddr = v
	}
	if v := os.Getenv(EnvMaxMessageSize); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.MaxMessageSize = i
		}
	}
	if v := os.Getenv(EnvReadTimeoutMs); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.ReadTimeoutMs = i
		}
	}
	if v := os.Getenv(EnvWriteTimeoutMs); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.WriteTimeoutMs = i
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogJSON); v != "" {
		cfg.LogJSON = parseBool(v)
	}

	// Observability environment variables
	if v := os.Getenv(EnvMetricsEnabled); v != "" {
		cfg.Observability.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		cfg.Observability.Metrics.Addr = v
	}
	if v := os.Getenv(EnvTracingEnabled); v != "" {
		cfg.Observability.Tracing.Enabled = parseBool(v)
	}
	if v := os.Getenv(EnvTracingSampleRate); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Observability.Tracing.SampleRate = f
		}
	}
	if v := os.Getenv(EnvHealthEnabled); v != "" {
		cfg.Observability.Health.Enabled = parseBool(v)
	}
	if v := os.Getenv(EnvHealthAddr); v != "" {
		cfg.Observability.Health.Addr = v
	}

	m.Set(cfg)
}

func parseBool(v string) bool {
	return strings.ToLower(v) == "true" || v == "1"
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.BindAddr == "" {
		return fmt.Errorf("bind_addr is required")
	}
	if c.MaxMessageSize <= 0 {
		return fmt.Errorf("max_message_size must be positive")
	}
	if c.MaxMessageSize > MaxMessageSizeLimit {
		return fmt.Errorf("max_message_size must not exceed %d bytes, got %d", MaxMessageSizeLimit, c.MaxMessageSize)
	}
	if c.ReadTimeoutMs < 0 {
		return fmt.Errorf("read_timeout_ms must be non-negative")
	}
	if c.WriteTimeoutMs < 0 {
		return fmt.Errorf("write_timeout_ms must be non-negative")
	}

	// Topic catalog validation
	seen := make(map[string]bool, len(c.Topics))
	for i, t := range c.Topics {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("topics[%d].name is required", i)
		}
		if seen[t.Name] {
			return fmt.Errorf("topics[%d]: duplicate topic %q", i, t.Name)
		}
		seen[t.Name] = true
		if t.Partitions < 0 {
			return fmt.Errorf("topics[%d].partitions must be non-negative", i)
		}
		if _, err := t.TopicID(); err != nil {
			return fmt.Errorf("topics[%d].id: %w", i, err)
		}
	}

	// Tracing validation
	if c.Observability.Tracing.Enabled {
		if c.Observability.Tracing.SampleRate < 0 || c.Observability.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be between 0 and 1")
		}
	}
	if c.Observability.Metrics.Enabled && c.Observability.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	}
	if c.Observability.Health.Enabled && c.Observability.Health.Addr == "" {
		return fmt.Errorf("health.addr is required when health checks are enabled")
	}

	return nil
}

// GetAdvertiseAddr returns the address clients should connect to.
// If the bind address is 0.0.0.0 or ::, it attempts to detect the local IP.
func (c *Config) GetAdvertiseAddr() string {
	return resolveAdvertiseAddr(c.BindAddr)
}

// resolveAdvertiseAddr resolves an address to an advertisable address.
func resolveAdvertiseAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	// If binding to all interfaces, try to detect local IP
	if host == "" || host == "0.0.0.0" || host == "::" {
		if localIP := detectLocalIP(); localIP != "" {
			return net.JoinHostPort(localIP, port)
		}
	}

	return addr
}

// detectLocalIP returns the first non-loopback IPv4 address of an interface
// that is up, or "".
func detectLocalIP() string {
	interfaces, err := net.Interfaces()
	if err != nil {
		return ""
	}

	for _, iface := range interfaces {
		// Skip loopback and down interfaces
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip != nil && ip.To4() != nil && !ip.IsLoopback() {
				return ip.String()
			}
		}
	}
	return ""
}
