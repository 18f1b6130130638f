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
Package metrics provides Prometheus-compatible metrics for FlyKafka.

METRIC CATEGORIES:
==================
- Requests: answered, answered with an error code, per API key
- Latency: time from a decoded frame to a written response
- Failures: connection-closing errors by class
- Traffic: bytes read and written
- Connections: active, total
- Catalog: topics and partitions served

PROMETHEUS ENDPOINT:
====================
Metrics are exposed at /metrics in Prometheus text format.

EXAMPLE METRICS:
================

	flykafka_requests_total 12345
	flykafka_api_requests_total{api="ApiVersions"} 12000
	flykafka_request_latency_avg_microseconds 42.00
	flykafka_failures_total{class="framing"} 3
	flykafka_connections_active 7
*/
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"flykafka/internal/config"
	"flykafka/internal/logging"
)

// Metrics holds all FlyKafka metrics.
type Metrics struct {
	// Request metrics
	RequestsTotal  atomic.Uint64
	ResponseErrors atomic.Uint64

	// Latency metrics (in microseconds)
	RequestLatencySum   atomic.Uint64
	RequestLatencyCount atomic.Uint64

	// Traffic metrics
	BytesRead    atomic.Uint64
	BytesWritten atomic.Uint64

	// Connection metrics
	ActiveConnections atomic.Int64
	TotalConnections  atomic.Uint64

	// Catalog metrics
	TopicCount     atomic.Int64
	PartitionCount atomic.Int64

	apiMetrics     sync.Map // api name -> *APIMetrics
	failureMetrics sync.Map // error class -> *atomic.Uint64
}

// APIMetrics holds metrics for a single API key.
type APIMetrics struct {
	Requests     atomic.Uint64
	Errors       atomic.Uint64
	LatencySum   atomic.Uint64
	LatencyCount atomic.Uint64
}

// AverageLatency returns the average latency in microseconds.
func (a *APIMetrics) AverageLatency() float64 {
	count := a.LatencyCount.Load()
	if count == 0 {
		return 0
	}
	return float64(a.LatencySum.Load()) / float64(count)
}

// Global metrics instance
var globalMetrics = &Metrics{}

// Get returns the global metrics instance.
func Get() *Metrics {
	return globalMetrics
}

// GetAPIMetrics returns metrics for a specific API.
func (m *Metrics) GetAPIMetrics(api string) *APIMetrics {
	if am, ok := m.apiMetrics.Load(api); ok {
		return am.(*APIMetrics)
	}
	am := &APIMetrics{}
	actual, _ := m.apiMetrics.LoadOrStore(api, am)
	return actual.(*APIMetrics)
}

// RecordRequest records one answered request. failed is true when the
// response carried a non-zero error code.
func (m *Metrics) RecordRequest(api string, latency time.Duration, failed bool) {
	us := uint64(latency.Microseconds())
	m.RequestsTotal.Add(1)
	m.RequestLatencySum.Add(us)
	m.RequestLatencyCount.Add(1)

	am := m.GetAPIMetrics(api)
	am.Requests.Add(1)
	am.LatencySum.Add(us)
	am.LatencyCount.Add(1)

	if failed {
		m.ResponseErrors.Add(1)
		am.Errors.Add(1)
	}
}

// RecordFailure records an error that closed a connection.
func (m *Metrics) RecordFailure(class string) {
	if c, ok := m.failureMetrics.Load(class); ok {
		c.(*atomic.Uint64).Add(1)
		return
	}
	actual, _ := m.failureMetrics.LoadOrStore(class, &atomic.Uint64{})
	actual.(*atomic.Uint64).Add(1)
}

// Failures returns the number of failures recorded for class.
func (m *Metrics) Failures(class string) uint64 {
	if c, ok := m.failureMetrics.Load(class); ok {
		return c.(*atomic.Uint64).Load()
	}
	return 0
}

// TotalFailures returns the number of failures across all classes.
func (m *Metrics) TotalFailures() uint64 {
	var total uint64
	m.failureMetrics.Range(func(_, v interface{}) bool {
		total += v.(*atomic.Uint64).Load()
		return true
	})
	return total
}

// RecordBytesIn records bytes read from clients.
func (m *Metrics) RecordBytesIn(n int) {
	if n > 0 {
		m.BytesRead.Add(uint64(n))
	}
}

// RecordBytesOut records bytes written to clients.
func (m *Metrics) RecordBytesOut(n int) {
	if n > 0 {
		m.BytesWritten.Add(uint64(n))
	}
}

// SetCatalog records the size of the served topic catalog.
func (m *Metrics) SetCatalog(topics, partitions int) {
	m.TopicCount.Store(int64(topics))
	m.PartitionCount.Store(int64(partitions))
}

// ConnectionOpened records a new connection.
func (m *Metrics) ConnectionOpened() {
	m.ActiveConnections.Add(1)
	m.TotalConnections.Add(1)
}

// ConnectionClosed records a closed connection.
func (m *Metrics) ConnectionClosed() {
	m.ActiveConnections.Add(-1)
}

// AverageRequestLatency returns the average request latency in microseconds.
func (m *Metrics) AverageRequestLatency() float64 {
	count := m.RequestLatencyCount.Load()
	if count == 0 {
		return 0
	}
	return float64(m.RequestLatencySum.Load()) / float64(count)
}

// Server provides an HTTP server for Prometheus metrics.
type Server struct {
	config  *config.MetricsConfig
	metrics *Metrics
	server  *http.Server
	logger  *logging.Logger
}

// NewServer creates a new metrics server over the global metrics.
func NewServer(cfg *config.MetricsConfig) *Server {
	return &Server{
		config:  cfg,
		metrics: Get(),
		logger:  logging.NewLogger("metrics"),
	}
}

// Handler returns the HTTP handler serving /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", s.handleMetrics)
	return mux
}

// Start starts the metrics HTTP server.
func (s *Server) Start() error {
	if !s.config.Enabled {
		s.logger.Info("Metrics server disabled")
		return nil
	}

	s.server = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Info("Starting metrics server", "addr", s.config.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Metrics server error", "error", err)
		}
	}()

	return nil
}

// Stop stops the metrics HTTP server.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("Stopping metrics server")
	return s.server.Shutdown(ctx)
}

// handleMetrics handles the /metrics endpoint in Prometheus format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.metrics
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	// Request metrics
	fmt.Fprintf(w, "# HELP flykafka_requests_total Total requests answered\n")
	fmt.Fprintf(w, "# TYPE flykafka_requests_total counter\n")
	fmt.Fprintf(w, "flykafka_requests_total %d\n", m.RequestsTotal.Load())

	fmt.Fprintf(w, "# HELP flykafka_response_errors_total Responses carrying a non-zero error code\n")
	fmt.Fprintf(w, "# TYPE flykafka_response_errors_total counter\n")
	fmt.Fprintf(w, "flykafka_response_errors_total %d\n", m.ResponseErrors.Load())

	fmt.Fprintf(w, "# HELP flykafka_request_latency_avg_microseconds Average request latency\n")
	fmt.Fprintf(w, "# TYPE flykafka_request_latency_avg_microseconds gauge\n")
	fmt.Fprintf(w, "flykafka_request_latency_avg_microseconds %.2f\n", m.AverageRequestLatency())

	// Traffic metrics
	fmt.Fprintf(w, "# HELP flykafka_bytes_read_total Bytes read from clients\n")
	fmt.Fprintf(w, "# TYPE flykafka_bytes_read_total counter\n")
	fmt.Fprintf(w, "flykafka_bytes_read_total %d\n", m.BytesRead.Load())

	fmt.Fprintf(w, "# HELP flykafka_bytes_written_total Bytes written to clients\n")
	fmt.Fprintf(w, "# TYPE flykafka_bytes_written_total counter\n")
	fmt.Fprintf(w, "flykafka_bytes_written_total %d\n", m.BytesWritten.Load())

	// Connection metrics
	fmt.Fprintf(w, "# HELP flykafka_connections_active Current active connections\n")
	fmt.Fprintf(w, "# TYPE flykafka_connections_active gauge\n")
	fmt.Fprintf(w, "flykafka_connections_active %d\n", m.ActiveConnections.Load())

	fmt.Fprintf(w, "# HELP flykafka_connections_total Total connections\n")
	fmt.Fprintf(w, "# TYPE flykafka_connections_total counter\n")
	fmt.Fprintf(w, "flykafka_connections_total %d\n", m.TotalConnections.Load())

	// Catalog metrics
	fmt.Fprintf(w, "# HELP flykafka_topics_count Number of topics served\n")
	fmt.Fprintf(w, "# TYPE flykafka_topics_count gauge\n")
	fmt.Fprintf(w, "flykafka_topics_count %d\n", m.TopicCount.Load())

	fmt.Fprintf(w, "# HELP flykafka_partitions_count Number of partitions served\n")
	fmt.Fprintf(w, "# TYPE flykafka_partitions_count gauge\n")
	fmt.Fprintf(w, "flykafka_partitions_count %d\n", m.PartitionCount.Load())

	// Per-API metrics
	apis := sortedKeys(&m.apiMetrics)
	fmt.Fprintf(w, "# HELP flykafka_api_requests_total Requests answered per API\n")
	fmt.Fprintf(w, "# TYPE flykafka_api_requests_total counter\n")
	for _, api := range apis {
		fmt.Fprintf(w, "flykafka_api_requests_total{api=%q} %d\n", api, m.GetAPIMetrics(api).Requests.Load())
	}

	fmt.Fprintf(w, "# HELP flykafka_api_errors_total Error responses per API\n")
	fmt.Fprintf(w, "# TYPE flykafka_api_errors_total counter\n")
	for _, api := range apis {
		fmt.Fprintf(w, "flykafka_api_errors_total{api=%q} %d\n", api, m.GetAPIMetrics(api).Errors.Load())
	}

	fmt.Fprintf(w, "# HELP flykafka_api_latency_avg_microseconds Average latency per API\n")
	fmt.Fprintf(w, "# TYPE flykafka_api_latency_avg_microseconds gauge\n")
	for _, api := range apis {
		fmt.Fprintf(w, "flykafka_api_latency_avg_microseconds{api=%q} %.2f\n", api, m.GetAPIMetrics(api).AverageLatency())
	}

	// Failures
	fmt.Fprintf(w, "# HELP flykafka_failures_total Connection-closing errors by class\n")
	fmt.Fprintf(w, "# TYPE flykafka_failures_total counter\n")
	for _, class := range sortedKeys(&m.failureMetrics) {
		fmt.Fprintf(w, "flykafka_failures_total{class=%q} %d\n", class, m.Failures(class))
	}
}

func sortedKeys(m *sync.Map) []string {
	var keys []string
	m.Range(func(key, _ interface{}) bool {
		keys = append(keys, key.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}
