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
Package health provides liveness and readiness checks for FlyKafka.

ENDPOINTS:
==========

	GET /health        All checks with details (200, or 503 when unhealthy)
	GET /health/live   Process liveness; always 200 while the process serves HTTP
	GET /health/ready  200 when no check is unhealthy, else 503

STATUS AGGREGATION:
===================
The overall status is the worst individual status:
unhealthy > degraded > healthy. A degraded broker is still ready.
*/
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"flykafka/internal/config"
	"flykafka/internal/logging"
)

// Status is the outcome of a check.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) rank() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// CheckResult is the result of one check.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// CheckFunc performs one check.
type CheckFunc func() CheckResult

// Response is the body of the /health endpoint.
type Response struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Checker runs registered checks.
type Checker struct {
	mu      sync.RWMutex
	version string
	started time.Time
	checks  map[string]CheckFunc
}

// NewChecker creates a checker reporting version.
func NewChecker(version string) *Checker {
	return &Checker{
		version: version,
		started: time.Now(),
		checks:  make(map[string]CheckFunc),
	}
}

// RegisterCheck adds or replaces the check called name.
func (c *Checker) RegisterCheck(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = fn
}

// RunChecks runs every check and aggregates the worst status.
func (c *Checker) RunChecks() *Response {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	checks := make(map[string]CheckFunc, len(c.checks))
	for k, v := range c.checks {
		checks[k] = v
	}
	c.mu.RUnlock()
	sort.Strings(names)

	resp := &Response{
		Status:    StatusHealthy,
		Version:   c.version,
		Uptime:    time.Since(c.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]CheckResult, len(names)),
	}
	for _, name := range names {
		result := checks[name]()
		resp.Checks[name] = result
		if result.Status.rank() > resp.Status.rank() {
			resp.Status = result.Status
		}
	}
	return resp
}

// IsHealthy reports whether no check is unhealthy.
func (c *Checker) IsHealthy() bool {
	return c.RunChecks().Status != StatusUnhealthy
}

// ListenerCheck is unhealthy while running reports false.
func ListenerCheck(running func() bool) CheckFunc {
	return func() CheckResult {
		if !running() {
			return CheckResult{Status: StatusUnhealthy, Message: "not accepting connections"}
		}
		return CheckResult{Status: StatusHealthy}
	}
}

// FailureRatioCheck is degraded once more than maxRatio of connections
// have closed with a failure.
func FailureRatioCheck(maxRatio float64, connections, failures func() uint64) CheckFunc {
	return func() CheckResult {
		total := connections()
		if total == 0 {
			return CheckResult{Status: StatusHealthy}
		}
		ratio := float64(failures()) / float64(total)
		if ratio > maxRatio {
			return CheckResult{
				Status:  StatusDegraded,
				Message: fmt.Sprintf("%.1f%% of connections failed", ratio*100),
			}
		}
		return CheckResult{Status: StatusHealthy}
	}
}

// Server serves the health endpoints over HTTP.
type Server struct {
	config  *config.HealthConfig
	checker *Checker
	server  *http.Server
	logger  *logging.Logger
}

// NewServer creates a health server.
func NewServer(cfg *config.HealthConfig, checker *Checker) *Server {
	return &Server{
		config:  cfg,
		checker: checker,
		logger:  logging.NewLogger("health"),
	}
}

// Handler returns the HTTP handler serving the health endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/live", s.handleLive)
	mux.HandleFunc("/health/ready", s.handleReady)
	return mux
}

// Start starts the health HTTP server.
func (s *Server) Start() error {
	if !s.config.Enabled {
		s.logger.Info("Health server disabled")
		return nil
	}

	s.server = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Info("Starting health server", "addr", s.config.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Health server error", "error", err)
		}
	}()

	return nil
}

// Stop stops the health HTTP server.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("Stopping health server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := s.checker.RunChecks()
	code := http.StatusOK
	if resp.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]Status{"status": StatusHealthy})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := s.checker.RunChecks()
	code := http.StatusOK
	if resp.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]Status{"status": resp.Status})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
