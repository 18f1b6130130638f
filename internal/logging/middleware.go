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
Logging Middleware for FlyKafka.

OVERVIEW:
=========
Provides structured logging for connections, requests, and failures.
Each log entry includes contextual information for debugging.

CONNECTION LOGGING:
===================
- New connection: remote address, connection ID
- Connection closed: reason, duration, requests served, bytes transferred

REQUEST LOGGING:
================
- Request answered: API name and version, correlation ID, client ID,
  latency, response error code
- Request failed: error class and message

CORRELATION:
============
Each connection gets a unique ID for correlating log entries. The Kafka
correlation ID links a request with its response.
*/
package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"sort"
	"time"
)

// ConnectionLogger provides detailed logging for connections
type ConnectionLogger struct {
	logger *Logger
}

// NewConnectionLogger creates a new connection logger
func NewConnectionLogger(logger *Logger) *ConnectionLogger {
	return &ConnectionLogger{logger: logger}
}

// LogNewConnection logs a new client connection with details
func (cl *ConnectionLogger) LogNewConnection(connectionID string, conn net.Conn) {
	cl.logger.Info("New client connection established",
		"connection_id", connectionID,
		"remote_addr", conn.RemoteAddr().String(),
		"local_addr", conn.LocalAddr().String(),
	)
}

// ConnectionStats summarizes the traffic of one connection.
type ConnectionStats struct {
	Requests uint64
	BytesIn  uint64
	BytesOut uint64
}

// LogConnectionClosed logs when a connection is closed
func (cl *ConnectionLogger) LogConnectionClosed(connectionID string, conn net.Conn, reason string, duration time.Duration, stats ConnectionStats) {
	cl.logger.Info("Client connection closed",
		"connection_id", connectionID,
		"remote_addr", conn.RemoteAddr().String(),
		"reason", reason,
		"duration_seconds", duration.Seconds(),
		"requests", stats.Requests,
		"bytes_in", stats.BytesIn,
		"bytes_out", stats.BytesOut,
	)
}

// RequestLogger logs answered requests
type RequestLogger struct {
	logger *Logger
}

// NewRequestLogger creates a new request logger
func NewRequestLogger(logger *Logger) *RequestLogger {
	return &RequestLogger{logger: logger}
}

// RequestInfo describes one request/response exchange.
type RequestInfo struct {
	ConnectionID  string
	API           string
	APIVersion    int16
	CorrelationID int32
	ClientID      string
	Latency       time.Duration
	ResponseSize  int
	ErrorCode     string
}

// LogRequest logs a request at DEBUG level, or at WARN level when the
// response carries a non-zero error code.
func (rl *RequestLogger) LogRequest(info RequestInfo) {
	fields := []interface{}{
		"connection_id", info.ConnectionID,
		"api", info.API,
		"api_version", info.APIVersion,
		"correlation_id", info.CorrelationID,
		"client_id", info.ClientID,
		"latency_ms", float64(info.Latency.Microseconds()) / 1000,
		"response_bytes", info.ResponseSize,
	}
	if info.ErrorCode != "" {
		rl.logger.Warn("Request answered with error", append(fields, "error_code", info.ErrorCode)...)
		return
	}
	rl.logger.Debug("Request answered", fields...)
}

// ErrorLogger provides detailed error logging
type ErrorLogger struct {
	logger *Logger
}

// NewErrorLogger creates a new error logger
func NewErrorLogger(logger *Logger) *ErrorLogger {
	return &ErrorLogger{logger: logger}
}

// LogError logs errors with their class and context. Context keys are
// written in sorted order.
func (el *ErrorLogger) LogError(err error, operation, class string, context map[string]interface{}) {
	fields := make([]interface{}, 0, len(context)*2+6)
	fields = append(fields, "operation", operation)
	fields = append(fields, "class", class)
	fields = append(fields, "error", err.Error())

	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, k, context[k])
	}

	el.logger.Error("Operation failed", fields...)
}

// LogRecovery logs panic recovery
func (el *ErrorLogger) LogRecovery(panicValue interface{}, stack string, operation string) {
	el.logger.Error("Panic recovered",
		"operation", operation,
		"panic_value", fmt.Sprintf("%v", panicValue),
		"stack_trace", stack,
	)
}

// GenerateConnectionID generates a unique ID for a connection
func GenerateConnectionID(conn net.Conn) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%d",
		conn.RemoteAddr().String(),
		conn.LocalAddr().String(),
		time.Now().UnixNano())))
	return hex.EncodeToString(hash[:8])
}
