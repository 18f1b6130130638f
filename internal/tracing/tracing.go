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
Package tracing provides lightweight request tracing for FlyKafka.

OVERVIEW:
=========
Each client connection opens a span, and every request answered on that
connection opens a child span carrying the api key, version and
correlation id. Spans are buffered and handed to an Exporter in batches.

SPAN HIERARCHY:
===============

	[kafka.connection]
	    ├── [ApiVersions]
	    ├── [DescribeTopicPartitions]
	    └── ...

IDENTIFIERS:
============
Trace and span ids are random 16- and 8-byte values, hex encoded, in the
same shape W3C Trace Context uses, so spans can be correlated with other
tooling that logs those ids.

EXPORTERS:
==========
LogExporter writes finished spans to the structured log at DEBUG level.
Any other backend can be plugged in through the Exporter interface.
*/
package tracing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"flykafka/internal/config"
	"flykafka/internal/logging"
)

// DefaultBatchSize is the number of finished spans buffered before they are
// exported.
const DefaultBatchSize = 128

// SpanKind represents the type of span.
type SpanKind string

const (
	SpanKindInternal SpanKind = "internal"
	SpanKindServer   SpanKind = "server"
	SpanKindClient   SpanKind = "client"
)

// SpanStatus represents the status of a span.
type SpanStatus string

const (
	StatusUnset SpanStatus = "unset"
	StatusOK    SpanStatus = "ok"
	StatusError SpanStatus = "error"
)

// Span represents a single trace span.
type Span struct {
	TraceID    string            `json:"trace_id"`
	SpanID     string            `json:"span_id"`
	ParentID   string            `json:"parent_id,omitempty"`
	Name       string            `json:"name"`
	Kind       SpanKind          `json:"kind"`
	StartTime  time.Time         `json:"start_time"`
	EndTime    time.Time         `json:"end_time,omitempty"`
	Status     SpanStatus        `json:"status"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Events     []SpanEvent       `json:"events,omitempty"`
}

// Duration returns the span duration, or zero while the span is open.
func (s *Span) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// SpanEvent represents an event within a span.
type SpanEvent struct {
	Name       string            `json:"name"`
	Timestamp  time.Time         `json:"timestamp"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Tracer provides tracing functionality.
type Tracer struct {
	mu         sync.RWMutex
	config     *config.TracingConfig
	spans      []*Span
	exporter   Exporter
	logger     *logging.Logger
	sampleRate float64
	batchSize  int
}

// Exporter interface for exporting spans.
type Exporter interface {
	Export(spans []*Span) error
	Shutdown() error
}

// NewTracer creates a new tracer exporting to the structured log.
func NewTracer(cfg *config.TracingConfig) *Tracer {
	logger := logging.NewLogger("tracing")
	return &Tracer{
		config:     cfg,
		spans:      make([]*Span, 0),
		exporter:   NewLogExporter(logger),
		logger:     logger,
		sampleRate: cfg.SampleRate,
		batchSize:  DefaultBatchSize,
	}
}

// SetExporter sets the span exporter.
func (t *Tracer) SetExporter(exp Exporter) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exporter = exp
}

// Enabled reports whether spans are recorded at all.
func (t *Tracer) Enabled() bool {
	return t.config.Enabled
}

// StartSpan starts a new span, as a child of the span in ctx if there is one.
// It returns a nil span when tracing is disabled or the trace is not sampled;
// every other Tracer method accepts a nil span.
func (t *Tracer) StartSpan(ctx context.Context, name string, kind SpanKind) (context.Context, *Span) {
	if !t.config.Enabled {
		return ctx, nil
	}

	parent := SpanFromContext(ctx)
	// Children follow their parent's sampling decision.
	if parent == nil && !t.shouldSample() {
		return ctx, nil
	}

	span := &Span{
		SpanID:     generateSpanID(),
		Name:       name,
		Kind:       kind,
		StartTime:  time.Now(),
		Status:     StatusUnset,
		Attributes: make(map[string]string),
	}
	if parent != nil {
		span.ParentID = parent.SpanID
		span.TraceID = parent.TraceID
	} else {
		span.TraceID = generateTraceID()
	}

	return ContextWithSpan(ctx, span), span
}

// EndSpan ends a span and queues it for export.
func (t *Tracer) EndSpan(span *Span) {
	if span == nil {
		return
	}

	span.EndTime = time.Now()
	if span.Status == StatusUnset {
		span.Status = StatusOK
	}

	t.mu.Lock()
	t.spans = append(t.spans, span)
	full := len(t.spans) >= t.batchSize
	t.mu.Unlock()

	if full {
		if err := t.Flush(); err != nil {
			t.logger.Warn("Failed to export spans", "error", err)
		}
	}
}

// SetSpanStatus sets the status of a span.
func (t *Tracer) SetSpanStatus(span *Span, status SpanStatus, message string) {
	if span == nil {
		return
	}
	span.Status = status
	if message != "" {
		span.Attributes["error.message"] = message
	}
}

// SetSpanAttribute sets an attribute on a span.
func (t *Tracer) SetSpanAttribute(span *Span, key, value string) {
	if span == nil {
		return
	}
	span.Attributes[key] = value
}

// AddSpanEvent adds an event to a span.
func (t *Tracer) AddSpanEvent(span *Span, name string, attrs map[string]string) {
	if span == nil {
		return
	}
	span.Events = append(span.Events, SpanEvent{
		Name:       name,
		Timestamp:  time.Now(),
		Attributes: attrs,
	})
}

// Pending returns the number of finished spans not yet exported.
func (t *Tracer) Pending() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.spans)
}

// Flush exports all pending spans.
func (t *Tracer) Flush() error {
	t.mu.Lock()
	spans := t.spans
	t.spans = make([]*Span, 0)
	exporter := t.exporter
	t.mu.Unlock()

	if len(spans) == 0 || exporter == nil {
		return nil
	}

	return exporter.Export(spans)
}

// Shutdown flushes pending spans and shuts down the exporter.
func (t *Tracer) Shutdown() error {
	if err := t.Flush(); err != nil {
		t.logger.Error("Failed to flush spans", "error", err)
	}
	t.mu.RLock()
	exporter := t.exporter
	t.mu.RUnlock()
	if exporter != nil {
		return exporter.Shutdown()
	}
	return nil
}

// shouldSample determines if a trace should be sampled.
func (t *Tracer) shouldSample() bool {
	if t.sampleRate >= 1.0 {
		return true
	}
	if t.sampleRate <= 0 {
		return false
	}
	// Simple random sampling
	b := make([]byte, 1)
	rand.Read(b)
	return float64(b[0])/255.0 < t.sampleRate
}

// generateTraceID returns a random 16-byte trace id.
func generateTraceID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// generateSpanID returns a random 8-byte span id.
func generateSpanID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

type spanContextKey struct{}

// ContextWithSpan returns a context with the span attached.
func ContextWithSpan(ctx context.Context, span *Span) context.Context {
	return context.WithValue(ctx, spanContextKey{}, span)
}

// SpanFromContext retrieves a span from context.
func SpanFromContext(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanContextKey{}).(*Span); ok {
		return span
	}
	return nil
}

// LogExporter writes finished spans to a logger at DEBUG level.
type LogExporter struct {
	logger *logging.Logger
}

// NewLogExporter creates an exporter writing to logger.
func NewLogExporter(logger *logging.Logger) *LogExporter {
	return &LogExporter{logger: logger}
}

// Export logs each span with its attributes in key order.
func (e *LogExporter) Export(spans []*Span) error {
	if !logging.Enabled(logging.DEBUG) {
		return nil
	}
	for _, s := range spans {
		fields := []interface{}{
			"trace_id", s.TraceID,
			"span_id", s.SpanID,
			"parent_id", s.ParentID,
			"kind", string(s.Kind),
			"status", string(s.Status),
			"duration_ms", float64(s.Duration().Microseconds()) / 1000,
		}
		keys := make([]string, 0, len(s.Attributes))
		for k := range s.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fields = append(fields, k, s.Attributes[k])
		}
		e.logger.Debug("span "+s.Name, fields...)
	}
	return nil
}

// Shutdown is a no-op.
func (e *LogExporter) Shutdown() error { return nil }
