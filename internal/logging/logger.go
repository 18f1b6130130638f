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
Package logging provides a structured logging framework for FlyKafka.
It supports multiple log levels, key-value fields, child loggers with bound
fields, and text (colored) or JSON output.

The protocol packages never log; they return errors. Logging happens at the
edges: the server, the broker dispatcher and the command line tools.
*/
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level represents the severity of a log message.
type Level int

const (
	// DEBUG level for detailed debugging information.
	DEBUG Level = iota
	// INFO level for general operational information.
	INFO
	// WARN level for warning conditions.
	WARN
	// ERROR level for error conditions.
	ERROR
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level. Unknown names map to INFO.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Field is one key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// Entry represents a single log entry with all its metadata.
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Component string                 `json:"component"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger provides structured logging capabilities.
type Logger struct {
	component string
	fields    []Field
	mu        *sync.Mutex
}

// Config holds logger configuration options.
type Config struct {
	Level    Level
	Output   io.Writer
	JSONMode bool
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:    INFO,
		Output:   os.Stdout,
		JSONMode: false,
	}
}

// globalConfig holds the global logger configuration.
var (
	globalConfig = DefaultConfig()
	globalMu     sync.RWMutex
)

var levelColors = map[Level]*color.Color{
	DEBUG: color.New(color.FgCyan),
	INFO:  color.New(color.FgGreen),
	WARN:  color.New(color.FgYellow),
	ERROR: color.New(color.FgRed),
}

// Configure applies a full configuration at once.
func Configure(cfg Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	globalConfig = cfg
}

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level Level) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.Level = level
}

// SetGlobalOutput sets the global log output.
func SetGlobalOutput(w io.Writer) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.Output = w
}

// SetJSONMode enables or disables JSON output mode.
func SetJSONMode(enabled bool) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.JSONMode = enabled
}

// NewLogger creates a new Logger for the specified component.
func NewLogger(component string) *Logger {
	return &Logger{component: component, mu: &sync.Mutex{}}
}

// Component returns the component name.
func (l *Logger) Component() string { return l.component }

// With returns a child logger that adds the given key-value pairs to every
// entry. The child shares its parent's output lock.
func (l *Logger) With(args ...interface{}) *Logger {
	fields := make([]Field, 0, len(l.fields)+len(args)/2)
	fields = append(fields, l.fields...)
	fields = append(fields, toFields(args)...)
	return &Logger{component: l.component, fields: fields, mu: l.mu}
}

func toFields(args []interface{}) []Field {
	fields := make([]Field, 0, (len(args)+1)/2)
	for i := 0; i < len(args)-1; i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("arg%d", i)
		}
		fields = append(fields, Field{Key: key, Value: args[i+1]})
	}
	// Handle odd number of args
	if len(args)%2 != 0 {
		fields = append(fields, Field{Key: "extra", Value: args[len(args)-1]})
	}
	return fields
}

// log writes a log entry at the specified level.
func (l *Logger) log(level Level, msg string, args ...interface{}) {
	globalMu.RLock()
	minLevel := globalConfig.Level
	output := globalConfig.Output
	jsonMode := globalConfig.JSONMode
	globalMu.RUnlock()

	if level < minLevel {
		return
	}

	fields := l.fields
	if len(args) > 0 {
		fields = append(append([]Field(nil), l.fields...), toFields(args)...)
	}
	now := time.Now().UTC()

	l.mu.Lock()
	defer l.mu.Unlock()

	if jsonMode {
		l.writeJSON(output, now, level, msg, fields)
	} else {
		l.writeText(output, now, level, msg, fields)
	}
}

// writeJSON writes the entry in JSON format.
func (l *Logger) writeJSON(w io.Writer, ts time.Time, level Level, msg string, fields []Field) {
	entry := Entry{
		Timestamp: ts,
		Level:     level.String(),
		Component: l.component,
		Message:   msg,
	}
	if len(fields) > 0 {
		entry.Fields = make(map[string]interface{}, len(fields))
		for _, f := range fields {
			// error values marshal to {} otherwise
			if err, ok := f.Value.(error); ok {
				entry.Fields[f.Key] = err.Error()
				continue
			}
			entry.Fields[f.Key] = f.Value
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(w, "ERROR: failed to marshal log entry: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(data))
}

// writeText writes the entry in human-readable text format.
func (l *Logger) writeText(w io.Writer, ts time.Time, level Level, msg string, fields []Field) {
	// Format: 2006-01-02T15:04:05.000Z [LEVEL] [component] message key=value ...
	var b strings.Builder
	b.WriteString(ts.Format("2006-01-02T15:04:05.000Z"))
	b.WriteByte(' ')

	tag := fmt.Sprintf("[%-5s]", level.String())
	if c, ok := levelColors[level]; ok {
		tag = c.Sprint(tag)
	}
	b.WriteString(tag)
	fmt.Fprintf(&b, " [%s] %s", l.component, msg)

	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}

	fmt.Fprintln(w, b.String())
}

// Debug logs a message at DEBUG level.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(DEBUG, msg, args...)
}

// Info logs a message at INFO level.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(INFO, msg, args...)
}

// Warn logs a message at WARN level.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(WARN, msg, args...)
}

// Error logs a message at ERROR level.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(ERROR, msg, args...)
}

// Enabled reports whether entries at level would be written.
func Enabled(level Level) bool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return level >= globalConfig.Level
}
