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
Package cli provides shared CLI utilities for FlyKafka applications.

COLORS:
=======
Colors come from github.com/fatih/color. They are disabled automatically
when output is not a TTY or NO_COLOR is set, and can be forced off with
SetColorsEnabled(false).

ICONS:
======
Unicode icons for CLI output:
- IconSuccess (✓), IconError (✗), IconWarning (⚠)
- IconInfo (ℹ), IconArrow (→), IconDot (●)

USAGE:
======

	cli.Success("Connected to %s", addr)
	cli.KeyValue("Error code", 0)
	cli.Table([]string{"API", "MIN", "MAX"}, rows)
*/
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Icons for CLI output
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconInfo    = "ℹ"
	IconArrow   = "→"
	IconDot     = "●"
)

var (
	red    = color.New(color.FgRed)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	header = color.New(color.FgCyan, color.Bold)
	dim    = color.New(color.Faint)
)

// stdout and stderr are swapped out by tests.
var (
	stdout io.Writer = color.Output
	stderr io.Writer = color.Error
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
}

// SetColorsEnabled enables or disables color output.
func SetColorsEnabled(enabled bool) {
	color.NoColor = !enabled
}

// ColorsEnabled reports whether color output is enabled.
func ColorsEnabled() bool {
	return !color.NoColor
}

// Success prints a success message.
func Success(format string, args ...interface{}) {
	fmt.Fprintln(stdout, green.Sprint(IconSuccess+" "+fmt.Sprintf(format, args...)))
}

// Error prints an error message.
func Error(format string, args ...interface{}) {
	fmt.Fprintln(stderr, red.Sprint(IconError+" "+fmt.Sprintf(format, args...)))
}

// ErrorWithHint prints an error message with a helpful hint.
func ErrorWithHint(message string, hint string) {
	fmt.Fprintln(stderr, red.Sprint(IconError+" "+message))
	if hint != "" {
		fmt.Fprintln(stderr, dim.Sprint("  "+IconArrow+" Hint: "+hint))
	}
}

// Warning prints a warning message.
func Warning(format string, args ...interface{}) {
	fmt.Fprintln(stdout, yellow.Sprint(IconWarning+" "+fmt.Sprintf(format, args...)))
}

// Info prints an info message.
func Info(format string, args ...interface{}) {
	fmt.Fprintln(stdout, cyan.Sprint(IconInfo+" "+fmt.Sprintf(format, args...)))
}

// Hint prints a hint message (dimmed).
func Hint(format string, args ...interface{}) {
	fmt.Fprintln(stdout, dim.Sprint("  "+IconArrow+" "+fmt.Sprintf(format, args...)))
}

// Header prints a header/title.
func Header(text string) {
	fmt.Fprintln(stdout, header.Sprint(text))
}

// KeyValue prints a key-value pair.
func KeyValue(key string, value interface{}) {
	fmt.Fprintf(stdout, "  %s: %v\n", dim.Sprint(key), value)
}

// Separator prints a horizontal line.
func Separator() {
	fmt.Fprintln(stdout, dim.Sprint(strings.Repeat("─", 40)))
}

// Status returns text colored green when ok and red otherwise.
func Status(text string, ok bool) string {
	if ok {
		return green.Sprint(text)
	}
	return red.Sprint(text)
}

// Table prints rows under a bold header, padding each column to its widest
// cell. Widths are measured on the uncolored text.
func Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if n := utf8.RuneCountInString(stripANSI(row[i])); n > widths[i] {
				widths[i] = n
			}
		}
	}

	printRow := func(cells []string, style *color.Color) {
		var b strings.Builder
		b.WriteString("  ")
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := w - utf8.RuneCountInString(stripANSI(cell))
			if style != nil {
				cell = style.Sprint(cell)
			}
			b.WriteString(cell)
			if i < len(widths)-1 {
				b.WriteString(strings.Repeat(" ", pad+2))
			}
		}
		fmt.Fprintln(stdout, strings.TrimRight(b.String(), " "))
	}

	printRow(headers, header)
	for _, row := range rows {
		printRow(row, nil)
	}
}

// stripANSI removes SGR escape sequences.
func stripANSI(s string) string {
	if !strings.Contains(s, "\033[") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
