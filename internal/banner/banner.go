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
Package banner provides the startup banner display for FlyKafka.

OVERVIEW:
=========
Displays an ASCII art banner with version information when the server or
CLI starts. Colors come from github.com/fatih/color, which disables them
automatically when the output is not a terminal.

USAGE:
======

	banner.Print()                     // Print to stdout
	banner.PrintTo(writer)             // Print to custom writer
	banner.PrintServerWithConfig(cfg)  // Print server banner with configuration

The banner text is embedded at compile time from banner.txt.
*/
package banner

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/fatih/color"

	"flykafka/internal/config"
)

//go:embed banner.txt
var bannerText string

// Version information
const (
	Version   = "0.4.0"
	Copyright = "Copyright (c) 2026 Firefly Software Solutions Inc."
	License   = "Licensed under Apache License 2.0"
)

var (
	title  = color.New(color.FgCyan, color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	greenB = color.New(color.FgGreen, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// GetBanner returns the raw ASCII banner text.
func GetBanner() string {
	return bannerText
}

// GetBannerLines returns the banner as individual lines.
func GetBannerLines() []string {
	return strings.Split(strings.TrimRight(bannerText, "\n"), "\n")
}

// Print displays the startup banner with version and copyright information.
func Print() {
	PrintTo(os.Stdout)
}

// PrintTo writes the banner to the specified writer.
func PrintTo(w io.Writer) {
	printArt(w)
	fmt.Fprintln(w, "  "+greenB("FlyKafka")+" "+dim("v"+Version))
	fmt.Fprintln(w, dim("  Kafka protocol broker"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, dim("  "+Copyright))
	fmt.Fprintln(w)
}

// PrintCompact prints a compact version of the banner.
func PrintCompact() {
	fmt.Println(title("FlyKafka") + " v" + Version)
}

// PrintCLI prints the banner suitable for CLI startup.
func PrintCLI() {
	printArt(os.Stdout)
	fmt.Println("  " + greenB("FlyKafka CLI") + " " + dim("v"+Version))
	fmt.Println()
}

func printArt(w io.Writer) {
	fmt.Fprintln(w)
	for _, line := range GetBannerLines() {
		fmt.Fprintln(w, "  "+title(line))
	}
	fmt.Fprintln(w)
}

// PrintServerWithConfig prints the server banner with a configuration summary.
func PrintServerWithConfig(cfg *config.Config) {
	PrintServerWithConfigTo(os.Stdout, cfg)
}

// PrintServerWithConfigTo writes the server banner with configuration to the specified writer.
func PrintServerWithConfigTo(w io.Writer, cfg *config.Config) {
	printArt(w)
	fmt.Fprintln(w, "  "+greenB("FlyKafka Server")+" "+dim("v"+Version))
	fmt.Fprintln(w, dim("  Kafka protocol broker"))
	fmt.Fprintln(w)

	printConfigSource(w, cfg)
	printCompactConfig(w, cfg)

	fmt.Fprintln(w, dim("  "+Copyright))
	fmt.Fprintln(w)

	printLogSeparator(w)
}

// PrintLogSeparator prints a visual separator before logs start.
func PrintLogSeparator() {
	printLogSeparator(os.Stdout)
}

func printLogSeparator(w io.Writer) {
	const lineWidth = 78
	text := " LOGS START HERE "
	padding := (lineWidth - len(text) - 4) / 2 // 4 for arrows on each side
	if padding < 0 {
		padding = 0
	}
	line := strings.Repeat("-", padding)
	fmt.Fprintf(w, "  %s%s%s\n", yellow("vv"+line), bold(text), yellow(line+"vv"))
	fmt.Fprintln(w)
}

// Helper functions for configuration display

func printConfigSource(w io.Writer, cfg *config.Config) {
	fmt.Fprint(w, "  "+dim("Config: "))
	if cfg.ConfigFile != "" {
		fmt.Fprintln(w, yellow(cfg.ConfigFile))
	} else {
		fmt.Fprintln(w, dim("defaults + environment"))
	}
	fmt.Fprintln(w)
}

func printCompactConfig(w io.Writer, cfg *config.Config) {
	const lineWidth = 78

	// === SERVER ===
	printSectionHeader(w, "Server", lineWidth)
	printRow3(w,
		fmtKV("Listen", green(cfg.BindAddr)),
		fmtKV("Max message", formatBytes(int64(cfg.MaxMessageSize))),
		fmtKV("Log", cfg.LogLevel))
	printRow3(w,
		fmtKV("Read timeout", formatMillis(cfg.ReadTimeoutMs)),
		fmtKV("Write timeout", formatMillis(cfg.WriteTimeoutMs)),
		fmtKV("CPUs", fmt.Sprintf("%d", runtime.NumCPU())))
	fmt.Fprintln(w)

	// === APIS ===
	printSectionHeader(w, "APIs", lineWidth)
	printAPIs(w)
	fmt.Fprintln(w)

	// === TOPICS ===
	printSectionHeader(w, "Topics", lineWidth)
	printTopics(w, cfg)
	fmt.Fprintln(w)

	// === OBSERVABILITY ===
	printSectionHeader(w, "Endpoints", lineWidth)
	printEndpointsInfo(w, cfg)
	fmt.Fprintln(w)
}

func printSectionHeader(w io.Writer, name string, width int) {
	titleLen := len(name) + 4 // "[ name ]"
	leftPad := 2
	rightPad := width - leftPad - titleLen
	if rightPad < 0 {
		rightPad = 0
	}
	fmt.Fprintf(w, "  %s%s%s\n",
		dim(strings.Repeat("-", leftPad)+"[ "),
		title(name),
		dim(" ]"+strings.Repeat("-", rightPad)))
}

func fmtKV(key, value string) string {
	return fmt.Sprintf("%s %s", dim(key+":"), value)
}

func printRow3(w io.Writer, col1, col2, col3 string) {
	fmt.Fprintf(w, "  %-32s %-26s %s\n", col1, col2, col3)
}

func printRow2(w io.Writer, col1, col2 string) {
	fmt.Fprintf(w, "  %-40s %s\n", col1, col2)
}

func formatBytes(bytes int64) string {
	if bytes == 0 {
		return "unlimited"
	}
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.0f%cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return "none"
	}
	if ms%1000 == 0 {
		return fmt.Sprintf("%ds", ms/1000)
	}
	return fmt.Sprintf("%dms", ms)
}

func printAPIs(w io.Writer) {
	printRow2(w,
		fmtKV("ApiVersions", "v0-v4"),
		fmtKV("DescribeTopicPartitions", "v0"))
}

func printTopics(w io.Writer, cfg *config.Config) {
	if len(cfg.Topics) == 0 {
		printRow2(w,
			fmtKV("Catalog", yellow("empty")),
			dim("(every topic is reported as unknown)"))
		return
	}
	for _, t := range cfg.Topics {
		partitions := t.Partitions
		if partitions <= 0 {
			partitions = 1
		}
		extra := ""
		if t.Internal {
			extra = dim("internal")
		}
		printRow3(w, fmtKV("Topic", green(t.Name)), fmtKV("Partitions", fmt.Sprintf("%d", partitions)), extra)
	}
}

func printEndpointsInfo(w io.Writer, cfg *config.Config) {
	endpoints := []string{fmtKV("Kafka", green(cfg.BindAddr))}
	if cfg.Observability.Metrics.Enabled {
		endpoints = append(endpoints, fmtKV("Metrics", cfg.Observability.Metrics.Addr+"/metrics"))
	} else {
		endpoints = append(endpoints, fmtKV("Metrics", dim("off")))
	}
	if cfg.Observability.Tracing.Enabled {
		endpoints = append(endpoints, fmtKV("Tracing", fmt.Sprintf("log (%.0f%%)", cfg.Observability.Tracing.SampleRate*100)))
	} else {
		endpoints = append(endpoints, fmtKV("Tracing", dim("off")))
	}
	printRow3(w, endpoints[0], endpoints[1], endpoints[2])
	if cfg.Observability.Health.Enabled {
		printRow2(w, fmtKV("Health", cfg.Observability.Health.Addr+"/health"), "")
	}
}
