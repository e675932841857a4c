//  Copyright 2024 Google LLC
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package rflog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// ConsoleBackend is a simple backend implementation for logging to stderr.
type ConsoleBackend struct {
	// writer by default it's set to a colorable stderr, tests might override it
	// to a local writer.
	writer io.Writer
	// opts are the optional fields to print.
	opts ConsoleOptions
	// colors maps levels to their prefix color, it's nil when coloring is off.
	colors map[Level]*color.Color
	// metrics is the console write metrics.
	metrics *sinkMetrics
}

// NewConsoleBackend returns a Backend implementation that will log out to
// writer, a nil writer means the process' stderr. Colors are only used when
// requested in opts and when the writer is a terminal.
func NewConsoleBackend(writer io.Writer, opts ConsoleOptions) *ConsoleBackend {
	if writer == nil {
		writer = colorable.NewColorableStderr()
		if !isTerminal(os.Stderr) {
			opts.Color = false
		}
	} else if file, ok := writer.(*os.File); !ok || !isTerminal(file) {
		opts.Color = false
	}

	res := &ConsoleBackend{
		writer:  writer,
		opts:    opts,
		metrics: &sinkMetrics{},
	}

	if opts.Color {
		res.colors = map[Level]*color.Color{
			TraceLevel:   color.New(color.FgMagenta),
			DebugLevel:   color.New(color.FgBlue),
			InfoLevel:    color.New(color.FgGreen),
			WarningLevel: color.New(color.FgYellow),
			ErrorLevel:   color.New(color.FgRed),
			FatalLevel:   color.New(color.FgHiRed, color.Bold),
		}
		// The terminal check was already done against the real writer,
		// color's own detection only knows about os.Stdout.
		for _, c := range res.colors {
			c.EnableColor()
		}
	}

	return res
}

func isTerminal(file *os.File) bool {
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// Log prints the log entry to the console.
func (cb *ConsoleBackend) Log(entry LogEntry) {
	message := cb.format(entry)

	n, err := io.WriteString(cb.writer, message)
	if err == nil && n != len(message) {
		err = fmt.Errorf("failed to write the message, wrote %d bytes out of %d bytes", n, len(message))
	}
	if err != nil {
		err = fmt.Errorf("failed to write log to console: %+v", err)
	}
	cb.metrics.record(err)
}

// format renders entry as:
//
//	[time] [0xthread] [file:line] [LEVEL] [component] message
//
// where the first three fields are optional.
func (cb *ConsoleBackend) format(entry LogEntry) string {
	prefix := new(strings.Builder)
	if cb.opts.Time {
		fmt.Fprintf(prefix, "[%s] ", entry.When.Format(timeLayout))
	}
	if cb.opts.Thread {
		fmt.Fprintf(prefix, "[%s] ", entry.ThreadHex())
	}
	if cb.opts.Source {
		fmt.Fprintf(prefix, "[%s:%d] ", entry.Filename(), entry.Line)
	}
	fmt.Fprintf(prefix, "[%s] [%s]", entry.Level, entry.Component)

	head := prefix.String()
	if c, found := cb.colors[entry.Level]; found {
		head = c.Sprint(head)
	}

	return head + " " + entry.Message + "\n"
}

// Stats returns the console write counters.
func (cb *ConsoleBackend) Stats() SinkStats {
	return cb.metrics.stats()
}
