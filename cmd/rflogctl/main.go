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

// Command rflogctl exercises an rflog logger from the command line: it emits
// entries, stresses the queues and prints the resolved configuration.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli"

	"github.com/rfkit/rflog"
)

const defaultComponent = "CLI"

func main() {
	lg := rflog.Default()
	app := newApp(lg, os.Stdout)

	err := app.Run(os.Args)
	lg.Shutdown()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp returns the command tree operating on lg, command output is written
// to out.
func newApp(lg *rflog.Logger, out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "rflogctl"
	app.Usage = "emit and inspect rflog log entries"
	app.Version = rflog.Version().String()
	app.Writer = out
	app.Commands = []cli.Command{
		cli.Command{
			Name:  "emit",
			Usage: "Emit a single log entry",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "level, l",
					Value: "info",
					Usage: "Entry level, one of: " + rflog.ValidLevels(),
				},
				cli.StringFlag{
					Name:  "component, c",
					Value: defaultComponent,
					Usage: "Entry component",
				},
				cli.StringFlag{
					Name:  "threshold, t",
					Usage: "Override the global threshold before emitting",
				},
			},
			ArgsUsage: "<message>",
			Action:    func(c *cli.Context) error {
				return emitCommand(c, lg)
			},
		},
		cli.Command{
			Name:  "stress",
			Usage: "Emit entries from concurrent producers and report the throughput",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "count, n",
					Value: 1000,
					Usage: "Number of entries to emit",
				},
				cli.IntFlag{
					Name:  "producers, p",
					Value: 4,
					Usage: "Number of concurrent producers",
				},
				cli.BoolFlag{
					Name:  "fastpath",
					Usage: "Use the fastpath channel instead of log entries",
				},
			},
			Action: func(c *cli.Context) error {
				return stressCommand(c, lg)
			},
		},
		cli.Command{
			Name:   "levels",
			Usage:  "Print the valid levels and the current global threshold",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "levels: %s\n", rflog.ValidLevels())
				fmt.Fprintf(c.App.Writer, "threshold: %s\n", lg.CurrentLevel())
				return nil
			},
		},
		cli.Command{
			Name:   "config",
			Usage:  "Print the configuration resolved from the build and the environment",
			Action: func(c *cli.Context) error {
				return configCommand(c, lg)
			},
		},
	}
	return app
}

func emitCommand(c *cli.Context, lg *rflog.Logger) error {
	level, err := rflog.ParseLevel(c.String("level"))
	if err != nil {
		return fmt.Errorf("invalid --level: %v", err)
	}

	if threshold := c.String("threshold"); threshold != "" {
		lvl, err := rflog.ParseLevel(threshold)
		if err != nil {
			return fmt.Errorf("invalid --threshold: %v", err)
		}
		lg.SetLevel(lvl)
	}

	msg := strings.Join(c.Args(), " ")
	if msg == "" {
		return fmt.Errorf("missing message")
	}

	st := lg.Stmt(level, c.String("component"))
	defer st.Done()
	st.Print(msg)

	if !st.Active() {
		fmt.Fprintf(c.App.Writer, "%s entry filtered by the %s threshold\n", level, lg.CurrentLevel())
	}
	return nil
}

func stressCommand(c *cli.Context, lg *rflog.Logger) error {
	count, producers := c.Int("count"), c.Int("producers")
	if count <= 0 || producers <= 0 {
		return fmt.Errorf("--count and --producers must be positive")
	}
	fastpath := c.Bool("fastpath")

	start := time.Now()
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		n := count / producers
		if p < count%producers {
			n++
		}

		wg.Add(1)
		go func(p, n int) {
			defer wg.Done()
			for i := 0; i < n; i++ {
				if fastpath {
					lg.Fastpath(".")
					continue
				}
				lg.Infof(defaultComponent, "producer %d entry %d", p, i)
			}
		}(p, n)
	}
	wg.Wait()

	elapsed := time.Since(start)
	fmt.Fprintf(c.App.Writer, "sent %d entries from %d producers in %v\n", count, producers, elapsed)
	return nil
}

func configCommand(c *cli.Context, lg *rflog.Logger) error {
	cfg := rflog.LoadConfig()
	w := c.App.Writer

	fmt.Fprintf(w, "version: %s\n", rflog.Version())
	fmt.Fprintf(w, "level: %s\n", cfg.Level)
	fmt.Fprintf(w, "console: disabled=%t level=%s %+v\n", cfg.ConsoleDisabled, cfg.ConsoleLevel, cfg.Console)
	fmt.Fprintf(w, "file: path=%q level=%s max_size_mb=%d max_backups=%d\n", cfg.FilePath, cfg.FileLevel, cfg.FileMaxSizeMB, cfg.FileMaxBackups)
	fmt.Fprintf(w, "fastpath: disabled=%t\n", cfg.FastpathDisabled)
	fmt.Fprintf(w, "sinks: %s\n", strings.Join(lg.Sinks(), ", "))

	for _, err := range cfg.Errors() {
		fmt.Fprintf(w, "error: %v\n", err)
	}
	return nil
}
