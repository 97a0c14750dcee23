// Copyright 2025 The Merb Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"merb.dev/core/config"
	"merb.dev/core/logging"
	"merb.dev/core/metrics"
	"merb.dev/core/router"
	"merb.dev/core/tracing"
)

const (
	exitOK       = 0
	exitNotFound = 1
	exitUsage    = 2
)

const serviceName = "merb-routes"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var errUsage = errors.New("usage")

type options struct {
	files    []string
	consul   string
	logLevel string
	logType  string
	metrics  string
	tracing  string
	noColor  bool
	width    int
}

// cli holds everything a command needs. It is built by setup and
// released by close.
type cli struct {
	opts    options
	stdout  io.Writer
	stderr  io.Writer
	logger  *logging.Logger
	cfg     *config.Config
	router  *router.Router
	metrics *metrics.Recorder
	tracer  *tracing.Tracer
}

func parseFlags(args []string, stderr io.Writer) (options, []string, error) {
	var opts options
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.Func("f", "route definition file (repeatable)", func(s string) error {
		opts.files = append(opts.files, s)
		return nil
	})
	fs.StringVar(&opts.consul, "consul", "", "Consul key holding a route document")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	fs.StringVar(&opts.logType, "log-format", "console", "log format: console, text, json")
	fs.StringVar(&opts.metrics, "metrics", "", "metrics exporter: stdout, otlp=ENDPOINT")
	fs.StringVar(&opts.tracing, "trace", "", "trace exporter: stdout, otlp=ENDPOINT")
	fs.BoolVar(&opts.noColor, "no-color", false, "disable colors")
	fs.IntVar(&opts.width, "width", 120, "table width when the terminal size is unknown")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s [flags] list|match|generate|export|version [args]\n", serviceName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return opts, nil, errUsage
	}
	return opts, fs.Args(), nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, rest, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cmd, cmdArgs := rest[0], rest[1:]
	if cmd == "version" {
		printVersion(colorWriter(stdout, opts.noColor))
		return exitOK
	}

	c := &cli{opts: opts, stdout: stdout, stderr: stderr}
	ctx := context.Background()
	if err := c.setup(ctx); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", serviceName, err)
		c.close()
		return exitUsage
	}
	defer c.close()

	switch cmd {
	case "list":
		return c.list()
	case "match":
		return c.match(ctx, cmdArgs)
	case "generate":
		return c.generate(ctx, cmdArgs)
	case "export":
		return c.export(cmdArgs)
	default:
		fmt.Fprintf(stderr, "%s: unknown command %q\n", serviceName, cmd)
		return exitUsage
	}
}

func (c *cli) setup(ctx context.Context) error {
	level, err := logging.ParseLevel(c.opts.logLevel)
	if err != nil {
		return err
	}
	c.logger, err = logging.New(
		logging.WithFormat(logging.Format(c.opts.logType)),
		logging.WithOutput(c.stderr),
		logging.WithLevel(level),
		logging.WithServiceName(serviceName),
		logging.WithServiceVersion(version),
	)
	if err != nil {
		return err
	}

	recorders := []router.Recorder{logging.NewRecorder(c.logger)}
	if c.opts.metrics != "" {
		if c.metrics, err = c.newMetrics(ctx); err != nil {
			return err
		}
		recorders = append(recorders, c.metrics)
	}
	if c.opts.tracing != "" {
		if c.tracer, err = c.newTracer(); err != nil {
			return err
		}
		recorders = append(recorders, c.tracer)
	}

	var cfgOpts []config.Option
	for _, f := range c.opts.files {
		cfgOpts = append(cfgOpts, config.WithFile(f))
	}
	if c.opts.consul != "" {
		cfgOpts = append(cfgOpts, config.WithConsul(c.opts.consul))
	}
	if len(cfgOpts) == 0 {
		return errors.New("no route files given (use -f)")
	}
	if c.cfg, err = config.New(cfgOpts...); err != nil {
		return err
	}
	if err := c.cfg.Load(ctx); err != nil {
		return err
	}

	c.router, err = router.New(
		router.WithDiagnostics(logging.DiagnosticHandler(c.logger)),
		router.WithRecorder(router.Recorders(recorders...)),
	)
	if err != nil {
		return err
	}
	return c.router.Prepare(c.cfg.Routes())
}

func (c *cli) newMetrics(ctx context.Context) (*metrics.Recorder, error) {
	opts := []metrics.Option{
		metrics.WithServiceName(serviceName),
		metrics.WithServiceVersion(version),
		metrics.WithLogger(c.logger.Logger()),
	}
	switch kind, endpoint, _ := strings.Cut(c.opts.metrics, "="); kind {
	case "stdout":
		opts = append(opts, metrics.WithStdoutWriter(c.stderr))
	case "otlp":
		opts = append(opts, metrics.WithOTLP(endpoint))
	default:
		return nil, fmt.Errorf("unknown metrics exporter %q", c.opts.metrics)
	}

	rec, err := metrics.New(opts...)
	if err != nil {
		return nil, err
	}
	return rec, rec.Start(ctx)
}

func (c *cli) newTracer() (*tracing.Tracer, error) {
	opts := []tracing.Option{
		tracing.WithServiceName(serviceName),
		tracing.WithServiceVersion(version),
		tracing.WithLogger(c.logger.Logger()),
		tracing.WithRecordParams(),
	}
	switch kind, endpoint, _ := strings.Cut(c.opts.tracing, "="); kind {
	case "stdout":
		opts = append(opts, tracing.WithStdoutWriter(c.stderr))
	case "otlp":
		opts = append(opts, tracing.WithOTLPHTTP(endpoint))
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", c.opts.tracing)
	}
	return tracing.New(opts...)
}

// close flushes exporters and stops the logger.
func (c *cli) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if c.tracer != nil {
		if err := c.tracer.Shutdown(ctx); err != nil && c.logger != nil {
			c.logger.LogError(err, "tracer shutdown failed")
		}
	}
	if c.metrics != nil {
		if err := c.metrics.Shutdown(ctx); err != nil && c.logger != nil {
			c.logger.LogError(err, "metrics shutdown failed")
		}
	}
	if c.logger != nil {
		_ = c.logger.Shutdown(ctx)
	}
}
