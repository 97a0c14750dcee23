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
	"fmt"
	"maps"
	"slices"
	"strings"

	"merb.dev/core/config"
	"merb.dev/core/config/codec"
	"merb.dev/core/router"
)

// list prints the route table.
func (c *cli) list() int {
	width := terminalWidth(c.stdout, c.opts.width)
	renderRoutes(colorWriter(c.stdout, c.opts.noColor), c.router.Routes(), width, !c.opts.noColor)
	return exitOK
}

// match matches METHOD PATH with optional request attributes.
func (c *cli) match(ctx context.Context, args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(c.stderr, "usage: match METHOD PATH [attr=value...]")
		return exitUsage
	}
	attrs, err := keyValues(args[2:])
	if err != nil {
		fmt.Fprintf(c.stderr, "%s: %v\n", serviceName, err)
		return exitUsage
	}

	req := router.NewRequest(strings.ToUpper(args[0]), args[1], attrs)
	m, err := c.router.MatchContext(ctx, req)
	if err != nil {
		fmt.Fprintf(c.stderr, "%s: %v\n", serviceName, err)
		return exitNotFound
	}
	if !m.Found() {
		fmt.Fprintf(c.stderr, "no route matches %s %s\n", req.Method(), req.Path())
		return exitNotFound
	}

	renderMatch(colorWriter(c.stdout, c.opts.noColor), m)
	return exitOK
}

// generate builds a URL for a named route, or for the default route when
// the name is "-".
func (c *cli) generate(ctx context.Context, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(c.stderr, "usage: generate NAME|- [key=value...]")
		return exitUsage
	}
	kv, err := keyValues(args[1:])
	if err != nil {
		fmt.Fprintf(c.stderr, "%s: %v\n", serviceName, err)
		return exitUsage
	}
	params := make(map[string]any, len(kv))
	for k, v := range kv {
		params[k] = v
	}

	var url string
	if args[0] == "-" {
		url, err = c.router.GenerateDefault(params, nil)
	} else {
		url, err = c.router.GenerateContext(ctx, args[0], params, nil)
	}
	if err != nil {
		fmt.Fprintf(c.stderr, "%s: %v\n", serviceName, err)
		if errors.Is(err, router.ErrRouteNotFound) {
			names := slices.Sorted(maps.Keys(c.router.NamedRoutes()))
			fmt.Fprintf(c.stderr, "named routes: %s\n", strings.Join(names, ", "))
		}
		return exitNotFound
	}

	fmt.Fprintln(c.stdout, url)
	return exitOK
}

// export prints the merged route document.
func (c *cli) export(args []string) int {
	format := codec.TypeYAML
	if len(args) > 0 {
		format = codec.Type(args[0])
	}

	data, err := c.cfg.Encode(format)
	if err != nil {
		var cerr *config.Error
		if errors.As(err, &cerr) {
			fmt.Fprintf(c.stderr, "%s: %v (formats: %v)\n", serviceName, err, codec.Types())
		} else {
			fmt.Fprintf(c.stderr, "%s: %v\n", serviceName, err)
		}
		return exitUsage
	}

	_, _ = c.stdout.Write(data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		fmt.Fprintln(c.stdout)
	}
	return exitOK
}

// keyValues parses key=value arguments.
func keyValues(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("argument %q is not key=value", arg)
		}
		out[k] = v
	}
	return out, nil
}
