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
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/common-nighthawk/go-figure"
	"golang.org/x/term"

	"merb.dev/core/router"
	"merb.dev/core/router/route"
)

var methodStyles = map[string]lipgloss.Style{
	"GET":     lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	"POST":    lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
	"PUT":     lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	"DELETE":  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	"PATCH":   lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
	"HEAD":    lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
	"OPTIONS": lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Bold(true),
}

var (
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(10)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
)

// colorWriter downsamples ANSI colors to what w supports. Output that is
// not a terminal gets no colors.
func colorWriter(w io.Writer, noColor bool) *colorprofile.Writer {
	cpw := colorprofile.NewWriter(w, os.Environ())
	if noColor {
		cpw.Profile = colorprofile.NoTTY
	}
	return cpw
}

// terminalWidth returns the width of the terminal behind w, or fallback
// when w is not a terminal.
func terminalWidth(w io.Writer, fallback int) int {
	file, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
		return width
	}
	return fallback
}

// renderRoutes writes routes as a table at least 60 columns wide.
func renderRoutes(w io.Writer, routes []*route.Route, width int, useColors bool) {
	if len(routes) == 0 {
		fmt.Fprintln(w, "no routes")
		return
	}

	rows := make([][]string, 0, len(routes))
	for _, r := range routes {
		info := r.Info()

		method := info.Method
		if useColors {
			if style, ok := methodStyles[method]; ok {
				method = style.Render(method)
			}
		}
		name := info.Name
		if name == "" {
			name = "-"
		} else if useColors {
			name = nameStyle.Render(name)
		}

		rows = append(rows, []string{
			strconv.Itoa(info.Index),
			method,
			info.Path,
			name,
			formatMap(info.Params),
		})
	}

	tableWidth := max(60, width)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(func() lipgloss.Style {
			if useColors {
				return lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
			}
			return lipgloss.NewStyle()
		}()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			style := lipgloss.NewStyle().Align(lipgloss.Left).Padding(0, 1)
			if row == table.HeaderRow && useColors {
				style = style.Bold(true).Foreground(lipgloss.Color("230"))
			}
			return style
		}).
		Headers("#", "Method", "Path", "Name", "Params").
		Rows(rows...).
		Width(tableWidth)

	fmt.Fprintln(w, t.Render())
}

// renderMatch writes a match result.
func renderMatch(w io.Writer, m router.Match) {
	line := func(label, value string) {
		fmt.Fprintln(w, labelStyle.Render(label)+" "+valueStyle.Render(value))
	}

	line("route", strconv.Itoa(m.Index))
	if name := m.Name(); name != "" {
		line("name", name)
	}
	line("path", m.Route.Path())
	for _, k := range slices.Sorted(maps.Keys(m.Params)) {
		line(k, m.Params[k])
	}
}

func printVersion(w io.Writer) {
	art := figure.NewFigure("merb", "", false)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	for _, line := range art.Slicify() {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fmt.Fprintln(w, style.Render(line))
	}
	fmt.Fprintln(w, labelStyle.Render("version")+" "+valueStyle.Render(version))
}

func formatMap(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		parts = append(parts, k+"="+m[k])
	}
	return strings.Join(parts, " ")
}
