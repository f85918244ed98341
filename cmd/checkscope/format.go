// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func validateOutput(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q (use %s)", format, strings.Join(allowed, ", "))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// column describes one table column. Width 0 marks the flex column that
// takes the remaining terminal width.
type column struct {
	Label string
	Width int
}

// tableRenderer prints fixed-width rows sized to the terminal.
type tableRenderer struct {
	w       io.Writer
	columns []column
	widths  []int
	sep     string
}

func newTableRenderer(w io.Writer, columns []column) *tableRenderer {
	t := &tableRenderer{w: w, columns: columns, sep: "  "}
	t.widths = computeWidths(columns, detectTerminalWidth(), len(t.sep))
	return t
}

func computeWidths(columns []column, total, sepLen int) []int {
	widths := make([]int, len(columns))
	fixed := 0
	flexIdx := -1
	for i, col := range columns {
		if col.Width > 0 {
			fixed += col.Width
		} else if flexIdx < 0 {
			flexIdx = i
		}
	}
	available := total - fixed - sepLen*(len(columns)-1)
	if available < 10 {
		available = 10
	}
	for i, col := range columns {
		switch {
		case col.Width > 0:
			widths[i] = col.Width
		case i == flexIdx:
			widths[i] = available
		default:
			widths[i] = 10
		}
	}
	return widths
}

func detectTerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	if env := os.Getenv("COLUMNS"); env != "" {
		if val, err := strconv.Atoi(env); err == nil && val > 0 {
			return val
		}
	}
	return 120
}

func (t *tableRenderer) Header() {
	labels := make([]string, len(t.columns))
	for i, col := range t.columns {
		labels[i] = col.Label
	}
	t.Row(labels...)
}

func (t *tableRenderer) Row(cells ...string) {
	parts := make([]string, len(t.widths))
	for i := range t.widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		if i == len(t.widths)-1 {
			parts[i] = truncate(cell, t.widths[i])
		} else {
			parts[i] = padOrTruncate(cell, t.widths[i])
		}
	}
	fmt.Fprintln(t.w, strings.TrimRight(strings.Join(parts, t.sep), " "))
}

// padOrTruncate ensures a string is exactly the given width, padding with spaces or truncating
func padOrTruncate(s string, width int) string {
	s = singleLine(s)
	w := ansi.StringWidth(s)
	if w > width {
		return ansi.Truncate(s, width, "...")
	}
	return s + strings.Repeat(" ", width-w)
}

func truncate(s string, width int) string {
	s = singleLine(s)
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "...")
}

func singleLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

// confirmY prompts and reads one line. Only a single 'y' or 'Y' confirms.
func confirmY(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, err
	}
	r := bufio.NewReader(in)
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	line = strings.TrimSpace(line)
	return line == "y" || line == "Y", nil
}
