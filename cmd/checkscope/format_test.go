// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/elastic/checkscope/internal/spans"
)

func TestConfirmY(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "lowercase_y", in: "y\n", want: true},
		{name: "uppercase_Y", in: "Y\n", want: true},
		{name: "whitespace_y", in: "  y  \n", want: true},
		{name: "empty", in: "\n", want: false},
		{name: "yes", in: "yes\n", want: false},
		{name: "other", in: "n\n", want: false},
		{name: "eof_no_newline", in: "y", want: true},
		{name: "eof_empty", in: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			ok, err := confirmY(strings.NewReader(tt.in), &out, "PROMPT> ")
			if err != nil {
				t.Fatalf("confirmY returned error: %v", err)
			}
			if ok != tt.want {
				t.Fatalf("confirmY(%q)=%v, want %v", tt.in, ok, tt.want)
			}
			if !strings.HasPrefix(out.String(), "PROMPT> ") {
				t.Fatalf("expected prompt to be written, got %q", out.String())
			}
		})
	}
}

func TestValidateOutput(t *testing.T) {
	t.Parallel()

	if err := validateOutput("json", outputTable, outputJSON); err != nil {
		t.Fatalf("validateOutput(json) error = %v", err)
	}
	err := validateOutput("xml", outputTable, outputJSON)
	if err == nil {
		t.Fatal("validateOutput(xml) expected error")
	}
	if !strings.Contains(err.Error(), "table, json") {
		t.Fatalf("error should list allowed formats, got %q", err)
	}
}

func TestComputeWidths(t *testing.T) {
	t.Parallel()

	cols := []column{{Label: "A", Width: 6}, {Label: "B", Width: 0}, {Label: "C", Width: 4}}
	got := computeWidths(cols, 40, 2)
	want := []int{6, 26, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("computeWidths()=%v, want %v", got, want)
		}
	}

	// Narrow terminals still leave the flex column usable.
	got = computeWidths(cols, 5, 2)
	if got[1] != 10 {
		t.Fatalf("flex width on narrow terminal = %d, want 10", got[1])
	}
}

func TestPadOrTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"abc", 5, "abc  "},
		{"abcdef", 5, "ab..."},
		{"a\nb", 4, "a b "},
		{"", 2, "  "},
	}
	for _, tt := range tests {
		if got := padOrTruncate(tt.in, tt.width); got != tt.want {
			t.Errorf("padOrTruncate(%q, %d)=%q, want %q", tt.in, tt.width, got, tt.want)
		}
		if w := ansi.StringWidth(padOrTruncate(tt.in, tt.width)); w != tt.width {
			t.Errorf("padOrTruncate(%q, %d) width=%d", tt.in, tt.width, w)
		}
	}

	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate kept %q, want short", got)
	}
}

func TestTableRendererRows(t *testing.T) {
	t.Setenv("COLUMNS", "40")

	var buf bytes.Buffer
	table := newTableRenderer(&buf, []column{{Label: "ID", Width: 4}, {Label: "NAME", Width: 0}})
	table.Header()
	table.Row("c1", "Login works")
	table.Row("c2")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{"ID    NAME", "c1    Login works", "c2"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines: %q", len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestProgressPrinter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	progress := progressPrinter(&buf, func(n int) string { return strings.Repeat("x", n) })
	progress(1, spans.Loading)
	progress(2, spans.Loading)
	progress(3, spans.Completed)

	want := "Fetched page 1: x...\nFetched page 2: xx...\nFetched 3 pages: xxx\n"
	if buf.String() != want {
		t.Fatalf("progress output = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	single := progressPrinter(&buf, func(n int) string { return "" })
	single(0, spans.Completed)
	if buf.Len() != 0 {
		t.Fatalf("single page should print nothing, got %q", buf.String())
	}
}

func TestStatusText(t *testing.T) {
	t.Parallel()

	if statusText(spans.StatusError) != "ERROR" || statusText(spans.StatusOK) != "OK" || statusText(spans.StatusUnset) != "UNSET" {
		t.Fatal("unexpected status labels")
	}
}
