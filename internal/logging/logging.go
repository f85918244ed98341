// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the zap logger shared by the CLI and the TUI.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // console or json
	// Output defaults to stderr. The TUI points it at a file or io.Discard so
	// log lines never tear the alt screen.
	Output io.Writer
	// Extra cores, such as the OTLP bridge, receive every record at or above Level.
	Extra []zapcore.Core
}

// New returns a logger writing to Output and every extra core.
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	switch opts.Format {
	case "", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(out), level)}
	for _, c := range opts.Extra {
		if c == nil {
			continue
		}
		// Extra cores keep their own encoding but share the level.
		lc, err := zapcore.NewIncreaseLevelCore(c, level)
		if err != nil {
			cores = append(cores, c)
			continue
		}
		cores = append(cores, lc)
	}
	return zap.New(zapcore.NewTee(cores...)).Named("checkscope"), nil
}
