// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ulog is a minimal leveled logger for the QP drivers and the
// walking-pattern generator, following the teacher's own io.Writer-based
// Logger rather than a third-party logging framework: the solve loop runs
// once per control tick and must not pay for log formatting when logging
// is disabled.
package ulog

import (
	"fmt"
	"io"
)

// Level controls the verbosity of a Logger.
type Level int

const (
	// Off disables all output (the zero value).
	Off Level = iota
	// Summary prints per-call outcomes (FormPreviewWindow logs a halt at
	// this level).
	Summary
	// Iter prints one line per solver iteration (active-set step or
	// interior-point inner Newton step).
	Iter
	// Trace is the most verbose level; no call site in this module logs
	// at it, so it currently prints the same as Iter.
	Trace
)

// Logger writes narrative messages to Msg and tabular iterate dumps to Out.
// A nil *Logger or a Logger with Level == Off is inert: every method is a
// no-op, so callers may hold an optional *Logger field and log
// unconditionally without checking for nil at every call site other than
// the Logger itself.
type Logger struct {
	Level Level
	Msg   io.Writer
	Out   io.Writer
}

func (l *Logger) enabled(level Level) bool {
	return l != nil && l.Level >= level
}

// Logf writes a narrative line to Msg if level is enabled.
func (l *Logger) Logf(level Level, format string, a ...any) {
	if !l.enabled(level) || l.Msg == nil {
		return
	}
	_, _ = fmt.Fprintf(l.Msg, format, a...)
}

// Outf writes a tabular line to Out if level is enabled.
func (l *Logger) Outf(level Level, format string, a ...any) {
	if !l.enabled(level) || l.Out == nil {
		return
	}
	_, _ = fmt.Fprintf(l.Out, format, a...)
}
