// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ulog

import (
	"bytes"
	"testing"
)

func TestNilLoggerIsInert(t *testing.T) {
	var l *Logger
	l.Logf(Trace, "should not panic %d", 1)
	l.Outf(Trace, "should not panic %d", 1)
}

func TestLevelGating(t *testing.T) {
	var msg bytes.Buffer
	l := &Logger{Level: Summary, Msg: &msg}
	l.Logf(Trace, "hidden")
	if msg.Len() != 0 {
		t.Fatalf("expected no output at Trace when Level=Summary, got %q", msg.String())
	}
	l.Logf(Summary, "visible %d", 1)
	if msg.String() != "visible 1" {
		t.Fatalf("got %q", msg.String())
	}
}

func TestOutWriterSeparateFromMsg(t *testing.T) {
	var msg, out bytes.Buffer
	l := &Logger{Level: Iter, Msg: &msg, Out: &out}
	l.Logf(Iter, "step %d\n", 1)
	l.Outf(Iter, "x=%v\n", []float64{1, 2})
	if msg.String() != "step 1\n" {
		t.Fatalf("msg = %q", msg.String())
	}
	if out.String() != "x=[1 2]\n" {
		t.Fatalf("out = %q", out.String())
	}
}
