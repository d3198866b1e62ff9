// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package log_test

import (
	"bytes"
	"flag"
	golog "log"
	"os"
	"testing"

	"github.com/grailbio/streamsort/log"
	"github.com/stretchr/testify/require"
)

func TestLevelGatingAndFlag(t *testing.T) {
	var buf bytes.Buffer
	golog.SetOutput(&buf)
	golog.SetFlags(0)
	defer golog.SetOutput(os.Stderr)

	log.AddFlags()
	require.NoError(t, flag.CommandLine.Set("log", "error"))

	buf.Reset()
	log.Debug.Printf("invisible")
	require.Empty(t, buf.String())

	buf.Reset()
	log.Error.Printf("visible %d", 1)
	require.Contains(t, buf.String(), "visible 1")

	require.NoError(t, flag.CommandLine.Set("log", "debug"))
	buf.Reset()
	log.Debug.Printf("now visible")
	require.Contains(t, buf.String(), "now visible")

	// A second AddFlags call logs a warning and returns rather than
	// registering the flag twice.
	buf.Reset()
	log.AddFlags()
	require.Contains(t, buf.String(), "called twice")
}

func TestPanicLogsThenPanics(t *testing.T) {
	var buf bytes.Buffer
	golog.SetOutput(&buf)
	defer golog.SetOutput(os.Stderr)

	defer func() {
		r := recover()
		require.Equal(t, "boom", r)
		require.Contains(t, buf.String(), "boom")
	}()
	log.Panic("boom")
}
