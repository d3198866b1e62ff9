// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package log provides the three-level (error, info, debug) leveled
// logging this sink uses: Info for spill creation, Debug for dump
// and notification summaries, Error for malformed sinkerr.E calls and
// for the fatal error the demo binary reports before exiting; the
// library packages return their errors without logging them. Output
// goes through the standard library's log
// package. Call AddFlags before flag.Parse to let a binary pick the
// level with -log.
package log

import (
	"flag"
	"fmt"
	golog "log"
	"runtime/debug"
	"sync/atomic"
)

// Level is a log verbosity level. Increasing levels decrease in
// priority and increase in verbosity: if the current level is L,
// a message at level M is emitted only when M <= L.
type Level int

const (
	// Off never emits messages.
	Off Level = iota - 2
	// Error emits error messages.
	Error
	// Info emits informational messages. This is the default level.
	Info
	// Debug emits messages intended for debugging and development.
	Debug
)

func (l Level) String() string {
	switch l {
	case Off:
		return "off"
	case Error:
		return "error"
	case Info:
		return "info"
	case Debug:
		return "debug"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

var level = Info

// Printf formats a message in the manner of fmt.Sprintf and emits it
// through the standard library's log package, provided l is at or
// below the level currently configured (by default, or via -log).
func (l Level) Printf(format string, v ...interface{}) {
	if l > level {
		return
	}
	golog.Output(2, fmt.Sprintf(format, v...))
}

// Panic formats a message in the manner of fmt.Sprint, logs it
// regardless of the configured level, and panics with it. must.Func
// defaults to this.
func Panic(v ...interface{}) {
	s := fmt.Sprint(v...)
	golog.Output(2, s)
	panic(s)
}

var addFlagsCalled int32

// AddFlags registers a -log flag on flag.CommandLine that sets the
// level by name (off, error, info, debug). Call before flag.Parse.
func AddFlags() {
	if atomic.AddInt32(&addFlagsCalled, 1) != 1 {
		Error.Printf("log.AddFlags: called twice!")
		debug.PrintStack()
		return
	}
	flag.Var(new(levelFlag), "log", "set log level (off, error, info, debug)")
}

type levelFlag string

func (f levelFlag) String() string { return string(f) }

func (f *levelFlag) Set(s string) error {
	switch s {
	case "off":
		level = Off
	case "error":
		level = Error
	case "info":
		level = Info
	case "debug":
		level = Debug
	default:
		return fmt.Errorf("invalid log level %q", s)
	}
	return nil
}

func (levelFlag) Get() interface{} { return level }
