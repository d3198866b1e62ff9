// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package must provides a single fatal-assertion helper, Truef, for
// validating command-line flags in top-level binaries before they
// are used. It should rarely be used outside of main packages.
package must

import (
	"fmt"

	"github.com/grailbio/streamsort/log"
)

// Func is called to report a failed assertion. It is a var so that
// tests can substitute it; production code should leave it set to
// its default, log.Panic.
var Func func(...interface{}) = log.Panic

// Truef is a no-op if x is true. If it is false, Truef formats a
// message in the manner of fmt.Sprintf and calls Func.
func Truef(x bool, format string, v ...interface{}) {
	if x {
		return
	}
	Func(fmt.Sprintf(format, v...))
}
