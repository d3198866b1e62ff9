// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package must_test

import (
	"fmt"
	"testing"

	"github.com/grailbio/streamsort/must"
	"github.com/stretchr/testify/require"
)

func TestTruefNoopWhenTrue(t *testing.T) {
	orig := must.Func
	defer func() { must.Func = orig }()

	called := false
	must.Func = func(v ...interface{}) { called = true }

	must.Truef(true, "should never fire: %d", 1)
	require.False(t, called)
}

func TestTruefCallsFuncWhenFalse(t *testing.T) {
	orig := must.Func
	defer func() { must.Func = orig }()

	var got string
	must.Func = func(v ...interface{}) { got = fmt.Sprint(v...) }

	must.Truef(false, "value %d is invalid", 42)
	require.Equal(t, "value 42 is invalid", got)
}

func Example() {
	must.Func = func(v ...interface{}) {
		fmt.Print(v...)
		fmt.Print("\n")
	}

	must.Truef(true, "unreachable")
	must.Truef(false, "a condition failed")

	// Output:
	// a condition failed
}
