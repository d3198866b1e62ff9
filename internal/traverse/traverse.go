// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package traverse provides concurrent slice traversal. It is
// trimmed to the two entry points this module actually calls: Do,
// used by buffer.DumpSafe to open and close on-disk run readers
// concurrently, and DoRange, used by psort to parallelize chunked
// copies over a permutation.
package traverse

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/grailbio/streamsort/internal/errorreporter"
)

type panicErr struct {
	v     interface{}
	stack []byte
}

func (p panicErr) Error() string { return fmt.Sprint(p.v) }

// Traverse is a traversal of a given length. Traverse instances
// should be instantiated with Each.
type Traverse struct {
	n, maxConcurrent int
}

// Each creates a new traversal of length n, with no concurrency
// limit until Limit is called.
func Each(n int) Traverse {
	return Traverse{n, n}
}

// Limit limits the concurrency of the traversal to maxConcurrent.
func (t Traverse) Limit(maxConcurrent int) Traverse {
	t.maxConcurrent = maxConcurrent
	return t
}

// Do performs a traversal, invoking op for each index, 0 <= i < t.n.
// Do returns the first error returned by any invoked op, or nil when
// all ops succeed. Traversal is terminated early on error. Panics
// are recovered in ops and propagated to the calling goroutine,
// printing the original stack trace. Do guarantees that, after it
// returns, no more ops will be invoked.
func (t Traverse) Do(op func(i int) error) error {
	return t.DoRange(func(start, end int) (err error) {
		for i := start; i < end && err == nil; i++ {
			err = op(i)
		}
		return err
	})
}

// DoRange is like Do, except op is called once per contiguous
// [start, end) shard rather than once per index. The range is split
// into at most t.maxConcurrent shards of equal width (the last may be
// shorter); a pool of up to t.maxConcurrent goroutines pulls shards
// off a shared counter until none remain. This lets a caller process
// a range in bulk (e.g. copying a slice segment) instead of index by
// index.
func (t Traverse) DoRange(op func(start, end int) error) error {
	if t.n == 0 {
		return nil
	}

	maxConcurrent := t.maxConcurrent
	if t.n < maxConcurrent {
		maxConcurrent = t.n
	}
	shardSize := (t.n + maxConcurrent - 1) / maxConcurrent
	numShards := (t.n + shardSize - 1) / shardSize

	var errorReporter errorreporter.T
	apply := func(shard int) (err error) {
		defer func() {
			if perr := recover(); perr != nil {
				err = panicErr{perr, debug.Stack()}
			}
		}()
		start := shard * shardSize
		end := start + shardSize
		if end > t.n {
			end = t.n
		}
		return op(start, end)
	}
	var wg sync.WaitGroup
	wg.Add(maxConcurrent)

	var x int64 = -1 // x is treated with atomic operations and accessed from multiple goroutines.
	for i := 0; i < maxConcurrent; i++ {
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&x, 1)) // the first iteration will return 0.
				if i >= numShards || errorReporter.Err() != nil {
					return
				}
				if err := apply(i); err != nil {
					errorReporter.Set(err)
					return
				}
			}
		}()
	}

	wg.Wait()
	if foundError := errorReporter.Err(); foundError != nil {
		if err, ok := foundError.(panicErr); ok {
			panic(fmt.Sprintf("traverse child: %s\n%s", err.v, string(err.stack)))
		}
		return foundError
	}
	return nil
}
