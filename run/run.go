// Package run implements the in-memory sorted run: a bounded
// min-heap of records keyed by timestamp, drained to disk in
// nondecreasing order once full. It uses Go's container/heap, the
// idiomatic stdlib tool for this (no example repo in the pack ships
// its own generic heap).
package run

import (
	"container/heap"

	"github.com/grailbio/streamsort/diskrun"
	"github.com/grailbio/streamsort/record"
)

// Memory is a bounded, in-memory min-heap of records.
type Memory struct {
	h recordHeap
	// cap is the capacity given to NewMemory; Push panics once Len
	// reaches it. Go has no separate debug/release build, so this
	// caller-contract check is always on.
	cap int
}

// NewMemory returns an empty run with the given capacity.
func NewMemory(capacity int) *Memory {
	h := make(recordHeap, 0, capacity)
	heap.Init(&h)
	return &Memory{h: h, cap: capacity}
}

// Len reports the number of records currently resident.
func (m *Memory) Len() int { return len(m.h) }

// Full reports whether the run is at capacity.
func (m *Memory) Full() bool { return len(m.h) == m.cap }

// Push inserts r. It panics if the run is already full; callers must
// check Full and spill before pushing further.
func (m *Memory) Push(r record.Record) {
	if len(m.h) >= m.cap {
		panic("run: Push called on a full in-memory run")
	}
	heap.Push(&m.h, r)
}

// DrainToFile serializes every resident record to path in
// nondecreasing timestamp order, emptying the run, and returns a
// closed on-disk run handle positioned at the start of the file. It
// returns nil, nil if the run held no records.
func (m *Memory) DrainToFile(path string) (*diskrun.Run, error) {
	if len(m.h) == 0 {
		return nil, nil
	}
	w, err := diskrun.CreateWriter(path)
	if err != nil {
		return nil, err
	}
	count := len(m.h)
	for m.h.Len() > 0 {
		r := heap.Pop(&m.h).(record.Record)
		if err := w.Write(r); err != nil {
			return nil, err
		}
	}
	return w.CloseToRun(count)
}

// recordHeap implements container/heap.Interface, ordering by
// record.Less (timestamp, then insertion sequence).
type recordHeap []record.Record

func (h recordHeap) Len() int            { return len(h) }
func (h recordHeap) Less(i, j int) bool  { return record.Less(h[i], h[j]) }
func (h recordHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *recordHeap) Push(x interface{}) { *h = append(*h, x.(record.Record)) }
func (h *recordHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
