// Package buffer implements the bounded-memory external merge-sort
// buffer: it accepts records, spills sorted runs to disk once the
// in-memory run fills, and performs on-demand k-way merging up to a
// caller-supplied watermark, streaming sorted output through an
// output.Writer. The in-memory run and on-disk run live in their own
// packages, run and diskrun respectively.
package buffer

import (
	"fmt"
	"path/filepath"

	"github.com/grailbio/streamsort/diskrun"
	"github.com/grailbio/streamsort/internal/traverse"
	"github.com/grailbio/streamsort/log"
	"github.com/grailbio/streamsort/output"
	"github.com/grailbio/streamsort/record"
	"github.com/grailbio/streamsort/run"
)

// Config configures a Buffer.
type Config struct {
	// MaxInMemory is the capacity of the in-memory run. Reaching it
	// triggers a spill to disk.
	MaxInMemory int
	// FileReadBufCapacity is the buffer size used when reading back
	// each on-disk run during a merge.
	FileReadBufCapacity int
}

// Buffer owns one in-memory run, a set of closed on-disk runs, and
// the output writer records are ultimately emitted to.
type Buffer struct {
	config Config

	inMemory *run.Memory
	disk     []*diskrun.Run

	filesDir     string
	filesCounter int

	earliest    record.Timestamp
	hasEarliest bool

	output *output.Writer
}

// New returns an empty Buffer that spills into filesDir and streams
// emitted records to w.
func New(filesDir string, w *output.Writer, config Config) *Buffer {
	return &Buffer{
		config:   config,
		inMemory: run.NewMemory(config.MaxInMemory),
		filesDir: filesDir,
		output:   w,
	}
}

// Push inserts record into the buffer, spilling the in-memory run to
// disk if it is now full.
func (b *Buffer) Push(r record.Record) error {
	if !b.hasEarliest || r.Timestamp < b.earliest {
		b.earliest = r.Timestamp
		b.hasEarliest = true
	}

	b.inMemory.Push(r)
	if b.inMemory.Full() {
		return b.dumpInMemory()
	}
	return nil
}

func (b *Buffer) dumpInMemory() error {
	if b.inMemory.Len() == 0 {
		return nil
	}
	id := b.filesCounter
	b.filesCounter++
	path := filepath.Join(b.filesDir, fmt.Sprintf("dump-%d", id))
	log.Info.Printf("buffer: spilling %d records to %s", b.inMemory.Len(), path)

	disk, err := b.inMemory.DrainToFile(path)
	if err != nil {
		return err
	}
	if disk != nil {
		b.disk = append(b.disk, disk)
	}
	return nil
}

// DumpSafe emits every resident record with timestamp ≤ watermark, in
// nondecreasing timestamp order, through the output writer, and
// returns how many records it wrote.
func (b *Buffer) DumpSafe(watermark record.Timestamp) (int, error) {
	if !b.hasEarliest || b.earliest > watermark {
		return 0, nil
	}

	// Merging only ever looks at on-disk runs; force-spilling the
	// in-memory run first keeps the merge loop simple at the cost of
	// an extra file for what could have been a (k+1)-th in-memory
	// participant.
	if err := b.dumpInMemory(); err != nil {
		return 0, err
	}

	runs := b.disk
	b.disk = nil

	readers := make([]*diskrun.Reader, len(runs))
	if err := traverse.Each(len(runs)).Limit(8).Do(func(i int) error {
		r, err := runs[i].Open(b.config.FileReadBufCapacity)
		if err != nil {
			return err
		}
		readers[i] = r
		return nil
	}); err != nil {
		return 0, err
	}

	dumped := 0
	for {
		idx := -1
		var best record.Record
		for i, r := range readers {
			head, ok := r.Head()
			if !ok {
				continue
			}
			if idx == -1 || record.Less(head, best) {
				idx = i
				best = head
			}
		}

		if idx == -1 {
			b.hasEarliest = false
			break
		}
		if best.Timestamp > watermark {
			b.earliest = best.Timestamp
			b.hasEarliest = true
			break
		}

		if err := b.output.Write(best); err != nil {
			return dumped, err
		}
		if err := readers[idx].Advance(); err != nil {
			return dumped, err
		}
		dumped++
	}

	if err := b.output.Flush(); err != nil {
		return dumped, err
	}
	log.Debug.Printf("buffer: dumped %d records up to watermark %d", dumped, watermark)

	if err := traverse.Each(len(readers)).Limit(8).Do(func(i int) error {
		return readers[i].Close()
	}); err != nil {
		return dumped, err
	}
	for _, r := range runs {
		if !r.IsEmpty() {
			b.disk = append(b.disk, r)
		}
	}

	return dumped, nil
}
