// Package diskrun implements an on-disk sorted run: a file holding
// one nondecreasing-timestamp sequence of records, with a resumable
// cursor that survives repeated open/close cycles. It uses package
// wire's framing plus a tracked logical byte offset: wire.Decode
// already reports the exact number of bytes a frame occupies, so
// there is no need for a separate byte-counting Read wrapper.
package diskrun

import (
	"bufio"
	"io"
	"os"

	"github.com/grailbio/streamsort/record"
	"github.com/grailbio/streamsort/sinkerr"
	"github.com/grailbio/streamsort/wire"
)

// Run is a closed on-disk sorted run: a file parked at the byte
// offset of its next unread record, plus the count of records still
// ahead of that offset.
type Run struct {
	file      *os.File
	remaining int
}

// IsEmpty reports whether every record in the run has been consumed.
func (r *Run) IsEmpty() bool { return r.remaining == 0 }

// Open wraps the run's file in a buffered Reader of the given
// capacity and loads the first head record. The Run must not be used
// again until the returned Reader is Closed.
func (r *Run) Open(bufCapacity int) (*Reader, error) {
	file := r.file
	r.file = nil
	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, sinkerr.E(sinkerr.Other, "seeking run file", err)
	}
	reader := &Reader{
		run:    r,
		file:   file,
		br:     bufio.NewReaderSize(file, bufCapacity),
		offset: offset,
	}
	if err := reader.Advance(); err != nil {
		return nil, err
	}
	return reader, nil
}

// Writer creates a fresh run file and appends records to it in
// whatever order Write is called; the caller is responsible for
// calling Write in nondecreasing timestamp order if the resulting run
// is to be a valid sorted run.
type Writer struct {
	f       *os.File
	w       *bufio.Writer
	scratch []byte
}

// CreateWriter opens path for create+truncate+read+write.
func CreateWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0o644)
	if err != nil {
		return nil, sinkerr.E(sinkerr.Other, "creating spill file", err)
	}
	return &Writer{f: f, w: bufio.NewWriter(f)}, nil
}

// Write appends one record's wire-framed encoding.
func (w *Writer) Write(r record.Record) error {
	encoded, err := record.Marshal(r)
	if err != nil {
		return sinkerr.E(sinkerr.Other, "marshaling spill record", err)
	}
	if _, err := wire.Encode(w.w, encoded, w.scratch); err != nil {
		return sinkerr.E(sinkerr.Other, "writing spill record", err)
	}
	return nil
}

// CloseToRun flushes the writer, rewinds the file to its start, and
// returns a Run ready to be opened for reading. count is the number
// of records written; the caller tracks this because the writer
// itself does not parse its own output back.
func (w *Writer) CloseToRun(count int) (*Run, error) {
	if err := w.w.Flush(); err != nil {
		return nil, sinkerr.E(sinkerr.Other, "flushing spill file", err)
	}
	if _, err := w.f.Seek(0, io.SeekStart); err != nil {
		return nil, sinkerr.E(sinkerr.Other, "rewinding spill file", err)
	}
	return &Run{file: w.f, remaining: count}, nil
}

// Reader is an open, actively-read on-disk run. It caches the current
// head record so repeated Head calls are cheap.
type Reader struct {
	run  *Run
	file *os.File
	br   *bufio.Reader

	// offset is the cumulative count of bytes decoded from the run
	// since it was opened, starting from the file's position at open
	// time. It intentionally ignores whatever the bufio.Reader may
	// have additionally buffered ahead from the file: on Close the
	// file is seeked to this absolute count, discarding any buffered
	// lookahead, which is exactly the byte offset of the first
	// unconsumed frame.
	offset  int64
	headLen int64
	head    *record.Record
}

// Head returns the current head record, if any.
func (r *Reader) Head() (record.Record, bool) {
	if r.head == nil {
		return record.Record{}, false
	}
	return *r.head, true
}

// Advance discards the current head and loads the next one. After
// Advance, either Head returns the next record in file order (which
// compares ≥ the previous head) or Head returns false because the run
// is exhausted.
func (r *Reader) Advance() error {
	if r.head != nil {
		r.run.remaining--
	}
	if r.run.remaining == 0 {
		r.head = nil
		r.headLen = 0
		return nil
	}
	payload, n, err := wire.Decode(r.br)
	if err == wire.ErrCorrupted {
		return sinkerr.E(sinkerr.Integrity, sinkerr.Fatal, "corrupted spill record", err)
	}
	if err != nil {
		return sinkerr.E(sinkerr.Other, "reading spill record", err)
	}
	rec, err := record.Unmarshal(payload)
	if err != nil {
		return sinkerr.E(sinkerr.Integrity, sinkerr.Fatal, "decoding spill record", err)
	}
	r.offset += int64(n)
	r.headLen = int64(n)
	r.head = &rec
	return nil
}

// Close persists the read position: the file is left at the byte
// offset of the cached head (or at end-of-data if the run is
// exhausted), so a later Open of the same Run re-reads the same head.
func (r *Reader) Close() error {
	target := r.offset
	if r.head != nil {
		target -= r.headLen
	}
	if _, err := r.file.Seek(target, io.SeekStart); err != nil {
		return sinkerr.E(sinkerr.Other, "rewinding run file on close", err)
	}
	r.run.file = r.file
	r.file = nil
	r.br = nil
	return nil
}
