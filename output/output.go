// Package output implements the append-only output stream that the
// merge-sort buffer (package buffer) writes sorted records into, and
// that a downstream consumer reads back in write order. Records are
// framed by package wire's checksummed framing, and any failure
// reading them back surfaces through sinkerr's taxonomy.
package output

import (
	"bufio"
	"io"
	"os"

	"github.com/grailbio/streamsort/record"
	"github.com/grailbio/streamsort/sinkerr"
	"github.com/grailbio/streamsort/wire"
)

// Writer appends records to the output file. It is not safe for
// concurrent use; only the sink goroutine driving Run should hold one.
type Writer struct {
	f       *os.File
	w       *bufio.Writer
	scratch []byte
}

// Create opens path for create+truncate+write.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, sinkerr.E(sinkerr.Other, "opening output file", err)
	}
	return &Writer{f: f, w: bufio.NewWriter(f)}, nil
}

// Write appends a single record, without regard to ordering; ordering
// is the caller's responsibility (package buffer).
func (w *Writer) Write(r record.Record) error {
	encoded, err := record.Marshal(r)
	if err != nil {
		return sinkerr.E(sinkerr.Other, "marshaling record", err)
	}
	if _, err := wire.Encode(w.w, encoded, w.scratch); err != nil {
		return sinkerr.E(sinkerr.Other, "writing output record", err)
	}
	return nil
}

// Flush flushes buffered data to the underlying file. The caller
// remains responsible for fsync-ing the file if durability across a
// crash is required; this package makes no such guarantee.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return sinkerr.E(sinkerr.Other, "flushing output file", err)
	}
	return nil
}

// Close flushes and closes the output file.
func (w *Writer) Close() (err error) {
	defer sinkerr.CleanUp(w.f.Close, &err)
	return w.Flush()
}

// Reader reads records from the output file in write order.
type Reader struct {
	f *os.File
	r *bufio.Reader
}

// Open opens path for sequential read-back.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sinkerr.E(sinkerr.Other, "opening output file for read", err)
	}
	return &Reader{f: f, r: bufio.NewReader(f)}, nil
}

// Read reads the next record. It returns io.EOF when the stream is
// exhausted at a frame boundary; any other error (including a
// checksum mismatch, surfaced as sinkerr.Integrity) is fatal.
func (r *Reader) Read() (record.Record, error) {
	payload, _, err := wire.Decode(r.r)
	if err == io.EOF {
		return record.Record{}, io.EOF
	}
	if err == wire.ErrCorrupted {
		return record.Record{}, sinkerr.E(sinkerr.Integrity, sinkerr.Fatal, "corrupted output record", err)
	}
	if err != nil {
		return record.Record{}, sinkerr.E(sinkerr.Other, "reading output record", err)
	}
	rec, err := record.Unmarshal(payload)
	if err != nil {
		return record.Record{}, sinkerr.E(sinkerr.Integrity, sinkerr.Fatal, "decoding output record", err)
	}
	return rec, nil
}

// Close closes the output file.
func (r *Reader) Close() error {
	if err := r.f.Close(); err != nil {
		return sinkerr.E(sinkerr.Other, "closing output file", err)
	}
	return nil
}
