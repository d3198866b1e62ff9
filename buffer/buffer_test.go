package buffer_test

import (
	"io"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/grailbio/streamsort/buffer"
	"github.com/grailbio/streamsort/internal/psort"
	"github.com/grailbio/streamsort/output"
	"github.com/grailbio/streamsort/record"
	"github.com/stretchr/testify/require"
)

func newBuffer(t *testing.T, w *output.Writer, config buffer.Config) *buffer.Buffer {
	t.Helper()
	return buffer.New(t.TempDir(), w, config)
}

func alpha(ts record.Timestamp) record.Record {
	return record.New(record.Alpha, ts, 0, record.AlphaData{Foo: "x"})
}

// Pushing three out-of-order records and dumping past all of them
// emits them in nondecreasing timestamp order.
func TestThreeRecordsOneDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	w, err := output.Create(path)
	require.NoError(t, err)

	b := newBuffer(t, w, buffer.Config{MaxInMemory: 10, FileReadBufCapacity: 8192})
	require.NoError(t, b.Push(alpha(5)))
	require.NoError(t, b.Push(alpha(1)))
	require.NoError(t, b.Push(alpha(3)))

	count, err := b.DumpSafe(10)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	r, err := output.Open(path)
	require.NoError(t, err)
	requireTimestamps(t, r, 1, 3, 5)
	requireEOF(t, r)
}

// A capacity smaller than the input forces multiple spills to disk;
// DumpSafe must merge them back into one nondecreasing sequence.
func TestSpillAndMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	w, err := output.Create(path)
	require.NoError(t, err)

	b := newBuffer(t, w, buffer.Config{MaxInMemory: 2, FileReadBufCapacity: 8192})
	for _, ts := range []record.Timestamp{7, 2, 9, 1, 4} {
		require.NoError(t, b.Push(alpha(ts)))
	}

	count, err := b.DumpSafe(10)
	require.NoError(t, err)
	require.Equal(t, 5, count)

	r, err := output.Open(path)
	require.NoError(t, err)
	requireTimestamps(t, r, 1, 2, 4, 7, 9)
	requireEOF(t, r)
}

// A low watermark dumps only the records at or below it, leaving
// the rest resident until a later, higher watermark releases them.
func TestPartialDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	w, err := output.Create(path)
	require.NoError(t, err)

	b := newBuffer(t, w, buffer.Config{MaxInMemory: 10, FileReadBufCapacity: 8192})
	for _, ts := range []record.Timestamp{5, 1, 8, 3, 12} {
		require.NoError(t, b.Push(alpha(ts)))
	}

	count, err := b.DumpSafe(5)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	count, err = b.DumpSafe(12)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	r, err := output.Open(path)
	require.NoError(t, err)
	requireTimestamps(t, r, 1, 3, 5, 8, 12)
	requireEOF(t, r)
}

// Output order over a large random input is checked against an
// independent sort oracle (package psort) rather than re-deriving
// the expected order with the code under test.
func TestRandomRecordsAreSorted(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in -short mode")
	}
	const n = 100_000

	path := filepath.Join(t.TempDir(), "output")
	w, err := output.Create(path)
	require.NoError(t, err)

	b := newBuffer(t, w, buffer.Config{MaxInMemory: 10_000, FileReadBufCapacity: 8192})

	timestamps := make([]record.Timestamp, n)
	rnd := rand.New(rand.NewSource(1))
	for i := range timestamps {
		timestamps[i] = record.Timestamp(rnd.Intn(n))
		require.NoError(t, b.Push(record.New(record.Epsilon, timestamps[i], 0, record.EpsilonData{})))
	}

	count, err := b.DumpSafe(record.Timestamp(n))
	require.NoError(t, err)
	require.Equal(t, n, count)

	expected := append([]record.Timestamp(nil), timestamps...)
	psort.Slice(expected, func(i, j int) bool { return expected[i] < expected[j] }, 4)

	r, err := output.Open(path)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		rec, err := r.Read()
		require.NoError(t, err)
		require.Equal(t, expected[i], rec.Timestamp)
	}
	requireEOF(t, r)
}

func requireTimestamps(t *testing.T, r *output.Reader, want ...record.Timestamp) {
	t.Helper()
	for _, ts := range want {
		rec, err := r.Read()
		require.NoError(t, err)
		require.Equal(t, ts, rec.Timestamp)
	}
}

func requireEOF(t *testing.T, r *output.Reader) {
	t.Helper()
	_, err := r.Read()
	require.Equal(t, io.EOF, err)
}
