package output_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/streamsort/output"
	"github.com/grailbio/streamsort/record"
	"github.com/grailbio/streamsort/sinkerr"
	"github.com/stretchr/testify/require"
)

func readAll(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func writeAll(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")

	w, err := output.Create(path)
	require.NoError(t, err)

	records := []record.Record{
		record.New(record.Alpha, 1, 0, record.AlphaData{Foo: "foo"}),
		record.New(record.Gamma, 3, 1, record.GammaData{Baz0: 1, Baz1: 2}),
		record.New(record.Epsilon, 5, 2, record.EpsilonData{Def: []uint16{9}}),
	}
	for _, r := range records {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close())

	r, err := output.Open(path)
	require.NoError(t, err)
	for _, want := range records {
		got, err := r.Read()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err = r.Read()
	require.Equal(t, io.EOF, err)
	require.NoError(t, r.Close())
}

func TestReadEmptyFileIsEOF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	w, err := output.Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := output.Open(path)
	require.NoError(t, err)
	_, err = r.Read()
	require.Equal(t, io.EOF, err)
}

func TestCorruptedFrameSurfacesAsIntegrityError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	w, err := output.Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(record.New(record.Alpha, 1, 0, record.AlphaData{Foo: "foo"})))
	require.NoError(t, w.Close())

	data, err := readAll(path)
	require.NoError(t, err)
	data[len(data)-1]++ // flip a checksum byte
	require.NoError(t, writeAll(path, data))

	r, err := output.Open(path)
	require.NoError(t, err)
	_, err = r.Read()
	require.Error(t, err)
	sinkErr, ok := err.(*sinkerr.Error)
	require.True(t, ok)
	require.Equal(t, sinkerr.Integrity, sinkErr.Kind)
}
