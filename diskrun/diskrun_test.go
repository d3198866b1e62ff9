package diskrun_test

import (
	"path/filepath"
	"testing"

	"github.com/grailbio/streamsort/diskrun"
	"github.com/grailbio/streamsort/record"
	"github.com/stretchr/testify/require"
)

func writeRun(t *testing.T, path string, timestamps ...record.Timestamp) *diskrun.Run {
	t.Helper()
	w, err := diskrun.CreateWriter(path)
	require.NoError(t, err)
	for i, ts := range timestamps {
		require.NoError(t, w.Write(record.New(record.Alpha, ts, uint64(i), record.AlphaData{})))
	}
	run, err := w.CloseToRun(len(timestamps))
	require.NoError(t, err)
	return run
}

func TestReadAllThenClose(t *testing.T) {
	run := writeRun(t, filepath.Join(t.TempDir(), "run"), 2, 5, 10)

	reader, err := run.Open(8192)
	require.NoError(t, err)

	head, ok := reader.Head()
	require.True(t, ok)
	require.Equal(t, record.Timestamp(2), head.Timestamp)

	require.NoError(t, reader.Advance())
	head, ok = reader.Head()
	require.True(t, ok)
	require.Equal(t, record.Timestamp(5), head.Timestamp)

	require.NoError(t, reader.Advance())
	head, ok = reader.Head()
	require.True(t, ok)
	require.Equal(t, record.Timestamp(10), head.Timestamp)

	require.NoError(t, reader.Advance())
	_, ok = reader.Head()
	require.False(t, ok)

	require.NoError(t, reader.Close())
	require.True(t, run.IsEmpty())
}

func TestRepeatedOpenCloseWithoutAdvanceIsStable(t *testing.T) {
	run := writeRun(t, filepath.Join(t.TempDir(), "run"), 2, 5, 10)

	for i := 0; i < 5; i++ {
		reader, err := run.Open(8192)
		require.NoError(t, err)
		head, ok := reader.Head()
		require.True(t, ok)
		require.Equal(t, record.Timestamp(2), head.Timestamp)
		require.NoError(t, reader.Close())
	}

	reader, err := run.Open(8192)
	require.NoError(t, err)
	require.NoError(t, reader.Advance())
	require.NoError(t, reader.Advance())
	require.NoError(t, reader.Advance())
	_, ok := reader.Head()
	require.False(t, ok)
	require.NoError(t, reader.Close())
	require.True(t, run.IsEmpty())
}

func TestResumeMidRun(t *testing.T) {
	run := writeRun(t, filepath.Join(t.TempDir(), "run"), 2, 5, 10)

	reader, err := run.Open(8192)
	require.NoError(t, err)
	require.NoError(t, reader.Advance())
	require.NoError(t, reader.Close())
	require.False(t, run.IsEmpty())

	reader, err = run.Open(8192)
	require.NoError(t, err)
	head, ok := reader.Head()
	require.True(t, ok)
	require.Equal(t, record.Timestamp(5), head.Timestamp)
}
