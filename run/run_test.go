package run_test

import (
	"path/filepath"
	"testing"

	"github.com/grailbio/streamsort/record"
	"github.com/grailbio/streamsort/run"
	"github.com/stretchr/testify/require"
)

func factory(capacity int) *run.Memory {
	m := run.NewMemory(capacity)
	m.Push(record.New(record.Alpha, 5, 0, record.AlphaData{Foo: "foo"}))
	m.Push(record.New(record.Gamma, 2, 1, record.GammaData{Baz0: 1, Baz1: 2}))
	m.Push(record.New(record.Epsilon, 10, 2, record.EpsilonData{Def: []uint16{3, 1, 2}}))
	return m
}

func TestDrainToFileAndReadBack(t *testing.T) {
	m := factory(256)
	path := filepath.Join(t.TempDir(), "dump")

	disk, err := m.DrainToFile(path)
	require.NoError(t, err)
	require.Equal(t, 0, m.Len())

	reader, err := disk.Open(8192)
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
}

func TestDrainEmptyReturnsNil(t *testing.T) {
	m := run.NewMemory(16)
	disk, err := m.DrainToFile(filepath.Join(t.TempDir(), "dump"))
	require.NoError(t, err)
	require.Nil(t, disk)
}

func TestFullAndPushPanics(t *testing.T) {
	m := run.NewMemory(1)
	require.False(t, m.Full())
	m.Push(record.New(record.Alpha, 1, 0, record.AlphaData{}))
	require.True(t, m.Full())
	require.Panics(t, func() {
		m.Push(record.New(record.Alpha, 2, 1, record.AlphaData{}))
	})
}
