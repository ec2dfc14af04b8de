package log

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSegmentAppendUntilIndexFull(t *testing.T) {
	dir := t.TempDir()
	mb := MaxBytes{Log: 1024, Index: entryWidth * 3}

	s, err := (segmentMeta{dir: dir, baseOffset: 16, maxBytes: mb}).open(nil)
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, uint64(16), s.NewestOffset())
	require.False(t, s.IsFull())

	payload := []byte("hello world")
	for i := uint64(0); i < 3; i++ {
		offset := s.NewestOffset()
		position := s.CurrentPosition()
		buf, err := frameMessage(offset, position, payload)
		require.NoError(t, err)

		_, err = s.Write(buf)
		require.NoError(t, err)
		require.NoError(t, s.WriteIndexEntry(Entry{Offset: offset, Position: position}))
		require.Equal(t, 16+i+1, s.NewestOffset())
	}

	// index is now full: one more index write must fail
	err = s.WriteIndexEntry(Entry{Offset: s.NewestOffset(), Position: s.CurrentPosition()})
	require.ErrorIs(t, err, ErrIndexFull)
}

func TestSegmentIsFullOvershoot(t *testing.T) {
	dir := t.TempDir()
	mb := MaxBytes{Log: 20, Index: 64}
	s, err := (segmentMeta{dir: dir, baseOffset: 0, maxBytes: mb}).open(nil)
	require.NoError(t, err)
	defer s.Close()

	require.False(t, s.IsFull())
	buf, err := frameMessage(0, 0, []byte("YELLOW SUBMARINE")) // 12 + 16 = 28 bytes, over the 20-byte cap
	require.NoError(t, err)
	_, err = s.Write(buf)
	require.NoError(t, err)

	// the segment overshot its cap but the write was still admitted
	require.True(t, s.IsFull())
	require.Equal(t, uint64(28), s.Size())
}

func TestSegmentReload(t *testing.T) {
	dir := t.TempDir()
	mb := MaxBytes{Log: 32, Index: 16}

	logBytes := []byte{
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 88, 88,
		0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 14, 88, 88,
	}
	require.NoError(t, os.WriteFile(dir+"/00000000000000000000.log", logBytes, 0644))

	idx, err := newIndex(mustCreate(t, dir+"/00000000000000000000.index"), 0, mb.Index)
	require.NoError(t, err)
	require.NoError(t, idx.Write(Entry{Offset: 0, Position: 0}))
	require.NoError(t, idx.Write(Entry{Offset: 1, Position: 14}))
	require.NoError(t, idx.Close())

	s, err := (segmentMeta{dir: dir, baseOffset: 0, maxBytes: mb}).open(nil)
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, uint64(28), s.CurrentPosition())
	require.Equal(t, uint64(2), s.NewestOffset())
}

func mustCreate(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	require.NoError(t, err)
	return f
}
