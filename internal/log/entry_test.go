package log

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntryRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		entry Entry
		base  uint64
	}{
		{"base zero", Entry{Offset: 0, Position: 0}, 0},
		{"mid-segment", Entry{Offset: 5, Position: 1024}, 2},
		{"first of segment", Entry{Offset: 88, Position: 0}, 88},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rel, err := toRelative(c.entry, c.base)
			require.NoError(t, err)

			got := fromRelative(rel, c.base)
			require.Equal(t, c.entry, got)
		})
	}
}

func TestToRelativeRejectsOffsetBeforeBase(t *testing.T) {
	_, err := toRelative(Entry{Offset: 1, Position: 0}, 2)
	require.Error(t, err)
}

func TestToRelativeRejectsOverflow(t *testing.T) {
	_, err := toRelative(Entry{Offset: uint64(^uint32(0)) + 2, Position: 0}, 0)
	require.Error(t, err)

	_, err = toRelative(Entry{Offset: 0, Position: uint64(^uint32(0)) + 1}, 0)
	require.Error(t, err)
}
