package log

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameMessageLayout(t *testing.T) {
	buf, err := frameMessage(1, 0x1C, []byte("NIGHTMARE STEAM"))
	require.NoError(t, err)

	want := append([]byte{0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0x1C}, []byte("NIGHTMARE STEAM")...)
	require.Equal(t, want, buf)
}

func TestFrameMessageRejectsOversizedPosition(t *testing.T) {
	_, err := frameMessage(0, uint64(^uint32(0))+1, []byte("x"))
	require.Error(t, err)
}
