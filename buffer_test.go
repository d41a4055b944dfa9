package zlink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferFindFrameAcrossFills(t *testing.T) {
	buf := NewBuffer(Capacity2KiB, false)

	tail := buf.AppendFill()
	n := copy(tail, "hel")
	buf.Reported(n)

	_, ok, err := buf.FindFrame()
	require.NoError(t, err)
	require.False(t, ok, "no NUL yet, no frame")

	tail = buf.AppendFill()
	n = copy(tail, "lo\x00world\x00")
	buf.Reported(n)

	frame, ok, err := buf.FindFrame()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello", string(frame))

	frame, ok, err = buf.FindFrame()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "world", string(frame))

	_, ok, err = buf.FindFrame()
	require.NoError(t, err)
	require.False(t, ok)
}

func fillBuffer(buf *Buffer, p []byte) {
	for len(p) > 0 {
		tail := buf.AppendFill()
		n := copy(tail, p)
		buf.Reported(n)
		p = p[n:]
	}
}

func TestBufferCompactReclaimsConsumedPrefix(t *testing.T) {
	buf := NewBuffer(Capacity2KiB, false)

	// Push enough consumed bytes to cross compactThreshold, then confirm a
	// later frame is still found correctly once compact() has shifted it.
	padding := make([]byte, compactThreshold+1)
	for i := range padding {
		padding[i] = 'x'
	}
	padding = append(padding, 0)
	fillBuffer(buf, padding)

	_, ok, err := buf.FindFrame()
	require.NoError(t, err)
	require.True(t, ok)
	require.Greater(t, buf.consumed, compactThreshold)

	fillBuffer(buf, []byte("next\x00")) // triggers compact() via AppendFill
	require.Equal(t, 0, buf.consumed, "compact should have reset consumed")

	frame, ok, err := buf.FindFrame()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "next", string(frame))
}

func TestBufferFixedProfileOverflows(t *testing.T) {
	buf := NewBuffer(CapacityClass(8), true)

	for i := 0; i < 4; i++ {
		tail := buf.AppendFill()
		if tail == nil {
			break
		}
		n := copy(tail, "aaaa")
		buf.Reported(n)
	}

	_, _, err := buf.FindFrame()
	require.Error(t, err)
	var overflow *BufferOverflowError
	require.ErrorAs(t, err, &overflow)
}

func TestBufferReset(t *testing.T) {
	buf := NewBuffer(Capacity2KiB, false)
	tail := buf.AppendFill()
	n := copy(tail, "abc\x00")
	buf.Reported(n)

	buf.Reset()
	require.Equal(t, 0, buf.Len())

	_, ok, err := buf.FindFrame()
	require.NoError(t, err)
	require.False(t, ok)
}
