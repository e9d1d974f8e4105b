package replaycache

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheGetExactSuffixAcrossFrames(t *testing.T) {
	var c Cache
	c.Insert(bytes.Repeat([]byte{1}, 300))
	c.Insert(bytes.Repeat([]byte{2}, 300))
	c.Insert(bytes.Repeat([]byte{3}, 400))
	require.Equal(t, 1000, c.TotalLen())

	got, err := c.Get(400)
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte{3}, 400), got)
}

func TestCacheGetSlicesOldestIncludedFrame(t *testing.T) {
	var c Cache
	c.Insert(bytes.Repeat([]byte{1}, 300))
	c.Insert(bytes.Repeat([]byte{2}, 300))
	c.Insert(bytes.Repeat([]byte{3}, 400))

	got, err := c.Get(500)
	require.NoError(t, err)
	want := append(bytes.Repeat([]byte{2}, 100), bytes.Repeat([]byte{3}, 400)...)
	require.Equal(t, want, got)
}

func TestCacheGetZeroReturnsEmpty(t *testing.T) {
	var c Cache
	c.Insert([]byte("hello"))
	got, err := c.Get(0)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCacheGetMoreThanRetainedFails(t *testing.T) {
	var c Cache
	c.Insert([]byte("abc"))
	_, err := c.Get(10)
	require.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestCacheEvictsOldestFrameBeyondCapacity(t *testing.T) {
	var c Cache
	for i := 0; i < Capacity+10; i++ {
		c.Insert([]byte{byte(i)})
	}
	require.Equal(t, Capacity, c.Len())
	require.Equal(t, Capacity, c.TotalLen())

	// Only the most recent Capacity single-byte frames remain; the first
	// 10 inserted (values 0..9) have been evicted.
	got, err := c.Get(Capacity)
	require.NoError(t, err)
	require.Equal(t, byte(10), got[0])
	require.Equal(t, byte(Capacity+9), got[len(got)-1])

	_, err = c.Get(Capacity + 1)
	require.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestCacheInsertCopiesFrameBytes(t *testing.T) {
	var c Cache
	frame := []byte{1, 2, 3}
	c.Insert(frame)
	frame[0] = 99

	got, err := c.Get(3)
	require.NoError(t, err)
	require.Equal(t, byte(1), got[0])
}

func TestCacheReset(t *testing.T) {
	var c Cache
	c.Insert([]byte("a"))
	c.Reset()
	require.Equal(t, 0, c.Len())
	require.Equal(t, 0, c.TotalLen())

	got, err := c.Get(0)
	require.NoError(t, err)
	require.Nil(t, got)
}
