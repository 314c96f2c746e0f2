package testutil

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLines(t *testing.T) {
	rng := NewRNG(4711)

	lines := rng.Lines(200, 40, "ab")

	assert.Len(t, lines, 200)
	for _, l := range lines {
		assert.LessOrEqual(t, len(l), 40)
		assert.Empty(t, bytes.Trim(l, "ab"))
	}
}

func TestPlant(t *testing.T) {
	rng := NewRNG(4711)
	lines := rng.Lines(100, 20, "xyz")

	planted := rng.Plant(lines, []byte("needle"), 1)

	assert.Equal(t, 100, planted)
	for _, l := range lines {
		assert.Contains(t, string(l), "needle")
	}
}

func TestJoin(t *testing.T) {
	lines := [][]byte{[]byte("a"), []byte(""), []byte("b")}
	assert.Equal(t, "a\n\nb", string(Join(lines, false)))
	assert.Equal(t, "a\n\nb\n", string(Join(lines, true)))
	assert.Empty(t, Join(nil, true))
}

func TestZipf(t *testing.T) {
	rng := NewRNG(4711)
	for range 100 {
		v := rng.Zipf(10, 1.5)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 10)
	}
	assert.Equal(t, 0, rng.Zipf(1, 1.5))
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	l1 := rng.Line(16, "")
	rng.Reset()
	l2 := rng.Line(16, "")
	assert.Equal(t, l1, l2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, "x.txt", []byte("hello\n"))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(got))
}
