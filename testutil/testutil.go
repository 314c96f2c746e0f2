package testutil

import (
	"bytes"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// DefaultAlphabet is the byte set used for generated line content.
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 .,-_"

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Line returns a random line of length n drawn from alphabet.
func (r *RNG) Line(n int, alphabet string) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lineLocked(n, alphabet)
}

func (r *RNG) lineLocked(n int, alphabet string) []byte {
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	line := make([]byte, n)
	for i := range line {
		line[i] = alphabet[r.rand.Intn(len(alphabet))]
	}
	return line
}

// Lines generates n random lines with lengths in [0, maxLen].
// Lengths are Zipf-distributed so short lines dominate, like real logs.
func (r *RNG) Lines(n, maxLen int, alphabet string) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := make([][]byte, n)
	for i := range lines {
		lines[i] = r.lineLocked(r.zipfLocked(maxLen+1, 0.8), alphabet)
	}
	return lines
}

// Plant inserts needle at a random position of roughly one line in every
// `every` lines and returns the number of lines planted.
func (r *RNG) Plant(lines [][]byte, needle []byte, every int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	planted := 0
	for i, line := range lines {
		if r.rand.Intn(every) != 0 {
			continue
		}
		at := r.rand.Intn(len(line) + 1)
		out := make([]byte, 0, len(line)+len(needle))
		out = append(out, line[:at]...)
		out = append(out, needle...)
		out = append(out, line[at:]...)
		lines[i] = out
		planted++
	}
	return planted
}

// Zipf returns a Zipfian-distributed value in [0, n).
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// Join concatenates lines with '\n'. If terminated is set the last line
// also gets a separator.
func Join(lines [][]byte, terminated bool) []byte {
	out := bytes.Join(lines, []byte{'\n'})
	if terminated && len(lines) > 0 {
		out = append(out, '\n')
	}
	return out
}

// WriteFile writes data to name inside a per-test temporary directory and
// returns its path.
func WriteFile(tb testing.TB, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}
