package lanegrep

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lanegrep/internal/decode"
	"github.com/hupe1980/lanegrep/internal/pattern"
	"github.com/hupe1980/lanegrep/internal/scan"
	"github.com/hupe1980/lanegrep/testutil"
)

const scenario = "apple\nbanana\nApple Pie\n"

func newSearcher(t *testing.T, raw string, opts ...Option) *Searcher {
	t.Helper()
	s, err := New(raw, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func lineStrings(ms []Match) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.String())
	}
	return out
}

func TestSearch_Scenario(t *testing.T) {
	path := testutil.WriteFile(t, "fruit.txt", []byte(scenario))
	ctx := context.Background()

	cases := []struct {
		name string
		raw  string
		opts []Option
		want []string
	}{
		{"literal", "apple", nil, []string{"apple"}},
		{"case insensitive", "apple", []Option{WithCaseInsensitive()}, []string{"apple", "Apple Pie"}},
		{"invert", "apple", []Option{WithCaseInsensitive(), WithInvert()}, []string{"banana"}},
		{"prefix anchor", "^Apple", nil, []string{"Apple Pie"}},
		{"suffix anchor", "le$", nil, []string{"apple"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newSearcher(t, tc.raw, tc.opts...)
			ms, err := s.Search(ctx, path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, lineStrings(ms))
		})
	}
}

func TestSearch_Labels(t *testing.T) {
	path := testutil.WriteFile(t, "fruit.txt", []byte(scenario))
	s := newSearcher(t, "banana", WithLabels())

	ms, err := s.Search(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{path + ":banana"}, lineStrings(ms))
}

func TestSearchResult_Stats(t *testing.T) {
	rng := testutil.NewRNG(7)
	lines := rng.Lines(5000, 60, "")
	planted := rng.Plant(lines, []byte("needle"), 20)
	data := testutil.Join(lines, true)
	path := testutil.WriteFile(t, "big.log", data)

	s := newSearcher(t, "needle", WithLaneCeiling(64), WithChunkSize(128), WithGroupSize(8))
	res, err := s.SearchResult(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, planted, len(res.Matches))
	assert.Equal(t, int64(len(data)), res.Bytes)
	assert.Equal(t, "plain", res.Format)
	assert.Greater(t, res.Windows, 1)
	assert.GreaterOrEqual(t, res.Lanes, res.Windows)
	assert.Zero(t, res.Dropped)

	p, err := pattern.Compile("needle", false, false)
	require.NoError(t, err)
	want := scan.Bytes(data, p)
	require.Len(t, res.Matches, len(want))
	for i, m := range res.Matches {
		assert.Equal(t, want[i].Start, m.Start)
		assert.Equal(t, want[i].End, m.End)
	}
}

func TestSearch_Overflow(t *testing.T) {
	path := testutil.WriteFile(t, "hits.txt", bytes.Repeat([]byte("hit\n"), 10))
	collector := &BasicMetricsCollector{}
	s := newSearcher(t, "hit", WithBufferCapacity(4), WithMetricsCollector(collector))

	res, err := s.SearchResult(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, res.Matches, 4)
	assert.Equal(t, uint64(6), res.Dropped)
	assert.True(t, s.Overflowed())

	stats := collector.GetStats()
	assert.Equal(t, int64(1), stats.FileCount)
	assert.Equal(t, int64(4), stats.Matches)
	assert.Equal(t, uint64(6), stats.Dropped)
	assert.Equal(t, int64(1), stats.WindowCount)
}

func TestSearch_FileErrorIsNotFatal(t *testing.T) {
	good := testutil.WriteFile(t, "fruit.txt", []byte(scenario))
	s := newSearcher(t, "apple")

	_, err := s.Search(context.Background(), good+".missing")
	require.Error(t, err)
	assert.True(t, IsFileError(err))
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, good+".missing", fe.Path)

	ms, err := s.Search(context.Background(), good)
	require.NoError(t, err)
	assert.Len(t, ms, 1)
}

func TestSearch_Decompression(t *testing.T) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write([]byte(scenario))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	path := testutil.WriteFile(t, "fruit.txt.zst", buf.Bytes())

	s := newSearcher(t, "apple", WithCaseInsensitive(), WithDecompression(0))
	res, err := s.SearchResult(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "zstd", res.Format)
	assert.Equal(t, []string{"apple", "Apple Pie"}, lineStrings(res.Matches))

	ms, err := s.SearchReader(context.Background(), "-", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "Apple Pie"}, lineStrings(ms))
}

func TestSearchReader_DecodedSizeLimit(t *testing.T) {
	data := bytes.Repeat([]byte("hit\n"), 100)
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	t.Run("over the limit", func(t *testing.T) {
		s := newSearcher(t, "hit", WithDecompression(100))
		ms, err := s.SearchReader(context.Background(), "-", bytes.NewReader(buf.Bytes()))
		require.Error(t, err)
		assert.Nil(t, ms)
		assert.True(t, IsFileError(err))
		assert.ErrorIs(t, err, decode.ErrTooLarge)

		var fe *FileError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "-", fe.Path)
	})

	t.Run("at the limit", func(t *testing.T) {
		s := newSearcher(t, "hit", WithDecompression(int64(len(data))))
		ms, err := s.SearchReader(context.Background(), "-", bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Len(t, ms, 100)
	})

	t.Run("plain input is not limited", func(t *testing.T) {
		s := newSearcher(t, "hit", WithDecompression(100))
		ms, err := s.SearchReader(context.Background(), "-", bytes.NewReader(data))
		require.NoError(t, err)
		assert.Len(t, ms, 100)
	})
}

func TestSearchReader(t *testing.T) {
	s := newSearcher(t, "apple", WithCaseInsensitive(), WithLabels())

	ms, err := s.SearchReader(context.Background(), "(standard input)", strings.NewReader(scenario))
	require.NoError(t, err)
	assert.Equal(t, []string{"(standard input):apple", "(standard input):Apple Pie"}, lineStrings(ms))
	assert.Equal(t, int64(13), ms[1].Start)
	assert.Equal(t, int64(22), ms[1].End)
}

func TestSearchBytes_AgreesWithSearchReader(t *testing.T) {
	rng := testutil.NewRNG(99)
	lines := rng.Lines(3000, 40, "abAB\r ")
	rng.Plant(lines, []byte("aB"), 4)
	data := testutil.Join(lines, false)

	s := newSearcher(t, "ab", WithCaseInsensitive(), WithChunkSize(16), WithLaneCeiling(32))
	res, err := s.SearchBytes(context.Background(), "mem", data)
	require.NoError(t, err)

	ms, err := s.SearchReader(context.Background(), "mem", bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, ms, res.Matches)
}

func TestNew_Errors(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptyPattern)

	_, err = New("x", WithChunkSize(0))
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = New("x", WithLaneCeiling(-1))
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = New("x", WithBufferCapacity(0))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New("x", WithDeviceMemory(-1))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New("x", WithDeviceMemory(64), WithBufferCapacity(1000))
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestSearcher_Close(t *testing.T) {
	s, err := New("x")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Search(context.Background(), "whatever")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.SearchReader(context.Background(), "-", strings.NewReader("x\n"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSearcher_Device(t *testing.T) {
	s := newSearcher(t, "x", WithDeviceMemory(1<<20), WithWorkers(2), WithBufferCapacity(16))

	info := s.Device()
	assert.Equal(t, 2, info.Workers)
	assert.Equal(t, int64(1<<20), info.MemoryLimit)
	assert.Equal(t, int64(16*16), info.MemoryInUse)
	assert.NotEmpty(t, info.Name)
}

func TestWriteMatches(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMatches(&buf, []Match{
		{Line: []byte("apple")},
		{Label: "a.txt", Line: []byte("Apple Pie")},
		{Line: []byte("")},
	})
	require.NoError(t, err)
	assert.Equal(t, "apple\na.txt:Apple Pie\n\n", buf.String())
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewPrometheusCollector(reg)
	require.NoError(t, err)

	path := testutil.WriteFile(t, "fruit.txt", []byte(scenario))
	s := newSearcher(t, "a", WithMetricsCollector(collector))
	_, err = s.Search(context.Background(), path)
	require.NoError(t, err)
	_, err = s.Search(context.Background(), path+".missing")
	require.Error(t, err)

	assert.InDelta(t, 1, counterValue(t, reg, "lanegrep_files_total", "success"), 0)
	assert.InDelta(t, 1, counterValue(t, reg, "lanegrep_files_total", "error"), 0)
	assert.InDelta(t, 2, counterValue(t, reg, "lanegrep_matches_total", ""), 0)
	assert.InDelta(t, float64(len(scenario)), counterValue(t, reg, "lanegrep_bytes_searched_total", ""), 0)
	assert.InDelta(t, 1, counterValue(t, reg, "lanegrep_windows_total", ""), 0)

	_, err = NewPrometheusCollector(reg)
	assert.Error(t, err)

	collector.Unregister()
	_, err = NewPrometheusCollector(reg)
	assert.NoError(t, err)
}

func counterValue(t *testing.T, g prometheus.Gatherer, name, status string) float64 {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if status == "" || hasLabel(m, "status", status) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	path := testutil.WriteFile(t, "hits.txt", bytes.Repeat([]byte("hit\n"), 3))

	s := newSearcher(t, "hit", WithLogger(l), WithBufferCapacity(2))
	_, err := s.Search(context.Background(), path)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"device opened"`)
	assert.Contains(t, out, `"msg":"window launched"`)
	assert.Contains(t, out, `"msg":"search completed"`)
	assert.Contains(t, out, `"msg":"match buffer full, matches dropped"`)
	assert.Contains(t, out, `"dropped":1`)
	assert.Contains(t, out, `"path":"`+path+`"`)
}
