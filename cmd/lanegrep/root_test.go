package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenario = "apple\nbanana\nApple Pie\n"

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	// Keep a stray ~/.lanegrep.yaml out of the test.
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestCLI_Scenario(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fruit.txt", scenario)

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"literal", []string{"apple", path}, "apple\n"},
		{"ignore case", []string{"-i", "apple", path}, "apple\nApple Pie\n"},
		{"invert", []string{"-v", "-i", "apple", path}, "banana\n"},
		{"prefix anchor", []string{"^Apple", path}, "Apple Pie\n"},
		{"count", []string{"-c", "-i", "apple", path}, "2\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := runCLI(t, "", tc.args...)
			assert.Equal(t, exitMatch, res.code, res.stderr)
			assert.Equal(t, tc.want, res.stdout)
		})
	}
}

func TestCLI_NoMatch(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fruit.txt", scenario)

	res := runCLI(t, "", "cherry", path)
	assert.Equal(t, exitNoMatch, res.code)
	assert.Empty(t, res.stdout)
}

func TestCLI_MissingPattern(t *testing.T) {
	res := runCLI(t, "")
	assert.Equal(t, exitTrouble, res.code)
	assert.Contains(t, res.stderr, "lanegrep:")
}

func TestCLI_EmptyPattern(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fruit.txt", scenario)

	res := runCLI(t, "", "", path)
	assert.Equal(t, exitTrouble, res.code)
	assert.Contains(t, res.stderr, "empty pattern")
}

func TestCLI_Recursive(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "apple\n")
	b := writeFile(t, dir, filepath.Join("sub", "b.txt"), "pineapple\nkiwi\n")
	writeFile(t, dir, filepath.Join("sub", "c.txt"), "kiwi\n")

	res := runCLI(t, "", "-r", "apple", dir)
	require.Equal(t, exitMatch, res.code, res.stderr)
	assert.Equal(t, a+":apple\n"+b+":pineapple\n", res.stdout)

	res = runCLI(t, "", "-r", "-h", "apple", dir)
	require.Equal(t, exitMatch, res.code, res.stderr)
	assert.Equal(t, "apple\npineapple\n", res.stdout)
}

func TestCLI_CountWithLabels(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "apple\napple\n")
	b := writeFile(t, dir, "b.txt", "kiwi\n")

	res := runCLI(t, "", "-c", "apple", a, b)
	require.Equal(t, exitMatch, res.code, res.stderr)
	assert.Equal(t, a+":2\n"+b+":0\n", res.stdout)
}

func TestCLI_DirectoryWithoutRecursive(t *testing.T) {
	dir := t.TempDir()

	res := runCLI(t, "", "apple", dir)
	assert.Equal(t, exitTrouble, res.code)
	assert.Contains(t, res.stderr, dir)
}

func TestCLI_MissingFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fruit.txt", scenario)
	missing := filepath.Join(dir, "missing.txt")

	t.Run("with match elsewhere", func(t *testing.T) {
		res := runCLI(t, "", "apple", missing, path)
		assert.Equal(t, exitMatch, res.code)
		assert.Equal(t, path+":apple\n", res.stdout)
		assert.Contains(t, res.stderr, missing)
	})

	t.Run("alone", func(t *testing.T) {
		res := runCLI(t, "", "apple", missing)
		assert.Equal(t, exitTrouble, res.code)
		assert.Empty(t, res.stdout)
		assert.Contains(t, res.stderr, missing)
	})
}

func TestCLI_Stdin(t *testing.T) {
	res := runCLI(t, scenario, "-i", "pie")
	require.Equal(t, exitMatch, res.code, res.stderr)
	assert.Equal(t, "Apple Pie\n", res.stdout)

	res = runCLI(t, scenario, "banana", "-")
	require.Equal(t, exitMatch, res.code, res.stderr)
	assert.Equal(t, "banana\n", res.stdout)
}

func TestCLI_Stats(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fruit.txt", scenario)

	res := runCLI(t, "", "--stats", "apple", path)
	require.Equal(t, exitMatch, res.code, res.stderr)
	assert.Equal(t, "apple\n", res.stdout)
	// go-pretty upper-cases header and footer cells.
	assert.Contains(t, res.stderr, "MATCHES")
	assert.Contains(t, res.stderr, path)
	assert.Contains(t, res.stderr, "plain")
	assert.Contains(t, res.stderr, "1 FILES")
}

func TestCLI_MetricsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fruit.txt", scenario)
	metrics := filepath.Join(dir, "lanegrep.prom")

	res := runCLI(t, "", "--metrics-file", metrics, "apple", path)
	require.Equal(t, exitMatch, res.code, res.stderr)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "lanegrep_files_total")
	assert.Contains(t, string(data), "lanegrep_matches_total 1")
}

func TestCLI_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fruit.txt", scenario)
	cfg := writeFile(t, dir, "lanegrep.yaml", "search:\n  capacity: 1\n")

	res := runCLI(t, "", "--config", cfg, "-i", "apple", path)
	require.Equal(t, exitMatch, res.code, res.stderr)
	assert.Equal(t, "apple\n", res.stdout)
	assert.Contains(t, res.stderr, "dropped")

	res = runCLI(t, "", "--config", cfg, "--capacity", "8", "-i", "apple", path)
	require.Equal(t, exitMatch, res.code, res.stderr)
	assert.Equal(t, "apple\nApple Pie\n", res.stdout)
}

func TestCLI_InvalidConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fruit.txt", scenario)

	res := runCLI(t, "", "--color", "sometimes", "apple", path)
	assert.Equal(t, exitTrouble, res.code)
	assert.Contains(t, res.stderr, "lanegrep:")
}

func TestCLI_ColorAlways(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "apple\n")
	b := writeFile(t, dir, "b.txt", "apple\n")

	res := runCLI(t, "", "--color", "always", "apple", a, b)
	require.Equal(t, exitMatch, res.code, res.stderr)
	assert.Contains(t, res.stdout, "\x1b[35m"+a)
	assert.Contains(t, res.stdout, "apple\n")

	res = runCLI(t, "", "--color", "never", "apple", a, b)
	require.Equal(t, exitMatch, res.code, res.stderr)
	assert.NotContains(t, res.stdout, "\x1b[")
}
