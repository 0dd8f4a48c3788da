package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeMaze(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "maze.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRun_SolvesAndPrintsCellCount(t *testing.T) {
	path := writeMaze(t, "3 4\n####\n#@%#\n####\n")

	var out bytes.Buffer
	code, err := run([]string{path}, &out)
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Equal(t, "2\n", out.String())

	// Start and goal are directly adjacent, so reconstruction marks
	// nothing: both endpoint characters are preserved verbatim.
	marked, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(marked), "#@%#")
}

func TestRun_UnsolvableMazeExitsNonZero(t *testing.T) {
	path := writeMaze(t, "5 5\n#####\n#@###\n#####\n###%#\n#####\n")

	var out bytes.Buffer
	code, err := run([]string{path}, &out)
	require.NoError(t, err)
	require.Equal(t, 1, code)
	require.Empty(t, out.String())
}

func TestRun_MissingArgReturnsUsageError(t *testing.T) {
	var out bytes.Buffer
	code, err := run(nil, &out)
	require.Error(t, err)
	require.Equal(t, 1, code)
}

func TestRun_NonexistentFileReturnsError(t *testing.T) {
	var out bytes.Buffer
	code, err := run([]string{filepath.Join(t.TempDir(), "missing.txt")}, &out)
	require.Error(t, err)
	require.Equal(t, 1, code)
}
