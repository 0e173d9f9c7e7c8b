package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/euroargodev/argoindex/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, int) {
	t.Helper()
	stdout, _, code := runCLILog(t, args...)
	return stdout, code
}

func runCLILog(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestRunWMO(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteMirror(t, dir, testutil.CoreIndex, testutil.Gzip)

	out, code := runCLI(t, "--gdac", dir, "wmo", "2902696")
	require.Equal(t, 0, code)
	assert.Equal(t, []string{
		dir + "/dac/jma/2902696/profiles/R2902696_001.nc",
		dir + "/dac/jma/2902696/profiles/R2902696_002.nc",
	}, strings.Fields(out))

	out, code = runCLI(t, "--gdac", dir, "--backend", "labeled", "-o", "fetch", "wmo", "2902696,6902746")
	require.Equal(t, 0, code)
	assert.Equal(t, []string{
		dir + "/dac/coriolis/6902746/6902746_prof.nc",
		dir + "/dac/jma/2902696/2902696_prof.nc",
	}, strings.Fields(out))
}

func TestRunBoxFrame(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteMirror(t, dir, testutil.CoreIndex, testutil.Raw)

	out, code := runCLI(t, "--gdac", dir, "-o", "frame", "--max-rows", "2", "box", "--", "-60", "-55", "40", "45")
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "file,date,latitude"))
	assert.True(t, strings.HasPrefix(lines[1], "aoml/1901393/profiles/R1901393_001.nc,2007-08-01T12:00:00,40,-60"))
}

func TestRunCache(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteMirror(t, dir, testutil.CoreIndex, testutil.Both)
	cacheDir := t.TempDir()

	_, code := runCLI(t, "--gdac", dir, "--cache", "--cachedir", cacheDir, "-o", "wmo", "cyc", "7")
	require.Equal(t, 0, code)
	assert.DirExists(t, cacheDir+"/search")

	_, code = runCLI(t, "--gdac", dir, "--cache", "--cachedir", cacheDir, "clear-cache")
	require.Equal(t, 0, code)

	lz4Dir := t.TempDir()
	_, code = runCLI(t, "--gdac", dir, "--cache", "--cachedir", lz4Dir, "--artifacts.codec", "binary+lz4", "cyc", "7")
	require.Equal(t, 0, code)
	assert.DirExists(t, lz4Dir+"/search")
}

func TestRunFrameExportKey(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteMirror(t, dir, testutil.CoreIndex, testutil.Raw)

	_, logs, code := runCLILog(t, "--gdac", dir, "--cache", "--cachedir", t.TempDir(),
		"--log.level", "debug", "-o", "frame", "--max-rows", "2", "wmo", "1901393")
	require.Equal(t, 0, code)
	assert.Contains(t, logs, "/export.2")

	_, logs, code = runCLILog(t, "--gdac", dir, "--cache", "--cachedir", t.TempDir(),
		"--log.level", "debug", "-o", "frame", "wmo", "1901393")
	require.Equal(t, 0, code)
	assert.Contains(t, logs, ".export")
	assert.NotContains(t, logs, "/export.")
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteMirror(t, dir, testutil.CoreIndex, testutil.Raw)

	_, code := runCLI(t, "--gdac", dir)
	assert.Equal(t, 2, code)
	_, code = runCLI(t, "--gdac", dir, "wmo", "abc")
	assert.Equal(t, 2, code)
	_, code = runCLI(t, "--gdac", dir, "wmo", "12")
	assert.Equal(t, 2, code)
	_, code = runCLI(t, "--gdac", t.TempDir(), "info")
	assert.Equal(t, 1, code)
	_, code = runCLI(t, "--dataset", "ref", "--gdac", dir, "info")
	assert.Equal(t, 2, code)
}

func TestParseInts(t *testing.T) {
	got, err := parseInts([]string{"1,2", "3", ""})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)

	_, err = parseInts([]string{"x"})
	assert.Error(t, err)
}
