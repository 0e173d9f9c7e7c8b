package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexText(t *testing.T) {
	text := IndexText(CoreHeader, CoreRows)
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	require.Len(t, lines, 8+1+len(CoreRows))
	assert.Equal(t, CoreHeader, lines[8])
	for _, l := range lines[:8] {
		assert.True(t, strings.HasPrefix(l, "#"))
	}
}

func TestWriteMirror(t *testing.T) {
	dir := t.TempDir()
	WriteMirror(t, dir, CoreIndex, Gzip)

	_, err := os.Stat(filepath.Join(dir, CoreFile+".gz"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, CoreFile))
	assert.True(t, os.IsNotExist(err))
}

func TestRecords(t *testing.T) {
	a := NewRNG(4711).Records(50)
	b := NewRNG(4711).Records(50)
	assert.Equal(t, a, b)
	for _, row := range a {
		assert.Len(t, strings.Split(row, ","), 8)
	}
}
