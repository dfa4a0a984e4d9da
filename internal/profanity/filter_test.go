package profanity

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsWholeWordsOnly(t *testing.T) {
	f := New("darn", "Heck")

	assert.True(t, f.Contains("well DARN it"))
	assert.True(t, f.Contains("what the heck!"))
	assert.False(t, f.Contains("darned socks"))
	assert.False(t, f.Contains("hello world"))
}

func TestParseSkipsCommentsAndBlanks(t *testing.T) {
	f, err := Parse(strings.NewReader("# header\n\nfoo\n  bar  \n"))
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())
	assert.True(t, f.Contains("bar"))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("blorp\n"), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.True(t, f.Contains("a blorp appears"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestNilFilter(t *testing.T) {
	var f *Filter
	assert.Equal(t, 0, f.Len())
	assert.False(t, f.Contains("anything"))
}
