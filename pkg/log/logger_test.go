package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for s, want := range map[string]Level{
		"error": ErrorLevel,
		"info":  InfoLevel,
		"debug": DebugLevel,
		"trace": TraceLevel,
	} {
		got, err := ParseLevel(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	lvl, err := ParseLevel("loud")
	require.Error(t, err)
	assert.Equal(t, InfoLevel, lvl)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", DebugLevel.String())
	assert.Equal(t, "LEVEL(9)", Level(9).String())
}

func TestLogger_Verbosity(t *testing.T) {
	l, err := New(InfoLevel, "")
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	l.SetOutput(&stdout, &stderr)

	l.Info("rendered %d pages", 1)
	l.Debug("hidden")
	l.Error("boom")
	l.Success("done")
	l.Warning("careful")

	assert.Equal(t, "rendered 1 pages\n✅ done\n⚠️  careful\n", stdout.String())
	assert.Equal(t, "❌ boom\n", stderr.String())
	require.NoError(t, l.Close())
}

func TestLogger_File(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := New(DebugLevel, dir)
	require.NoError(t, err)

	var discard bytes.Buffer
	l.SetOutput(&discard, &discard)
	l.Debug("opening store")
	l.Progress("rendering")
	l.Trace("not written")
	require.NoError(t, l.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	content, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "DEBUG: opening store")
	assert.Contains(t, string(content), "[PROGRESS] rendering")
	assert.NotContains(t, string(content), "not written")
}
