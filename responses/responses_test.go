package responses

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFillsPlaceholders(t *testing.T) {
	m := NewManager()

	line := m.Format("work", map[string]string{"amount": "12"})
	assert.Equal(t, "You worked a long shift and earned **12 Medals**.", line)

	// unknown keys come back untouched
	assert.Equal(t, "no_such_line", m.Format("no_such_line", nil))
}

func TestLoadOverridesReplaceDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "responses.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"work":"Shift over: {amount}"}`), 0o644))

	m := NewManager()
	m.Load(path)
	assert.Equal(t, "Shift over: 12", m.Format("work", map[string]string{"amount": "12"}))

	// keys the file doesn't override still use the built-in line
	assert.Equal(t, defaults["prison"], m.Format("prison", nil))
}

func TestLoadIgnoresMissingFile(t *testing.T) {
	m := NewManager()
	m.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, defaults["work"], m.Format("work", nil))
}
