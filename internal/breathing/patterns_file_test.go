package breathing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePatterns(t *testing.T) {
	patterns, err := ParsePatterns([]byte(`
patterns:
  - name: " Long Exhale "
    inhale: 4
    exhale: 8
  - name: Box Six
    inhale: 6
    hold: 6
    exhale: 6
    rest: 6
    description: slower square
`))
	require.NoError(t, err)
	require.Len(t, patterns, 2)
	assert.Equal(t, Pattern{Name: "Long Exhale", Inhale: 4, Exhale: 8}, patterns[0])
	assert.Equal(t, 24, patterns[1].CycleSeconds())
	assert.Equal(t, "slower square", patterns[1].Description)

	p, ok := LookupIn(patterns, "long exhale")
	require.True(t, ok)
	assert.Equal(t, 12, p.CycleSeconds())

	p, ok = LookupIn(patterns, "Deep Calm")
	require.True(t, ok, "falls back to the catalog")
	assert.Equal(t, 5, p.Inhale)
}

func TestParsePatterns_Rejects(t *testing.T) {
	tests := map[string]string{
		"bad yaml":     "patterns: [",
		"missing name": "patterns:\n  - inhale: 4\n",
		"all zero":     "patterns:\n  - name: Nothing\n",
		"negative":     "patterns:\n  - name: Neg\n    inhale: -1\n    exhale: 3\n",
		"duplicate":    "patterns:\n  - name: A\n    inhale: 1\n  - name: a\n    exhale: 1\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePatterns([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadPatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte("patterns:\n  - name: Quick\n    inhale: 2\n    exhale: 2\n"), 0o600))

	patterns, err := LoadPatterns(path)
	require.NoError(t, err)
	require.Len(t, patterns, 1)

	_, err = LoadPatterns(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
