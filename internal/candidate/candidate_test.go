package candidate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
roles:
  - name: Twilight
    celebrity: Kristen Stewart
    character: Bella Swan
    franchise: Twilight Saga
    candidates:
      - path: raw/001.jpg
        sourceUrl: https://images.example.org/001.jpg
        title: Bella Swan still
      - path: /abs/002.jpg
        vision: reject
  - name: "  Pokémon "
    celebrity: Ikue Otani
    character: Pikachu
    voiceRole: true
    candidates: []
`

func TestParse(t *testing.T) {
	batches, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	require.Len(t, batches, 2)

	tw := batches[0]
	assert.Equal(t, "Twilight", tw.Role.Name)
	assert.Equal(t, "Twilight Saga", tw.Role.Franchise)
	require.Len(t, tw.Candidates, 2)
	assert.Equal(t, "Bella Swan still", tw.Candidates[0].Title)
	assert.Equal(t, tw.Role, tw.Candidates[0].Role, "candidates carry their role")
	assert.Equal(t, VisionReject, tw.Candidates[1].Vision)

	pk := batches[1]
	assert.Equal(t, "Pokémon", pk.Role.Name)
	assert.True(t, pk.Role.VoiceRole)
	assert.Empty(t, pk.Candidates)
}

func TestParseJSON(t *testing.T) {
	batches, err := Parse([]byte(`{"roles":[{"name":"Panic Room","celebrity":"Kristen Stewart","candidates":[{"path":"a.png"}]}]}`))
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "a.png", batches[0].Candidates[0].Path)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no roles", "roles: []"},
		{"unnamed role", "roles:\n  - celebrity: x\n"},
		{"missing path", "roles:\n  - name: r\n    candidates:\n      - title: t\n"},
		{"bad vision", "roles:\n  - name: r\n    candidates:\n      - path: a.jpg\n        vision: maybe\n"},
		{"not yaml", "roles: [unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "candidates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	batches, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "raw", "001.jpg"), batches[0].Candidates[0].Path)
	assert.Equal(t, "/abs/002.jpg", batches[0].Candidates[1].Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{"b.jpg", "a.PNG", "sub/c.webp", "notes.txt", ".cache/d.jpg"} {
		full := filepath.Join(dir, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}

	role := Role{Name: "Twilight", Celebrity: "Kristen Stewart"}
	b, err := ScanDir(dir, role)
	require.NoError(t, err)

	var names []string
	for _, c := range b.Candidates {
		names = append(names, c.Filename())
		assert.Equal(t, role, c.Role)
	}
	assert.Equal(t, []string{"a.PNG", "b.jpg", "c.webp"}, names)
	assert.Equal(t, "a", b.Candidates[0].Title)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "jpeg", Format("x/IMG.JPG"))
	assert.Equal(t, "tiff", Format("scan.tif"))
	assert.Equal(t, "webp", Format("a.webp"))
	assert.Equal(t, "", Format("noext"))
}
