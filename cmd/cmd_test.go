package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/printcurate-cli/internal/manifest"
	"github.com/AnyUserName/printcurate-cli/internal/testimage"
)

// smallConfig scales the print formats down so the CLI test renders quickly.
const smallConfig = `
minFileSize: 1
workers: 2
formats:
  - name: 8x10
    width: 240
    height: 300
  - name: 11x17
    width: 330
    height: 510
`

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func TestBuildValidateStats(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	cfgPath := filepath.Join(dir, "printcurate.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(smallConfig), 0o644))

	doc := "roles:\n  - name: Twilight\n    celebrity: Kristen Stewart\n    candidates:\n"
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("%d.jpg", i)
		require.NoError(t, testimage.WriteJPEG(filepath.Join(dir, name), testimage.Blocks(480, 600, int64(100+i), 1), 90))
		doc += "      - path: " + name + "\n"
	}
	candidates := filepath.Join(dir, "candidates.yaml")
	require.NoError(t, os.WriteFile(candidates, []byte(doc), 0o644))

	ledgerPath := filepath.Join(dir, "runs.db")
	require.NoError(t, execute(t, "build", candidates, "-c", cfgPath, "-o", out, "--ledger", ledgerPath))

	m, _, err := manifest.Read(out)
	require.NoError(t, err)
	assert.Equal(t, 3, m.TotalImages)
	assert.Equal(t, map[string]int{"8x10": 3}, m.Formats)
	assert.FileExists(t, filepath.Join(out, "resized", "8x10", "01 - Kristen Stewart - Twilight - 8x10.jpg"))

	require.NoError(t, execute(t, "validate", out, "-c", cfgPath))
	require.NoError(t, execute(t, "stats", out, "-c", cfgPath, "--ledger", ledgerPath))

	require.NoError(t, os.Remove(filepath.Join(out, "resized", "8x10", "02 - Kristen Stewart - Twilight - 8x10.jpg")))
	assert.Error(t, execute(t, "validate", out, "-c", cfgPath))
}

func TestBuildRequiresInput(t *testing.T) {
	assert.Error(t, execute(t, "build", "--config", ""))
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.jpg")
	require.NoError(t, testimage.WriteJPEG(path, testimage.Blocks(480, 600, 7, 1), 90))
	cfgPath := filepath.Join(dir, "printcurate.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(smallConfig), 0o644))

	assert.NoError(t, execute(t, "inspect", path, "-c", cfgPath, "--role", "Twilight"))
}

func TestTruncNameKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "Twilight", truncName("Twilight", 10))

	got := truncName("Pokémon Pokémon Pokémon Pokémon", 10)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "Pokémon...", got)
	assert.Equal(t, 10, utf8.RuneCountInString(got))
}
