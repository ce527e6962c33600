package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/printcurate-cli/internal/printformat"
)

func isolated(extra ...Option) []Option {
	return append([]Option{WithoutSystemEnv(), WithEnvFile("")}, extra...)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(isolated()...)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Len(t, cfg.PrintFormats(), 2)
	assert.Equal(t, 95, cfg.JPEGQuality())
	assert.InDelta(t, 0.85, cfg.DedupThreshold, 1e-9)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "printcurate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output: /srv/prints
dedupThreshold: 0.9
maxImagesPerRole: 12
formats:
  - name: 5x7
    width: 1500
    height: 2100
denylists:
  fanKeywords: [fanmade]
`), 0o644))

	cfg, err := Load(isolated(WithFile(path))...)
	require.NoError(t, err)
	assert.Equal(t, "/srv/prints", cfg.Output)
	assert.InDelta(t, 0.9, cfg.DedupThreshold, 1e-9)
	assert.Equal(t, 12, cfg.MaxImagesPerRole)
	require.Len(t, cfg.Formats, 1)
	assert.Equal(t, "5x7", cfg.Formats[0].Name)
	// untouched keys keep defaults
	assert.Equal(t, 95, cfg.JPEGQuality())
	assert.Contains(t, cfg.Lists().FanKeywords, "fanmade")
	assert.Contains(t, cfg.Lists().FanKeywords, Default().Lists().FanKeywords[0])
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\n"), 0o644))

	cfg, err := Load(isolated(WithFile(path), WithEnvMap(map[string]string{
		"PRINTCURATE_WORKERS":         "7",
		"PRINTCURATE_CHECK_METADATA":  "off",
		"PRINTCURATE_TOLERANCE":       "0.05",
		"PRINTCURATE_LEDGER":          "runs.db",
		"PRINTCURATE_DEDUP_THRESHOLD": "not-a-number",
	}))...)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
	assert.False(t, cfg.CheckMetadata)
	assert.InDelta(t, 0.05, cfg.Tolerance, 1e-9)
	assert.Equal(t, "runs.db", cfg.Ledger)
	assert.InDelta(t, Default().DedupThreshold, cfg.DedupThreshold, 1e-9)
}

func TestDotEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PRINTCURATE_QUALITY=90\nPRINTCURATE_OUTPUT=\"./out dir\"\n"), 0o644))

	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(envFile))
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Quality)
	assert.Equal(t, "./out dir", cfg.Output)

	// explicit values beat .env
	cfg, err = Load(WithoutSystemEnv(), WithEnvFile(envFile), WithEnvMap(map[string]string{"PRINTCURATE_QUALITY": "80"}))
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Quality)
}

func TestMissingDotEnvIgnored(t *testing.T) {
	_, err := Load(WithoutSystemEnv(), WithEnvFile(filepath.Join(t.TempDir(), "nope.env")))
	require.NoError(t, err)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := Load(isolated(WithFile(filepath.Join(t.TempDir(), "absent.yaml")))...)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.DedupThreshold = 1.5
	cfg.Workers = 0
	cfg.WideTolerance = cfg.Tolerance / 2
	cfg.MaxPixels = 0
	cfg.Formats = append(printformat.Defaults(), printformat.Print8x10,
		printformat.Format{Name: "../escape", Width: 100, Height: 100})

	err := cfg.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{"DedupThreshold", "Workers", "WideTolerance", "MaxPixels", "Formats[2]", "Formats[3]"}, verr.Fields())
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	_, err := Load(isolated(WithEnvMap(map[string]string{"PRINTCURATE_QUALITY": "400"}))...)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Quality"}, verr.Fields())
}

func TestProfileSelectsFormats(t *testing.T) {
	cfg, err := Load(isolated(WithEnvMap(map[string]string{"PRINTCURATE_PROFILE": "proof"}))...)
	require.NoError(t, err)
	assert.Equal(t, []printformat.Format{printformat.Print8x10}, cfg.PrintFormats())
	assert.Equal(t, 85, cfg.JPEGQuality())

	cfg.Quality = 70
	assert.Equal(t, 70, cfg.JPEGQuality(), "explicit quality wins")

	_, err = Load(isolated(WithEnvMap(map[string]string{"PRINTCURATE_PROFILE": "poster"}))...)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Profile"}, verr.Fields())
}
