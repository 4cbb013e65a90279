package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "universal", cfg.TargetPlatform)
	require.Equal(t, "normal", cfg.Logging.Console.Level)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kryc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
optimization_level: 2
target_platform: mobile
include_dirs: ["./shared"]
custom_variables:
  theme: dark
logging:
  console:
    level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.OptimizationLevel)
	require.Equal(t, "mobile", cfg.TargetPlatform)
	require.Equal(t, []string{"./shared"}, cfg.IncludeDirs)
	require.Equal(t, "dark", cfg.CustomVariables["theme"])
	require.Equal(t, "debug", cfg.Logging.Console.Level)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kryc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not_a_real_field: true\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsInvalidOptimizationLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kryc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("optimization_level: 9\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestDumpRoundTrips(t *testing.T) {
	cfg := Default()
	cfg.CustomVariables = map[string]string{"brand": "acme"}
	data, err := Dump(cfg)
	require.NoError(t, err)
	require.Contains(t, string(data), "brand: acme")
}
