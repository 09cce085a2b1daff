package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig_Missing(t *testing.T) {
	cfg, err := ReadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestReadConfig_Partial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workers: 4
heuristic: /etc/dcmgroup/heuristic.yaml
converter:
  args: ["-v", "0"]
`), 0o644))

	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "/etc/dcmgroup/heuristic.yaml", cfg.Heuristic)
	assert.Equal(t, "dcm2niix", cfg.Converter.Command)
	assert.Equal(t, []string{"-v", "0"}, cfg.Converter.Args)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, Defaults().DBPath, cfg.DBPath)
}

func TestReadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [1, 2"), 0o644))

	_, err := ReadConfig(path)
	assert.Error(t, err)
}
