package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ValidDocument(t *testing.T) {
	path := writeTempConfig(t, `
sample_rate: 96000
nac_allow_list: [293, 300]
metrics:
  enabled: true
  bind_addr: ":9100"
raw_stream:
  websocket_addr: ":8080"
  record_path: /tmp/raw.zst
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 96000.0, cfg.SampleRate)
	assert.Equal(t, []int{293, 300}, cfg.NACAllowList)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9100", cfg.Metrics.BindAddr)
	assert.Equal(t, ":8080", cfg.RawStream.WebsocketAddr)
}

func TestLoad_RejectsLowSampleRate(t *testing.T) {
	path := writeTempConfig(t, "sample_rate: 9600\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFileIsError(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestAllows_EmptyListAcceptsAll(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Allows(1))
	assert.True(t, cfg.Allows(9999))
}

func TestAllows_NonEmptyListFilters(t *testing.T) {
	cfg := Default()
	cfg.NACAllowList = []int{293}
	assert.True(t, cfg.Allows(293))
	assert.False(t, cfg.Allows(294))
}

func TestDefault_PassesValidation(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
