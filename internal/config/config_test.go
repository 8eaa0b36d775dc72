package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database:
  path: /tmp/test.db
usgs:
  sample_interval_m: 25
  delay_seconds: 0.5
collection:
  parks: [acad, yell]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, 25.0, cfg.USGS.SampleIntervalM)
	assert.Equal(t, 500*time.Millisecond, cfg.USGSDelay())
	assert.Equal(t, []string{"acad", "yell"}, cfg.Collection.Parks)

	// Untouched values keep their defaults
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.NPSTimeout())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadAPIKeyFromEnv(t *testing.T) {
	t.Setenv("NPS_API_KEY", "secret-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "secret-key", cfg.NPS.APIKey)
	assert.NoError(t, cfg.ValidateForNPS())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.USGS.SampleIntervalM = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.NPS.DelaySeconds = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Database.Path = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Collection.Parks = []string{"ACAD"}
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Collection.Parks = []string{"acadia"}
	assert.Error(t, cfg.Validate())
}

func TestValidateForNPSRequiresKey(t *testing.T) {
	cfg := Default()
	cfg.NPS.APIKey = ""
	assert.Error(t, cfg.ValidateForNPS())
}
