package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "data/sirius.db", cfg.Database.Path)
	assert.Equal(t, "exports", cfg.Export.Dir)
	assert.Equal(t, 500, cfg.Wizard.ReportBatchSize)
	assert.True(t, cfg.Security.RateLimit.Enabled)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SIRIUS_SERVER_PORT", "9090")
	t.Setenv("SIRIUS_WIZARD_REPORT_BATCH_SIZE", "100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 100, cfg.Wizard.ReportBatchSize)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Server.Port = 0
	assert.ErrorContains(t, cfg.Validate(), "invalid server port")

	cfg.Server.Port = 8080
	cfg.Wizard.ReportBatchSize = -1
	assert.ErrorContains(t, cfg.Validate(), "batch size")

	cfg.Wizard.ReportBatchSize = 500
	cfg.Database.Path = ""
	assert.ErrorContains(t, cfg.Validate(), "database path")
}
