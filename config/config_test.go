package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMP_SERVER_URL", "")
	t.Setenv("GEMP_USERNAME", "")

	cfg := Load()
	assert.Equal(t, "http://localhost:8082/gemp-swccg-server/", cfg.ServerURL)
	assert.Equal(t, "rando_cal", cfg.Username)
	assert.Equal(t, 6, cfg.DeployThreshold)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("GEMP_SERVER_URL", "http://localhost:9999/gemp/")
	t.Setenv("DEPLOY_THRESHOLD", "10")

	cfg := Load()
	assert.Equal(t, "http://localhost:9999/gemp/", cfg.ServerURL)
	assert.Equal(t, 10, cfg.DeployThreshold)
}
