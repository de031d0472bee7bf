package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	v, err := New("")
	require.NoError(t, err)

	cfg, err := Load(v, nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "permissive", cfg.Lead.StatusPolicy)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Research.StaleAfter)
	assert.Empty(t, cfg.RabbitMQ.URL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LEADPIPE_DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("LEADPIPE_LEAD_STATUS_POLICY", "strict")
	t.Setenv("LEADPIPE_RESEARCH_STALE_AFTER", "90s")
	t.Setenv("LEADPIPE_AI_MAX_RETRIES", "5")

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v, nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/leads", cfg.Database.URL)
	assert.Equal(t, "strict", cfg.Lead.StatusPolicy)
	assert.Equal(t, 90*time.Second, cfg.Research.StaleAfter)
	assert.Equal(t, 5, cfg.AI.MaxRetries)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	yaml := "http:\n  addr: \":9090\"\nmail:\n  host: smtp.example.com\n  to: sales@example.com\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leadpipe.yaml"), []byte(yaml), 0o600))

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v, nil)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "smtp.example.com", cfg.Mail.Host)
	assert.Equal(t, 587, cfg.Mail.Port)
}

func TestExplicitConfigFileMustExist(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestAIKeyFallsBackToSecrets(t *testing.T) {
	chdir(t, t.TempDir())
	v, err := New("")
	require.NoError(t, err)

	cfg, err := Load(v, map[string]string{AIKeySecret: "from-file"})
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.AI.APIKey)

	t.Setenv("LEADPIPE_AI_API_KEY", "from-env")
	cfg, err = Load(v, map[string]string{AIKeySecret: "from-file"})
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.AI.APIKey)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Research: ResearchConfig{Concurrency: 1}}
	assert.ErrorContains(t, cfg.Validate(), "database.url")

	cfg.Database.URL = "postgres://x"
	assert.NoError(t, cfg.Validate())

	cfg.Mail.Host = "smtp.example.com"
	assert.ErrorContains(t, cfg.Validate(), "mail.to")
}
