package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
cache:
  root: /tmp/sentipull
augmento:
  page_delay: 0s
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 3, c.Cache.FreshnessDays)
	assert.Equal(t, "best-effort", c.Cache.ReadPolicy)
	assert.Equal(t, 1000, c.Augmento.PageSize)
	assert.Equal(t, time.Duration(0), c.Augmento.PageDelay)
	assert.Equal(t, 2*time.Second, c.Binance.PageDelay)
	assert.Equal(t, 5, c.Retry.MaxAttempts)
	assert.Equal(t, 3600, c.Load.BinSize)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing root":   "environment: test\n",
		"bad policy":     "cache:\n  root: /x\n  read_policy: lenient\n",
		"limit too high": "cache:\n  root: /x\nbinance:\n  limit: 5000\n",
		"no brokers":     "cache:\n  root: /x\nevents:\n  enabled: true\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "cache:\n  root: /from/yaml\n")
	t.Setenv("SENTIPULL_CACHE_ROOT", "/from/env")
	t.Setenv("BINANCE_BASE_URL", "http://localhost:1234")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", c.Cache.Root)
	assert.Equal(t, "http://localhost:1234", c.Binance.BaseURL)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Events.Brokers)
	assert.Equal(t, "debug", c.Log.Level)
}
