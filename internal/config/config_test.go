package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CALCMV_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "calcmv.yaml", `
history_path: /tmp/h.json
precision: 3
log_level: debug
jacobian_heuristic: false
server:
  addr: 127.0.0.1:9000
  read_timeout: 30s
batch:
  parallel: 8
`)
	chdir(t, dir)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/h.json", cfg.HistoryPath)
	assert.Equal(t, int32(3), cfg.Precision)
	assert.False(t, cfg.JacobianHeuristic)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 8, cfg.Batch.Parallel)
	assert.Equal(t, "auto", cfg.Color)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "calcmv.yaml", "histroy_path: x.json\n")
	chdir(t, dir)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load("nope.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)

	t.Setenv("CALCMV_CONFIG", "also-missing.yaml")
	_, err = Load("")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "calcmv.yaml", "precision: 3\ncolor: never\n")
	chdir(t, dir)
	t.Setenv("CALCMV_CONFIG", "")
	t.Setenv("CALCMV_PRECISION", "10")
	t.Setenv("CALCMV_PARALLEL", "2")
	t.Setenv("CALCMV_JACOBIAN_HEURISTIC", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int32(10), cfg.Precision)
	assert.Equal(t, "never", cfg.Color)
	assert.Equal(t, 2, cfg.Batch.Parallel)
	assert.False(t, cfg.JacobianHeuristic)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "CALCMV_HISTORY=from-dotenv.json\n")
	chdir(t, dir)
	t.Setenv("CALCMV_CONFIG", "")
	// Registered so the variable set by godotenv is restored afterwards.
	t.Setenv("CALCMV_HISTORY", "")
	require.NoError(t, os.Unsetenv("CALCMV_HISTORY"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.json", cfg.HistoryPath)
}

func TestLoad_BadEnvValue(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CALCMV_CONFIG", "")
	t.Setenv("CALCMV_PRECISION", "many")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrConfigValidation)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty history", func(c *Config) { c.HistoryPath = "" }},
		{"negative precision", func(c *Config) { c.Precision = -1 }},
		{"color", func(c *Config) { c.Color = "rainbow" }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"parallel", func(c *Config) { c.Batch.Parallel = 0 }},
		{"timeout", func(c *Config) { c.Server.ReadTimeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrConfigValidation)
		})
	}
	assert.NoError(t, Default().Validate())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
