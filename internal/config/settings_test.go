package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("querybench", pflag.ContinueOnError)
	fs.String("base-url", "", "")
	fs.String("routes", "", "")
	fs.Duration("timeout", 0, "")
	fs.String("log-level", "", "")
	fs.String("log-file", "", "")
	return fs
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, s.APIURL)
	assert.Empty(t, s.RoutesFile)
	assert.Zero(t, s.Timeout)
	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, "text", s.Log.Format)
	assert.Empty(t, s.Log.File)
}

func TestLoadSettings_Env(t *testing.T) {
	t.Setenv("QUERYBENCH_API_URL", "http://shop.test:8080")
	t.Setenv("QUERYBENCH_TIMEOUT", "5s")
	t.Setenv("QUERYBENCH_LOG_LEVEL", "debug")

	s, err := LoadSettings("", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://shop.test:8080", s.APIURL)
	assert.Equal(t, 5*time.Second, s.Timeout)
	assert.Equal(t, "debug", s.Log.Level)
}

func TestLoadSettings_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "querybench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: https://api.example.com
routes_file: routes.yaml
timeout: 2s
log:
  level: warn
  file: /tmp/qb.log
  format: json
`), 0o644))

	s, err := LoadSettings(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", s.APIURL)
	assert.Equal(t, "routes.yaml", s.RoutesFile)
	assert.Equal(t, 2*time.Second, s.Timeout)
	assert.Equal(t, LogSettings{Level: "warn", File: "/tmp/qb.log", Format: "json"}, s.Log)
}

func TestLoadSettings_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "querybench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: http://from-file:1\n"), 0o644))

	t.Run("env beats file", func(t *testing.T) {
		t.Setenv("QUERYBENCH_API_URL", "http://from-env:2")
		s, err := LoadSettings(path, newFlags())
		require.NoError(t, err)
		assert.Equal(t, "http://from-env:2", s.APIURL)
	})

	t.Run("flag beats env", func(t *testing.T) {
		t.Setenv("QUERYBENCH_API_URL", "http://from-env:2")
		fs := newFlags()
		require.NoError(t, fs.Parse([]string{"--base-url", "http://from-flag:3"}))

		s, err := LoadSettings(path, fs)
		require.NoError(t, err)
		assert.Equal(t, "http://from-flag:3", s.APIURL)
	})

	t.Run("unset flag does not override", func(t *testing.T) {
		s, err := LoadSettings(path, newFlags())
		require.NoError(t, err)
		assert.Equal(t, "http://from-file:1", s.APIURL)
	})
}

func TestLoadSettings_Errors(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"), nil)
		assert.Error(t, err)
	})

	t.Run("bad scheme", func(t *testing.T) {
		t.Setenv("QUERYBENCH_API_URL", "ftp://shop")
		_, err := LoadSettings("", nil)
		assert.ErrorIs(t, err, ErrInvalidSettings)
	})

	t.Run("no host", func(t *testing.T) {
		t.Setenv("QUERYBENCH_API_URL", "http://")
		_, err := LoadSettings("", nil)
		assert.ErrorIs(t, err, ErrInvalidSettings)
	})

	t.Run("negative timeout", func(t *testing.T) {
		t.Setenv("QUERYBENCH_TIMEOUT", "-1s")
		_, err := LoadSettings("", nil)
		assert.ErrorIs(t, err, ErrInvalidSettings)
	})
}
