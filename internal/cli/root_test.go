package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand("1.0.0")
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestNewRootCommand(t *testing.T) {
	t.Run("creates root command", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		assert.NotNil(t, cmd)
		assert.Equal(t, "querybench", cmd.Use)
		assert.Equal(t, "1.0.0", cmd.Version)
		assert.True(t, cmd.SilenceUsage)
	})

	t.Run("has persistent flags", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		for _, name := range []string{"config", "routes", "base-url", "timeout", "log-file", "log-level", "log-format"} {
			assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		for _, name := range []string{"send", "routes", "version"} {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Contains(t, sub.Use, name)
		}

		imp, _, err := cmd.Find([]string{"routes", "import"})
		require.NoError(t, err)
		assert.Contains(t, imp.Use, "import")
	})

	t.Run("rejects invalid settings", func(t *testing.T) {
		_, _, err := execute(t, "routes", "--base-url", "ftp://nope")
		assert.Error(t, err)
	})
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "querybench 1.0.0")
}
