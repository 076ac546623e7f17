package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blacktop/fa/pkg/alias"
	"github.com/blacktop/fa/pkg/interp"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReader(t *testing.T) {
	c, err := LoadReader(strings.NewReader(`
signatures-root: /tmp/sigs
project: ios/kernel
alias:
  global: /tmp/aliases
  mode: token
strict: true
target-version: "17.0"
host:
  raw: true
  base: 0x4000
`))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/sigs", c.SignaturesRoot)
	assert.Equal(t, alias.MatchToken, c.Alias.Mode)
	assert.Equal(t, uint64(0x4000), c.Host.Base)

	rc := c.RunContext()
	assert.Equal(t, filepath.Join("/tmp/sigs", "ios", "kernel"), rc.ProjectDir())
	assert.Equal(t, interp.PolicyStrict, rc.Policy)
	assert.Equal(t, "/tmp/aliases", rc.GlobalAliases)
	assert.Equal(t, alias.MatchToken, rc.AliasMode)
	assert.Equal(t, "17.0", rc.TargetVersion)
}

func TestLoadReaderDefaults(t *testing.T) {
	c, err := LoadReader(strings.NewReader("{}"))
	require.NoError(t, err)
	assert.Equal(t, interp.DefaultProject, c.Project)
	assert.Equal(t, alias.MatchPrefix, c.Alias.Mode)
	assert.NotEmpty(t, c.SignaturesRoot)
	assert.Equal(t, interp.PolicyRecover, c.RunContext().Policy)
}

func TestLoadReaderInvalid(t *testing.T) {
	_, err := LoadReader(strings.NewReader("alias:\n  mode: regex\n"))
	assert.Error(t, err)

	_, err = LoadReader(strings.NewReader("project: /abs\n"))
	assert.Error(t, err)

	_, err = LoadReader(strings.NewReader("target-version: seventeen\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target-version")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project: macos\n"), 0o644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "macos", c.Project)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	SetDefaults()
	viper.Set("alias.mode", "token")
	viper.Set("host.base", "0x100000000")
	viper.Set("strict", true)

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, interp.DefaultProject, c.Project)
	assert.Equal(t, alias.MatchToken, c.Alias.Mode)
	assert.Equal(t, uint64(0x100000000), c.Host.Base)
	assert.True(t, c.Strict)
	assert.Equal(t, 1024, c.Host.CacheSize)
}

func TestSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fa", "config.yaml")

	require.NoError(t, Set(path, "project", "ios"))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ios", c.Project)

	require.NoError(t, os.WriteFile(path, []byte("strict: true\nproject: ios\n"), 0o600))
	require.NoError(t, Set(path, "project", "macos/kernel"))
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "macos/kernel", c.Project)
	assert.True(t, c.Strict)
}
