package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/nody/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoad_YAML(t *testing.T) {
	p := write(t, t.TempDir(), "nody.yaml", `
graphs_dir: flows
log_level: debug
tick_interval: 250ms
controllers:
  - name: main
    graph: onboarding
redis:
  addr: localhost:6379
  db: 2
`)

	c, err := config.Load(p)
	require.NoError(t, err)
	assert.Equal(t, "flows", c.GraphsDir)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 250*time.Millisecond, c.Interval())
	assert.Equal(t, []config.ControllerConfig{{Name: "main", Graph: "onboarding"}}, c.Controllers)
	assert.Equal(t, "localhost:6379", c.Redis.Addr)
	assert.Equal(t, 2, c.Redis.DB)
	assert.Equal(t, config.DefaultRedisPrefix, c.Redis.Prefix)
	assert.Equal(t, config.DefaultMaxHops, c.MaxHops)
	assert.Equal(t, config.DefaultHTTPAddr, c.HTTP.Addr)
}

func TestLoad_TOML(t *testing.T) {
	p := write(t, t.TempDir(), "nody.toml", `
max_hops = 50

[http]
addr = ":9090"

[[controllers]]
name = "a"
graph = "ga"

[[controllers]]
name = "b"
graph = "gb"
`)

	c, err := config.Load(p)
	require.NoError(t, err)
	assert.Equal(t, 50, c.MaxHops)
	assert.Equal(t, ":9090", c.HTTP.Addr)
	assert.Len(t, c.Controllers, 2)
	assert.Equal(t, config.DefaultGraphsDir, c.GraphsDir)
	assert.Equal(t, 100*time.Millisecond, c.Interval())
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := config.Load(write(t, dir, "bad.yaml", "tick_interval: soon\n"))
	assert.ErrorContains(t, err, "tick_interval")

	_, err = config.Load(write(t, dir, "dup.yaml", `
controllers:
  - {name: x, graph: g}
  - {name: x, graph: h}
`))
	assert.ErrorContains(t, err, "duplicate name")

	_, err = config.Load(write(t, dir, "nody.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported")

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestFindAndLoadOrDefault(t *testing.T) {
	dir := t.TempDir()

	c, err := config.LoadOrDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)

	write(t, dir, "nody.toml", `log_level = "warn"`)
	write(t, dir, "nody.yml", "log_level: error\n")

	p, ok := config.Find(dir)
	require.True(t, ok)
	assert.Equal(t, "nody.yml", filepath.Base(p))

	c, err = config.LoadOrDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, "error", c.LogLevel)
}
