package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todoview/internal/pipeline"
)

// isolate points every lookup at empty temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	for _, k := range []string{"TODO_STORE", "TODO_API_URL", "TODO_ITEMS_PATH", "TODO_TIMEOUT",
		"TODO_FILE", "TODO_LOG_FILE", "TODO_LOG_LEVEL", "TODO_THEME", "TODO_APPLY_SEARCH"} {
		t.Setenv(k, "")
	}
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestDefaults(t *testing.T) {
	dir := isolate(t)
	cfg, err := Load(Flags{}, nil)
	require.NoError(t, err)

	assert.Equal(t, StoreRemote, cfg.Store)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
	assert.Equal(t, filepath.Join(dir, "state", "todo", "todo.log"), cfg.LogFile)
	assert.Equal(t, pipeline.Params{}, cfg.Params())
	assert.Empty(t, cfg.Files)
}

func TestLayering(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config", "todo", "config.toml"), `
api_url = "http://user.example"
theme = "neon"
sort = "desc"
delete_concurrency = 3
`)
	writeFile(t, filepath.Join(dir, "todo.toml"), `
api_url = "http://project.example"
filter = "pending"
`)
	t.Setenv("TODO_THEME", "mono")
	t.Setenv("TODO_APPLY_SEARCH", "true")

	var flags Flags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bind(fs)
	require.NoError(t, fs.Parse([]string{"--store", "file", "--file", "x.json"}))

	cfg, err := Load(flags, fs)
	require.NoError(t, err)

	assert.Equal(t, "http://project.example", cfg.APIURL)
	assert.Equal(t, "mono", cfg.Theme)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, "x.json", cfg.File)
	assert.Equal(t, 3, cfg.DeleteConcurrency)
	assert.Len(t, cfg.Files, 2)

	p := cfg.Params()
	assert.Equal(t, pipeline.Descending, p.Sort)
	assert.Equal(t, pipeline.OnlyPending, p.Filter)
	assert.True(t, p.ApplySearch)
}

func TestUnchangedFlagsDoNotOverride(t *testing.T) {
	isolate(t)
	t.Setenv("TODO_API_URL", "http://env.example")

	flags := Flags{APIURL: "http://stale.example"}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg, err := Load(flags, fs)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example", cfg.APIURL)
}

func TestExplicitConfigFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "todo.toml"), `theme = "neon"`)
	explicit := filepath.Join(dir, "custom.toml")
	writeFile(t, explicit, `timeout = "2s"`)

	cfg, err := Load(Flags{ConfigFile: explicit}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout())
	assert.Equal(t, DefaultTheme, cfg.Theme)

	_, err = Load(Flags{ConfigFile: filepath.Join(dir, "missing.toml")}, nil)
	assert.Error(t, err)
}

func TestMalformedFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "todo.toml"), `api_url = `)
	_, err := Load(Flags{}, nil)
	assert.ErrorContains(t, err, "todo.toml")
}

func TestValidate(t *testing.T) {
	isolate(t)
	cfg := Default()
	cfg.Store = "s3"
	cfg.Timeout = "soon"
	cfg.LogLevel = "loud"
	cfg.Sort = "sideways"
	cfg.Filter = "maybe"
	cfg.DeleteConcurrency = 0

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"store", "timeout", "log_level", "sort", "filter", "delete_concurrency"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestBadEnvBool(t *testing.T) {
	isolate(t)
	t.Setenv("TODO_APPLY_SEARCH", "perhaps")
	_, err := Load(Flags{}, nil)
	assert.ErrorContains(t, err, "TODO_APPLY_SEARCH")
}
