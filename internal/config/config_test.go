package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mathdrill/internal/model"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Practice.Mode)
	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[practice]
mode = "buzzer"
difficulty = "hard"
ops = ["*", "div"]
timer = 90

[dashboard]
window = 14

[server]
addr = "127.0.0.1:9000"

[log]
level = "debug"
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Practice.Mode)
	assert.Equal(t, "buzzer", *cfg.Practice.Mode)
	assert.Equal(t, "hard", *cfg.Practice.Difficulty)
	assert.Equal(t, []string{"*", "div"}, *cfg.Practice.Ops)
	assert.Equal(t, 90, *cfg.Practice.Timer)
	assert.Equal(t, 14, *cfg.Dashboard.Window)
	assert.Equal(t, "127.0.0.1:9000", *cfg.Server.Addr)
	assert.Equal(t, "debug", *cfg.Log.Level)
	assert.Nil(t, cfg.Log.File)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := []string{
		"[practice]\nmode = \"sprint\"\n",
		"[practice]\ntimer = 4000\n",
		"[practice]\nops = [\"%\"]\n",
		"[dashboard]\nwindow = 0\n",
		"[log]\nlevel = \"loud\"\n",
	}
	for _, body := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		_, err := LoadConfig(path)
		assert.Error(t, err, body)
	}
}

func TestLoadConfigAcceptsOperatorNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[practice]
ops = ["x", "addition", "subtraction", "multiplication", "division"]
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	for _, op := range *cfg.Practice.Ops {
		_, err := model.ParseOperator(op)
		assert.NoError(t, err, op)
	}
}

func TestEnsureFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mathdrill", "config.toml")
	created, err := EnsureFile(path)
	require.NoError(t, err)
	assert.True(t, created)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "kumon", *cfg.Practice.Mode)
	assert.Equal(t, 7, *cfg.Dashboard.Window)

	created, err = EnsureFile(path)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestDefaultDBPathHonorsEnv(t *testing.T) {
	t.Setenv(DBEnv, "/tmp/custom.db")
	assert.Equal(t, "/tmp/custom.db", DefaultDBPath())

	t.Setenv(DBEnv, "")
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, filepath.Join("/data", "mathdrill", "mathdrill.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/data", "mathdrill", "mathdrill.log"), DefaultLogPath())
}
