package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mathdrill/internal/engine"
	"github.com/verte-zerg/mathdrill/internal/model"
)

func TestSessionConfigParsesOps(t *testing.T) {
	cfg, err := sessionConfig("Endless", "hard", []string{"div", " + ", "x", "+"}, 90)
	require.NoError(t, err)
	assert.Equal(t, model.ModeEndless, cfg.Mode)
	assert.Equal(t, model.Hard, cfg.Difficulty)
	assert.Equal(t, []model.Operator{model.OpAdd, model.OpMul, model.OpDiv}, cfg.Operators)
	assert.Equal(t, 90, cfg.TimerSec)
}

func TestSessionConfigBuzzerForcesTimer(t *testing.T) {
	cfg, err := sessionConfig("buzzer", "easy", []string{"+"}, 5)
	require.NoError(t, err)
	assert.Equal(t, engine.BuzzerSec, cfg.TimerSec)
}

func TestSessionConfigErrors(t *testing.T) {
	_, err := sessionConfig("kumon", "easy", []string{"%"}, 0)
	assert.ErrorContains(t, err, "invalid --ops")

	_, err = sessionConfig("kumon", "easy", nil, 0)
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)

	_, err = sessionConfig("sprint", "easy", []string{"+"}, 0)
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)

	_, err = sessionConfig("kumon", "easy", []string{"+"}, -1)
	assert.ErrorContains(t, err, "--timer")
}

func TestWriteBadges(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBadges(&buf, []string{"first_session"}))
	out := buf.String()
	assert.Contains(t, out, "[x] 🎉 First Session")
	assert.Contains(t, out, "[ ] ")
	assert.True(t, strings.HasSuffix(out, "1 of 7 unlocked\n"))
}

func TestApplyConfigRespectsChangedFlags(t *testing.T) {
	var mode, addr string
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().StringVar(&mode, "mode", "kumon", "")
	cmd.Flags().StringVar(&addr, "addr", "a", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--mode", "endless"}))

	fromFile := "buzzer"
	fileAddr := "127.0.0.1:9000"
	applyStringConfig(cmd, "mode", &mode, &fromFile)
	applyStringConfig(cmd, "addr", &addr, &fileAddr)
	assert.Equal(t, "endless", mode)
	assert.Equal(t, "127.0.0.1:9000", addr)

	var ops []string
	cmd.Flags().StringSliceVar(&ops, "ops", []string{"+"}, "")
	fileOps := []string{"*", "/"}
	applyStringSliceConfig(cmd, "ops", &ops, &fileOps)
	assert.Equal(t, []string{"*", "/"}, ops)
}

func TestResetAndBadgesCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	db := filepath.Join(dir, "test.db")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"badges", "--db", db, "--log-file", filepath.Join(dir, "test.log")})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "0 of 7 unlocked")

	resetYes = false
	root = newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"reset", "--db", db})
	assert.Error(t, root.Execute())

	out.Reset()
	root = newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"reset", "--yes", "--db", db, "--log-file", filepath.Join(dir, "test.log")})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "All stats and badges deleted.")

	out.Reset()
	root = newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"stats", "--plain", "--db", db, "--log-file", filepath.Join(dir, "test.log")})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "No sessions recorded yet.")
}
