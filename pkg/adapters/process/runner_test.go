package process_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aretw0/mbt/pkg/adapters/process"
	"github.com/aretw0/mbt/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
}

func TestRunner_Invoke(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	runner := process.NewRunner(process.WithBaseDir(dir))
	runner.Register("e_Login", "sh", "-c", `printf "%s:%s" "$MBT_STEP" "$MBT_ARG" > out.txt`)
	runner.Register("v_Fail", "sh", "-c", "echo boom >&2; exit 3")

	t.Run("Executes Registered Command", func(t *testing.T) {
		require.NoError(t, runner.Invoke(context.Background(), "e_Login", "alice"))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "e_Login:alice", string(data))
	})

	t.Run("Fails For Unregistered Command", func(t *testing.T) {
		err := runner.Invoke(context.Background(), "e_Unknown")
		assert.ErrorIs(t, err, domain.ErrCommandNotFound)
	})

	t.Run("Reports Stderr On Failure", func(t *testing.T) {
		err := runner.Invoke(context.Background(), "v_Fail")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestRunner_SkipUnregistered(t *testing.T) {
	runner := process.NewRunner(process.WithSkipUnregistered(true))
	assert.NoError(t, runner.Invoke(context.Background(), "v_Anything"))
}

func TestRunner_Cancelled(t *testing.T) {
	skipOnWindows(t)
	runner := process.NewRunner()
	runner.Register("e_Slow", "sh", "-c", "sleep 5")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, runner.Invoke(ctx, "e_Slow"))
}

func TestLoadCommands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`commands:
  - name: e_Login
    command: sh
    args: ["-c", "true"]
    env: {USER_KIND: premium}
  - command: ignored
`), 0o644))

	commands, err := process.LoadCommands(path)
	require.NoError(t, err)
	require.Len(t, commands, 1)
	assert.Equal(t, "sh", commands["e_Login"].Command)
	assert.Equal(t, "premium", commands["e_Login"].Environment["USER_KIND"])

	missing, err := process.LoadCommands(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, missing)

	if runtime.GOOS != "windows" {
		runner := process.NewRunner(process.WithRegistry(commands))
		assert.NoError(t, runner.Invoke(context.Background(), "e_Login"))
	}
}
