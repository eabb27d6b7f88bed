package cli_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/mbt/internal/cli"
	"github.com/aretw0/mbt/pkg/adapters/memory"
	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const model = `name: toggle
data:
  count: 0
vertices:
  - label: v_Off
  - label: v_On
edges:
  - {from: Start, to: v_Off, label: e_Init}
  - {from: v_Off, to: v_On, label: "e_SwitchOn/count++"}
  - {from: v_On, to: v_Off, label: e_SwitchOff}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mbt.yaml", `model: toggle.yaml
generator: shortest
conditions:
  - {kind: edge_coverage, value: 100}
  - {kind: test_length, value: 10}
extended: true
seed: 7
data: {count: 3}
store:
  kind: redis
  url: localhost:6380
  ttl: 1h
log: {level: debug}
`)

	cfg, err := cli.LoadConfig(path, false)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "toggle.yaml"), cfg.Model)
	assert.Equal(t, "shortest", cfg.Generator)
	assert.Equal(t, []cli.ConditionConfig{{Kind: "edge_coverage", Value: "100"}, {Kind: "test_length", Value: "10"}}, cfg.Conditions)
	assert.True(t, cfg.Extended)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(7), *cfg.Seed)
	assert.Equal(t, "3", cfg.Data["count"])
	assert.Equal(t, "redis", cfg.Store.Kind)
	assert.Equal(t, time.Hour, cfg.Store.TTL)
	assert.Equal(t, 30*time.Second, cfg.Store.LockTTL, "defaults survive")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := cli.LoadConfig(filepath.Join(dir, "missing.yaml"), false)
	assert.Error(t, err)

	cfg, err := cli.LoadConfig(filepath.Join(dir, "missing.yaml"), true)
	require.NoError(t, err)
	assert.Equal(t, cli.DefaultConfig(), cfg)

	path := writeFile(t, dir, "bad.yaml", "generatr: random\n")
	_, err = cli.LoadConfig(path, false)
	assert.Error(t, err, "unknown keys are rejected")
}

func TestParseCondition(t *testing.T) {
	c, err := cli.ParseCondition("reached_state = v_On")
	require.NoError(t, err)
	assert.Equal(t, cli.ConditionConfig{Kind: "reached_state", Value: "v_On"}, c)

	c, err = cli.ParseCondition("never")
	require.NoError(t, err)
	assert.Equal(t, "never", c.Kind)

	_, err = cli.ParseCondition("=5")
	assert.Error(t, err)
}

func newConfig(t *testing.T) cli.Config {
	t.Helper()
	cfg := cli.DefaultConfig()
	cfg.Model = writeFile(t, t.TempDir(), "toggle.yaml", model)
	return cfg
}

func TestNewEngine(t *testing.T) {
	cfg := newConfig(t)
	cfg.Generator = "shortest"
	cfg.Extended = true
	cfg.Data = map[string]string{"count": "5"}

	eng, m, err := cli.NewEngine(context.Background(), cfg, slogNop(), domain.LifecycleHooks{})
	require.NoError(t, err)
	assert.Equal(t, "toggle", m.Name)
	assert.Equal(t, "EdgeCoverage=100%", eng.Condition().String())

	require.NoError(t, eng.Execute(context.Background(), ports.ExecutorFunc(func(ctx context.Context, name string, args ...string) error {
		return nil
	})))
	value, err := eng.DataValue("count")
	require.NoError(t, err)
	assert.Equal(t, "6", value, "the file data is overridden by the config data")
	assert.Equal(t, 1.0, eng.Fulfilment())
}

func TestNewEngine_Errors(t *testing.T) {
	ctx := context.Background()

	_, _, err := cli.NewEngine(ctx, cli.DefaultConfig(), slogNop(), domain.LifecycleHooks{})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	cfg := newConfig(t)
	cfg.Generator = "astar"
	_, _, err = cli.NewEngine(ctx, cfg, slogNop(), domain.LifecycleHooks{})
	assert.ErrorIs(t, err, domain.ErrUnsupportedKind)

	cfg = newConfig(t)
	cfg.Conditions = []cli.ConditionConfig{{Kind: "edge_coverage", Value: "150"}}
	_, _, err = cli.NewEngine(ctx, cfg, slogNop(), domain.LifecycleHooks{})
	assert.Error(t, err)
}

func TestNewEngine_Template(t *testing.T) {
	cfg := newConfig(t)
	cfg.Generator = "stub"
	cfg.Template = writeFile(t, t.TempDir(), "stub.tmpl", "{EDGE_VERTEX} {LABEL}")

	eng, _, err := cli.NewEngine(context.Background(), cfg, slogNop(), domain.LifecycleHooks{})
	require.NoError(t, err)

	step, err := eng.NextStep()
	require.NoError(t, err)
	assert.Equal(t, "Edge e_Init", step.Navigate, "stubs come in label order")
}

func TestRecordAndSave(t *testing.T) {
	cfg := newConfig(t)
	eng, _, err := cli.NewEngine(context.Background(), cfg, slogNop(), domain.LifecycleHooks{})
	require.NoError(t, err)

	storage := &cli.Storage{Store: memory.NewStore()}
	seq, err := cli.RecordAndSave(context.Background(), eng, storage, "run-1", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, seq.Steps)
	assert.Equal(t, "toggle", seq.Model)

	loaded, err := storage.Store.Load(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, seq.Steps, loaded.Steps)
}

func TestRecordAndSave_Locked(t *testing.T) {
	mr := miniredis.RunT(t)
	storage, err := cli.OpenStorage(cli.StoreConfig{Kind: "redis", URL: mr.Addr()})
	require.NoError(t, err)
	defer storage.Close()
	require.NotNil(t, storage.Locker)

	ctx := context.Background()
	unlock, err := storage.Locker.Lock(ctx, "run-1", time.Minute)
	require.NoError(t, err)

	cfg := newConfig(t)
	eng, _, err := cli.NewEngine(ctx, cfg, slogNop(), domain.LifecycleHooks{})
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = cli.RecordAndSave(short, eng, storage, "run-1", time.Minute)
	assert.Error(t, err)

	require.NoError(t, unlock(ctx))
	_, err = cli.RecordAndSave(ctx, eng, storage, "run-1", time.Minute)
	require.NoError(t, err)

	ids, err := storage.Store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1"}, ids)
}

func TestOpenStorage(t *testing.T) {
	t.Setenv(cli.KeyEnv, "")

	s, err := cli.OpenStorage(cli.StoreConfig{Kind: "file", Path: t.TempDir()})
	require.NoError(t, err)
	assert.Nil(t, s.Locker)
	assert.NoError(t, s.Close())

	s, err = cli.OpenStorage(cli.StoreConfig{Kind: "memory"})
	require.NoError(t, err)
	assert.NotNil(t, s.Store)

	_, err = cli.OpenStorage(cli.StoreConfig{Kind: "s3"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedKind)
}

func TestOpenStorage_SQLite(t *testing.T) {
	t.Setenv(cli.KeyEnv, "")
	dir := t.TempDir()

	s, err := cli.OpenStorage(cli.StoreConfig{Kind: "sqlite", Path: dir})
	require.NoError(t, err)
	ctx := context.Background()
	seq := domain.NewSequence("run-1")
	seq.Append(domain.Step{Navigate: "e_Init", Verify: "v_Off"})
	require.NoError(t, s.Store.Save(ctx, seq))
	require.NoError(t, s.Close())
	assert.FileExists(t, filepath.Join(dir, "sequences.db"))

	s, err = cli.OpenStorage(cli.StoreConfig{Kind: "sqlite", Path: filepath.Join(dir, "nested", "mbt.db")})
	require.NoError(t, err)
	assert.NoError(t, s.Close())

	_, err = cli.OpenStorage(cli.StoreConfig{Kind: "mysql"})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestOpenStorage_Protected(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	t.Setenv(cli.KeyEnv, key)

	s, err := cli.OpenStorage(cli.StoreConfig{Kind: "file", Path: t.TempDir(), Redact: []string{"Login"}})
	require.NoError(t, err)

	seq := domain.NewSequence("run-1")
	seq.Append(domain.Step{Navigate: "e_Login alice", Verify: "v_Browser"})
	ctx := context.Background()
	require.NoError(t, s.Store.Save(ctx, seq))

	loaded, err := s.Store.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "e_Login", loaded.Steps[0].Navigate)

	_, err = cli.OpenStorage(cli.StoreConfig{Kind: "memory", EncryptionKey: "short"})
	assert.Error(t, err)
	_, err = cli.OpenStorage(cli.StoreConfig{Kind: "memory", Redact: []string{"("}})
	assert.Error(t, err)
}

func TestExecutor_DryRunEcho(t *testing.T) {
	exec, err := cli.NewExecutor(cli.DefaultConfig(), slogNop())
	require.NoError(t, err)

	var buf bytes.Buffer
	echo := cli.Echo(exec, &buf)
	require.NoError(t, echo.Invoke(context.Background(), "e_Login", "alice"))
	require.NoError(t, echo.Invoke(context.Background(), "v_Browser"))
	assert.Equal(t, "e_Login alice\nv_Browser\n", buf.String())
}

func TestExecutor_CommandsFile(t *testing.T) {
	dir := t.TempDir()
	cfg := cli.DefaultConfig()
	cfg.Commands = writeFile(t, dir, "commands.yaml", "commands: []\n")
	_, err := cli.NewExecutor(cfg, slogNop())
	assert.Error(t, err, "an empty commands file is a mistake")

	cfg.Commands = writeFile(t, dir, "commands.yaml", "commands:\n  - {name: e_Init, command: \"true\"}\n")
	exec, err := cli.NewExecutor(cfg, slogNop())
	require.NoError(t, err)
	assert.ErrorIs(t, exec.Invoke(context.Background(), "v_Unknown"), domain.ErrCommandNotFound)
}

func TestNewSequenceID(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "login-20260102T030405", cli.NewSequenceID("login", now))
	assert.Equal(t, "sequence-20260102T030405", cli.NewSequenceID("", now))
}
