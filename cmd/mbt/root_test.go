package main

import (
	"testing"

	"github.com/aretw0/mbt/internal/cli"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("model", "", "")
	addGenerationFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"--model", "login.yaml",
		"--generator", "shortest",
		"--condition", "edge_coverage=100",
		"--condition", "test_length=20",
		"--seed", "42",
		"--data", "validLogin=true",
	}))

	c := cli.DefaultConfig()
	c.Conditions = []cli.ConditionConfig{{Kind: "never"}}
	c.Data = map[string]string{"attempts": "0"}
	require.NoError(t, applyFlags(cmd, &c))

	assert.Equal(t, "login.yaml", c.Model)
	assert.Equal(t, "shortest", c.Generator)
	assert.Equal(t, []cli.ConditionConfig{
		{Kind: "edge_coverage", Value: "100"},
		{Kind: "test_length", Value: "20"},
	}, c.Conditions, "flag conditions replace the configured ones")
	require.NotNil(t, c.Seed)
	assert.Equal(t, uint64(42), *c.Seed)
	assert.Equal(t, map[string]string{"attempts": "0", "validLogin": "true"}, c.Data)
	assert.False(t, c.Extended, "unset flags keep configured values")
}

func TestApplyFlags_Trace(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Bool("trace", false, "")
	cmd.Flags().String("log-level", "", "")
	require.NoError(t, cmd.ParseFlags([]string{"--trace"}))

	c := cli.DefaultConfig()
	require.NoError(t, applyFlags(cmd, &c))
	assert.True(t, c.Log.Trace)
	assert.Equal(t, "debug", c.Log.Level, "spans are logged at debug level")
}

func TestApplyFlags_BadCondition(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addGenerationFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--condition", "=5"}))

	c := cli.DefaultConfig()
	assert.Error(t, applyFlags(cmd, &c))
}

func TestCommandTree(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"offline", "online", "mcp", "stub", "validate", "graph", "version"} {
		assert.True(t, names[want], want)
	}
}
