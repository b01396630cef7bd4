package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAppliedWithNoFlags(t *testing.T) {
	var got *Config
	cmd := NewRootCommand(func(cfg *Config) error {
		got = cfg
		return nil
	})
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	require.NotNil(t, got)
	assert.Equal(t, "127.0.0.1", got.Bind)
	assert.EqualValues(t, 6379, got.Port)
	assert.False(t, got.AppendOnly)
}

func TestFlagsOverrideDefaults(t *testing.T) {
	var got *Config
	cmd := NewRootCommand(func(cfg *Config) error {
		got = cfg
		return nil
	})
	cmd.SetArgs([]string{
		"--bind", "0.0.0.0",
		"--port", "7000",
		"--dir", "/tmp/data",
		"--appendonly", "yes",
		"--save", "10:1",
		"--save", "300:100",
	})
	require.NoError(t, cmd.Execute())
	require.NotNil(t, got)
	assert.Equal(t, "0.0.0.0", got.Bind)
	assert.EqualValues(t, 7000, got.Port)
	assert.Equal(t, "/tmp/data", got.Dir)
	assert.True(t, got.AppendOnly)
	assert.Equal(t, []SavePoint{{Seconds: 10, Changes: 1}, {Seconds: 300, Changes: 100}}, got.SavePoints)
}

func TestInvalidAppendOnlyRejected(t *testing.T) {
	cmd := NewRootCommand(func(cfg *Config) error { return nil })
	cmd.SetArgs([]string{"--appendonly", "maybe"})
	err := cmd.Execute()
	assert.Error(t, err)
}

func TestInvalidSaveFormatRejected(t *testing.T) {
	cmd := NewRootCommand(func(cfg *Config) error { return nil })
	cmd.SetArgs([]string{"--save", "notapair"})
	err := cmd.Execute()
	assert.Error(t, err)
}
