package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-epmd/config"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func mustParse(t *testing.T, args ...string) *cliFlags {
	t.Helper()
	f, err := parseFlags(args, io.Discard)
	require.NoError(t, err)
	return f
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(mustParse(t), envFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultPort, cfg.Port)
	assert.Equal(t, config.DefaultPacketTimeout, cfg.PacketTimeout.Duration())
	assert.False(t, cfg.RelaxedCommandCheck)
	assert.False(t, cfg.Debug)
}

func TestLoadConfig_Env(t *testing.T) {
	env := envFrom(map[string]string{
		EnvAddress:             "10.0.0.1,10.0.0.2",
		EnvPort:                "14369",
		EnvRelaxedCommandCheck: "yes",
		EnvIPv6:                "1",
		EnvPacketTimeout:       "30",
		EnvLogLevel:            "core/server=debug,warn",
		EnvLogFormat:           "json",
	})
	cfg, err := loadConfig(mustParse(t), env)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.1,10.0.0.2", cfg.Address)
	assert.Equal(t, uint16(14369), cfg.Port)
	assert.True(t, cfg.RelaxedCommandCheck)
	assert.True(t, cfg.UseIPv6)
	assert.Equal(t, 30*time.Second, cfg.PacketTimeout.Duration())
	assert.Equal(t, "core/server=debug,warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfig_EnvDisabled(t *testing.T) {
	cfg, err := loadConfig(mustParse(t), envFrom(map[string]string{EnvRelaxedCommandCheck: "false"}))
	require.NoError(t, err)
	assert.False(t, cfg.RelaxedCommandCheck)
}

func TestLoadConfig_EnvInvalid(t *testing.T) {
	_, err := loadConfig(mustParse(t), envFrom(map[string]string{EnvPort: "70000"}))
	require.Error(t, err)

	_, err = loadConfig(mustParse(t), envFrom(map[string]string{EnvPacketTimeout: "-1"}))
	require.Error(t, err)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	f := mustParse(t,
		"-port", "5000",
		"-address", "127.0.0.1",
		"-packet_timeout", "7",
		"-relaxed_command_check=false",
		"-d",
		"-delay_write", "1",
		"-metrics", "127.0.0.1:9369",
	)
	env := envFrom(map[string]string{
		EnvPort:                "14369",
		EnvAddress:             "10.0.0.1",
		EnvRelaxedCommandCheck: "1",
	})
	cfg, err := loadConfig(f, env)
	require.NoError(t, err)

	assert.Equal(t, uint16(5000), cfg.Port)
	assert.Equal(t, "127.0.0.1", cfg.Address)
	assert.Equal(t, 7*time.Second, cfg.PacketTimeout.Duration())
	assert.False(t, cfg.RelaxedCommandCheck)
	assert.True(t, cfg.Debug)
	assert.Equal(t, time.Second, cfg.DelayWrite.Duration())
	assert.Equal(t, "127.0.0.1:9369", cfg.MetricsAddr)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "epmd.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 6000, "max_nodes": 10, "packet_timeout": 20}`), 0o600))

	cfg, err := loadConfig(mustParse(t, "-config", path), envFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, uint16(6000), cfg.Port)
	assert.Equal(t, 10, cfg.MaxNodes)
	assert.Equal(t, 20*time.Second, cfg.PacketTimeout.Duration())

	// 环境变量高于文件
	cfg, err = loadConfig(mustParse(t, "-config", path), envFrom(map[string]string{EnvPort: "6001"}))
	require.NoError(t, err)
	assert.Equal(t, uint16(6001), cfg.Port)
}

func TestLoadConfig_FileMissing(t *testing.T) {
	_, err := loadConfig(mustParse(t, "-config", filepath.Join(t.TempDir(), "missing.json")), envFrom(nil))
	require.Error(t, err)
}

func TestLoadConfig_InvalidFlags(t *testing.T) {
	_, err := loadConfig(mustParse(t, "-port", "-1"), envFrom(nil))
	require.Error(t, err)

	_, err = loadConfig(mustParse(t, "-packet_timeout", "0"), envFrom(nil))
	require.Error(t, err)
}

func TestParseFlags(t *testing.T) {
	f := mustParse(t, "-debug", "-stop", "node1")
	assert.True(t, f.debug)
	assert.True(t, f.hasCommand())
	assert.Equal(t, "node1", f.stop)

	f = mustParse(t)
	assert.False(t, f.hasCommand())

	_, err := parseFlags([]string{"-nope"}, io.Discard)
	require.Error(t, err)

	_, err = parseFlags([]string{"extra"}, io.Discard)
	require.Error(t, err)
}
