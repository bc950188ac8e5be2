package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dep2p/go-epmd/config"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// 环境变量名
const (
	EnvAddress             = "ERL_EPMD_ADDRESS"
	EnvPort                = "ERL_EPMD_PORT"
	EnvRelaxedCommandCheck = "ERL_EPMD_RELAXED_COMMAND_CHECK"
	EnvIPv6                = "ERL_EPMD_IPV6"
	EnvPacketTimeout       = "ERL_EPMD_PACKET_TIMEOUT"
	EnvLogLevel            = "EPMD_LOG_LEVEL"
	EnvLogFormat           = "EPMD_LOG_FORMAT"
)

// loadConfig 按优先级组装配置：默认值 < 配置文件 < 环境变量 < 命令行参数
func loadConfig(f *cliFlags, getenv func(string) string) (*config.Config, error) {
	cfg := config.NewConfig()
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := applyEnvOverrides(cfg, getenv); err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(cfg, f); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides 应用环境变量覆盖配置
//
// 布尔类变量只要存在且非空即视为启用，显式的 0/false/no/off 除外。
func applyEnvOverrides(cfg *config.Config, getenv func(string) string) error {
	if v := getenv(EnvAddress); v != "" {
		cfg.Address = v
	}

	if v := getenv(EnvPort); v != "" {
		port, err := parsePort(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Port = port
	}

	if v := getenv(EnvRelaxedCommandCheck); v != "" {
		cfg.RelaxedCommandCheck = envEnabled(v)
	}

	if v := getenv(EnvIPv6); v != "" {
		cfg.UseIPv6 = envEnabled(v)
	}

	if v := getenv(EnvPacketTimeout); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPacketTimeout, err)
		}
		cfg.PacketTimeout = config.Duration(d)
	}

	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
	return nil
}

// applyFlagOverrides 应用显式设置的命令行参数
func applyFlagOverrides(cfg *config.Config, f *cliFlags) error {
	if f.isSet("address") {
		cfg.Address = f.address
	}
	if f.isSet("port") {
		port, err := parsePort(strconv.Itoa(f.port))
		if err != nil {
			return fmt.Errorf("-port: %w", err)
		}
		cfg.Port = port
	}
	if f.isSet("ipv6") {
		cfg.UseIPv6 = f.ipv6
	}
	if f.isSet("packet_timeout") {
		if f.packetTimeout <= 0 {
			return fmt.Errorf("-packet_timeout: must be positive, got %d", f.packetTimeout)
		}
		cfg.PacketTimeout = config.Duration(time.Duration(f.packetTimeout) * time.Second)
	}
	if f.isSet("relaxed_command_check") {
		cfg.RelaxedCommandCheck = f.relaxed
	}
	if f.debug {
		cfg.Debug = true
	}
	if f.isSet("delay_accept") {
		cfg.DelayAccept = config.Duration(time.Duration(f.delayAccept) * time.Second)
	}
	if f.isSet("delay_write") {
		cfg.DelayWrite = config.Duration(time.Duration(f.delayWrite) * time.Second)
	}
	if f.isSet("metrics") {
		cfg.MetricsAddr = f.metricsAddr
	}
	return nil
}

// ============================================================================
//                              辅助函数
// ============================================================================

// envEnabled 解析布尔类环境变量
func envEnabled(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

// parsePort 解析端口号
func parsePort(s string) (uint16, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return uint16(n), nil
}

// parseSeconds 解析正整数秒数
func parseSeconds(s string) (time.Duration, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid seconds %q", s)
	}
	return time.Duration(n) * time.Second, nil
}
