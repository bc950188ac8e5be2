package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrInvalidConfig 配置无效
var ErrInvalidConfig = errors.New("config: invalid")

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if c.PacketTimeout.Duration() <= 0 {
		return fmt.Errorf("%w: packet_timeout must be positive, got %s", ErrInvalidConfig, c.PacketTimeout)
	}
	if c.IdleInterval.Duration() <= 0 {
		return fmt.Errorf("%w: idle_interval must be positive, got %s", ErrInvalidConfig, c.IdleInterval)
	}
	if c.WriteTimeout.Duration() < 0 {
		return fmt.Errorf("%w: write_timeout must not be negative", ErrInvalidConfig)
	}
	if c.MaxNodes < 0 {
		return fmt.Errorf("%w: max_nodes must not be negative", ErrInvalidConfig)
	}
	if c.DelayAccept.Duration() < 0 || c.DelayWrite.Duration() < 0 {
		return fmt.Errorf("%w: debug delays must not be negative", ErrInvalidConfig)
	}
	if c.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
			return fmt.Errorf("%w: metrics_addr %q: %v", ErrInvalidConfig, c.MetricsAddr, err)
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// ValidateAndFix 修复可自动纠正的字段后再验证
//
// 非正的超时回退为默认值。
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}
	def := NewConfig()
	if c.PacketTimeout <= 0 {
		c.PacketTimeout = def.PacketTimeout
	}
	if c.IdleInterval <= 0 {
		c.IdleInterval = def.IdleInterval
	}
	if c.WriteTimeout < 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	return c, c.Validate()
}
