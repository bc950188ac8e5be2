// Package config 提供守护进程配置
//
// 配置可由 JSON 文件加载，再由命令行层覆盖个别字段。
// 核心组件只接收 *Config，不读取环境变量或命令行参数。
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Port = 14369
//
//	// 从文件加载（未出现的字段保持默认值）
//	cfg, err := config.Load("/etc/epmd.json")
package config

import (
	"time"
)

// 默认值
const (
	// DefaultPort 默认监听端口
	DefaultPort uint16 = 4369

	// DefaultPacketTimeout 非注册连接的空闲超时
	DefaultPacketTimeout = 60 * time.Second

	// DefaultIdleInterval 事件循环最长等待时间（清理周期）
	DefaultIdleInterval = 5 * time.Second

	// DefaultWriteTimeout 单次响应写超时
	DefaultWriteTimeout = 2 * time.Second
)

// Config 守护进程完整配置
type Config struct {
	// Address 监听地址列表（逗号或空格分隔），空表示通配地址
	Address string `json:"address"`

	// Port 监听端口
	Port uint16 `json:"port"`

	// UseIPv6 同时监听 IPv6
	UseIPv6 bool `json:"use_ipv6"`

	// PacketTimeout 非注册连接空闲多久后关闭
	PacketTimeout Duration `json:"packet_timeout"`

	// IdleInterval 无事件时事件循环的唤醒周期
	IdleInterval Duration `json:"idle_interval"`

	// WriteTimeout 响应写超时
	WriteTimeout Duration `json:"write_timeout"`

	// RelaxedCommandCheck 宽松模式：允许远端 Kill/Stop，Kill 无条件清空
	RelaxedCommandCheck bool `json:"relaxed_command_check"`

	// MaxNodes 最大注册节点数，0 表示不限制
	MaxNodes int `json:"max_nodes"`

	// ExitOnKill Kill 成功后停止服务
	ExitOnKill bool `json:"exit_on_kill"`

	// Debug 调试模式（详细日志，较小的已注销名称缓存）
	Debug bool `json:"debug"`

	// DelayAccept 接受连接前的人为延迟（调试用）
	DelayAccept Duration `json:"delay_accept"`

	// DelayWrite 写响应前的人为延迟（调试用）
	DelayWrite Duration `json:"delay_write"`

	// MetricsAddr Prometheus 指标 HTTP 监听地址，空表示禁用
	MetricsAddr string `json:"metrics_addr"`

	// LogLevel 日志级别，格式: 子系统=级别,默认级别
	LogLevel string `json:"log_level"`

	// LogFormat 日志格式 text 或 json
	LogFormat string `json:"log_format"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Port:          DefaultPort,
		PacketTimeout: Duration(DefaultPacketTimeout),
		IdleInterval:  Duration(DefaultIdleInterval),
		WriteTimeout:  Duration(DefaultWriteTimeout),
		ExitOnKill:    true,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Clone 返回配置副本
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
