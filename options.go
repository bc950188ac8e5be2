package epmd

import (
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-epmd/config"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config        *config.Config
	userFxOptions []fx.Option
}

func newOptions() *options {
	return &options{config: config.NewConfig()}
}

// WithConfig 使用完整配置（副本）替换默认配置
//
// 应放在其他选项之前，否则会覆盖它们的效果。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("config is nil")
		}
		o.config = cfg.Clone()
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// WithAddress 设置监听地址列表（逗号或空格分隔）
func WithAddress(addrs string) Option {
	return func(o *options) error {
		o.config.Address = addrs
		return nil
	}
}

// WithPort 设置监听端口，0 表示由系统分配
func WithPort(port uint16) Option {
	return func(o *options) error {
		o.config.Port = port
		return nil
	}
}

// WithIPv6 同时监听 IPv6 地址
func WithIPv6(enable bool) Option {
	return func(o *options) error {
		o.config.UseIPv6 = enable
		return nil
	}
}

// WithPacketTimeout 设置非注册连接的空闲超时
func WithPacketTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("packet timeout must be positive, got %s", d)
		}
		o.config.PacketTimeout = config.Duration(d)
		return nil
	}
}

// WithRelaxedCommandCheck 启用宽松命令检查
func WithRelaxedCommandCheck(enable bool) Option {
	return func(o *options) error {
		o.config.RelaxedCommandCheck = enable
		return nil
	}
}

// WithMaxNodes 限制注册节点数
func WithMaxNodes(n int) Option {
	return func(o *options) error {
		o.config.MaxNodes = n
		return nil
	}
}

// WithExitOnKill 设置 Kill 成功后是否退出
func WithExitOnKill(exit bool) Option {
	return func(o *options) error {
		o.config.ExitOnKill = exit
		return nil
	}
}

// WithDebug 启用调试模式
func WithDebug(enable bool) Option {
	return func(o *options) error {
		o.config.Debug = enable
		return nil
	}
}

// WithMetricsAddr 在指定地址暴露 /metrics
func WithMetricsAddr(addr string) Option {
	return func(o *options) error {
		o.config.MetricsAddr = addr
		return nil
	}
}

// WithFxOptions 追加自定义 fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
