package epmd

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-epmd/config"
	"github.com/dep2p/go-epmd/internal/core/metrics"
	"github.com/dep2p/go-epmd/internal/core/server"
	"github.com/dep2p/go-epmd/pkg/lib/log"
	"github.com/dep2p/go-epmd/pkg/types"
)

var logger = log.Logger("epmd")

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
const Version = "v0.1.0"

// BuildInfo 构建信息（通过 ldflags 注入）
var (
	// GitCommit Git 提交哈希
	GitCommit string

	// BuildDate 构建日期
	BuildDate string
)

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "epmd " + Version
	if GitCommit != "" {
		info += " (" + GitCommit[:min(8, len(GitCommit))] + ")"
	}
	if BuildDate != "" {
		info += " built " + BuildDate
	}
	return info
}

// stopTimeout 内部停止 fx 应用的超时
const stopTimeout = 10 * time.Second

// ════════════════════════════════════════════════════════════════════════════
//                              Daemon
// ════════════════════════════════════════════════════════════════════════════

// Stats 运行状态快照
type Stats = server.Stats

// Daemon 守护进程门面
//
// 持有 fx 应用及其组装出的服务和指标收集器。
type Daemon struct {
	mu      sync.Mutex
	started bool
	stopped bool

	config *config.Config
	app    *fx.App

	// 由 fx 注入
	server    *server.Server
	collector *metrics.Collector
}

// New 创建守护进程，不绑定任何套接字
func New(opts ...Option) (*Daemon, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	d := &Daemon{config: o.config}
	d.app = buildFxApp(o.config, d, o.userFxOptions)
	if err := d.app.Err(); err != nil {
		return nil, fmt.Errorf("build app: %w", err)
	}
	return d, nil
}

// Config 返回生效的配置
func (d *Daemon) Config() *config.Config {
	return d.config
}

// Start 绑定监听地址并启动事件循环
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return ErrServerClosed
	}
	if d.started {
		return ErrAlreadyStarted
	}
	if err := d.app.Start(ctx); err != nil {
		logger.Error("启动失败", "err", err)
		return fmt.Errorf("start: %w", err)
	}
	d.started = true
	logger.Info("守护进程已启动", "version", Version, "addrs", d.server.Addrs())
	return nil
}

// Stop 停止守护进程，可重复调用
func (d *Daemon) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started || d.stopped {
		return nil
	}
	d.stopped = true
	if err := d.app.Stop(ctx); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}

// Run 启动守护进程并阻塞直到 ctx 取消或应用被要求退出
//
// 因 Kill 请求退出时返回 ErrKilled。
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case sig := <-d.app.Wait():
		logger.Debug("收到退出信号", "signal", sig.Signal, "code", sig.ExitCode)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := d.Stop(stopCtx); err != nil {
		return err
	}
	if err := d.server.Err(); err != nil && !errors.Is(err, ErrServerClosed) {
		return err
	}
	return nil
}

// Done 服务停止后关闭
func (d *Daemon) Done() <-chan struct{} {
	return d.server.Done()
}

// Addrs 返回实际监听地址
func (d *Daemon) Addrs() []netip.AddrPort {
	return d.server.Addrs()
}

// Port 返回守护进程端口
func (d *Daemon) Port() uint16 {
	return d.server.Port()
}

// Nodes 返回当前注册的全部节点
func (d *Daemon) Nodes(ctx context.Context) ([]types.NodeRecord, error) {
	return d.server.Nodes(ctx)
}

// Stats 返回运行状态快照
func (d *Daemon) Stats(ctx context.Context) (Stats, error) {
	return d.server.Stats(ctx)
}

// Metrics 返回指标收集器
func (d *Daemon) Metrics() *metrics.Collector {
	return d.collector
}
