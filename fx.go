package epmd

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-epmd/config"
	"github.com/dep2p/go-epmd/internal/core/metrics"
	"github.com/dep2p/go-epmd/internal/core/server"
	"github.com/dep2p/go-epmd/pkg/lib/log"
)

var fxLogger = log.Logger("epmd/fx")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置注入
//  2. metrics：收集器，配置了地址时暴露 /metrics
//  3. server：监听、事件循环、Kill 触发的应用退出
func buildFxApp(cfg *config.Config, d *Daemon, userOpts []fx.Option) *fx.App {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置注入
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{
		fx.Supply(cfg),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 核心模块
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		metrics.Module,
		server.Module,
	)

	// ════════════════════════════════════════════════════════════════════════
	// 3. 用户扩展
	// ════════════════════════════════════════════════════════════════════════
	if len(userOpts) > 0 {
		modules = append(modules, userOpts...)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 4. 组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Invoke(injectDaemonComponents(d)))

	// ════════════════════════════════════════════════════════════════════════
	// 5. Fx 日志：调试模式输出容器事件，否则静默
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.WithLogger(func() fxevent.Logger {
		return &fxevent.ZapLogger{Logger: fxZapLogger(cfg.Debug)}
	}))

	return fx.New(modules...)
}

// fxZapLogger 返回 fx 事件使用的 zap 日志器
func fxZapLogger(debug bool) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	zl, err := zap.NewDevelopment()
	if err != nil {
		fxLogger.Warn("创建 fx 调试日志失败", "err", err)
		return zap.NewNop()
	}
	return zl
}

// daemonInjectParams Daemon 组件注入参数
type daemonInjectParams struct {
	fx.In

	Server    *server.Server
	Collector *metrics.Collector
}

// injectDaemonComponents 创建 Daemon 组件注入函数
func injectDaemonComponents(d *Daemon) interface{} {
	return func(p daemonInjectParams) {
		d.server = p.Server
		d.collector = p.Collector
	}
}
