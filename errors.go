package epmd

import (
	"github.com/dep2p/go-epmd/internal/core/address"
	"github.com/dep2p/go-epmd/internal/core/registry"
	"github.com/dep2p/go-epmd/internal/core/server"
	"github.com/dep2p/go-epmd/internal/core/transport/tcp"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrKilled 收到 Kill 请求后退出
	ErrKilled = server.ErrKilled

	// ErrNotStarted 守护进程未启动
	ErrNotStarted = server.ErrNotStarted

	// ErrAlreadyStarted 守护进程已启动
	ErrAlreadyStarted = server.ErrAlreadyStarted

	// ErrServerClosed 守护进程已停止
	ErrServerClosed = server.ErrServerClosed

	// ────────────────────────────────────────────────────────────────────────
	// 监听错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrTooManyAddresses 监听地址过多
	ErrTooManyAddresses = address.ErrTooManyAddresses

	// ErrNoListeners 没有任何地址绑定成功
	ErrNoListeners = tcp.ErrNoListeners

	// ErrListenersFailed 全部监听器在运行中失效
	ErrListenersFailed = server.ErrListenersFailed

	// ErrRegistryFull 注册表已满
	ErrRegistryFull = registry.ErrRegistryFull
)
