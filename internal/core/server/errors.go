package server

import "errors"

var (
	// ErrKilled Kill 请求成功且配置为退出
	ErrKilled = errors.New("server: killed by request")

	// ErrListenersFailed 全部监听器都因不可恢复的 accept 错误停止
	ErrListenersFailed = errors.New("server: all listeners failed")

	// ErrServerClosed 服务已停止
	ErrServerClosed = errors.New("server: closed")

	// ErrNotStarted 服务尚未启动
	ErrNotStarted = errors.New("server: not started")

	// ErrAlreadyStarted 服务已启动
	ErrAlreadyStarted = errors.New("server: already started")
)
