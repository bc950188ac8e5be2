package logger

import (
	"io"
	"log/slog"

	"github.com/dep2p/go-epmd/pkg/lib/log"
)

// Setup 安装进程默认 logger
//
// 之后所有 log.Logger(组件) 的输出都按 cfg 过滤与格式化。
//
// 示例:
//
//	logger.Setup(os.Stderr, logger.ParseConfig("core/server=debug,info", "json"))
func Setup(w io.Writer, cfg *Config) *slog.Logger {
	l := slog.New(NewHandler(w, cfg))
	log.SetDefault(l)
	return l
}

// Discard 返回一个丢弃所有日志的 Logger
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}
