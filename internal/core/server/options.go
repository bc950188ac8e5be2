package server

import (
	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-epmd/internal/core/metrics"
)

// Option 服务选项
type Option func(*Server)

// WithClock 替换时钟（测试中使用 clock.NewMock）
func WithClock(c clock.Clock) Option {
	return func(s *Server) {
		s.clock = c
	}
}

// WithReporter 设置指标记录器
func WithReporter(r metrics.Reporter) Option {
	return func(s *Server) {
		if r != nil {
			s.reporter = r
		}
	}
}
