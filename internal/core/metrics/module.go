package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-epmd/config"
	"github.com/dep2p/go-epmd/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// Config 指标配置
type Config struct {
	// Addr HTTP 暴露地址，空表示不暴露
	Addr string

	// Runtime 是否注册 Go 运行时指标
	Runtime bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{Runtime: true}
}

// ConfigFromUnified 从统一配置创建指标配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg != nil {
		c.Addr = cfg.MetricsAddr
	}
	return c
}

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Lifecycle  fx.Lifecycle
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(
		NewCollectorFromParams,
		func(c *Collector) Reporter { return c },
	),
)

// NewCollectorFromParams 创建收集器，配置了地址时注册 HTTP 生命周期
func NewCollectorFromParams(p Params) *Collector {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	c := NewCollector(cfg.Runtime)

	if cfg.Addr != "" {
		srv := NewHTTPServer(cfg.Addr, c)
		p.Lifecycle.Append(fx.Hook{
			OnStart: srv.Start,
			OnStop:  srv.Stop,
		})
	}
	return c
}

// ============================================================================
//                              HTTP 暴露
// ============================================================================

// HTTPServer /metrics HTTP 服务
type HTTPServer struct {
	addr    string
	handler http.Handler

	srv *http.Server
	ln  net.Listener
}

// NewHTTPServer 创建 HTTP 服务
func NewHTTPServer(addr string, c *Collector) *HTTPServer {
	return &HTTPServer{addr: addr, handler: c.Handler()}
}

// Start 监听并在后台服务
func (s *HTTPServer) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.handler)
	s.ln = ln
	s.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("指标服务异常退出", "err", err)
		}
	}()
	logger.Info("指标服务已启动", "addr", ln.Addr().String())
	return nil
}

// Addr 返回实际监听地址
func (s *HTTPServer) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Stop 关闭 HTTP 服务
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
