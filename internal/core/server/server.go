package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-epmd/config"
	"github.com/dep2p/go-epmd/internal/core/address"
	"github.com/dep2p/go-epmd/internal/core/conn"
	"github.com/dep2p/go-epmd/internal/core/metrics"
	"github.com/dep2p/go-epmd/internal/core/registry"
	"github.com/dep2p/go-epmd/internal/core/transport/tcp"
	"github.com/dep2p/go-epmd/pkg/lib/log"
	"github.com/dep2p/go-epmd/pkg/types"
)

var logger = log.Logger("core/server")

// ============================================================================
//                              Server 实现
// ============================================================================

// Server 名称注册守护进程
type Server struct {
	cfg      *config.Config
	clock    clock.Clock
	reporter metrics.Reporter

	// 以下字段只由循环 goroutine 访问
	reg   *registry.Registry
	conns map[string]*conn.Conn

	acceptCh chan net.Conn
	readCh   chan conn.Event
	queryCh  chan func()

	acceptLogLimit *rate.Limiter

	mu        sync.Mutex
	started   bool
	listeners *tcp.ListenerSet
	epmdPort  uint16
	cancel    context.CancelFunc
	done      chan struct{}
	err       error
}

// Stats 运行状态快照
type Stats struct {
	// Nodes 注册节点数
	Nodes int

	// Connections 打开的连接数
	Connections int

	// KeepConnections 其中的节点注册连接数
	KeepConnections int

	// Remembered 已注销名称缓存数
	Remembered int
}

// New 创建服务，不绑定任何套接字
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:            cfg,
		clock:          clock.New(),
		reporter:       metrics.Nop{},
		conns:          make(map[string]*conn.Conn),
		acceptCh:       make(chan net.Conn),
		readCh:         make(chan conn.Event),
		queryCh:        make(chan func()),
		acceptLogLimit: rate.NewLimiter(rate.Every(time.Second), 1),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	regCfg := registry.DefaultConfig()
	regCfg.MaxNodes = cfg.MaxNodes
	regCfg.Clock = s.clock
	if cfg.Debug {
		regCfg.RememberSize = registry.DebugRememberSize
	}
	reg, err := registry.New(regCfg)
	if err != nil {
		return nil, err
	}
	s.reg = reg
	return s, nil
}

// Start 绑定监听地址并在后台运行事件循环
//
// ctx 只用于绑定阶段；停止服务使用 Stop。
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	addrs := address.Resolve(s.cfg.Address, s.cfg.Port, s.cfg.UseIPv6)
	if err := address.CheckCapacity(addrs); err != nil {
		return err
	}
	listeners, err := tcp.Listen(ctx, addrs)
	if err != nil {
		return err
	}

	s.started = true
	s.listeners = listeners
	s.epmdPort = s.cfg.Port
	if bound := listeners.Addrs(); s.epmdPort == 0 && len(bound) > 0 {
		s.epmdPort = bound[0].Port()
	}

	runCtx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(runCtx)
	s.cancel = cancel

	live := new(atomic.Int32)
	live.Store(int32(listeners.Len()))
	for _, l := range listeners.Listeners() {
		l := l
		g.Go(func() error {
			return s.acceptLoop(gctx, l, live)
		})
	}
	g.Go(func() error {
		return s.loop(gctx, g)
	})

	go func() {
		err := g.Wait()
		cancel()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
		logger.Info("服务已停止", "err", err)
	}()

	logger.Info("服务已启动", "addrs", listeners.Addrs(), "relaxed", s.cfg.RelaxedCommandCheck)
	return nil
}

// Stop 停止服务并等待所有 goroutine 退出
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	started, cancel := s.started, s.cancel
	s.mu.Unlock()

	if !started {
		return nil
	}
	cancel()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run 启动服务并阻塞直到 ctx 取消或服务自行停止
//
// 因 Kill 请求停止时返回 ErrKilled，调用方应视为正常退出。
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		if err := s.Stop(context.Background()); err != nil {
			return err
		}
	case <-s.done:
	}
	return s.Err()
}

// Done 服务停止后关闭
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Err 返回停止原因，正常停止时为 nil
func (s *Server) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Addrs 返回实际监听地址
func (s *Server) Addrs() []netip.AddrPort {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listeners == nil {
		return nil
	}
	return s.listeners.Addrs()
}

// Port 返回 Names/Dump 响应中报告的端口
func (s *Server) Port() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epmdPort
}

// ============================================================================
//                              查询（跨 goroutine）
// ============================================================================

// Nodes 返回当前注册的全部节点（按名称排序）
func (s *Server) Nodes(ctx context.Context) ([]types.NodeRecord, error) {
	var out []types.NodeRecord
	err := s.query(ctx, func() {
		out = s.reg.List()
	})
	return out, err
}

// Stats 返回运行状态快照
func (s *Server) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.query(ctx, func() {
		rs := s.reg.Stats()
		st.Nodes = rs.Nodes
		st.Remembered = rs.Remembered
		st.Connections = len(s.conns)
		for _, c := range s.conns {
			if c.Keep() {
				st.KeepConnections++
			}
		}
	})
	return st, err
}

// query 在循环 goroutine 中执行 fn 并等待完成
func (s *Server) query(ctx context.Context, fn func()) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return ErrNotStarted
	}

	finished := make(chan struct{})
	select {
	case s.queryCh <- func() { fn(); close(finished) }:
	case <-s.done:
		return ErrServerClosed
	case <-ctx.Done():
		return fmt.Errorf("query: %w", ctx.Err())
	}

	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrServerClosed
	case <-ctx.Done():
		return fmt.Errorf("query: %w", ctx.Err())
	}
}
