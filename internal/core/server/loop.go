package server

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-epmd/internal/core/conn"
	"github.com/dep2p/go-epmd/pkg/lib/log"
)

// ============================================================================
//                              事件循环
// ============================================================================

// loop 事件循环主体，返回即停止服务
func (s *Server) loop(ctx context.Context, g *errgroup.Group) error {
	ticker := s.clock.Ticker(s.cfg.IdleInterval.Duration())
	defer ticker.Stop()
	defer s.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil

		case nc := <-s.acceptCh:
			s.handleAccept(ctx, g, nc)

		case ev := <-s.readCh:
			if err := s.handleRead(ev); err != nil {
				return err
			}

		case fn := <-s.queryCh:
			fn()

		case <-ticker.C:
		}

		s.housekeeping()
	}
}

// handleAccept 登记新连接并启动其读 goroutine
func (s *Server) handleAccept(ctx context.Context, g *errgroup.Group, nc net.Conn) {
	c := conn.New(nc, s.clock.Now(), s.cfg.WriteTimeout.Duration())
	s.conns[c.ID()] = c
	s.reporter.ConnOpened()

	g.Go(func() error {
		c.ReadLoop(ctx, s.readCh)
		return nil
	})

	logger.Debug("接受连接", "conn", log.TruncateID(c.ID(), 8), "remote", c.RemoteAddr(), "local", c.IsLocal())
}

// handleRead 处理读事件，按到达顺序处理所有完整帧
//
// 已缓冲的字节不会再产生读事件，只取一帧会让流水线请求停滞到对端下次写入。
func (s *Server) handleRead(ev conn.Event) error {
	c, ok := s.conns[ev.Conn.ID()]
	if !ok || !c.IsOpen() {
		return nil
	}

	if ev.Err != nil {
		if errors.Is(ev.Err, io.EOF) {
			logger.Debug("对端关闭连接", "conn", log.TruncateID(c.ID(), 8))
		} else {
			logger.Debug("读取失败", "conn", log.TruncateID(c.ID(), 8), "err", ev.Err)
		}
		s.closeConn(c)
		return nil
	}

	c.Feed(ev.Data, s.clock.Now())
	s.reporter.LogRecvMessage(int64(len(ev.Data)))

	for c.IsOpen() {
		frame, ok := c.NextFrame()
		if !ok {
			break
		}
		if killed := s.handleFrame(c, frame); killed {
			return ErrKilled
		}
	}
	return nil
}

// housekeeping 关闭空闲超时的非注册连接
func (s *Server) housekeeping() {
	now := s.clock.Now()
	timeout := s.cfg.PacketTimeout.Duration()

	for _, c := range s.conns {
		if c.Expired(now, timeout) {
			logger.Debug("空闲超时，关闭连接", "conn", log.TruncateID(c.ID(), 8), "idle", now.Sub(c.LastActivity()).Round(time.Millisecond))
			s.reporter.ConnEvicted()
			s.closeConn(c)
		}
	}
}

// closeConn 关闭连接并从连接表移除
func (s *Server) closeConn(c *conn.Conn) {
	if err := c.Close(); err != nil {
		logger.Debug("关闭连接出错", "conn", log.TruncateID(c.ID(), 8), "err", err)
	}
	if _, ok := s.conns[c.ID()]; ok {
		delete(s.conns, c.ID())
		s.reporter.ConnClosed()
	}
}

// shutdown 循环退出时关闭监听器与全部连接
func (s *Server) shutdown() {
	s.mu.Lock()
	listeners := s.listeners
	s.mu.Unlock()

	if listeners != nil {
		if err := listeners.Close(); err != nil {
			logger.Warn("关闭监听器出错", "err", err)
		}
	}
	for _, c := range s.conns {
		s.closeConn(c)
	}
}
