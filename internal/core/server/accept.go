package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"syscall"
	"time"

	tec "github.com/jbenet/go-temp-err-catcher"
)

// resourceBackoff 资源耗尽时的重试间隔
const resourceBackoff = 100 * time.Millisecond

// acceptLoop 接受连接并投递给事件循环，直到监听器关闭
//
// live 为仍在运行的 accept 循环数。最后一个因不可恢复错误退出的循环
// 返回 ErrListenersFailed，经 errgroup 停止整个服务。
func (s *Server) acceptLoop(ctx context.Context, l net.Listener, live *atomic.Int32) error {
	catcher := tec.TempErrCatcher{IsTemp: isTemporary}

	for {
		if d := s.cfg.DelayAccept.Duration(); d > 0 {
			s.clock.Sleep(d)
		}

		nc, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}

			if isResourceExhausted(err) {
				s.reporter.AcceptError("resource")
				if s.acceptLogLimit.Allow() {
					logger.Warn("accept 资源不足，稍后重试", "addr", l.Addr(), "err", err)
				}
				select {
				case <-s.clock.After(resourceBackoff):
				case <-ctx.Done():
					return nil
				}
				continue
			}

			if catcher.IsTemporary(err) {
				s.reporter.AcceptError("temporary")
				continue
			}

			s.reporter.AcceptError("fatal")
			logger.Error("accept 失败，停止监听该地址", "addr", l.Addr(), "err", err)
			if live.Add(-1) == 0 {
				return fmt.Errorf("%w: last error on %s: %w", ErrListenersFailed, l.Addr(), err)
			}
			return nil
		}
		catcher.Reset()

		select {
		case s.acceptCh <- nc:
		case <-ctx.Done():
			_ = nc.Close()
			return nil
		}
	}
}

// isResourceExhausted 文件描述符或内存耗尽
func isResourceExhausted(err error) bool {
	return errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE) ||
		errors.Is(err, syscall.ENOBUFS) ||
		errors.Is(err, syscall.ENOMEM)
}

// isTemporary 可立即重试的瞬时错误
func isTemporary(err error) bool {
	if errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EINTR) ||
		errors.Is(err, syscall.EAGAIN) {
		return true
	}
	return tec.ErrIsTemporary(err)
}
