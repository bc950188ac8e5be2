package tcp

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"sync"

	"go.uber.org/multierr"

	"github.com/dep2p/go-epmd/pkg/lib/log"
)

var logger = log.Logger("core/transport/tcp")

// ============================================================================
//                              ListenerSet 实现
// ============================================================================

// ListenerSet 一组已绑定的 TCP 监听器
//
// 监听器顺序与传入地址顺序一致（跳过绑定失败的地址）。
type ListenerSet struct {
	mu        sync.Mutex
	listeners []*net.TCPListener
	closed    bool
}

// Listen 为每个地址打开一个监听套接字
func Listen(ctx context.Context, addrs []netip.AddrPort) (*ListenerSet, error) {
	lc := net.ListenConfig{Control: reuseControl}

	set := &ListenerSet{}
	for _, addr := range addrs {
		l, err := listenOne(ctx, &lc, addr)
		if err != nil {
			logger.Warn("绑定监听地址失败，跳过", "addr", addr, "err", err)
			continue
		}
		logger.Debug("监听地址已绑定", "addr", l.Addr())
		set.listeners = append(set.listeners, l)
	}

	if len(set.listeners) == 0 {
		return nil, fmt.Errorf("%w: tried %d", ErrNoListeners, len(addrs))
	}
	return set, nil
}

func listenOne(ctx context.Context, lc *net.ListenConfig, addr netip.AddrPort) (*net.TCPListener, error) {
	network := "tcp6"
	if addr.Addr().Unmap().Is4() {
		network = "tcp4"
		addr = netip.AddrPortFrom(addr.Addr().Unmap(), addr.Port())
	}

	l, err := lc.Listen(ctx, network, addr.String())
	if err != nil {
		return nil, err
	}

	tl, ok := l.(*net.TCPListener)
	if !ok {
		_ = l.Close()
		return nil, fmt.Errorf("not a TCP listener: %T", l)
	}
	return tl, nil
}

// Listeners 返回全部监听器
func (s *ListenerSet) Listeners() []*net.TCPListener {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*net.TCPListener(nil), s.listeners...)
}

// Len 返回监听器数量
func (s *ListenerSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Addrs 返回实际绑定的地址（端口 0 已解析为实际端口）
func (s *ListenerSet) Addrs() []netip.AddrPort {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]netip.AddrPort, 0, len(s.listeners))
	for _, l := range s.listeners {
		if ta, ok := l.Addr().(*net.TCPAddr); ok {
			out = append(out, ta.AddrPort())
		}
	}
	return out
}

// Close 关闭全部监听器，可重复调用
func (s *ListenerSet) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	for _, l := range s.listeners {
		err = multierr.Append(err, l.Close())
	}
	return err
}
