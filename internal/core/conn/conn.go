package conn

import (
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/google/uuid"

	"github.com/dep2p/go-epmd/pkg/protocol"
)

// ============================================================================
//                              Conn 实现
// ============================================================================

// Conn 客户端连接
type Conn struct {
	id     string
	nc     net.Conn
	remote netip.AddrPort
	local  bool

	buf          []byte
	open         bool
	keep         bool
	lastActivity time.Time

	writeTimeout time.Duration
}

// New 包装一个已接受的连接
//
// now 作为初始活跃时间，writeTimeout 为 0 表示写操作不设截止时间。
func New(nc net.Conn, now time.Time, writeTimeout time.Duration) *Conn {
	c := &Conn{
		id:           uuid.NewString(),
		nc:           nc,
		open:         true,
		lastActivity: now,
		writeTimeout: writeTimeout,
	}
	if ta, ok := nc.RemoteAddr().(*net.TCPAddr); ok {
		c.remote = ta.AddrPort()
	}
	c.local = isLocalPeer(nc.LocalAddr(), nc.RemoteAddr())
	return c
}

// isLocalPeer 对端为回环地址或与本端地址相同
func isLocalPeer(local, remote net.Addr) bool {
	ra, ok := remote.(*net.TCPAddr)
	if !ok {
		return false
	}
	rip, ok := netip.AddrFromSlice(ra.IP)
	if !ok {
		return false
	}
	rip = rip.Unmap()
	if rip.IsLoopback() {
		return true
	}

	la, ok := local.(*net.TCPAddr)
	if !ok {
		return false
	}
	lip, ok := netip.AddrFromSlice(la.IP)
	return ok && lip.Unmap() == rip
}

// ID 返回连接 ID
func (c *Conn) ID() string {
	return c.id
}

// RemoteAddr 返回对端地址
func (c *Conn) RemoteAddr() netip.AddrPort {
	return c.remote
}

// IsLocal 对端是否为本机
func (c *Conn) IsLocal() bool {
	return c.local
}

// IsOpen 是否仍然打开
func (c *Conn) IsOpen() bool {
	return c.open
}

// Keep 是否豁免空闲超时
func (c *Conn) Keep() bool {
	return c.keep
}

// SetKeep 标记为长连接（节点注册连接）
func (c *Conn) SetKeep() {
	c.keep = true
}

// LastActivity 返回最后活跃时间
func (c *Conn) LastActivity() time.Time {
	return c.lastActivity
}

// Buffered 返回尚未组成完整帧的字节数
func (c *Conn) Buffered() int {
	return len(c.buf)
}

// ============================================================================
//                              读写
// ============================================================================

// Feed 追加读到的数据并刷新活跃时间
func (c *Conn) Feed(data []byte, now time.Time) {
	c.buf = append(c.buf, data...)
	c.lastActivity = now
}

// NextFrame 取出下一帧完整负载
func (c *Conn) NextFrame() ([]byte, bool) {
	frame, rest, ok := protocol.ExtractFrame(c.buf)
	if !ok {
		return nil, false
	}
	// 复制出帧内容，剩余数据前移以复用底层数组
	out := append([]byte(nil), frame...)
	c.buf = c.buf[:copy(c.buf, rest)]
	return out, true
}

// Write 以一帧写出响应负载
func (c *Conn) Write(payload []byte) error {
	if !c.open {
		return ErrConnClosed
	}

	buf, err := protocol.AppendFrame(nil, payload)
	if err != nil {
		return err
	}

	if c.writeTimeout > 0 {
		if err := c.nc.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}
	if _, err := c.nc.Write(buf); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// Expired 非 keep 连接空闲时间是否超过 timeout
func (c *Conn) Expired(now time.Time, timeout time.Duration) bool {
	return c.open && !c.keep && now.Sub(c.lastActivity) > timeout
}

// Close 关闭连接，可重复调用
func (c *Conn) Close() error {
	if !c.open {
		return nil
	}
	c.open = false
	c.buf = nil
	return c.nc.Close()
}
