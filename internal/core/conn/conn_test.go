package conn

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-epmd/pkg/protocol"
)

func pipeConn(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})
	return New(server, time.Unix(100, 0), time.Second), client
}

// TestConn_FrameAccumulation 测试分段到达的帧
func TestConn_FrameAccumulation(t *testing.T) {
	c, _ := pipeConn(t)

	wire, err := protocol.AppendFrame(nil, []byte{byte(protocol.OpNamesReq)})
	require.NoError(t, err)
	wire, err = protocol.AppendFrame(wire, append([]byte{byte(protocol.OpPort2Req)}, "node1"...))
	require.NoError(t, err)

	c.Feed(wire[:1], time.Unix(101, 0))
	_, ok := c.NextFrame()
	assert.False(t, ok)

	c.Feed(wire[1:5], time.Unix(102, 0))
	frame, ok := c.NextFrame()
	require.True(t, ok)
	assert.Equal(t, []byte{byte(protocol.OpNamesReq)}, frame)
	_, ok = c.NextFrame()
	assert.False(t, ok)

	c.Feed(wire[5:], time.Unix(103, 0))
	frame, ok = c.NextFrame()
	require.True(t, ok)
	assert.Equal(t, append([]byte{byte(protocol.OpPort2Req)}, "node1"...), frame)
	assert.Zero(t, c.Buffered())
	assert.Equal(t, time.Unix(103, 0), c.LastActivity())
}

// TestConn_Expired 测试空闲超时判定
func TestConn_Expired(t *testing.T) {
	c, _ := pipeConn(t)
	start := c.LastActivity()

	assert.False(t, c.Expired(start.Add(5*time.Second), 5*time.Second))
	assert.True(t, c.Expired(start.Add(6*time.Second), 5*time.Second))

	c.SetKeep()
	assert.True(t, c.Keep())
	assert.False(t, c.Expired(start.Add(time.Hour), 5*time.Second))
}

// TestConn_Write 测试带长度前缀写出
func TestConn_Write(t *testing.T) {
	c, client := pipeConn(t)

	done := make(chan []byte, 1)
	go func() {
		frame, err := protocol.ReadFrame(client)
		if err != nil {
			done <- nil
			return
		}
		done <- frame
	}()

	require.NoError(t, c.Write([]byte("OK")))
	assert.Equal(t, []byte("OK"), <-done)
}

// TestConn_WriteTimeout 测试对端不读时写超时
func TestConn_WriteTimeout(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	c := New(server, time.Now(), 50*time.Millisecond)
	defer c.Close()

	err := c.Write([]byte("stuck"))
	require.Error(t, err)
	var ne net.Error
	require.True(t, errors.As(err, &ne))
	assert.True(t, ne.Timeout())
}

// TestConn_Close 测试关闭后不再写
func TestConn_Close(t *testing.T) {
	c, client := pipeConn(t)

	require.NoError(t, c.Close())
	assert.False(t, c.IsOpen())
	assert.NoError(t, c.Close())
	assert.ErrorIs(t, c.Write([]byte("x")), ErrConnClosed)

	_, err := client.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

// TestConn_IDUnique 测试连接 ID
func TestConn_IDUnique(t *testing.T) {
	a, _ := pipeConn(t)
	b, _ := pipeConn(t)
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

// TestConn_LocalPeer 测试回环对端识别
func TestConn_LocalPeer(t *testing.T) {
	l, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	client, err := net.Dial("tcp4", l.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	server, err := l.Accept()
	require.NoError(t, err)

	c := New(server, time.Now(), time.Second)
	defer c.Close()
	assert.True(t, c.IsLocal())
	assert.True(t, c.RemoteAddr().Addr().IsLoopback())

	p, _ := pipeConn(t)
	assert.False(t, p.IsLocal())
}

// TestIsLocalPeer 测试本端地址相同视为本机
func TestIsLocalPeer(t *testing.T) {
	local := &net.TCPAddr{IP: net.ParseIP("10.1.2.3"), Port: 4369}
	assert.True(t, isLocalPeer(local, &net.TCPAddr{IP: net.ParseIP("10.1.2.3"), Port: 50000}))
	assert.False(t, isLocalPeer(local, &net.TCPAddr{IP: net.ParseIP("10.1.2.4"), Port: 50000}))
	assert.True(t, isLocalPeer(local, &net.TCPAddr{IP: net.ParseIP("::1"), Port: 50000}))
}

// TestConn_ReadLoop 测试读 goroutine 投递数据与断开事件
func TestConn_ReadLoop(t *testing.T) {
	c, client := pipeConn(t)
	events := make(chan Event, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.ReadLoop(ctx, events)

	_, err := client.Write([]byte("abc"))
	require.NoError(t, err)

	ev := <-events
	assert.Same(t, c, ev.Conn)
	assert.Equal(t, []byte("abc"), ev.Data)
	assert.NoError(t, ev.Err)

	require.NoError(t, client.Close())
	ev = <-events
	assert.Error(t, ev.Err)
}
