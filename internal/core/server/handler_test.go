package server

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-epmd/config"
	"github.com/dep2p/go-epmd/internal/core/conn"
	"github.com/dep2p/go-epmd/internal/core/metrics"
	"github.com/dep2p/go-epmd/pkg/protocol"
	"github.com/dep2p/go-epmd/pkg/types"
)

// remoteConn 基于 net.Pipe 的连接，对端不是本机
func remoteConn(t *testing.T) *conn.Conn {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	c := conn.New(a, time.Now(), time.Second)
	require.False(t, c.IsLocal())
	return c
}

func newIdleServer(t *testing.T, mutate func(*config.Config), opts ...Option) *Server {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}
	s, err := New(cfg, opts...)
	require.NoError(t, err)
	return s
}

// TestHandleKill_RemoteRefused 测试远端 Kill 在严格模式下被拒绝
func TestHandleKill_RemoteRefused(t *testing.T) {
	s := newIdleServer(t, nil)
	_, err := s.reg.Register(node1())
	require.NoError(t, err)

	out := s.handleKill(remoteConn(t))
	assert.Equal(t, "NO", string(out.resp))
	assert.True(t, out.close)
	assert.False(t, out.killed)
	assert.Equal(t, 1, s.reg.Len())
}

// TestHandleKill_RemoteRelaxed 测试宽松模式允许远端 Kill
func TestHandleKill_RemoteRelaxed(t *testing.T) {
	s := newIdleServer(t, func(c *config.Config) {
		c.RelaxedCommandCheck = true
		c.ExitOnKill = true
	})
	_, err := s.reg.Register(node1())
	require.NoError(t, err)

	out := s.handleKill(remoteConn(t))
	assert.Equal(t, "OK", string(out.resp))
	assert.True(t, out.killed)
	assert.Zero(t, s.reg.Len())
}

// TestHandleStop_Policy 测试远端 Stop
func TestHandleStop_Policy(t *testing.T) {
	strict := newIdleServer(t, nil)
	_, err := strict.reg.Register(node1())
	require.NoError(t, err)

	out := strict.handleStop(remoteConn(t), protocol.NewStopRequest("node1"))
	assert.Equal(t, "NO", string(out.resp))
	assert.Equal(t, 1, strict.reg.Len())

	relaxed := newIdleServer(t, func(c *config.Config) { c.RelaxedCommandCheck = true })
	_, err = relaxed.reg.Register(node1())
	require.NoError(t, err)

	out = relaxed.handleStop(remoteConn(t), protocol.NewStopRequest("node1"))
	assert.Equal(t, "STOPPED", string(out.resp))
	out = relaxed.handleStop(remoteConn(t), protocol.NewStopRequest("node1"))
	assert.Equal(t, "NOEXIST", string(out.resp))
}

// TestHandleAlive2_SetsKeep 测试注册成功后连接成为长连接
func TestHandleAlive2_SetsKeep(t *testing.T) {
	collector := metrics.NewCollector(false)
	s := newIdleServer(t, nil, WithReporter(collector))
	c := remoteConn(t)

	out := s.handleAlive2(c, protocol.NewAlive2Request(node1()))
	resp, err := protocol.DecodeAlive2Response(out.resp)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), resp.Result)
	assert.False(t, out.close)
	assert.True(t, c.Keep())

	rec, ok := s.reg.Lookup("node1")
	require.True(t, ok)
	assert.Equal(t, c.ID(), rec.Owner)
	assert.Equal(t, resp.Creation, rec.Creation)
}

// TestHandleAlive2_Full 测试注册失败后关闭连接
func TestHandleAlive2_Full(t *testing.T) {
	s := newIdleServer(t, func(c *config.Config) { c.MaxNodes = 1 })
	_, err := s.reg.Register(types.NodeRecord{Name: "other", Port: 1})
	require.NoError(t, err)

	c := remoteConn(t)
	out := s.handleAlive2(c, protocol.NewAlive2Request(node1()))
	resp, err := protocol.DecodeAlive2Response(out.resp)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), resp.Result)
	assert.True(t, out.close)
	assert.False(t, c.Keep())
}

// TestHandleDump_State 测试 Dump 按注册连接判断存活状态
func TestHandleDump_State(t *testing.T) {
	s := newIdleServer(t, nil)
	owner := remoteConn(t)
	s.conns[owner.ID()] = owner

	live := node1()
	live.Owner = owner.ID()
	_, err := s.reg.Register(live)
	require.NoError(t, err)

	orphan := node1()
	orphan.Name = "orphan"
	orphan.Owner = "gone"
	_, err = s.reg.Register(orphan)
	require.NoError(t, err)

	dump, err := protocol.DecodeDumpResponse(s.handleDump().resp)
	require.NoError(t, err)
	require.Len(t, dump.Nodes, 2)
	assert.Equal(t, "node1", dump.Nodes[0].Name)
	assert.Equal(t, types.NodeStateActive, dump.Nodes[0].State)
	assert.Equal(t, "orphan", dump.Nodes[1].Name)
	assert.Equal(t, types.NodeStateDetached, dump.Nodes[1].State)
}
