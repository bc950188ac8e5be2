package tcp

import (
	"context"
	"net"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestListen_Loopback 测试绑定回环地址并解析实际端口
func TestListen_Loopback(t *testing.T) {
	set, err := Listen(context.Background(), []netip.AddrPort{netip.MustParseAddrPort("127.0.0.1:0")})
	require.NoError(t, err)
	defer set.Close()

	require.Equal(t, 1, set.Len())
	addrs := set.Addrs()
	require.Len(t, addrs, 1)
	assert.Equal(t, netip.MustParseAddr("127.0.0.1"), addrs[0].Addr())
	assert.NotZero(t, addrs[0].Port())

	conn, err := net.Dial("tcp", addrs[0].String())
	require.NoError(t, err)
	_ = conn.Close()
}

// TestListen_SkipsUnusable 测试跳过无法绑定的地址
func TestListen_SkipsUnusable(t *testing.T) {
	set, err := Listen(context.Background(), []netip.AddrPort{
		netip.MustParseAddrPort("192.0.2.1:0"), // TEST-NET-1，本机没有该地址
		netip.MustParseAddrPort("127.0.0.1:0"),
	})
	require.NoError(t, err)
	defer set.Close()

	assert.Equal(t, 1, set.Len())
}

// TestListen_NoListeners 测试全部地址都无法绑定
func TestListen_NoListeners(t *testing.T) {
	_, err := Listen(context.Background(), []netip.AddrPort{netip.MustParseAddrPort("192.0.2.1:0")})
	assert.ErrorIs(t, err, ErrNoListeners)

	_, err = Listen(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoListeners)
}

// TestListen_Rebind 测试关闭后立即重新绑定同一端口
func TestListen_Rebind(t *testing.T) {
	set, err := Listen(context.Background(), []netip.AddrPort{netip.MustParseAddrPort("127.0.0.1:0")})
	require.NoError(t, err)
	addr := set.Addrs()[0]

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	_ = conn.Close()
	require.NoError(t, set.Close())

	again, err := Listen(context.Background(), []netip.AddrPort{addr})
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, addr, again.Addrs()[0])
}

// TestListenerSet_CloseIdempotent 测试重复关闭
func TestListenerSet_CloseIdempotent(t *testing.T) {
	set, err := Listen(context.Background(), []netip.AddrPort{netip.MustParseAddrPort("127.0.0.1:0")})
	require.NoError(t, err)

	require.NoError(t, set.Close())
	assert.NoError(t, set.Close())

	_, err = set.Listeners()[0].Accept()
	assert.ErrorIs(t, err, net.ErrClosed)
}
