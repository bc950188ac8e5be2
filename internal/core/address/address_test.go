package address

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addrPorts(t *testing.T, ss ...string) []netip.AddrPort {
	t.Helper()
	out := make([]netip.AddrPort, 0, len(ss))
	for _, s := range ss {
		out = append(out, netip.MustParseAddrPort(s))
	}
	return out
}

// TestResolve 测试地址字符串解析
func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		useIPv6 bool
		want    []string
	}{
		{"empty", "", false, []string{"0.0.0.0:4369"}},
		{"empty ipv6", "", true, []string{"0.0.0.0:4369", "[::]:4369"}},
		{"comma list", "10.0.0.1, 10.0.0.2", false, []string{"127.0.0.1:4369", "10.0.0.1:4369", "10.0.0.2:4369"}},
		{"space list", "10.0.0.1 10.0.0.2", false, []string{"127.0.0.1:4369", "10.0.0.1:4369", "10.0.0.2:4369"}},
		{"loopback ipv6", "10.0.0.1", true, []string{"127.0.0.1:4369", "[::1]:4369", "10.0.0.1:4369"}},
		{"dedup", "10.0.0.1,10.0.0.1,127.0.0.1", false, []string{"127.0.0.1:4369", "10.0.0.1:4369"}},
		{"garbage dropped", "nonsense,,10.0.0.3,host.example", false, []string{"127.0.0.1:4369", "10.0.0.3:4369"}},
		{"explicit ipv6 kept", "fd00::1", false, []string{"127.0.0.1:4369", "[fd00::1]:4369"}},
		{"mapped ipv4", "::ffff:10.0.0.4", false, []string{"127.0.0.1:4369", "10.0.0.4:4369"}},
		{"comma only", ",", false, []string{"127.0.0.1:4369"}},
		{"space only", " ", false, []string{"127.0.0.1:4369"}},
		{"separators only", ", ,", false, []string{"127.0.0.1:4369"}},
		{"separators only ipv6", ",", true, []string{"127.0.0.1:4369", "[::1]:4369"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.spec, 4369, tt.useIPv6)
			assert.Equal(t, addrPorts(t, tt.want...), got)
		})
	}
}

// TestResolve_AllGarbage 测试全部片段无法解析时仍保留回环地址
func TestResolve_AllGarbage(t *testing.T) {
	got := Resolve("foo bar", 1234, false)
	assert.Equal(t, addrPorts(t, "127.0.0.1:1234"), got)
}

// TestCheckCapacity 测试监听容量检查
func TestCheckCapacity(t *testing.T) {
	var addrs []netip.AddrPort
	for i := 1; i < MaxListenSockets; i++ {
		addrs = append(addrs, netip.AddrPortFrom(netip.AddrFrom4([4]byte{10, 0, 0, byte(i)}), 4369))
	}
	require.NoError(t, CheckCapacity(addrs))

	addrs = append(addrs, netip.MustParseAddrPort("10.0.1.1:4369"))
	assert.ErrorIs(t, CheckCapacity(addrs), ErrTooManyAddresses)
}

// TestCheckCapacity_FromResolve 测试解析结果超过容量
func TestCheckCapacity_FromResolve(t *testing.T) {
	spec := ""
	for i := 1; i <= MaxListenSockets; i++ {
		spec += netip.AddrFrom4([4]byte{10, 0, 0, byte(i)}).String() + ","
	}
	addrs := Resolve(spec, 4369, false)
	require.Len(t, addrs, MaxListenSockets+1)
	assert.ErrorIs(t, CheckCapacity(addrs), ErrTooManyAddresses)
}
