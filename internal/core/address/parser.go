// Package address 将配置中的地址字符串解析为监听地址列表
package address

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
)

// MaxListenSockets 监听套接字容量上限
const MaxListenSockets = 16

// ============================================================================
//                              错误定义
// ============================================================================

// ErrTooManyAddresses 解析出的地址数量达到监听容量
var ErrTooManyAddresses = errors.New("address: too many listen addresses")

// ============================================================================
//                              地址解析
// ============================================================================

var (
	anyIPv4      = netip.IPv4Unspecified()
	anyIPv6      = netip.IPv6Unspecified()
	loopbackIPv4 = netip.AddrFrom4([4]byte{127, 0, 0, 1})
	loopbackIPv6 = netip.IPv6Loopback()
)

// Resolve 将地址字符串解析为有序、去重的套接字地址列表
//
// 空字符串表示监听通配地址；非空时回环地址总在最前，
// 之后按出现顺序追加每个可解析的字面 IP。
// 分隔符为逗号或空白，无法解析的片段与空片段被静默丢弃；
// 只含分隔符的字符串仍按非空处理，只监听回环地址。
// 显式列出的 IPv6 字面量即使 useIPv6 为 false 也会保留。
func Resolve(spec string, port uint16, useIPv6 bool) []netip.AddrPort {
	var out []netip.AddrPort
	seen := make(map[netip.AddrPort]struct{})
	add := func(ip netip.Addr) {
		ap := netip.AddrPortFrom(ip, port)
		if _, ok := seen[ap]; ok {
			return
		}
		seen[ap] = struct{}{}
		out = append(out, ap)
	}

	if spec == "" {
		add(anyIPv4)
		if useIPv6 {
			add(anyIPv6)
		}
		return out
	}

	add(loopbackIPv4)
	if useIPv6 {
		add(loopbackIPv6)
	}
	for _, tok := range tokenize(spec) {
		ip, err := netip.ParseAddr(tok)
		if err != nil {
			continue
		}
		// ::ffff:a.b.c.d 按 IPv4 监听
		add(ip.Unmap())
	}
	return out
}

// tokenize 按逗号与空白切分
func tokenize(spec string) []string {
	return strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// CheckCapacity 检查地址数量是否在监听容量之内
func CheckCapacity(addrs []netip.AddrPort) error {
	if len(addrs) >= MaxListenSockets {
		return fmt.Errorf("%w: %d (max %d)", ErrTooManyAddresses, len(addrs), MaxListenSockets-1)
	}
	return nil
}
