package types

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNodeNameLen 节点名称最大字符数（与原子名长度一致）
const MaxNodeNameLen = 255

// ============================================================================
//                              NodeRecord 节点记录
// ============================================================================

// NodeRecord 已注册节点
//
// Name 在注册表中唯一。Creation 在注册时分配，之后不再修改，
// 用于让对端察觉同名节点已被重新注册。
type NodeRecord struct {
	// Name 节点名称（唯一键）
	Name string

	// Port 节点分布式监听端口
	Port uint16

	// NodeType 节点能力标签（77 普通节点，72 隐藏节点）
	NodeType NodeType

	// Protocol 传输协议族标签（0 = tcp/ipv4）
	Protocol TransportProtocol

	// HighVersion 支持的最高分布式协议版本
	HighVersion uint16

	// LowVersion 支持的最低分布式协议版本
	LowVersion uint16

	// Extra 厂商附加数据（不透明）
	Extra []byte

	// Creation 注册代号，范围 1..3
	Creation uint16

	// Owner 注册该节点的连接 ID（仅用于 Dump 输出的存活状态）
	Owner string
}

// Clone 返回深拷贝
func (r NodeRecord) Clone() NodeRecord {
	if r.Extra != nil {
		r.Extra = bytes.Clone(r.Extra)
	}
	return r
}

// Equal 比较除 Owner 外的全部字段
func (r NodeRecord) Equal(o NodeRecord) bool {
	return r.Name == o.Name &&
		r.Port == o.Port &&
		r.NodeType == o.NodeType &&
		r.Protocol == o.Protocol &&
		r.HighVersion == o.HighVersion &&
		r.LowVersion == o.LowVersion &&
		r.Creation == o.Creation &&
		bytes.Equal(r.Extra, o.Extra)
}

// String 返回节点的可读表示
func (r NodeRecord) String() string {
	return fmt.Sprintf("%s@%d(type=%d,proto=%d,vsn=%d-%d,creation=%d)",
		r.Name, r.Port, r.NodeType, r.Protocol, r.LowVersion, r.HighVersion, r.Creation)
}

// ============================================================================
//                              名称校验
// ============================================================================

// ValidateNodeName 校验节点名称
//
// 名称必须非空、为合法 UTF-8、不含控制字符，且不超过 MaxNodeNameLen 个字符。
// Names/Dump 响应按行输出名称，换行符会伪造出额外的行。
func ValidateNodeName(name string) error {
	if name == "" {
		return ErrEmptyNodeName
	}
	if !utf8.ValidString(name) {
		return ErrInvalidNodeName
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return fmt.Errorf("%w: contains control character", ErrInvalidNodeName)
	}
	if utf8.RuneCountInString(name) > MaxNodeNameLen {
		return fmt.Errorf("%w: %d characters (max %d)", ErrNodeNameTooLong, utf8.RuneCountInString(name), MaxNodeNameLen)
	}
	return nil
}
