package types

// ============================================================================
//                              NodeType - 节点类型
// ============================================================================

// NodeType 节点能力标签
type NodeType uint8

const (
	// NodeTypeR3Hidden R3 隐藏节点
	NodeTypeR3Hidden NodeType = 72
	// NodeTypeR3Normal R3 普通节点
	NodeTypeR3Normal NodeType = 77
	// NodeTypeR4Hidden R4 隐藏节点
	NodeTypeR4Hidden NodeType = 104
	// NodeTypeR4Normal R4 普通节点
	NodeTypeR4Normal NodeType = 109
	// NodeTypeR6 R6 节点（通过标志位显式声明能力）
	NodeTypeR6 NodeType = 110
)

// String 返回节点类型的字符串表示
func (t NodeType) String() string {
	switch t {
	case NodeTypeR3Hidden, NodeTypeR4Hidden:
		return "hidden"
	case NodeTypeR3Normal, NodeTypeR4Normal, NodeTypeR6:
		return "normal"
	default:
		return "unknown"
	}
}

// IsHidden 是否为隐藏节点
func (t NodeType) IsHidden() bool {
	return t == NodeTypeR3Hidden || t == NodeTypeR4Hidden
}

// ============================================================================
//                              TransportProtocol - 传输协议
// ============================================================================

// TransportProtocol 节点使用的传输协议族
type TransportProtocol uint8

const (
	// ProtocolTCPIPv4 TCP/IPv4
	ProtocolTCPIPv4 TransportProtocol = 0
)

// String 返回传输协议的字符串表示
func (p TransportProtocol) String() string {
	if p == ProtocolTCPIPv4 {
		return "tcp/ipv4"
	}
	return "unknown"
}

// ============================================================================
//                              NodeState - 存活状态
// ============================================================================

// NodeState 节点在 Dump 输出中的存活状态
type NodeState int

const (
	// NodeStateActive 注册连接仍然存活
	NodeStateActive NodeState = iota
	// NodeStateDetached 注册连接已断开，记录仍保留
	NodeStateDetached
)

// String 返回存活状态的字符串表示
func (s NodeState) String() string {
	switch s {
	case NodeStateActive:
		return "active"
	case NodeStateDetached:
		return "detached"
	default:
		return "unknown"
	}
}

// ParseNodeState 解析存活状态字符串
func ParseNodeState(s string) (NodeState, bool) {
	switch s {
	case "active":
		return NodeStateActive, true
	case "detached":
		return NodeStateDetached, true
	default:
		return 0, false
	}
}
