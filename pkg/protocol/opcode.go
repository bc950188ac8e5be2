package protocol

// ============================================================================
//                              操作码
// ============================================================================

// OpCode 帧的首字节
type OpCode uint8

const (
	// OpNoop no-op 哨兵（不出现在线路上）
	OpNoop OpCode = 0

	// OpAlive2Req 节点注册请求 'x'
	OpAlive2Req OpCode = 120
	// OpAlive2Resp 节点注册响应 'y'
	OpAlive2Resp OpCode = 121
	// OpPort2Req 端口查询请求 'z'
	OpPort2Req OpCode = 122
	// OpPort2Resp 端口查询响应 'w'
	OpPort2Resp OpCode = 119
	// OpNamesReq 名称列表请求 'n'
	OpNamesReq OpCode = 110

	// OpDumpReq 交互命令：转储 'd'
	OpDumpReq OpCode = 100
	// OpKillReq 交互命令：清空并停止 'k'
	OpKillReq OpCode = 107
	// OpStopReq 交互命令：强制注销 's'
	OpStopReq OpCode = 115
)

// String 返回操作码名称
func (op OpCode) String() string {
	switch op {
	case OpNoop:
		return "noop"
	case OpAlive2Req:
		return "alive2"
	case OpAlive2Resp:
		return "alive2_resp"
	case OpPort2Req:
		return "port2"
	case OpPort2Resp:
		return "port2_resp"
	case OpNamesReq:
		return "names"
	case OpDumpReq:
		return "dump"
	case OpKillReq:
		return "kill"
	case OpStopReq:
		return "stop"
	default:
		return "unknown"
	}
}

// IsInteractive 是否为交互命令（响应后关闭连接）
func (op OpCode) IsInteractive() bool {
	switch op {
	case OpPort2Req, OpNamesReq, OpDumpReq, OpKillReq, OpStopReq:
		return true
	default:
		return false
	}
}

// DefaultPort 默认监听端口
const DefaultPort uint16 = 4369
