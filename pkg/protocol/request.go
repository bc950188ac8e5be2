package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/dep2p/go-epmd/pkg/types"
)

// alive2HeaderSize Alive2 请求最短长度（含操作码、空名称、空附加数据）
const alive2HeaderSize = 13

// ============================================================================
//                              Request 请求
// ============================================================================

// Request 解码后的请求
//
// Op 为 OpNoop 表示请求格式错误或无法识别，服务端应忽略。
type Request struct {
	// Op 操作码
	Op OpCode

	// Node Alive2 请求携带的节点描述（Creation 与 Owner 为空）
	Node types.NodeRecord

	// Name Port2 / Stop 请求的目标名称
	Name string
}

// IsNoop 是否为 no-op 哨兵
func (r Request) IsNoop() bool {
	return r.Op == OpNoop
}

// NewAlive2Request 创建注册请求
func NewAlive2Request(node types.NodeRecord) Request {
	return Request{Op: OpAlive2Req, Node: node}
}

// NewPort2Request 创建端口查询请求
func NewPort2Request(name string) Request {
	return Request{Op: OpPort2Req, Name: name}
}

// NewNamesRequest 创建名称列表请求
func NewNamesRequest() Request {
	return Request{Op: OpNamesReq}
}

// NewDumpRequest 创建转储请求
func NewDumpRequest() Request {
	return Request{Op: OpDumpReq}
}

// NewKillRequest 创建清空请求
func NewKillRequest() Request {
	return Request{Op: OpKillReq}
}

// NewStopRequest 创建强制注销请求
func NewStopRequest(name string) Request {
	return Request{Op: OpStopReq, Name: name}
}

// ============================================================================
//                              解码（服务端）
// ============================================================================

var noop = Request{Op: OpNoop}

// DecodeRequest 解码一帧请求负载
//
// 任何格式错误都返回 no-op 哨兵，不返回错误。
func DecodeRequest(frame []byte) Request {
	if len(frame) == 0 {
		return noop
	}

	switch op := OpCode(frame[0]); op {
	case OpAlive2Req:
		return decodeAlive2(frame)
	case OpPort2Req, OpStopReq:
		name := string(frame[1:])
		if types.ValidateNodeName(name) != nil {
			return noop
		}
		return Request{Op: op, Name: name}
	case OpNamesReq, OpDumpReq, OpKillReq:
		return Request{Op: op}
	default:
		return noop
	}
}

func decodeAlive2(frame []byte) Request {
	if len(frame) < alive2HeaderSize {
		return noop
	}

	be := binary.BigEndian
	node := types.NodeRecord{
		Port:        be.Uint16(frame[1:3]),
		NodeType:    types.NodeType(frame[3]),
		Protocol:    types.TransportProtocol(frame[4]),
		HighVersion: be.Uint16(frame[5:7]),
		LowVersion:  be.Uint16(frame[7:9]),
	}

	nameLen := int(be.Uint16(frame[9:11]))
	off := 11
	// 名称之后至少还需要 2 字节 extra_len
	if nameLen > len(frame)-off-2 {
		return noop
	}
	node.Name = string(frame[off : off+nameLen])
	off += nameLen
	if types.ValidateNodeName(node.Name) != nil {
		return noop
	}

	extraLen := int(be.Uint16(frame[off : off+2]))
	off += 2
	if extraLen > len(frame)-off {
		return noop
	}
	if extraLen > 0 {
		node.Extra = append([]byte(nil), frame[off:off+extraLen]...)
	}

	return Request{Op: OpAlive2Req, Node: node}
}

// ============================================================================
//                              编码（客户端）
// ============================================================================

// EncodeRequest 编码请求负载（不含长度前缀）
func EncodeRequest(req Request) ([]byte, error) {
	switch req.Op {
	case OpAlive2Req:
		n := req.Node
		if err := types.ValidateNodeName(n.Name); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		if len(n.Name) > MaxFrameSize || len(n.Extra) > MaxFrameSize {
			return nil, ErrFrameTooLarge
		}
		buf := make([]byte, 0, alive2HeaderSize+len(n.Name)+len(n.Extra))
		buf = append(buf, byte(OpAlive2Req))
		buf = binary.BigEndian.AppendUint16(buf, n.Port)
		buf = append(buf, byte(n.NodeType), byte(n.Protocol))
		buf = binary.BigEndian.AppendUint16(buf, n.HighVersion)
		buf = binary.BigEndian.AppendUint16(buf, n.LowVersion)
		buf = appendString16(buf, n.Name)
		buf = appendBytes16(buf, n.Extra)
		return buf, nil

	case OpPort2Req, OpStopReq:
		if err := types.ValidateNodeName(req.Name); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return append([]byte{byte(req.Op)}, req.Name...), nil

	case OpNamesReq, OpDumpReq, OpKillReq:
		return []byte{byte(req.Op)}, nil

	default:
		return nil, fmt.Errorf("%w: opcode %d", ErrInvalidRequest, req.Op)
	}
}

func appendString16(dst []byte, s string) []byte {
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(s)))
	return append(dst, s...)
}

func appendBytes16(dst, b []byte) []byte {
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(b)))
	return append(dst, b...)
}
