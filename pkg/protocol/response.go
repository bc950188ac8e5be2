package protocol

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/dep2p/go-epmd/pkg/types"
)

// ============================================================================
//                              Alive2Resp
// ============================================================================

// Alive2Response 注册响应
type Alive2Response struct {
	// Result 0 表示成功
	Result uint8

	// Creation 分配的注册代号
	Creation uint16
}

// Encode 编码响应负载
func (r Alive2Response) Encode() []byte {
	buf := []byte{byte(OpAlive2Resp), r.Result}
	return binary.BigEndian.AppendUint16(buf, r.Creation)
}

// DecodeAlive2Response 解码注册响应
func DecodeAlive2Response(b []byte) (Alive2Response, error) {
	if len(b) < 4 {
		return Alive2Response{}, fmt.Errorf("%w: alive2 response %d bytes", ErrShortFrame, len(b))
	}
	if OpCode(b[0]) != OpAlive2Resp {
		return Alive2Response{}, fmt.Errorf("%w: %d", ErrUnexpectedOpCode, b[0])
	}
	return Alive2Response{
		Result:   b[1],
		Creation: binary.BigEndian.Uint16(b[2:4]),
	}, nil
}

// ============================================================================
//                              Port2Resp
// ============================================================================

// Port2Response 端口查询响应
//
// Result 非 0 时 Node 为空。Node.Creation 不在线路上传输。
type Port2Response struct {
	Result uint8
	Node   types.NodeRecord
}

// Encode 编码响应负载
func (r Port2Response) Encode() []byte {
	if r.Result != 0 {
		return []byte{byte(OpPort2Resp), r.Result}
	}

	n := r.Node
	buf := make([]byte, 0, 14+len(n.Name)+len(n.Extra))
	buf = append(buf, byte(OpPort2Resp), 0)
	buf = binary.BigEndian.AppendUint16(buf, n.Port)
	buf = append(buf, byte(n.NodeType), byte(n.Protocol))
	buf = binary.BigEndian.AppendUint16(buf, n.HighVersion)
	buf = binary.BigEndian.AppendUint16(buf, n.LowVersion)
	buf = appendString16(buf, n.Name)
	return appendBytes16(buf, n.Extra)
}

// DecodePort2Response 解码端口查询响应
func DecodePort2Response(b []byte) (Port2Response, error) {
	if len(b) < 2 {
		return Port2Response{}, fmt.Errorf("%w: port2 response %d bytes", ErrShortFrame, len(b))
	}
	if OpCode(b[0]) != OpPort2Resp {
		return Port2Response{}, fmt.Errorf("%w: %d", ErrUnexpectedOpCode, b[0])
	}
	if b[1] != 0 {
		return Port2Response{Result: b[1]}, nil
	}

	// 复用请求解码：op(1) + 与 Alive2 相同的字段布局
	if len(b) < 14 {
		return Port2Response{}, fmt.Errorf("%w: port2 response %d bytes", ErrShortFrame, len(b))
	}
	req := decodeAlive2(append([]byte{byte(OpAlive2Req)}, b[2:]...))
	if req.IsNoop() {
		return Port2Response{}, fmt.Errorf("%w: port2 node description", ErrMalformedResponse)
	}
	return Port2Response{Node: req.Node}, nil
}

// ============================================================================
//                              NamesResp
// ============================================================================

// NameEntry NamesResp 中的一行
type NameEntry struct {
	Name string
	Port uint16
}

// NamesResponse 名称列表响应
type NamesResponse struct {
	// EpmdPort 守护进程监听端口
	EpmdPort uint32
	Nodes    []NameEntry
}

// Encode 编码响应负载，超出单帧的尾部行被丢弃
//
// 名称不合法的条目被跳过，保证每个节点恰好一行。
func (r NamesResponse) Encode() []byte {
	buf := binary.BigEndian.AppendUint32(nil, r.EpmdPort)
	for _, e := range r.Nodes {
		if types.ValidateNodeName(e.Name) != nil {
			continue
		}
		line := fmt.Sprintf("name %s at port %d\n", e.Name, e.Port)
		if len(buf)+len(line) > MaxFrameSize {
			break
		}
		buf = append(buf, line...)
	}
	return buf
}

// DecodeNamesResponse 解码名称列表响应
func DecodeNamesResponse(b []byte) (NamesResponse, error) {
	port, lines, err := splitListing(b)
	if err != nil {
		return NamesResponse{}, err
	}

	resp := NamesResponse{EpmdPort: port}
	for _, line := range lines {
		name, tail, err := splitNameLine(line)
		if err != nil {
			return NamesResponse{}, err
		}
		p, err := parsePort(tail)
		if err != nil {
			return NamesResponse{}, err
		}
		resp.Nodes = append(resp.Nodes, NameEntry{Name: name, Port: p})
	}
	return resp, nil
}

// ============================================================================
//                              DumpResp
// ============================================================================

// DumpEntry DumpResp 中的一行
type DumpEntry struct {
	Name     string
	Port     uint16
	Creation uint16
	State    types.NodeState
}

// DumpResponse 转储响应
type DumpResponse struct {
	EpmdPort uint32
	Nodes    []DumpEntry
}

// Encode 编码响应负载，超出单帧的尾部行被丢弃
//
// 名称不合法的条目被跳过。
func (r DumpResponse) Encode() []byte {
	buf := binary.BigEndian.AppendUint32(nil, r.EpmdPort)
	for _, e := range r.Nodes {
		if types.ValidateNodeName(e.Name) != nil {
			continue
		}
		line := fmt.Sprintf("name %s at port %d, creation %d, %s\n", e.Name, e.Port, e.Creation, e.State)
		if len(buf)+len(line) > MaxFrameSize {
			break
		}
		buf = append(buf, line...)
	}
	return buf
}

// DecodeDumpResponse 解码转储响应
func DecodeDumpResponse(b []byte) (DumpResponse, error) {
	port, lines, err := splitListing(b)
	if err != nil {
		return DumpResponse{}, err
	}

	resp := DumpResponse{EpmdPort: port}
	for _, line := range lines {
		name, tail, err := splitNameLine(line)
		if err != nil {
			return DumpResponse{}, err
		}
		parts := strings.Split(tail, ", ")
		if len(parts) != 3 || !strings.HasPrefix(parts[1], "creation ") {
			return DumpResponse{}, fmt.Errorf("%w: dump line %q", ErrMalformedResponse, line)
		}
		p, err := parsePort(parts[0])
		if err != nil {
			return DumpResponse{}, err
		}
		c, err := strconv.ParseUint(strings.TrimPrefix(parts[1], "creation "), 10, 16)
		if err != nil {
			return DumpResponse{}, fmt.Errorf("%w: creation %q", ErrMalformedResponse, parts[1])
		}
		state, ok := types.ParseNodeState(parts[2])
		if !ok {
			return DumpResponse{}, fmt.Errorf("%w: state %q", ErrMalformedResponse, parts[2])
		}
		resp.Nodes = append(resp.Nodes, DumpEntry{Name: name, Port: p, Creation: uint16(c), State: state})
	}
	return resp, nil
}

// ============================================================================
//                              KillResp / StopResp
// ============================================================================

// KillResponse 清空响应
type KillResponse struct {
	OK bool
}

// Encode 编码响应负载
func (r KillResponse) Encode() []byte {
	if r.OK {
		return []byte("OK")
	}
	return []byte("NO")
}

// DecodeKillResponse 解码清空响应
func DecodeKillResponse(b []byte) (KillResponse, error) {
	switch string(b) {
	case "OK":
		return KillResponse{OK: true}, nil
	case "NO":
		return KillResponse{}, nil
	default:
		return KillResponse{}, fmt.Errorf("%w: kill %q", ErrMalformedResponse, b)
	}
}

// StopResult 强制注销结果
type StopResult int

const (
	// StopStopped 已注销
	StopStopped StopResult = iota
	// StopNoExist 名称未注册
	StopNoExist
	// StopRefused 非本地对端且未开启宽松模式
	StopRefused
)

// String 返回线路上的文本
func (s StopResult) String() string {
	switch s {
	case StopStopped:
		return "STOPPED"
	case StopNoExist:
		return "NOEXIST"
	default:
		return "NO"
	}
}

// StopResponse 强制注销响应
type StopResponse struct {
	Result StopResult
}

// Encode 编码响应负载
func (r StopResponse) Encode() []byte {
	return []byte(r.Result.String())
}

// DecodeStopResponse 解码强制注销响应
func DecodeStopResponse(b []byte) (StopResponse, error) {
	switch string(b) {
	case "STOPPED":
		return StopResponse{Result: StopStopped}, nil
	case "NOEXIST":
		return StopResponse{Result: StopNoExist}, nil
	case "NO":
		return StopResponse{Result: StopRefused}, nil
	default:
		return StopResponse{}, fmt.Errorf("%w: stop %q", ErrMalformedResponse, b)
	}
}

// ============================================================================
//                              文本列表辅助
// ============================================================================

const (
	linePrefix = "name "
	portSep    = " at port "
)

// splitListing 拆出端口号与各行（不含换行符）
func splitListing(b []byte) (uint32, []string, error) {
	if len(b) < 4 {
		return 0, nil, fmt.Errorf("%w: listing %d bytes", ErrShortFrame, len(b))
	}
	port := binary.BigEndian.Uint32(b[:4])
	text := string(b[4:])
	if text == "" {
		return port, nil, nil
	}
	if !strings.HasSuffix(text, "\n") {
		return 0, nil, fmt.Errorf("%w: unterminated line", ErrMalformedResponse)
	}
	return port, strings.Split(strings.TrimSuffix(text, "\n"), "\n"), nil
}

// splitNameLine 名称可能包含空格，以最后一个 " at port " 为界
func splitNameLine(line string) (name, tail string, err error) {
	if !strings.HasPrefix(line, linePrefix) {
		return "", "", fmt.Errorf("%w: line %q", ErrMalformedResponse, line)
	}
	rest := line[len(linePrefix):]
	i := strings.LastIndex(rest, portSep)
	if i < 0 {
		return "", "", fmt.Errorf("%w: line %q", ErrMalformedResponse, line)
	}
	return rest[:i], rest[i+len(portSep):], nil
}

func parsePort(s string) (uint16, error) {
	p, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: port %q", ErrMalformedResponse, s)
	}
	return uint16(p), nil
}
