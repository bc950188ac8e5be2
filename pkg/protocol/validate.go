package protocol

import (
	"errors"
)

// 编解码错误
var (
	// ErrFrameTooLarge 负载超过 2 字节长度前缀可表示的范围
	ErrFrameTooLarge = errors.New("protocol: frame too large")

	// ErrShortFrame 帧长度不足
	ErrShortFrame = errors.New("protocol: short frame")

	// ErrUnexpectedOpCode 响应操作码与预期不符
	ErrUnexpectedOpCode = errors.New("protocol: unexpected opcode")

	// ErrMalformedResponse 响应格式错误
	ErrMalformedResponse = errors.New("protocol: malformed response")

	// ErrInvalidRequest 请求字段无法编码
	ErrInvalidRequest = errors.New("protocol: invalid request")
)
