package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ============================================================================
//                              帧常量
// ============================================================================

const (
	// FrameHeaderSize 长度前缀字节数
	FrameHeaderSize = 2

	// MaxFrameSize 单帧最大负载
	MaxFrameSize = math.MaxUint16
)

// ============================================================================
//                              帧切分
// ============================================================================

// ExtractFrame 从缓冲区头部切出一帧完整负载
//
// 数据不足一帧时 ok 为 false，调用方应继续读取。
// 返回的 frame 与 rest 均引用 buf 的底层数组。
func ExtractFrame(buf []byte) (frame, rest []byte, ok bool) {
	if len(buf) < FrameHeaderSize {
		return nil, buf, false
	}
	n := int(binary.BigEndian.Uint16(buf))
	if len(buf) < FrameHeaderSize+n {
		return nil, buf, false
	}
	return buf[FrameHeaderSize : FrameHeaderSize+n], buf[FrameHeaderSize+n:], true
}

// AppendFrame 追加长度前缀与负载
func AppendFrame(dst, payload []byte) ([]byte, error) {
	if len(payload) > MaxFrameSize {
		return dst, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(payload)))
	return append(dst, payload...), nil
}

// ============================================================================
//                              流式读写（客户端）
// ============================================================================

// WriteFrame 写入一帧
func WriteFrame(w io.Writer, payload []byte) error {
	buf, err := AppendFrame(make([]byte, 0, FrameHeaderSize+len(payload)), payload)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// ReadFrame 读取一帧，阻塞直到读满
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("failed to read length: %w", err)
	}

	payload := make([]byte, binary.BigEndian.Uint16(hdr[:]))
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	return payload, nil
}
