package types

import "errors"

// ============================================================================
//                              节点名称错误
// ============================================================================

var (
	// ErrEmptyNodeName 空节点名称
	ErrEmptyNodeName = errors.New("empty node name")

	// ErrNodeNameTooLong 节点名称过长
	ErrNodeNameTooLong = errors.New("node name too long")

	// ErrInvalidNodeName 节点名称不是合法的 UTF-8 或含控制字符
	ErrInvalidNodeName = errors.New("invalid node name")
)
