package registry

import "errors"

var (
	// ErrRegistryFull 已达到节点数上限
	ErrRegistryFull = errors.New("registry: full")

	// ErrInvalidName 节点名称不合法
	ErrInvalidName = errors.New("registry: invalid node name")
)
