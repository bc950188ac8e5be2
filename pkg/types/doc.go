// Package types 定义 go-epmd 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 go-epmd 内部包。
// 所有类型都是纯值类型，用于在注册表、编解码器与客户端之间传递数据。
//
// # 文件组织
//
//   - node.go   - NodeRecord 节点记录、名称校验
//   - enums.go  - NodeType, TransportProtocol, NodeState
//   - errors.go - 公共错误定义
//
// # 与 pkg/protocol 的区别
//
// pkg/types 定义 Go 内部数据结构（内存结构），
// pkg/protocol 定义网络协议消息（wire format）。
package types
