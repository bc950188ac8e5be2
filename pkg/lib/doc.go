// Package lib 包含基础设施工具库
//
// 本目录包含与业务组件无关的通用工具库：
//
//   - log: 日志封装（组件级 LazyLogger）
//
// # 与 pkg/ 其他目录的关系
//
//   - types/: 公共类型定义（节点记录、枚举）
//   - protocol/: 线路协议编解码
//   - client/: 守护进程客户端
//   - lib/: 基础设施工具库（本目录）
//
// # 使用示例
//
//	import "github.com/dep2p/go-epmd/pkg/lib/log"
//
//	var logger = log.Logger("core/server")
package lib
