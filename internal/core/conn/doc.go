// Package conn 封装守护进程与单个客户端之间的 TCP 连接
//
// Conn 的状态（缓冲区、open/keep 标志、最后活跃时间）只由服务端事件循环修改；
// 读 goroutine（ReadLoop）只读取套接字并把数据作为 Event 发回事件循环。
//
// 状态机：
//
//	Open(awaiting) --frame--> response --> Open    （注册成功置 keep；no-op 保持打开）
//	                                   \-> Closed  （交互命令、注册失败、空闲超时、对端断开、读写错误）
package conn
