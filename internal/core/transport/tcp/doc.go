// Package tcp 管理守护进程的 TCP 监听套接字集合
//
// 每个解析出的地址对应一个监听套接字，按地址族选择 tcp4 / tcp6，
// 绑定前设置 SO_REUSEADDR（IPv6 另设 IPV6_V6ONLY），
// 使守护进程重启时可以立即重新绑定处于 TIME_WAIT 的端口。
//
// 单个地址绑定失败只记录日志并跳过；全部失败时 Listen 返回 ErrNoListeners。
//
// # 使用示例
//
//	set, err := tcp.Listen(ctx, address.Resolve("", 4369, false))
//	if err != nil {
//	    return err
//	}
//	defer set.Close()
package tcp
