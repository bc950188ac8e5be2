// Package epmd 是端口映射守护进程的门面
//
// 守护进程维护 "节点名称 → 监听端口" 的注册表。节点通过 Alive2 请求注册，
// 注册连接保持打开且不受空闲超时影响；记录一直保留到 Stop 或 Kill 将其移除。
// 其他进程按名称查询端口，或列出全部节点。
//
// 快速开始：
//
//	d, err := epmd.New(epmd.WithPort(4369))
//	if err != nil {
//	    return err
//	}
//	if err := d.Start(ctx); err != nil {
//	    return err
//	}
//	defer d.Stop(context.Background())
//
// 阻塞运行直到 ctx 取消或收到 Kill 请求：
//
//	err := d.Run(ctx)
//	if errors.Is(err, epmd.ErrKilled) {
//	    // 正常退出
//	}
//
// 组件通过 fx 组装：metrics.Module 提供指标收集，server.Module 提供
// 监听和事件循环。客户端见 pkg/client。
package epmd
