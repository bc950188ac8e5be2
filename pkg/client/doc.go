// Package client 实现守护进程的客户端
//
// 除 Register 外，每个请求都使用一条新连接：发送一帧，读取一帧响应，关闭连接。
// Register 返回的 Registration 持有注册连接，关闭它即表示节点下线
// （守护进程保留记录，Dump 中显示为 detached）。
//
// 使用示例：
//
//	c := client.New("127.0.0.1:4369")
//	reg, err := c.Register(ctx, types.NodeRecord{Name: "node1", Port: 9999, NodeType: types.NodeTypeR3Normal, HighVersion: 5, LowVersion: 5})
//	if err != nil {
//	    return err
//	}
//	defer reg.Close()
//
//	node, found, err := c.Port2(ctx, "node1")
package client
