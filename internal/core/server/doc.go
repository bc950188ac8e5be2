// Package server 实现守护进程的事件循环
//
// 单个循环 goroutine 独占监听集合、连接表与注册表：
//
//	accept goroutine ──net.Conn──┐
//	reader goroutine ──Event─────┼──> loop ──> protocol ──> registry
//	Nodes/Stats      ──query─────┘      │
//	idle ticker ────────────────────────┘ (每次唤醒后执行清理)
//
// accept 与 reader goroutine 只通过通道投递消息，不访问任何循环状态，
// 因此注册表无需加锁。循环最长等待 IdleInterval，
// 每次唤醒后关闭空闲超过 PacketTimeout 的非注册连接。
//
// 一次读事件中所有完整帧按到达顺序处理，处理后若连接已关闭则丢弃剩余数据。
package server
