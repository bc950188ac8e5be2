// Package metrics 收集守护进程的运行指标
//
// Collector 基于 prometheus/client_golang，使用独立的 Registry，
// 由服务端事件循环在连接、请求、清理等时刻调用 Reporter 方法。
//
// # 指标
//
//	epmd_nodes                    当前注册节点数
//	epmd_connections              当前打开连接数
//	epmd_connections_total        累计接受连接数
//	epmd_requests_total{op}       按操作码统计的请求数（含 noop）
//	epmd_evictions_total          空闲超时关闭的连接数
//	epmd_accept_errors_total{kind} accept 错误（temporary / resource / fatal）
//	epmd_bytes_received_total     接收字节数
//	epmd_bytes_sent_total         发送字节数（含长度前缀）
//
// 配置 metrics_addr 后，Module 在该地址通过 promhttp 暴露 /metrics。
package metrics
